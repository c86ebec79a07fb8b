package feed

import (
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

var (
	converterOnce sync.Once
	converter     *md.Converter
)

func htmlConverter() *md.Converter {
	converterOnce.Do(func() {
		converter = md.NewConverter("", true, nil)
	})
	return converter
}

// HTML returns the richest body the entry has: the full content when the
// stream carried it, the summary otherwise.
func (e Entry) HTML() string {
	if strings.TrimSpace(e.Content) != "" {
		return e.Content
	}
	return e.Summary
}

// Markdown converts the entry body to markdown. Bodies that fail to convert
// are returned as they are.
func (e Entry) Markdown() string {
	body := e.HTML()
	if strings.TrimSpace(body) == "" {
		return ""
	}
	out, err := htmlConverter().ConvertString(body)
	if err != nil {
		return body
	}
	return strings.TrimSpace(out)
}
