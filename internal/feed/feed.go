// Package feed reads stream files and turns them into entries.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is a single article of a stream.
type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	StreamID  string    `json:"stream_id,omitempty" yaml:"stream_id,omitempty"`
	Title     string    `json:"title" yaml:"title"`
	Author    string    `json:"author,omitempty" yaml:"author,omitempty"`
	Origin    string    `json:"origin,omitempty" yaml:"origin,omitempty"`
	URL       string    `json:"url,omitempty" yaml:"url,omitempty"`
	Summary   string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Content   string    `json:"content,omitempty" yaml:"content,omitempty"`
	Published time.Time `json:"published" yaml:"published"`
	Unread    bool      `json:"unread" yaml:"unread"`
	Pinned    bool      `json:"pinned" yaml:"pinned"`
}

// Stream is a page of entries.
type Stream struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Continuation string  `json:"continuation,omitempty"`
	Entries      []Entry `json:"entries"`
}

type streamJSON struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Continuation string     `json:"continuation"`
	Items        []itemJSON `json:"items"`
}

type itemJSON struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Origin *struct {
		StreamID string `json:"streamId"`
		Title    string `json:"title"`
		HTMLURL  string `json:"htmlUrl"`
	} `json:"origin"`
	Alternate []struct {
		Href string `json:"href"`
		Type string `json:"type"`
	} `json:"alternate"`
	Summary   *contentJSON `json:"summary"`
	Content   *contentJSON `json:"content"`
	Published int64        `json:"published"` // Unix millis
	Unread    *bool        `json:"unread"`
}

type contentJSON struct {
	Content string `json:"content"`
}

// ParseStream decodes a stream document. Items without an id get one derived
// from their stream, link, title and publish time, so reparsing the same
// document yields the same ids.
func ParseStream(r io.Reader) (Stream, error) {
	var raw streamJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Stream{}, fmt.Errorf("failed to decode stream: %w", err)
	}

	stream := Stream{
		ID:           raw.ID,
		Title:        raw.Title,
		Continuation: raw.Continuation,
		Entries:      make([]Entry, 0, len(raw.Items)),
	}
	seen := make(map[string]struct{}, len(raw.Items))
	for _, item := range raw.Items {
		e := item.entry(raw.ID)
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		stream.Entries = append(stream.Entries, e)
	}
	return stream, nil
}

// LoadFile parses the stream file at path.
func LoadFile(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stream{}, fmt.Errorf("failed to open stream file: %w", err)
	}
	defer f.Close()

	stream, err := ParseStream(f)
	if err != nil {
		return Stream{}, fmt.Errorf("%s: %w", path, err)
	}
	return stream, nil
}

func (i itemJSON) entry(streamID string) Entry {
	e := Entry{
		ID:       strings.TrimSpace(i.ID),
		StreamID: streamID,
		Title:    strings.TrimSpace(i.Title),
		Author:   strings.TrimSpace(i.Author),
		Unread:   true,
	}
	if e.Title == "" {
		e.Title = "(untitled)"
	}
	if i.Origin != nil {
		e.Origin = i.Origin.Title
		if i.Origin.StreamID != "" {
			e.StreamID = i.Origin.StreamID
		}
	}
	for _, alt := range i.Alternate {
		if alt.Href != "" {
			e.URL = alt.Href
			break
		}
	}
	if i.Summary != nil {
		e.Summary = i.Summary.Content
	}
	if i.Content != nil {
		e.Content = i.Content.Content
	}
	if i.Published > 0 {
		e.Published = time.UnixMilli(i.Published).UTC()
	}
	if i.Unread != nil {
		e.Unread = *i.Unread
	}
	if e.ID == "" {
		e.ID = derivedID(e.StreamID, e.URL, i.Title, i.Published)
	}
	return e
}

func derivedID(streamID, url, title string, published int64) string {
	name := strings.Join([]string{streamID, url, title, strconv.FormatInt(published, 10)}, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
