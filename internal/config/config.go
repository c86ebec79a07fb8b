package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/sjson"
)

const (
	appName              = "lazyfeed"
	defaultDataDirectory = ".lazyfeed"

	defaultAssumedItemHeight        = 4
	defaultOffscreenToViewportRatio = 1.8
	defaultScrollDebounceMS         = 50
)

type ListOptions struct {
	// Line count used for entries that were never rendered at the current width.
	AssumedItemHeight float64 `json:"assumed_item_height,omitempty" jsonschema:"description=Height in lines assumed for entries that were not measured yet,default=4,minimum=1"`
	// Offscreen content kept mounted, in viewport heights, on each side.
	OffscreenToViewportRatio float64 `json:"offscreen_to_viewport_ratio,omitempty" jsonschema:"description=Viewport heights of entries kept rendered above and below the screen,default=1.8,minimum=0"`
	ScrollDebounceMS         int     `json:"scroll_debounce_ms,omitempty" jsonschema:"description=Quiet time after scrolling before the rendered range is updated,default=50,minimum=0"`
	HeightCacheLimit         int     `json:"height_cache_limit,omitempty" jsonschema:"description=Maximum number of measured entry heights to keep (0 keeps all)"`
	PruneHeights             bool    `json:"prune_heights,omitempty" jsonschema:"description=Forget the heights of entries that left the list"`
	Gap                      int     `json:"gap,omitempty" jsonschema:"description=Blank lines between entries,minimum=0"`
}

// ScrollDebounce returns the scroll debounce as a duration.
func (l ListOptions) ScrollDebounce() time.Duration {
	return time.Duration(l.ScrollDebounceMS) * time.Millisecond
}

type Options struct {
	Debug         bool   `json:"debug,omitempty" jsonschema:"description=Enable debug logging"`
	Notifications bool   `json:"notifications,omitempty" jsonschema:"description=Send a desktop notification when a watched feed brings new entries"`
	DataDirectory string `json:"data_directory,omitempty" jsonschema:"description=Directory for the database and logs,default=.lazyfeed"` // Relative to the cwd
}

// Feed is a stream file that is imported on start and watched for changes.
type Feed struct {
	Name string `json:"name,omitempty" jsonschema:"description=Display name of the feed"`
	Path string `json:"path" jsonschema:"description=Path to a stream JSON file,required"`
}

// Config holds the configuration for lazyfeed.
type Config struct {
	Options *Options     `json:"options,omitempty"`
	List    *ListOptions `json:"list,omitempty"`
	Feeds   []Feed       `json:"feeds,omitempty"`

	// Internal
	workingDir    string `json:"-"`
	dataConfigDir string `json:"-"`
}

func (c *Config) WorkingDir() string {
	return c.workingDir
}

// FeedPaths returns the feed paths resolved against the working directory.
func (c *Config) FeedPaths() []string {
	paths := make([]string, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		if f.Path == "" {
			continue
		}
		p := f.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.workingDir, p)
		}
		paths = append(paths, p)
	}
	return paths
}

func (c *Config) SetPruneHeights(enabled bool) error {
	if c.List == nil {
		c.List = &ListOptions{}
	}
	c.List.PruneHeights = enabled
	return c.SetConfigField("list.prune_heights", enabled)
}

func (c *Config) SetGap(gap int) error {
	if c.List == nil {
		c.List = &ListOptions{}
	}
	c.List.Gap = max(0, gap)
	return c.SetConfigField("list.gap", c.List.Gap)
}

func (c *Config) SetConfigField(key string, value any) error {
	// read the data
	data, err := os.ReadFile(c.dataConfigDir)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	newValue, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("failed to set config field %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.dataConfigDir), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.dataConfigDir, []byte(newValue), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) setDefaults(workingDir string) {
	c.workingDir = workingDir
	if c.Options == nil {
		c.Options = &Options{}
	}
	if c.Options.DataDirectory == "" {
		c.Options.DataDirectory = filepath.Join(workingDir, defaultDataDirectory)
	} else if !filepath.IsAbs(c.Options.DataDirectory) {
		c.Options.DataDirectory = filepath.Join(workingDir, c.Options.DataDirectory)
	}
	if c.List == nil {
		c.List = &ListOptions{}
	}
	if c.List.AssumedItemHeight <= 0 {
		c.List.AssumedItemHeight = defaultAssumedItemHeight
	}
	if c.List.OffscreenToViewportRatio <= 0 {
		c.List.OffscreenToViewportRatio = defaultOffscreenToViewportRatio
	}
	if c.List.ScrollDebounceMS <= 0 {
		c.List.ScrollDebounceMS = defaultScrollDebounceMS
	}
	c.List.Gap = max(0, c.List.Gap)
	c.List.HeightCacheLimit = max(0, c.List.HeightCacheLimit)
}
