package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all feedviz configuration.
type Config struct {
	// Input spreadsheet settings
	Input InputConfig `yaml:"input"`

	// Output directory for generated cards
	Output OutputConfig `yaml:"output"`

	// Font resources (regular and bold weight)
	Fonts FontsConfig `yaml:"fonts"`

	// Card geometry and colors
	Card CardConfig `yaml:"card"`

	// Letter avatar
	Avatar AvatarConfig `yaml:"avatar"`

	// Column detection heuristics
	Classifier ClassifierConfig `yaml:"classifier"`

	// Cell text preparation
	Text TextConfig `yaml:"text"`

	// Batch execution
	Render RenderConfig `yaml:"render"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig configures how the feedback table is read.
type InputConfig struct {
	Sheet     string `yaml:"sheet"`     // xlsx sheet name; empty = first sheet
	Delimiter string `yaml:"delimiter"` // csv delimiter; empty = sniff
}

// OutputConfig configures where cards are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// FontsConfig names the two font resources. A value is either a TTF/OTF path
// or one of the embedded logical names (goregular, gobold, gomedium, gomono).
type FontsConfig struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

// ClassifierConfig tunes the column heuristics.
type ClassifierConfig struct {
	ShortTextThreshold float64 `yaml:"short_text_threshold"` // author columns average below this
	TextShare          float64 `yaml:"text_share"`           // share of text cells a column needs (strictly above)
}

// Shaping engines for Arabic letter joining.
const (
	ShaperFont  = "font"  // HarfBuzz with the regular font's rules, table fallback
	ShaperTable = "table" // built-in presentation-form table only
)

// TextConfig configures cell cleaning and shaping.
type TextConfig struct {
	StripHTML           bool   `yaml:"strip_html"`
	AnonymousAuthor     string `yaml:"anonymous_author"`
	FallbackAvatarGlyph string `yaml:"fallback_avatar_glyph"`
	Shaper              string `yaml:"shaper"`
}

// RenderConfig configures batch execution.
type RenderConfig struct {
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{},

		Output: OutputConfig{
			Dir: "output_cards",
		},

		Fonts: FontsConfig{
			Regular: "goregular",
			Bold:    "gobold",
		},

		Card: DefaultCardConfig(),

		Avatar: DefaultAvatarConfig(),

		Classifier: ClassifierConfig{
			ShortTextThreshold: 30,
			TextShare:          0.5,
		},

		Text: TextConfig{
			StripHTML:           true,
			AnonymousAuthor:     "Anonymous",
			FallbackAvatarGlyph: "?",
			Shaper:              ShaperFont,
		},

		Render: RenderConfig{
			Workers: 1,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("FEEDVIZ_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
	if f := os.Getenv("FEEDVIZ_FONT_REGULAR"); f != "" {
		c.Fonts.Regular = f
	}
	if f := os.Getenv("FEEDVIZ_FONT_BOLD"); f != "" {
		c.Fonts.Bold = f
	}
	if sheet := os.Getenv("FEEDVIZ_SHEET"); sheet != "" {
		c.Input.Sheet = sheet
	}
	if lvl := os.Getenv("FEEDVIZ_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = strings.ToLower(lvl)
	}
	if sh := os.Getenv("FEEDVIZ_SHAPER"); sh != "" {
		c.Text.Shaper = strings.ToLower(sh)
	}
	if w := os.Getenv("FEEDVIZ_WORKERS"); w != "" {
		if n, err := strconv.Atoi(w); err == nil {
			c.Render.Workers = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	if strings.TrimSpace(c.Fonts.Regular) == "" || strings.TrimSpace(c.Fonts.Bold) == "" {
		return fmt.Errorf("fonts.regular and fonts.bold must both be set")
	}
	if err := c.Card.Validate(); err != nil {
		return err
	}
	if err := c.Avatar.Validate(); err != nil {
		return err
	}
	if c.Classifier.ShortTextThreshold <= 0 {
		return fmt.Errorf("classifier.short_text_threshold must be > 0")
	}
	if c.Classifier.TextShare < 0 || c.Classifier.TextShare >= 1 {
		return fmt.Errorf("classifier.text_share must be in [0, 1)")
	}
	if strings.TrimSpace(c.Text.AnonymousAuthor) == "" {
		return fmt.Errorf("text.anonymous_author must not be empty")
	}
	if c.Text.Shaper != ShaperFont && c.Text.Shaper != ShaperTable {
		return fmt.Errorf("text.shaper must be %q or %q", ShaperFont, ShaperTable)
	}
	if c.Render.Workers < 1 {
		return fmt.Errorf("render.workers must be >= 1")
	}
	if len(c.Input.Delimiter) > 1 && c.Input.Delimiter != `\t` {
		return fmt.Errorf("input.delimiter must be a single character")
	}
	return c.Logging.Validate()
}

// Delimiter returns the configured csv delimiter, or 0 to sniff.
func (c *Config) Delimiter() rune {
	switch c.Input.Delimiter {
	case "":
		return 0
	case `\t`:
		return '\t'
	default:
		return []rune(c.Input.Delimiter)[0]
	}
}
