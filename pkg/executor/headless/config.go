package headless

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/quizpilot/pkg/browser"
)

// Config represents the configuration for one quiz run
type Config struct {
	// URL of the page hosting the quiz
	URL string `yaml:"url" json:"url"`

	// HTML is a saved page to run against instead of a browser (dry run).
	// Interactions are recorded, not performed, and submission is skipped.
	HTML string `yaml:"html" json:"html,omitempty"`

	// Browser session settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Timeout bounds the whole run
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// SkipSubmit stops after answering
	SkipSubmit bool `yaml:"skip_submit" json:"skip_submit"`

	// ActModel overrides the model used for page actions
	ActModel string `yaml:"act_model" json:"act_model,omitempty"`

	// Artifacts configuration
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig defines the browser session
type BrowserConfig struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent,omitempty"`
	ActionTimeout  time.Duration `yaml:"action_timeout" json:"action_timeout"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Individual format flags
	JSON     bool `yaml:"json" json:"json"`
	Markdown bool `yaml:"markdown" json:"markdown"`
}

// DryRun reports whether the run uses a saved page.
func (c *Config) DryRun() bool {
	return c.HTML != ""
}

// SessionOptions converts the browser settings.
func (c *Config) SessionOptions() browser.SessionOptions {
	opts := browser.SessionOptions{
		Headless:  c.Browser.Headless,
		Timeout:   c.Browser.ActionTimeout,
		UserAgent: c.Browser.UserAgent,
	}
	if c.Browser.ViewportWidth > 0 && c.Browser.ViewportHeight > 0 {
		opts.Viewport = &browser.Viewport{
			Width:  c.Browser.ViewportWidth,
			Height: c.Browser.ViewportHeight,
		}
	}
	return opts
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.URL == "" && c.HTML == "" {
		return errors.New("url is required")
	}

	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}

	if c.Browser.ActionTimeout < 0 {
		return errors.New("browser.action_timeout cannot be negative")
	}

	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return errors.New("browser viewport cannot be negative")
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return errors.New("artifacts.output_dir is required when artifacts are enabled")
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// DefaultConfig returns a default configuration suitable for most runs
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  browser.DefaultViewportWidth,
			ViewportHeight: browser.DefaultViewportHeight,
			ActionTimeout:  browser.DefaultTimeout,
		},
		Timeout: 10 * time.Minute,
		Artifacts: ArtifactConfig{
			Enabled:   true,
			OutputDir: ".quizpilot/artifacts",
			JSON:      true,
			Markdown:  true,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// LoadConfig reads a YAML run file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}
