// Package config loads dotring's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/dotring/config.toml, falling back to
// ~/.config/dotring/config.toml. A missing file is not an error: every field
// has a default, and command-line flags override whatever the file sets.
//
//	[widget]
//	variant = "toggle"
//	palette = ["#FF6384", "#36A2EB"]
//
//	[server]
//	addr = ":8080"
//
//	[render]
//	formats = ["svg", "png"]
//	scale = 2.0
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/widget"
)

// AppName names the configuration directory.
const AppName = "dotring"

// FileName is the configuration file inside the directory.
const FileName = "config.toml"

// Config is the full configuration file.
type Config struct {
	Widget widget.Options `toml:"widget"`
	Server Server         `toml:"server"`
	Render Render         `toml:"render"`
}

// Server configures `dotring serve`.
type Server struct {
	Addr            string        `toml:"addr"`
	BasePath        string        `toml:"base_path"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Render configures `dotring render`.
type Render struct {
	Formats []string `toml:"formats"`
	Scale   float64  `toml:"scale"`
	Output  string   `toml:"output"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Widget: widget.Options{}.WithDefaults(),
		Server: Server{
			Addr:            "127.0.0.1:8080",
			BasePath:        "/api/widgets",
			ShutdownTimeout: 5 * time.Second,
		},
		Render: Render{
			Formats: []string{"svg"},
			Scale:   2,
			Output:  "dotring",
		},
	}
}

// Dir returns the configuration directory using the XDG convention.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "resolve home directory")
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the file at path, or the default path when path is empty.
// Fields the file leaves unset keep their defaults.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a configuration document over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse")
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fill applies defaults to unset fields. Widget defaults depend on the
// variant the file picks, so they are resolved after decoding.
func (c *Config) fill() {
	def := Default()
	c.Widget = c.Widget.WithDefaults()
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = def.Server.BasePath
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if len(c.Render.Formats) == 0 {
		c.Render.Formats = def.Render.Formats
	}
	if c.Render.Scale == 0 {
		c.Render.Scale = def.Render.Scale
	}
	if c.Render.Output == "" {
		c.Render.Output = def.Render.Output
	}
}

// Validate checks widget options and render settings.
func (c Config) Validate() error {
	if err := c.Widget.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "widget")
	}
	if err := errors.ValidateDimension("render.scale", c.Render.Scale); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render")
	}
	for _, f := range c.Render.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidConfig, "render: unknown format %q", f)
		}
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server: shutdown_timeout must not be negative")
	}
	return nil
}

// ValidFormats lists the output formats of `dotring render`.
var ValidFormats = map[string]bool{
	"svg":  true,
	"png":  true,
	"json": true,
	"html": true,
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
