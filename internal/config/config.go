// Package config loads the configurator settings: a YAML file read with viper, overridden by
// CONFIGURATOR_* environment variables (optionally seeded from a .env file), and a small
// preferences file that persists the debug toggles across runs.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"configurator/internal/manifest"
	"configurator/internal/palette"
)

const (
	// DefaultPath is the config file looked up when none is given.
	DefaultPath = "configurator.yaml"
	// PrefsPath holds the debug toggles saved by console commands.
	PrefsPath = "config/prefs.yaml"
	// EnvFile is loaded into the environment before reading overrides.
	EnvFile   = ".env"
	EnvPrefix = "CONFIGURATOR"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Window struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// Camera holds the perspective and orbit settings.
type Camera struct {
	FOV         float32 `mapstructure:"fov"`
	Near        float32 `mapstructure:"near"`
	Far         float32 `mapstructure:"far"`
	Distance    float32 `mapstructure:"distance"`
	MinDistance float32 `mapstructure:"min_distance"`
	MaxDistance float32 `mapstructure:"max_distance"`
	Damping     float32 `mapstructure:"damping"`
}

type Snapshot struct {
	Dir   string `mapstructure:"dir"`
	Width int    `mapstructure:"width"`
}

// Debug holds overlay toggles. They are also what SavePrefs persists.
type Debug struct {
	ShowFPS      bool `mapstructure:"show_fps" yaml:"show_fps"`
	ShowMemAlloc bool `mapstructure:"show_mem_alloc" yaml:"show_mem_alloc"`
	ShowStats    bool `mapstructure:"show_stats" yaml:"show_stats"`
	GridVisible  bool `mapstructure:"grid_visible" yaml:"grid_visible"`
}

// Config is the full set of settings.
type Config struct {
	ModelPath       string            `mapstructure:"model_path"`
	FrontIdentifier string            `mapstructure:"front_identifier"`
	BackIdentifier  string            `mapstructure:"back_identifier"`
	DefaultColors   map[string]string `mapstructure:"default_colors"`
	Colors          []palette.Entry   `mapstructure:"colors"`
	Manifest        map[string]string `mapstructure:"manifest"`
	Watch           bool              `mapstructure:"watch"`
	Background      string            `mapstructure:"background"`
	Font            string            `mapstructure:"font"`
	Stylesheet      string            `mapstructure:"stylesheet"`
	Window          Window            `mapstructure:"window"`
	Camera          Camera            `mapstructure:"camera"`
	LogFile         string            `mapstructure:"log_file"`
	LogLevel        string            `mapstructure:"log_level"`
	Snapshot        Snapshot          `mapstructure:"snapshot"`
	Debug           Debug             `mapstructure:"debug"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model_path", "assets/models/mandala_01.glb")
	v.SetDefault("front_identifier", "Mandala_Schicht_A")
	v.SetDefault("back_identifier", "Mandala_Schicht_B")
	v.SetDefault("default_colors.front", "#F0D9E7")
	v.SetDefault("default_colors.back", "#333333")
	v.SetDefault("watch", false)
	v.SetDefault("background", "#F0F0F0")
	v.SetDefault("font", "")
	v.SetDefault("stylesheet", "")
	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 800)
	v.SetDefault("window.title", "Product Configurator")
	v.SetDefault("camera.fov", 75)
	v.SetDefault("camera.near", 0.1)
	v.SetDefault("camera.far", 1000)
	v.SetDefault("camera.distance", 2)
	v.SetDefault("camera.min_distance", 0.5)
	v.SetDefault("camera.max_distance", 5)
	v.SetDefault("camera.damping", 0.25)
	v.SetDefault("log_file", "logs/configurator.txt")
	v.SetDefault("log_level", "info")
	v.SetDefault("snapshot.dir", "snapshots")
	v.SetDefault("snapshot.width", 1024)
	v.SetDefault("debug.show_fps", false)
	v.SetDefault("debug.show_mem_alloc", false)
	v.SetDefault("debug.show_stats", false)
	v.SetDefault("debug.grid_visible", false)
}

// Default returns the built-in settings.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults only hold scalars and maps, which always decode.
	_ = v.Unmarshal(&c)
	c.Colors = palette.DefaultCatalog()
	return &c
}

// Options select the files Load reads. Empty fields fall back to the package defaults;
// a missing file of any kind is not an error.
type Options struct {
	Path      string
	PrefsPath string
	EnvFile   string
}

// Load reads and validates the configuration.
func Load(opts Options) (*Config, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.PrefsPath == "" {
		opts.PrefsPath = PrefsPath
	}
	if opts.EnvFile == "" {
		opts.EnvFile = EnvFile
	}
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(opts.Path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", opts.Path, err)
	}

	prefs, err := LoadPrefs(opts.PrefsPath)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		if err := v.MergeConfigMap(map[string]any{"debug": map[string]any{
			"show_fps":       prefs.ShowFPS,
			"show_mem_alloc": prefs.ShowMemAlloc,
			"show_stats":     prefs.ShowStats,
			"grid_visible":   prefs.GridVisible,
		}}); err != nil {
			return nil, fmt.Errorf("config: merge prefs: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if len(c.Colors) == 0 {
		c.Colors = palette.DefaultCatalog()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Validate checks the settings and returns an error wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ModelPath) == "" {
		errs = append(errs, errors.New("model_path is empty"))
	}
	if c.FrontIdentifier == "" && c.Manifest["front"] == "" {
		errs = append(errs, errors.New("front_identifier is empty and no manifest entry names front"))
	}
	if c.BackIdentifier == "" && c.Manifest["back"] == "" {
		errs = append(errs, errors.New("back_identifier is empty and no manifest entry names back"))
	}
	if err := palette.Validate(c.Colors); err != nil {
		errs = append(errs, err)
	}
	for part, value := range c.DefaultColors {
		if _, err := palette.ParseColor(value); err != nil {
			errs = append(errs, fmt.Errorf("default_colors.%s: %w", part, err))
		}
	}
	if _, err := palette.ParseColor(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	cam := c.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov %v out of (0, 180)", cam.FOV))
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		errs = append(errs, fmt.Errorf("camera near/far %v/%v", cam.Near, cam.Far))
	}
	if cam.MinDistance <= 0 || cam.MaxDistance < cam.MinDistance {
		errs = append(errs, fmt.Errorf("camera distance range [%v, %v]", cam.MinDistance, cam.MaxDistance))
	} else if cam.Distance < cam.MinDistance || cam.Distance > cam.MaxDistance {
		errs = append(errs, fmt.Errorf("camera.distance %v outside [%v, %v]", cam.Distance, cam.MinDistance, cam.MaxDistance))
	}
	if cam.Damping <= 0 || cam.Damping > 1 {
		errs = append(errs, fmt.Errorf("camera.damping %v out of (0, 1]", cam.Damping))
	}
	if c.Snapshot.Width <= 0 {
		errs = append(errs, fmt.Errorf("snapshot.width %d", c.Snapshot.Width))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level %q", c.LogLevel))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Level returns the parsed log level, Info when unparseable.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Identifiers returns the substring identifiers keyed by part name.
func (c *Config) Identifiers() map[string]string {
	return map[string]string{"front": c.FrontIdentifier, "back": c.BackIdentifier}
}

// PartManifest returns the manifest given inline in the config, or nil.
func (c *Config) PartManifest() *manifest.Manifest {
	if len(c.Manifest) == 0 {
		return nil
	}
	m := &manifest.Manifest{Parts: map[string]string{}}
	for k, v := range c.Manifest {
		m.Parts[k] = v
	}
	return m
}

// LoadPrefs reads saved debug toggles. A missing file returns (nil, nil).
func LoadPrefs(path string) (*Debug, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	var d Debug
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("config: prefs %s: %w", path, err)
	}
	return &d, nil
}

// SavePrefs writes the debug toggles, creating the directory if needed.
func SavePrefs(path string, d Debug) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
