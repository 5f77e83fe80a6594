// Package config loads the settings of the glbview and glbcheck tools from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a config file whose extension is not .toml, .yaml or .yml.
var ErrUnknownFormat = errors.New("unknown config format")

// Camera holds the initial camera placement and projection.
type Camera struct {
	Eye    [3]float32 `toml:"eye" yaml:"eye"`
	Target [3]float32 `toml:"target" yaml:"target"`
	Up     [3]float32 `toml:"up" yaml:"up"`

	// FovDegrees is the vertical field of view.
	FovDegrees float32 `toml:"fov_degrees" yaml:"fov_degrees"`
	Near       float32 `toml:"near" yaml:"near"`
	Far        float32 `toml:"far" yaml:"far"`
}

// Window holds the viewer window settings.
type Window struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// Render holds surface and draw settings of the viewer.
type Render struct {
	// PresentMode is one of fifo, mailbox or immediate.
	PresentMode string `toml:"present_mode" yaml:"present_mode"`

	ClearColor [4]float64 `toml:"clear_color" yaml:"clear_color"`

	// ComposeNodeTransforms applies each node's translation, rotation and scale to its model matrix.
	ComposeNodeTransforms bool `toml:"compose_node_transforms" yaml:"compose_node_transforms"`

	// ShareTextures uploads each texture once when several primitives reference it.
	ShareTextures bool `toml:"share_textures" yaml:"share_textures"`
}

// Viewer is the configuration of glbview.
type Viewer struct {
	Window Window `toml:"window" yaml:"window"`
	Camera Camera `toml:"camera" yaml:"camera"`
	Render Render `toml:"render" yaml:"render"`

	// Watch reloads the asset when its file changes.
	Watch bool `toml:"watch" yaml:"watch"`

	// Profile logs frame statistics every ProfileIntervalSeconds.
	Profile                bool    `toml:"profile" yaml:"profile"`
	ProfileIntervalSeconds float64 `toml:"profile_interval_seconds" yaml:"profile_interval_seconds"`

	// Scene selects a scene instead of the document's default; negative means default.
	Scene int `toml:"scene" yaml:"scene"`
}

// Check is the configuration of glbcheck.
type Check struct {
	// Workers is the number of files validated concurrently.
	Workers int `toml:"workers" yaml:"workers"`

	// Extensions lists the file extensions picked up when a directory is given.
	Extensions []string `toml:"extensions" yaml:"extensions"`

	// Recursive walks subdirectories.
	Recursive bool `toml:"recursive" yaml:"recursive"`

	// MaxBytes caps the size of a single file.
	MaxBytes int64 `toml:"max_bytes" yaml:"max_bytes"`

	// StrictMIME fails images whose declared MIME type disagrees with their bytes.
	StrictMIME bool `toml:"strict_mime" yaml:"strict_mime"`

	// Color enables coloured terminal output when the terminal supports it.
	Color bool `toml:"color" yaml:"color"`
}

// DefaultViewer returns the viewer defaults.
//
// Returns:
//   - Viewer: the defaults
func DefaultViewer() Viewer {
	return Viewer{
		Window: Window{Title: "glbview", Width: 1280, Height: 720},
		Camera: Camera{
			Eye:        [3]float32{-2, 5, 10},
			Target:     [3]float32{0, 0, 0},
			Up:         [3]float32{0, 1, 0},
			FovDegrees: 60,
			Near:       0.1,
			Far:        100,
		},
		Render: Render{
			PresentMode: "fifo",
			ClearColor:  [4]float64{0.1, 0.1, 0.12, 1},
		},
		ProfileIntervalSeconds: 1,
		Scene:                  -1,
	}
}

// DefaultCheck returns the checker defaults.
//
// Returns:
//   - Check: the defaults
func DefaultCheck() Check {
	return Check{
		Workers:    max(1, runtime.NumCPU()-1),
		Extensions: []string{".glb"},
		Recursive:  true,
		MaxBytes:   512 << 20,
		Color:      true,
	}
}

// LoadViewer reads a viewer config over the defaults. Fields absent from the file keep their default.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - Viewer: the merged config
//   - error: error if the file cannot be read, decoded or validated
func LoadViewer(path string) (Viewer, error) {
	cfg := DefaultViewer()
	if err := load(path, &cfg); err != nil {
		return Viewer{}, err
	}
	return cfg, cfg.Validate()
}

// LoadCheck reads a checker config over the defaults.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - Check: the merged config
//   - error: error if the file cannot be read, decoded or validated
func LoadCheck(path string) (Check, error) {
	cfg := DefaultCheck()
	if err := load(path, &cfg); err != nil {
		return Check{}, err
	}
	return cfg, cfg.Validate()
}

// load decodes the file into v by extension.
func load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
//
// Returns:
//   - error: the first invalid field, or nil
func (v Viewer) Validate() error {
	switch {
	case v.Window.Width <= 0 || v.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", v.Window.Width, v.Window.Height)
	case v.Camera.FovDegrees <= 0 || v.Camera.FovDegrees >= 180:
		return fmt.Errorf("camera fov %.1f must be in (0, 180)", v.Camera.FovDegrees)
	case v.Camera.Near <= 0 || v.Camera.Far <= v.Camera.Near:
		return fmt.Errorf("camera clip planes near=%g far=%g must satisfy 0 < near < far", v.Camera.Near, v.Camera.Far)
	case v.ProfileIntervalSeconds <= 0:
		return fmt.Errorf("profile interval %g must be positive", v.ProfileIntervalSeconds)
	}
	switch v.Render.PresentMode {
	case "fifo", "mailbox", "immediate":
	default:
		return fmt.Errorf("present mode %q must be fifo, mailbox or immediate", v.Render.PresentMode)
	}
	return nil
}

// Validate checks value ranges.
//
// Returns:
//   - error: the first invalid field, or nil
func (c Check) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("workers %d must be at least 1", c.Workers)
	case len(c.Extensions) == 0:
		return errors.New("extensions must not be empty")
	case c.MaxBytes <= 0:
		return fmt.Errorf("max bytes %d must be positive", c.MaxBytes)
	}
	return nil
}
