package engine

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/math"
)

const (
	minRelativeSize = 0.01
	maxRelativeSize = 1.0
)

// RelativeSize scales the window size into the surface size.
type RelativeSize struct {
	W float64 `toml:"w"`
	H float64 `toml:"h"`
}

type CanvasConfig struct {
	RelativeSize RelativeSize `toml:"relative_size"`
}

type GraphicsConfig struct {
	// Simulation steps per second, also the catch-up budget per callback.
	MaxFrameRate int          `toml:"max_frame_rate"`
	Canvas       CanvasConfig `toml:"canvas"`
	// Optional overlay font: a .fnt bitmap font or a .fontcfg system font.
	Font string `toml:"font,omitempty"`
}

type TelemetryConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Starts in the debug initial state of the machine definition.
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"log_level"`
	// Optional machine definition file replacing the built-in one.
	Definition string `toml:"definition,omitempty"`

	Graphics  GraphicsConfig  `toml:"graphics"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "Tristris",
		Version:     "0.0.0",
		LogLevel:    "info",
		Graphics: GraphicsConfig{
			MaxFrameRate: core.DefaultFrameRate,
			Canvas: CanvasConfig{
				RelativeSize: RelativeSize{W: 1, H: 1},
			},
		},
		Telemetry: TelemetryConfig{
			Addr: "127.0.0.1:7070",
		},
	}
}

// ParseApplicationConfig decodes data over the defaults and validates the
// result. Unknown keys are rejected.
func ParseApplicationConfig(data []byte) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseApplicationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects unusable values and normalizes the rest: a zero frame
// rate becomes the default, relative sizes are clamped to (0.01, 1] and an
// unset one means the full window.
func (c *ApplicationConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is empty", core.ErrInvalidConfig)
	}
	if err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}

	g := &c.Graphics
	if g.MaxFrameRate < 0 {
		return fmt.Errorf("%w: max_frame_rate %d is negative", core.ErrInvalidConfig, g.MaxFrameRate)
	}
	if g.MaxFrameRate == 0 {
		g.MaxFrameRate = core.DefaultFrameRate
	}

	size := &g.Canvas.RelativeSize
	if size.W < 0 || size.H < 0 {
		return fmt.Errorf("%w: relative_size {%g, %g} is negative", core.ErrInvalidConfig, size.W, size.H)
	}
	if size.W == 0 {
		size.W = maxRelativeSize
	}
	if size.H == 0 {
		size.H = maxRelativeSize
	}
	size.W = math.Clamp(size.W, minRelativeSize, maxRelativeSize)
	size.H = math.Clamp(size.H, minRelativeSize, maxRelativeSize)

	if c.Telemetry.Enabled && c.Telemetry.Addr == "" {
		return fmt.Errorf("%w: telemetry enabled without an address", core.ErrInvalidConfig)
	}
	return nil
}
