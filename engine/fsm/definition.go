package fsm

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Definition is the declarative part of a machine: where it starts and how
// events move it. States themselves are registered in code.
type Definition struct {
	Initial      string       `toml:"initial" yaml:"initial"`
	DebugInitial string       `toml:"debug_initial,omitempty" yaml:"debug_initial,omitempty"`
	Transitions  []Transition `toml:"transitions" yaml:"transitions"`
}

// InitialState picks DebugInitial when debug is set and one is declared.
func (d *Definition) InitialState(debug bool) string {
	if debug && d.DebugInitial != "" {
		return d.DebugInitial
	}
	return d.Initial
}

// ParseDefinition decodes a definition. Unknown fields are rejected so that
// typos in a transition table fail at startup.
func ParseDefinition(data []byte, format Format) (*Definition, error) {
	def := &Definition{}
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(def); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(def); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported definition format %q", ErrInvalidConfiguration, format)
	}
	if def.Initial == "" {
		return nil, fmt.Errorf("%w: definition has no initial state", ErrInvalidConfiguration)
	}
	return def, nil
}

// LoadDefinition reads a .toml, .yaml or .yml definition file.
func LoadDefinition(path string) (*Definition, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = FormatTOML
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("%w: cannot infer definition format of %q", ErrInvalidConfiguration, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDefinition(data, format)
}

// Build constructs a machine from the definition and the registered states.
func Build[S any](def *Definition, debug bool, states map[string]Factory[S], opts ...Option) (*Machine[S], error) {
	if def == nil {
		return nil, fmt.Errorf("%w: no definition", ErrInvalidConfiguration)
	}
	if def.DebugInitial != "" {
		if _, ok := states[def.DebugInitial]; !ok {
			return nil, fmt.Errorf("%w: debug initial state %q is not declared", ErrInvalidConfiguration, def.DebugInitial)
		}
	}
	return New(def.InitialState(debug), states, def.Transitions, opts...)
}
