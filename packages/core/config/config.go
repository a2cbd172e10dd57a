package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Options is one layer of reporter configuration. A nil field means the
// layer does not supply that option.
type Options struct {
	ShowExceptions      *bool   `json:"showExceptions,omitempty" yaml:"showExceptions,omitempty"`
	ShowStackTraces     *bool   `json:"showStackTraces,omitempty" yaml:"showStackTraces,omitempty"`
	ShowFullStackTraces *bool   `json:"showFullStackTraces,omitempty" yaml:"showFullStackTraces,omitempty"`
	MaxStackTraceDepth  *int    `json:"maxStackTraceDepth,omitempty" yaml:"maxStackTraceDepth,omitempty"`
	ShowTimings         *bool   `json:"showTimings,omitempty" yaml:"showTimings,omitempty"`
	UseColors           *bool   `json:"useColors,omitempty" yaml:"useColors,omitempty"`
	PassSymbol          *string `json:"passSymbol,omitempty" yaml:"passSymbol,omitempty"`
	FailSymbol          *string `json:"failSymbol,omitempty" yaml:"failSymbol,omitempty"`
	SkipSymbol          *string `json:"skipSymbol,omitempty" yaml:"skipSymbol,omitempty"`
	InterruptedSymbol   *string `json:"interruptedSymbol,omitempty" yaml:"interruptedSymbol,omitempty"`
	ShowModuleNames     *bool   `json:"showModuleNames,omitempty" yaml:"showModuleNames,omitempty"`
	ShowMethodNames     *bool   `json:"showMethodNames,omitempty" yaml:"showMethodNames,omitempty"`
	TerminalWidth       *int    `json:"terminalWidth,omitempty" yaml:"terminalWidth,omitempty"`
}

// OptionNames lists every recognised option name in declaration order
var OptionNames = []string{
	"showExceptions",
	"showStackTraces",
	"showFullStackTraces",
	"maxStackTraceDepth",
	"showTimings",
	"useColors",
	"passSymbol",
	"failSymbol",
	"skipSymbol",
	"interruptedSymbol",
	"showModuleNames",
	"showMethodNames",
	"terminalWidth",
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".dromus.yaml",
	"dromus.yaml",
	".dromus.json",
	"dromus.json",
}

// FromMap decodes a flat option-name to value mapping. String values are
// converted, so environment-style input such as "true" or "5" is accepted.
// Unknown option names are an error.
func FromMap(m map[string]any) (*Options, error) {
	opts := &Options{}
	if len(m) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           opts,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

// EnvPrefix prefixes every environment variable read by FromEnv
const EnvPrefix = "DROMUS_"

// EnvKey returns the environment variable for an option name,
// e.g. maxStackTraceDepth -> DROMUS_MAX_STACK_TRACE_DEPTH
func EnvKey(option string) string {
	var b strings.Builder
	b.WriteString(EnvPrefix)
	for i, r := range option {
		if r >= 'A' && r <= 'Z' && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// FromEnv builds an options layer from environment variables. lookup is
// usually os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (*Options, error) {
	m := make(map[string]any)
	for _, name := range OptionNames {
		if val, ok := lookup(EnvKey(name)); ok && val != "" {
			m[name] = val
		}
	}
	return FromMap(m)
}

// LoadConfig loads configuration from the specified path or searches the
// current directory. A missing config file yields an empty layer.
func LoadConfig(path string) (*Options, error) {
	if path != "" {
		return LoadFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Options, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return LoadFile(configPath)
		}
	}
	return &Options{}, nil
}

// LoadFile reads a YAML or JSON config file, validates it against the
// option schema and decodes it
func LoadFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	opts, err := FromMap(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// SaveConfig writes the options as YAML
func (o *Options) SaveConfig(path string) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Merge combines layers in order, later layers taking precedence. Each
// option is replaced as a whole, never partially merged.
func Merge(layers ...*Options) *Options {
	result := &Options{}
	for _, other := range layers {
		if other == nil {
			continue
		}
		if other.ShowExceptions != nil {
			result.ShowExceptions = other.ShowExceptions
		}
		if other.ShowStackTraces != nil {
			result.ShowStackTraces = other.ShowStackTraces
		}
		if other.ShowFullStackTraces != nil {
			result.ShowFullStackTraces = other.ShowFullStackTraces
		}
		if other.MaxStackTraceDepth != nil {
			result.MaxStackTraceDepth = other.MaxStackTraceDepth
		}
		if other.ShowTimings != nil {
			result.ShowTimings = other.ShowTimings
		}
		if other.UseColors != nil {
			result.UseColors = other.UseColors
		}
		if other.PassSymbol != nil {
			result.PassSymbol = other.PassSymbol
		}
		if other.FailSymbol != nil {
			result.FailSymbol = other.FailSymbol
		}
		if other.SkipSymbol != nil {
			result.SkipSymbol = other.SkipSymbol
		}
		if other.InterruptedSymbol != nil {
			result.InterruptedSymbol = other.InterruptedSymbol
		}
		if other.ShowModuleNames != nil {
			result.ShowModuleNames = other.ShowModuleNames
		}
		if other.ShowMethodNames != nil {
			result.ShowMethodNames = other.ShowMethodNames
		}
		if other.TerminalWidth != nil {
			result.TerminalWidth = other.TerminalWidth
		}
	}
	return result
}

// Validate resets out-of-range values and returns a warning for each
func (o *Options) Validate() []string {
	var warnings []string

	if o.MaxStackTraceDepth != nil && *o.MaxStackTraceDepth < 0 {
		warnings = append(warnings, fmt.Sprintf("maxStackTraceDepth %d is negative, using 0", *o.MaxStackTraceDepth))
		o.MaxStackTraceDepth = IntPtr(0)
	}
	if o.TerminalWidth != nil && *o.TerminalWidth < 0 {
		warnings = append(warnings, fmt.Sprintf("terminalWidth %d is negative, detecting instead", *o.TerminalWidth))
		o.TerminalWidth = IntPtr(0)
	}

	for _, sym := range []struct {
		name string
		val  **string
	}{
		{"passSymbol", &o.PassSymbol},
		{"failSymbol", &o.FailSymbol},
		{"skipSymbol", &o.SkipSymbol},
		{"interruptedSymbol", &o.InterruptedSymbol},
	} {
		if *sym.val != nil && strings.TrimSpace(**sym.val) == "" {
			warnings = append(warnings, sym.name+" is empty, using default")
			*sym.val = nil
		}
	}

	return warnings
}

// Resolve merges the compiled-in defaults with the given layers, validates
// the result and returns the immutable profile. Validation warnings go to
// the default slog logger; use ResolveWithWarnings to handle them instead.
func Resolve(layers ...*Options) Profile {
	p, warnings := ResolveWithWarnings(layers...)
	for _, w := range warnings {
		slog.Warn("config", "warning", w)
	}
	return p
}

// ResolveWithWarnings is Resolve, returning the corrections Validate made
// instead of logging them
func ResolveWithWarnings(layers ...*Options) (Profile, []string) {
	merged := Merge(append([]*Options{Defaults()}, layers...)...)
	warnings := merged.Validate()
	return merged.Profile(), warnings
}
