// FILE: lixenwraith/cfgtree/builder.go
package cfgtree

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// ValidatorFunc checks a fully built config and returns an error if it is unusable.
type ValidatorFunc func(c Config) error

// Builder layers defaults, a file, environment variables and command-line
// arguments into a Stamped config, in increasing precedence. Layers are
// staged in an accumulator and published in one commit, so readers of the
// result never observe a partial build.
type Builder struct {
	defaults     any
	prefix       string
	tagName      string
	file         string
	format       TextFormat
	envTransform EnvTransformFunc
	args         []string
	spec         *Spec
	listener     CorrectionListener
	logger       *zerolog.Logger
	validators   []ValidatorFunc
	err          error
}

// NewBuilder creates a builder reading the process arguments.
func NewBuilder() *Builder {
	return &Builder{
		args:    os.Args[1:],
		tagName: DefaultTagName,
	}
}

// WithDefaults sets the lowest layer: a Config, a map[string]any, or a struct
// whose fields are named by the tag set with WithTagName.
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithPrefix places the defaults under prefix; BuildAndScan decodes from there.
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithTagName sets the struct tag used for struct defaults and scanning.
func (b *Builder) WithTagName(tagName string) *Builder {
	b.tagName = tagName
	return b
}

// WithFile sets the configuration file and its format. A missing file is not fatal.
func (b *Builder) WithFile(path string, f TextFormat) *Builder {
	if path != "" && f == nil {
		b.err = fmt.Errorf("no format given for config file '%s'", path)
	}
	b.file = path
	b.format = f
	return b
}

// WithEnvPrefix overrides existing leaves from PREFIX_SECTION_KEY variables.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envTransform = DefaultEnvTransform(prefix)
	return b
}

// WithEnvTransform sets a custom path to variable name mapping.
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.envTransform = fn
	return b
}

// WithArgs sets the command-line arguments; nil disables the layer.
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithSpec corrects the layered result against spec before it is published.
// listener may be nil.
func (b *Builder) WithSpec(spec *Spec, listener CorrectionListener) *Builder {
	b.spec = spec
	b.listener = listener
	return b
}

// WithLogger sets the logger for file loading and build events.
func (b *Builder) WithLogger(logger *zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithValidator adds a validation function that runs at the end of the build process.
// Validators run in the order they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the config. When the file does not exist the config is
// still built from the other layers and returned together with an error
// wrapping ErrConfigNotFound.
func (b *Builder) Build() (*Stamped, error) {
	if b.err != nil {
		return nil, b.err
	}

	f := InMemory
	if b.format != nil {
		f = b.format.Format()
	}
	cfg := NewStampedWithFormat(f)
	acc := cfg.NewAccumulator()

	if b.defaults != nil {
		if err := b.applyDefaults(acc); err != nil {
			return nil, fmt.Errorf("failed to apply defaults: %w", err)
		}
	}

	var loadErr error
	if b.file != "" {
		fileCfg := NewTreeWithFormat(f)
		store := &FileStore{Path: b.file, Format: b.format, Mode: ModeReplace, Logger: b.logger}
		loadErr = store.Load(fileCfg)
		if loadErr != nil && !errors.Is(loadErr, ErrConfigNotFound) {
			// Return on fatal load errors. ErrConfigNotFound is not fatal.
			return nil, loadErr
		}
		if err := mergeInto(acc, fileCfg, nil); err != nil {
			return nil, fmt.Errorf("failed to merge config file '%s': %w", b.file, err)
		}
	}

	if b.envTransform != nil {
		changed, err := ApplyEnv(acc, b.envTransform)
		if err != nil {
			return nil, err
		}
		for _, p := range changed {
			b.log().Debug().Str("path", p).Msg("overridden from environment")
		}
	}

	if len(b.args) > 0 {
		if err := ApplyArgs(acc, b.args, ModeMerge); err != nil {
			return nil, err
		}
	}

	if b.spec != nil {
		if n := b.spec.CorrectWithListener(acc, b.listener); n > 0 {
			b.log().Debug().Int("corrections", n).Msg("config corrected")
		}
	}

	cfg.ReplaceContentBy(acc)

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrConfigNotFound or nil
	return cfg, loadErr
}

func (b *Builder) applyDefaults(acc *Accumulator) error {
	target := Config(acc)
	if b.prefix != "" {
		sub := acc.CreateSubConfig()
		if _, err := acc.Set(ParsePath(b.prefix), Sub(sub)); err != nil {
			return err
		}
		v, _ := acc.Get(ParsePath(b.prefix))
		target, _ = v.AsConfig()
	}

	switch d := b.defaults.(type) {
	case Config:
		return Copy(target, d)
	case map[string]any:
		return FromMap(d, target, ModeMerge)
	default:
		m, err := StructToMap(d, b.tagName)
		if err != nil {
			return err
		}
		return FromMap(m, target, ModeMerge)
	}
}

// mergeInto lays src over dst. Sub-configs present on both sides are merged
// key by key; any other value from src replaces what dst holds.
func mergeInto(dst, src Config, prefix Path) error {
	for _, e := range Entries(src) {
		p := prefix.Child(e.Key)
		if sub, ok := e.Value.AsConfig(); ok {
			if cur, exists := dst.Get(p); exists && cur.IsConfig() {
				if err := mergeInto(dst, sub, p); err != nil {
					return err
				}
				if e.HasComment {
					dst.SetComment(p, e.Comment)
				}
				continue
			}
		}
		if _, err := dst.Set(p, e.Value); err != nil {
			return err
		}
		if e.HasComment {
			if _, err := dst.SetComment(p, e.Comment); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) log() *zerolog.Logger {
	if b.logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return b.logger
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Stamped {
	cfg, err := b.Build()
	if err != nil {
		// ErrConfigNotFound is not fatal; the application can proceed with defaults/env vars.
		if !errors.Is(err, ErrConfigNotFound) {
			panic(fmt.Sprintf("config build failed: %v", err))
		}
	}
	return cfg
}

// BuildAndScan builds and decodes the subtree at the builder prefix into target.
func (b *Builder) BuildAndScan(target any) error {
	cfg, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return err
	}

	if scanErr := ScanWithOptions(cfg, b.prefix, target, ScanOptions{TagName: b.tagName}); scanErr != nil {
		return fmt.Errorf("failed to scan final config into target: %w", scanErr)
	}

	// ErrConfigNotFound or nil
	return err
}
