// FILE: lixenwraith/cfgtree/cmd/cfgtree/load.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/format"
	"github.com/lixenwraith/cfgtree/format/cbor"
	"github.com/lixenwraith/cfgtree/format/json"
)

// codec is either a text format or, when text is nil, CBOR.
type codec struct {
	text cfgtree.TextFormat
}

func (c codec) name() string {
	if c.text == nil {
		return cbor.Info.Name
	}
	return c.text.Format().Name
}

// textOrJSON is the format used to print a document on a terminal.
func (c codec) textOrJSON() cfgtree.TextFormat {
	if c.text == nil {
		return json.New()
	}
	return c.text
}

func isCBOR(name string) bool {
	return strings.EqualFold(name, "cbor") || strings.EqualFold(filepath.Ext(name), ".cbor")
}

// codecFor resolves the codec of path: an explicit name first, then the
// extension, then the content.
func codecFor(name, path string) (codec, error) {
	if name != "" {
		if isCBOR(name) {
			return codec{}, nil
		}
		f, err := format.ByName(name)
		return codec{text: f}, err
	}
	if isCBOR(path) {
		return codec{}, nil
	}
	if f, err := format.ByExtension(path); err == nil {
		return codec{text: f}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return codec{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	f, err := format.ForFile(path, data)
	return codec{text: f}, err
}

// load reads path with the --format codec, or the detected one. Environment
// and flag overrides are applied when overlay is set.
func (a *app) load(path string, overlay bool) (*cfgtree.Stamped, codec, error) {
	return a.loadAs(path, a.formatName, overlay)
}

func (a *app) loadAs(path, formatName string, overlay bool) (*cfgtree.Stamped, codec, error) {
	cd, err := codecFor(formatName, path)
	if err != nil {
		return nil, cd, err
	}

	var c *cfgtree.Stamped
	if cd.text == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, cd, fmt.Errorf("failed to read %s: %w", path, err)
		}
		c = cfgtree.NewStampedWithFormat(cbor.Info)
		if err := cbor.Unmarshal(data, c, cfgtree.ModeReplace); err != nil {
			return nil, cd, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		c = cfgtree.NewStampedWithFormat(cd.text.Format())
		store := cfgtree.NewFileStore(path, cd.text)
		store.Logger = &a.logger
		if err := store.Load(c); err != nil {
			return nil, cd, err
		}
	}

	if overlay {
		if err := a.applyOverlays(c); err != nil {
			return nil, cd, err
		}
	}
	a.logger.Debug().
		Str("path", path).
		Str("format", cd.name()).
		Uint64("stamp", c.Stamp()).
		Msg("document ready")
	return c, cd, nil
}

func (a *app) applyOverlays(c cfgtree.Config) error {
	if a.envPrefix != "" {
		changed, err := cfgtree.ApplyEnv(c, cfgtree.DefaultEnvTransform(a.envPrefix))
		if err != nil {
			return fmt.Errorf("failed to apply environment overrides: %w", err)
		}
		for _, p := range changed {
			a.logger.Debug().Str("path", p).Msg("overridden from environment")
		}
	}
	if len(a.overrides) > 0 {
		args := make([]string, len(a.overrides))
		for i, o := range a.overrides {
			args[i] = "--" + o
		}
		if err := cfgtree.ApplyArgs(c, args, cfgtree.ModeMerge); err != nil {
			return fmt.Errorf("failed to apply overrides: %w", err)
		}
	}
	return nil
}

// save writes c to path with cd; "-" writes to standard output.
func (a *app) save(c cfgtree.Config, cd codec, path string) error {
	if cd.text == nil {
		data, err := cbor.Marshal(c)
		if err != nil {
			return err
		}
		if path == "-" {
			_, err = a.out.Write(data)
			return err
		}
		return os.WriteFile(path, data, 0644)
	}

	if path == "-" {
		data, err := cfgtree.WriteBytes(cd.text, c)
		if err != nil {
			return err
		}
		_, err = a.out.Write(data)
		return err
	}
	store := cfgtree.NewFileStore(path, cd.text)
	store.Logger = &a.logger
	return store.Save(c)
}
