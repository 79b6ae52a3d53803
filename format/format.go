// FILE: lixenwraith/cfgtree/format/format.go

// Package format selects a text format by name, file extension or content,
// and locates configuration files on disk.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/format/json"
	"github.com/lixenwraith/cfgtree/format/toml"
	"github.com/lixenwraith/cfgtree/format/yaml"
)

// ErrUnknownFormat reports a name, extension or content no format claims.
var ErrUnknownFormat = errors.New("unknown configuration format")

var byName = map[string]func() cfgtree.TextFormat{
	"json":  func() cfgtree.TextFormat { return json.New() },
	"jsonc": func() cfgtree.TextFormat { return json.NewJSONC() },
	"toml":  func() cfgtree.TextFormat { return toml.New() },
	"yaml":  func() cfgtree.TextFormat { return yaml.New() },
	"yml":   func() cfgtree.TextFormat { return yaml.New() },
}

// detectOrder tries strict formats first; YAML accepts most JSON.
var detectOrder = []string{"json", "yaml", "toml"}

// Names lists the accepted format names.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ByName returns the format registered as name, case-insensitively.
func ByName(name string) (cfgtree.TextFormat, error) {
	if f, ok := byName[strings.ToLower(name)]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
}

// ByExtension selects the format from the extension of path.
func ByExtension(path string) (cfgtree.TextFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return json.New(), nil
	case ".jsonc":
		return json.NewJSONC(), nil
	case ".toml", ".tml":
		return toml.New(), nil
	case ".yaml", ".yml":
		return yaml.New(), nil
	}
	return nil, fmt.Errorf("%w: extension %q of %s", ErrUnknownFormat, ext, path)
}

// Detect returns the first format that parses data: JSON, then YAML, then TOML.
func Detect(data []byte) (cfgtree.TextFormat, error) {
	for _, name := range detectOrder {
		f := byName[name]()
		if err := cfgtree.ParseBytes(f, data, cfgtree.NewTree(), cfgtree.ModeMerge); err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: content matches no known format", ErrUnknownFormat)
}

// ForFile selects by extension and falls back to content detection for
// unknown extensions such as .conf.
func ForFile(path string, data []byte) (cfgtree.TextFormat, error) {
	if f, err := ByExtension(path); err == nil {
		return f, nil
	}
	f, err := Detect(data)
	if err != nil {
		return nil, fmt.Errorf("cannot determine format of %s: %w", path, err)
	}
	return f, nil
}

// Extensions lists every extension a registered format claims.
func Extensions() []string {
	var exts []string
	for _, f := range []cfgtree.TextFormat{toml.New(), yaml.New(), json.New()} {
		exts = append(exts, f.Extensions()...)
	}
	return exts
}
