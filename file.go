// FILE: lixenwraith/cfgtree/file.go
package cfgtree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/cfgtree/textio"
)

// DefaultMaxFileSize bounds what FileStore.Load reads.
const DefaultMaxFileSize = 10 << 20

// FileStore loads and saves one config file in one format.
type FileStore struct {
	Path   string
	Format TextFormat
	// Mode combines loaded entries with the content of the destination.
	Mode ParsingMode
	// MaxFileSize rejects larger files; 0 means DefaultMaxFileSize.
	MaxFileSize int64
	// Logger receives debug events for loads and saves; nil disables logging.
	Logger *zerolog.Logger
}

// NewFileStore creates a store with replace mode and default limits.
func NewFileStore(path string, f TextFormat) *FileStore {
	return &FileStore{Path: path, Format: f, Mode: ModeReplace}
}

func (s *FileStore) logger() *zerolog.Logger {
	if s.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return s.Logger
}

// Load parses the file into dst. A missing file yields an error wrapping
// ErrConfigNotFound; a parse error carries the file name and position.
func (s *FileStore) Load(dst Config) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, s.Path)
		}
		return fmt.Errorf("failed to stat config file '%s': %w", s.Path, err)
	}

	limit := s.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	if info.Size() > limit {
		return fmt.Errorf("config file '%s' exceeds maximum size %d bytes", s.Path, limit)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", s.Path, err)
	}

	if err := ParseBytes(s.Format, data, dst, s.Mode); err != nil {
		var perr *textio.ParseError
		if errors.As(err, &perr) && perr.Source == "" {
			perr.Source = s.Path
		}
		return fmt.Errorf("failed to parse %s config: %w", s.Format.Format().Name, err)
	}

	s.logger().Debug().
		Str("path", s.Path).
		Str("format", s.Format.Format().Name).
		Str("mode", s.Mode.String()).
		Int("entries", dst.Size()).
		Msg("config loaded")
	return nil
}

// Save writes src to the file atomically.
func (s *FileStore) Save(src Config) error {
	data, err := WriteBytes(s.Format, src)
	if err != nil {
		return fmt.Errorf("failed to marshal config data to %s: %w", s.Format.Format().Name, err)
	}
	if err := atomicWriteFile(s.Path, data); err != nil {
		return err
	}
	s.logger().Debug().
		Str("path", s.Path).
		Int("bytes", len(data)).
		Msg("config saved")
	return nil
}

// atomicWriteFile writes to a temporary file in the target directory and
// renames it over path once synced.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // No-op after a successful rename

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
