package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	errorsFile = "errors.jsonl"
	metaFile   = "meta.json"
)

var _ Sink = (*FileStore)(nil)

// FileStore keeps build results on disk, one directory per build:
// errors.jsonl holds one BuildError per line and meta.json maps
// "<plugin>-<key>" to the stored value.
type FileStore struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// BuildDir returns the directory holding the results of a build.
func (s *FileStore) BuildDir(buildID string) string {
	return filepath.Join(s.dir, buildID)
}

// WriteError implements ErrorSink.
func (s *FileStore) WriteError(e BuildError) error {
	if e.BuildID == "" {
		return errors.New("build error has no build id")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode build error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.BuildDir(e.BuildID), 0755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.BuildDir(e.BuildID), errorsFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open errors file: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("write build error: %w", err)
	}
	return f.Close()
}

// WriteMeta implements MetaSink. An existing value under the same key is
// replaced.
func (s *FileStore) WriteMeta(buildID, plugin, key string, value any) error {
	if buildID == "" {
		return errors.New("metadata has no build id")
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", MetaKey(plugin, key), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMeta(buildID)
	if err != nil {
		return err
	}
	meta[MetaKey(plugin, key)] = encoded

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.MkdirAll(s.BuildDir(buildID), 0755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}

	path := filepath.Join(s.BuildDir(buildID), metaFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return os.Rename(tmp, path)
}

// Errors returns every build error recorded for a build, oldest first.
func (s *FileStore) Errors(buildID string) ([]BuildError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.BuildDir(buildID), errorsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open errors file: %w", err)
	}
	defer f.Close()

	var out []BuildError
	dec := json.NewDecoder(f)
	for dec.More() {
		var e BuildError
		if err := dec.Decode(&e); err != nil {
			return out, fmt.Errorf("decode errors file: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Meta decodes the value stored under plugin and key into v. It reports
// false when no such value exists.
func (s *FileStore) Meta(buildID, plugin, key string, v any) (bool, error) {
	s.mu.Lock()
	meta, err := s.readMeta(buildID)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	raw, ok := meta[MetaKey(plugin, key)]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode metadata %s: %w", MetaKey(plugin, key), err)
	}
	return true, nil
}

func (s *FileStore) readMeta(buildID string) (map[string]json.RawMessage, error) {
	meta := map[string]json.RawMessage{}
	data, err := os.ReadFile(filepath.Join(s.BuildDir(buildID), metaFile))
	if errors.Is(err, os.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}
