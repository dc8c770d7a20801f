package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// fileDocument is the on-disk layout: origin -> key -> value
type fileDocument struct {
	Origins map[string]map[string]string `yaml:"origins"`
}

// FileBackend stores values in a YAML file. The file is re-read on every Get
// so a write from another process is visible on the next read.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) load() (*fileDocument, error) {
	doc := &fileDocument{Origins: map[string]map[string]string{}}
	bytes, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read token file: %w", err)
	}
	if err := yaml.Unmarshal(bytes, doc); err != nil {
		return nil, fmt.Errorf("could not parse token file: %w", err)
	}
	if doc.Origins == nil {
		doc.Origins = map[string]map[string]string{}
	}
	return doc, nil
}

// save writes the document through a temp file and rename so readers never
// observe a half-written file
func (f *FileBackend) save(doc *fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("could not create token dir: %w", err)
	}
	bytes, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not encode token file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".token-*")
	if err != nil {
		return fmt.Errorf("could not create temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(bytes); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("could not chmod token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close token file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileBackend) Get(_ context.Context, origin, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := doc.Origins[origin][key]
	if !ok {
		return "", ErrNotStored
	}
	return v, nil
}

func (f *FileBackend) Set(_ context.Context, origin, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if doc.Origins[origin] == nil {
		doc.Origins[origin] = map[string]string{}
	}
	if doc.Origins[origin][key] == value {
		return nil
	}
	doc.Origins[origin][key] = value
	return f.save(doc)
}

func (f *FileBackend) Delete(_ context.Context, origin, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Origins[origin][key]; !ok {
		return nil
	}
	delete(doc.Origins[origin], key)
	if len(doc.Origins[origin]) == 0 {
		delete(doc.Origins, origin)
	}
	return f.save(doc)
}
