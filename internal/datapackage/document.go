package datapackage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// ReadJSON decodes the document at path into v and returns the raw bytes.
func ReadJSON(fsys afero.Fs, path string, v any) ([]byte, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return data, nil
}

// EncodeJSON renders v the way every dpctl document is stored on disk.
func EncodeJSON(v any) ([]byte, error) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

// WriteJSON encodes v and writes it to path, creating parent directories.
// It returns the bytes written.
func WriteJSON(fsys afero.Fs, path string, v any) ([]byte, error) {
	encoded, err := EncodeJSON(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := afero.WriteFile(fsys, path, encoded, 0o644); err != nil {
		return nil, err
	}
	return encoded, nil
}
