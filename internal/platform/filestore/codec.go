package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SchemaVersion is written into every collection file.
const SchemaVersion = 1

// Codec converts a whole collection to and from its on-disk form.
type Codec[T any] interface {
	Marshal(items []T) ([]byte, error)
	Unmarshal(raw []byte) ([]T, error)
}

type envelope[T any] struct {
	SchemaVersion int `json:"schema_version"`
	Items         []T `json:"items"`
}

// JSONCodec stores {"schema_version":N,"items":[...]} and also reads the
// unversioned bare-array layout.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Marshal(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.MarshalIndent(envelope[T]{SchemaVersion: SchemaVersion, Items: items}, "", "  ")
}

func (JSONCodec[T]) Unmarshal(raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		items := []T{}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	env := envelope[T]{}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", env.SchemaVersion)
	}
	if env.Items == nil {
		env.Items = []T{}
	}
	return env.Items, nil
}
