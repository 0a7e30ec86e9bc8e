package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	lerrors "github.com/matzehuels/lifelines/pkg/errors"
	"github.com/matzehuels/lifelines/pkg/layout"
)

// WriteLayout encodes a layout result as indented JSON.
// The output can be re-imported with [ReadLayout] and rendered without
// recomputing the layout.
func WriteLayout(r *layout.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalLayout encodes a layout result as compact JSON. Equal results
// produce equal bytes, so the output can be hashed.
func MarshalLayout(r *layout.Result) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// ReadLayout decodes a layout result written by [WriteLayout].
func ReadLayout(r io.Reader) (*layout.Result, error) {
	var res layout.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if res.MinIndex > res.MaxIndex && len(res.Individuals) > 0 {
		return nil, lerrors.New(lerrors.ErrCodeInvalidFormat, "layout index extents inverted: [%d, %d]", res.MinIndex, res.MaxIndex)
	}
	return &res, nil
}

// ExportLayout writes a layout result to a JSON file at path.
func ExportLayout(r *layout.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(r, f)
}

// ImportLayout reads a layout result from a JSON file at path.
func ImportLayout(path string) (*layout.Result, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, lerrors.Wrap(lerrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}
