package pipeline

import (
	"bytes"

	"github.com/matzehuels/lifelines/pkg/genealogy"
	lio "github.com/matzehuels/lifelines/pkg/io"
)

// LoadTree decodes a tree document in the given format.
func LoadTree(data []byte, format string) (*genealogy.MemoryProvider, error) {
	if err := ValidateTreeFormat(format); err != nil {
		return nil, err
	}
	if format == TreeYAML {
		return lio.ReadTreeYAML(bytes.NewReader(data))
	}
	return lio.ReadTree(bytes.NewReader(data))
}

// normalizeTree returns the canonical JSON form of p. Equal trees written in
// different formats or field orders normalize to the same bytes.
func normalizeTree(p genealogy.Provider) ([]byte, error) {
	var buf bytes.Buffer
	if err := lio.WriteTree(p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
