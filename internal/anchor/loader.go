package anchor

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/paradox/internal/model"
	"github.com/ppiankov/paradox/internal/validate"
	"gopkg.in/yaml.v3"
)

// DefaultCatalogYAML is the built-in catalog baked into the binary
//
//go:embed anchors.yaml
var DefaultCatalogYAML []byte

// Load decodes a catalog document and validates every record.
// Nothing is returned unless the whole document is valid.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file model.AnchorFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode anchor catalog: %w", err)
	}

	anchors := make([]model.Anchor, len(file.Anchors))
	for i, rec := range file.Anchors {
		anchors[i] = rec.Anchor()
	}

	if err := validate.Anchors(anchors); err != nil {
		return nil, err
	}

	c := New()
	for _, a := range anchors {
		c.Add(a)
	}
	return c, nil
}

// LoadFile reads a catalog from disk
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open anchor catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default loads the built-in catalog
func Default() (*Catalog, error) {
	c, err := Load(bytes.NewReader(DefaultCatalogYAML))
	if err != nil {
		return nil, fmt.Errorf("built-in anchor catalog: %w", err)
	}
	return c, nil
}

// Open loads path, or the built-in catalog when path is empty
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
