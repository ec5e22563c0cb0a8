package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
)

// Format identifies a catalog document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// document is the on-disk shape shared by every format.
type document struct {
	Courses []Course `json:"courses" toml:"courses" yaml:"courses"`
}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", cgerrors.New(cgerrors.ErrCodeInvalidFormat, "unsupported catalog extension %q (want .toml, .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Load reads and validates the catalog document at path.
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeFileNotFound, err, "catalog %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(bytes.NewReader(data), format)
}

// Parse decodes a catalog document from r. Parse does not close r.
func Parse(r io.Reader, format Format) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc document
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidFormat, "unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, err, "decode %s catalog", format)
	}
	return New(doc.Courses)
}

// Write encodes c to w in the given format.
func Write(w io.Writer, c *Catalog, format Format) error {
	doc := document{Courses: c.Courses()}
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidFormat, "unsupported catalog format %q", format)
	}
}
