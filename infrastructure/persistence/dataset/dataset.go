// Package dataset reads and writes family datasets as YAML or JSON files.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is a dataset encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from the file extension, defaulting to YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Document is a dataset file. A file holding a bare list of people is read
// as a Document without a main id.
type Document struct {
	Main   valueobjects.PersonID `json:"main,omitempty" yaml:"main,omitempty"`
	People []entities.Person     `json:"people" yaml:"people"`
}

// Graph builds a validated graph from the document.
func (d *Document) Graph() (*aggregates.FamilyGraph, error) {
	g, err := aggregates.NewFamilyGraph(d.People)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid dataset")
	}
	return g, nil
}

// Load reads the dataset at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return doc, nil
}

// Decode reads one document in format from r.
func Decode(r io.Reader, format Format) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	switch format {
	case FormatJSON:
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			err = json.Unmarshal(trimmed, &doc.People)
		} else {
			err = json.Unmarshal(raw, doc)
		}
	default:
		var node yaml.Node
		if err = yaml.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		if len(node.Content) == 0 {
			return doc, nil
		}
		if node.Content[0].Kind == yaml.SequenceNode {
			err = node.Content[0].Decode(&doc.People)
		} else {
			err = node.Content[0].Decode(doc)
		}
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes doc to path in the format implied by its extension. The file
// is replaced atomically.
func Save(path string, doc Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, FormatFor(path), doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Encode writes doc to w.
func Encode(w io.Writer, format Format, doc Document) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
