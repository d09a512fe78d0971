package cx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cximage/pkg/errors"
)

// Core aspect names.
const (
	AspectNodes             = "nodes"
	AspectEdges             = "edges"
	AspectNodeAttributes    = "nodeAttributes"
	AspectEdgeAttributes    = "edgeAttributes"
	AspectNetworkAttributes = "networkAttributes"
	AspectMetaData          = "metaData"
	AspectStatus            = "status"
)

// Aspect is one fragment of a CX document.
type Aspect struct {
	Name     string
	Elements json.RawMessage
}

// Document is an immutable, order-preserving CX document.
type Document struct {
	aspects []Aspect
}

// Node is an element of the nodes aspect.
type Node struct {
	ID         int64  `json:"@id"`
	Name       string `json:"n,omitempty"`
	Represents string `json:"r,omitempty"`
}

// Edge is an element of the edges aspect.
type Edge struct {
	ID          int64  `json:"@id"`
	Source      int64  `json:"s"`
	Target      int64  `json:"t"`
	Interaction string `json:"i,omitempty"`
}

// Attribute is an element of the networkAttributes aspect.
type Attribute struct {
	Name     string          `json:"n"`
	Value    json.RawMessage `json:"v"`
	DataType string          `json:"d,omitempty"`
}

// ReadCX decodes a CX document from r. ReadCX does not close r.
//
// It returns an INVALID_FORMAT error if the input is not a JSON array, if a
// fragment is not an object with exactly one key, or if an aspect's value is
// not an array.
func ReadCX(r io.Reader) (*Document, error) {
	var raw []map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode CX")
	}
	if dec.More() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "decode CX: trailing data after document")
	}

	doc := &Document{aspects: make([]Aspect, 0, len(raw))}
	for i, frag := range raw {
		if len(frag) != 1 {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"fragment %d: expected exactly one aspect, got %d", i, len(frag))
		}
		for name, elements := range frag {
			if len(bytes.TrimSpace(elements)) == 0 || bytes.TrimSpace(elements)[0] != '[' {
				return nil, errors.New(errors.ErrCodeInvalidFormat,
					"fragment %d: aspect %q is not an array", i, name)
			}
			doc.aspects = append(doc.aspects, Aspect{Name: name, Elements: elements})
		}
	}
	return doc, nil
}

// Parse decodes a CX document held in memory.
func Parse(data []byte) (*Document, error) {
	return ReadCX(bytes.NewReader(data))
}

// ImportCX reads the CX file at path.
// A missing file is reported with code FILE_NOT_FOUND.
func ImportCX(path string) (*Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	doc, err := ReadCX(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// MarshalJSON encodes the document back to its CX array form.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, a := range d.aspects {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(a.Elements)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// WriteTo writes the encoded document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Aspects returns a copy of the document's fragments in order.
func (d *Document) Aspects() []Aspect {
	return append([]Aspect(nil), d.aspects...)
}

// AspectNames returns the distinct aspect names in order of first appearance.
func (d *Document) AspectNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range d.aspects {
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}
	return names
}

// Nodes decodes all nodes fragments.
func (d *Document) Nodes() ([]Node, error) {
	return collect[Node](d, AspectNodes)
}

// Edges decodes all edges fragments.
func (d *Document) Edges() ([]Edge, error) {
	return collect[Edge](d, AspectEdges)
}

// NetworkAttributes decodes all networkAttributes fragments.
func (d *Document) NetworkAttributes() ([]Attribute, error) {
	return collect[Attribute](d, AspectNetworkAttributes)
}

// Name returns the network's "name" attribute, or "" if it has none.
func (d *Document) Name() string {
	attrs, err := d.NetworkAttributes()
	if err != nil {
		return ""
	}
	for _, a := range attrs {
		if a.Name != "name" {
			continue
		}
		var s string
		if json.Unmarshal(a.Value, &s) == nil {
			return s
		}
	}
	return ""
}

// Counts returns the number of node and edge elements without decoding
// their fields. Malformed elements are still counted.
func (d *Document) Counts() (nodes, edges int) {
	for _, a := range d.aspects {
		switch a.Name {
		case AspectNodes:
			nodes += countElements(a.Elements)
		case AspectEdges:
			edges += countElements(a.Elements)
		}
	}
	return nodes, edges
}

func countElements(data json.RawMessage) int {
	var elems []json.RawMessage
	if json.Unmarshal(data, &elems) != nil {
		return 0
	}
	return len(elems)
}

func collect[T any](d *Document, aspect string) ([]T, error) {
	var out []T
	for _, a := range d.aspects {
		if a.Name != aspect {
			continue
		}
		var elems []T
		if err := json.Unmarshal(a.Elements, &elems); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", aspect)
		}
		out = append(out, elems...)
	}
	return out, nil
}
