// Package reference flattens hierarchical key/value documents (YAML, JSON
// or an in-memory value) into one block per leaf section.
package reference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PathSeparator joins the keys of a section heading.
const PathSeparator = " > "

// labelKeys name a sequence item; bodyKeys hold the text of the enclosing section.
var (
	labelKeys = []string{"title", "name", "heading"}
	bodyKeys  = map[string]bool{"content": true, "text": true, "body": true}
)

// Normaliser handles structured reference documents.
type Normaliser struct{}

// New creates a new structured reference normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatReference}
}

// Normalise walks the document depth-first in key order.
// Every key holding a scalar or a list of scalars becomes one block whose
// heading is the path of keys leading to it.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	root, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: reference %s: %w", domain.ErrInvalidInput, raw.ID, err)
	}

	f := &flattener{docID: raw.ID}
	if root != nil {
		skip := ""
		if root.Kind == yaml.MappingNode && mappingValue(root, "title") != "" {
			skip = "title"
		}
		f.walk(root, nil, skip)
	}

	doc := domain.Document{
		ID:         raw.ID,
		URI:        raw.URI,
		Title:      extractTitle(root, raw),
		Format:     domain.FormatReference,
		Blocks:     f.blocks,
		Metadata:   copyMetadata(raw.Metadata),
		ModifiedAt: raw.ModifiedAt,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["sections"] = len(f.blocks)

	return &driven.NormaliseResult{Document: doc}, nil
}

// parse returns the root value node, or nil for an empty document.
func parse(raw *domain.RawDocument) (*yaml.Node, error) {
	if raw.Payload != nil {
		if node, ok := raw.Payload.(*yaml.Node); ok {
			return unwrap(node), nil
		}
		var node yaml.Node
		if err := node.Encode(raw.Payload); err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
		return unwrap(&node), nil
	}

	if len(bytes.TrimSpace(raw.Content)) == 0 {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw.Content, &node); err != nil {
		// Tab-indented JSON is not valid YAML.
		if !json.Valid(raw.Content) {
			return nil, err
		}
		var v any
		if jerr := json.Unmarshal(raw.Content, &v); jerr != nil {
			return nil, jerr
		}
		if eerr := node.Encode(v); eerr != nil {
			return nil, eerr
		}
	}
	return unwrap(&node), nil
}

func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

type flattener struct {
	docID  string
	blocks []domain.TextBlock
}

// walk visits n; skip names a mapping key already used as a path label.
func (f *flattener) walk(n *yaml.Node, path []string, skip string) {
	n = unwrap(n)
	if n == nil {
		return
	}

	if text, ok := leafText(n); ok {
		f.emit(path, text)
		return
	}

	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if skip != "" && key == skip {
				continue
			}
			next := path
			if !bodyKeys[strings.ToLower(key)] {
				next = appendPath(path, key)
			}
			f.walk(n.Content[i+1], next, "")
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			seg, label := "["+strconv.Itoa(i+1)+"]", ""
			if m := unwrap(item); m != nil && m.Kind == yaml.MappingNode {
				if label = itemLabel(m); label != "" {
					seg = mappingValue(m, label)
				}
			}
			f.walk(item, appendPath(path, seg), label)
		}
	}
}

func (f *flattener) emit(path []string, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	f.blocks = append(f.blocks, domain.TextBlock{
		DocumentID: f.docID,
		Position:   len(f.blocks) + 1,
		Heading:    strings.Join(path, PathSeparator),
		Text:       text,
	})
}

// leafText reports whether n is a scalar or a list of scalars.
func leafText(n *yaml.Node) (string, bool) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return "", true
		}
		return n.Value, true
	case yaml.SequenceNode:
		lines := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = unwrap(item)
			if item == nil || item.Kind != yaml.ScalarNode {
				return "", false
			}
			if item.ShortTag() != "!!null" && strings.TrimSpace(item.Value) != "" {
				lines = append(lines, strings.TrimSpace(item.Value))
			}
		}
		return strings.Join(lines, "\n"), true
	}
	return "", false
}

// itemLabel returns the key that names a mapping, if it has a scalar one.
func itemLabel(m *yaml.Node) string {
	for _, key := range labelKeys {
		if v := mappingValue(m, key); v != "" {
			return key
		}
	}
	return ""
}

func mappingValue(m *yaml.Node, key string) string {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != key {
			continue
		}
		if v := unwrap(m.Content[i+1]); v != nil && v.Kind == yaml.ScalarNode {
			return strings.TrimSpace(v.Value)
		}
	}
	return ""
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

// extractTitle uses a top-level title, then metadata, then the filename.
func extractTitle(root *yaml.Node, raw *domain.RawDocument) string {
	if root != nil && root.Kind == yaml.MappingNode {
		if t := mappingValue(root, "title"); t != "" {
			return t
		}
	}
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}

	filename := filepath.Base(raw.URI)
	if raw.URI == "" {
		filename = raw.ID
	}
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
