// Package wire maps device JSON documents onto Go values through statically
// declared field tables. A table is the single description of an entity's wire
// shape and drives both decoding and encoding.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

// Field binds one wire key to an attribute of T.
type Field[T any] struct {
	Key      string
	optional bool
	decode   func(dst *T, raw json.RawMessage) error
	// encode reports false when the key must be left out of the object.
	encode func(src *T) (json.RawMessage, bool, error)
}

// Optional reports whether the key may be absent when decoding.
func (f Field[T]) Optional() bool {
	return f.optional
}

// Table is the ordered field list of one entity type. Keys are encoded in table
// order.
type Table[T any] struct {
	Entity string
	Fields []Field[T]
}

// Keys returns the wire keys in encoding order.
func (t *Table[T]) Keys() []string {
	keys := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Decode fills dst from one JSON object. dst is only written when every field
// decoded.
func (t *Table[T]) Decode(raw []byte, dst *T) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return &model.SchemaViolationError{Entity: t.Entity, Reason: "expected a JSON object"}
	}

	var out T
	for _, f := range t.Fields {
		value, ok := obj[f.Key]
		if !ok || isNull(value) {
			if f.optional {
				continue
			}
			return &model.SchemaViolationError{Entity: t.Entity, Key: f.Key, Reason: "missing required key"}
		}
		if err := f.decode(&out, value); err != nil {
			var violation *model.SchemaViolationError
			if errors.As(err, &violation) {
				return err
			}
			return &model.SchemaViolationError{Entity: t.Entity, Key: f.Key, Reason: err.Error()}
		}
	}
	*dst = out
	return nil
}

// Encode writes src as one JSON object.
func (t *Table[T]) Encode(src *T) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range t.Fields {
		value, emit, err := f.encode(src)
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", t.Entity, f.Key, err)
		}
		if !emit {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// marshal leaves <, > and & alone; the firmware does not expect them escaped.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
