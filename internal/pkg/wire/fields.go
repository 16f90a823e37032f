package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type options struct {
	optional  bool
	omitEmpty bool
	omitNil   bool
}

type Option func(*options)

// Optional lets the key be absent, or null, when decoding.
func Optional() Option {
	return func(o *options) {
		o.optional = true
	}
}

// OmitEmpty leaves an empty list out of the encoded object instead of writing [].
func OmitEmpty() Option {
	return func(o *options) {
		o.omitEmpty = true
	}
}

// OmitAbsent makes a list key optional and remembers whether it was there: an
// absent key decodes to a nil list and a nil list is left out when encoding. A
// present key, even [], decodes to a non-nil list and is written back.
func OmitAbsent() Option {
	return func(o *options) {
		o.optional = true
		o.omitNil = true
	}
}

func apply(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Scalar binds a key to a string, number, bool or integer enum attribute.
func Scalar[T, V any](key string, ref func(*T) *V, opts ...Option) Field[T] {
	o := apply(opts)
	return Field[T]{
		Key:      key,
		optional: o.optional,
		decode: func(dst *T, raw json.RawMessage) error {
			return json.Unmarshal(raw, ref(dst))
		},
		encode: func(src *T) (json.RawMessage, bool, error) {
			value, err := marshal(*ref(src))
			return value, true, err
		},
	}
}

// Nullable binds a key to a pointer attribute. A nil attribute is left out when
// encoding and an absent or null key decodes to nil.
func Nullable[T, V any](key string, ref func(*T) **V) Field[T] {
	return Field[T]{
		Key:      key,
		optional: true,
		decode: func(dst *T, raw json.RawMessage) error {
			value := new(V)
			if err := json.Unmarshal(raw, value); err != nil {
				return err
			}
			*ref(dst) = value
			return nil
		},
		encode: func(src *T) (json.RawMessage, bool, error) {
			value := *ref(src)
			if value == nil {
				return nil, false, nil
			}
			encoded, err := marshal(*value)
			return encoded, true, err
		},
	}
}

// Object binds a key to a nested entity with its own table.
func Object[T, V any](key string, table *Table[V], ref func(*T) *V, opts ...Option) Field[T] {
	o := apply(opts)
	return Field[T]{
		Key:      key,
		optional: o.optional,
		decode: func(dst *T, raw json.RawMessage) error {
			return table.Decode(raw, ref(dst))
		},
		encode: func(src *T) (json.RawMessage, bool, error) {
			value, err := table.Encode(ref(src))
			return value, true, err
		},
	}
}

// List binds a key to an ordered list of nested entities. The list is written as
// an array, never null, unless OmitEmpty or OmitAbsent leave it out.
func List[T, V any](key string, table *Table[V], ref func(*T) *[]V, opts ...Option) Field[T] {
	o := apply(opts)
	return Field[T]{
		Key:      key,
		optional: o.optional,
		decode: func(dst *T, raw json.RawMessage) error {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return fmt.Errorf("expected an array of %s", table.Entity)
			}
			out := make([]V, len(items))
			for i, item := range items {
				if err := table.Decode(item, &out[i]); err != nil {
					return fmt.Errorf("%s[%d]: %w", key, i, err)
				}
			}
			*ref(dst) = out
			return nil
		},
		encode: func(src *T) (json.RawMessage, bool, error) {
			items := *ref(src)
			if (o.omitEmpty && len(items) == 0) || (o.omitNil && items == nil) {
				return nil, false, nil
			}
			var buf bytes.Buffer
			buf.WriteByte('[')
			for i := range items {
				if i > 0 {
					buf.WriteByte(',')
				}
				value, err := table.Encode(&items[i])
				if err != nil {
					return nil, false, err
				}
				buf.Write(value)
			}
			buf.WriteByte(']')
			return buf.Bytes(), true, nil
		},
	}
}
