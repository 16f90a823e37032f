package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

type leaf struct {
	Name  string
	Level model.EventType
}

type root struct {
	ID     int
	Color  *int
	Leaf   leaf
	Leaves []leaf
	Extra  []leaf
}

var leafTable = &Table[leaf]{
	Entity: "Leaf",
	Fields: []Field[leaf]{
		Scalar("name", func(l *leaf) *string { return &l.Name }),
		Scalar("level", func(l *leaf) *model.EventType { return &l.Level }, Optional()),
	},
}

var rootTable = &Table[root]{
	Entity: "Root",
	Fields: []Field[root]{
		Scalar("id", func(r *root) *int { return &r.ID }),
		Nullable("color", func(r *root) **int { return &r.Color }),
		Object("leaf", leafTable, func(r *root) *leaf { return &r.Leaf }),
		List("leaves", leafTable, func(r *root) *[]leaf { return &r.Leaves }, Optional()),
		List("extra", leafTable, func(r *root) *[]leaf { return &r.Extra }, Optional(), OmitEmpty()),
	},
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"id", "color", "leaf", "leaves", "extra"}, rootTable.Keys())
	assert.False(t, rootTable.Fields[0].Optional())
	assert.True(t, rootTable.Fields[1].Optional())
}

func TestDecodeEncode(t *testing.T) {
	raw := `{"id":3,"color":255,"leaf":{"name":"a<b>","level":11},"leaves":[{"name":"x"}],"extra":[{"name":"y","level":99}]}`

	var r root
	require.NoError(t, rootTable.Decode([]byte(raw), &r))
	assert.Equal(t, 3, r.ID)
	require.NotNil(t, r.Color)
	assert.Equal(t, 255, *r.Color)
	assert.Equal(t, model.EventTypeLabel, r.Leaf.Level)
	assert.Equal(t, model.EventType(99), r.Extra[0].Level)

	out, err := rootTable.Encode(&r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":3,"color":255,"leaf":{"name":"a<b>","level":11},"leaves":[{"name":"x","level":0}],"extra":[{"name":"y","level":99}]}`,
		string(out))
}

func TestEncodeOmitRules(t *testing.T) {
	r := root{ID: 1, Leaf: leaf{Name: "°C"}}

	out, err := rootTable.Encode(&r)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"leaf":{"name":"°C","level":0},"leaves":[]}`, string(out))
}

func TestDecodeViolations(t *testing.T) {
	tests := map[string]struct {
		raw    string
		entity string
		key    string
	}{
		"not an object":       {raw: `[1,2]`, entity: "Root"},
		"null document":       {raw: `null`, entity: "Root"},
		"missing id":          {raw: `{"leaf":{"name":"a"}}`, entity: "Root", key: "id"},
		"null id":             {raw: `{"id":null,"leaf":{"name":"a"}}`, entity: "Root", key: "id"},
		"string id":           {raw: `{"id":"3","leaf":{"name":"a"}}`, entity: "Root", key: "id"},
		"nested missing name": {raw: `{"id":3,"leaf":{}}`, entity: "Leaf", key: "name"},
		"list not array":      {raw: `{"id":3,"leaf":{"name":"a"},"leaves":{}}`, entity: "Root", key: "leaves"},
		"list element":        {raw: `{"id":3,"leaf":{"name":"a"},"leaves":[{"name":1}]}`, entity: "Leaf", key: "name"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var r root
			err := rootTable.Decode([]byte(tc.raw), &r)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrSchemaViolation)

			var violation *model.SchemaViolationError
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tc.entity, violation.Entity)
			assert.Equal(t, tc.key, violation.Key)
			assert.Equal(t, root{}, r)
		})
	}
}

func TestDecodeListIndexInError(t *testing.T) {
	var r root
	err := rootTable.Decode([]byte(`{"id":3,"leaf":{"name":"a"},"leaves":[{"name":"ok"},{}]}`), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaves[1]")
}

func TestNullOptionalIsAbsent(t *testing.T) {
	var r root
	require.NoError(t, rootTable.Decode([]byte(`{"id":3,"color":null,"leaf":{"name":"a"},"leaves":null}`), &r))
	assert.Nil(t, r.Color)
	assert.Nil(t, r.Leaves)
}

func TestCheckRoundTrip(t *testing.T) {
	tests := map[string]struct {
		original string
		encoded  string
		path     string
	}{
		"reordered keys": {original: `{"a":1,"b":[1,2]}`, encoded: `{"b":[1,2],"a":1}`},
		"missing key":    {original: `{"a":1,"b":2}`, encoded: `{"a":1}`, path: "$.b"},
		"extra key":      {original: `{"a":1}`, encoded: `{"a":1,"c":null}`, path: "$.c"},
		"changed value":  {original: `{"a":{"b":[1,2]}}`, encoded: `{"a":{"b":[1,3]}}`, path: "$.a.b[1]"},
		"list length":    {original: `{"a":[]}`, encoded: `{"a":[1]}`, path: "$.a"},
		"type change":    {original: `{"a":[]}`, encoded: `{"a":null}`, path: "$.a"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := CheckRoundTrip([]byte(tc.original), []byte(tc.encoded))
			if tc.path == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, model.ErrEncodingInvariant)
			assert.Contains(t, err.Error(), tc.path)
		})
	}
}

type branch struct {
	Leaves []leaf
}

var branchTable = &Table[branch]{
	Entity: "Branch",
	Fields: []Field[branch]{
		List("leaves", leafTable, func(b *branch) *[]leaf { return &b.Leaves }, OmitAbsent()),
	},
}

func TestOmitAbsentKeepsPresence(t *testing.T) {
	tests := map[string]string{
		"absent":    `{}`,
		"empty":     `{"leaves":[]}`,
		"populated": `{"leaves":[{"name":"a","level":0}]}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			var b branch
			require.NoError(t, branchTable.Decode([]byte(raw), &b))

			out, err := branchTable.Encode(&b)
			require.NoError(t, err)
			assert.Equal(t, raw, string(out))
			assert.NoError(t, CheckRoundTrip([]byte(raw), out))
		})
	}

	var b branch
	require.NoError(t, branchTable.Decode([]byte(`{}`), &b))
	b.Leaves = append(b.Leaves, leaf{Name: "new"})
	out, err := branchTable.Encode(&b)
	require.NoError(t, err)
	assert.Equal(t, `{"leaves":[{"name":"new","level":0}]}`, string(out))
}
