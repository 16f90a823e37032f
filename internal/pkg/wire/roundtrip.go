package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	"github.com/samber/lo"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

// CheckRoundTrip compares two JSON documents structurally. Key order and
// whitespace are ignored; numbers compare by their literal text.
func CheckRoundTrip(original, encoded []byte) error {
	want, err := decodeAny(original)
	if err != nil {
		return fmt.Errorf("original document: %w", err)
	}
	got, err := decodeAny(encoded)
	if err != nil {
		return fmt.Errorf("%w: encoded document is not JSON: %w", model.ErrEncodingInvariant, err)
	}
	if path := firstDiff("$", want, got); path != "" {
		return fmt.Errorf("%w: documents differ at %s", model.ErrEncodingInvariant, path)
	}
	return nil
}

func decodeAny(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func firstDiff(path string, want, got any) string {
	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			return path
		}
		keys := lo.Union(lo.Keys(w), lo.Keys(g))
		slices.Sort(keys)
		for _, k := range keys {
			wv, inWant := w[k]
			gv, inGot := g[k]
			if inWant != inGot {
				return path + "." + k
			}
			if d := firstDiff(path+"."+k, wv, gv); d != "" {
				return d
			}
		}
		return ""
	case []any:
		g, ok := got.([]any)
		if !ok || len(w) != len(g) {
			return path
		}
		for i := range w {
			if d := firstDiff(fmt.Sprintf("%s[%d]", path, i), w[i], g[i]); d != "" {
				return d
			}
		}
		return ""
	default:
		if !reflect.DeepEqual(want, got) {
			return path
		}
		return ""
	}
}
