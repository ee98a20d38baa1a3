package document

import (
	"errors"

	"github.com/tidwall/gjson"
)

// FieldGetter exposes named top-level fields of a structured document.
// A missing field is not an error: ok is simply false.
type FieldGetter interface {
	Field(name string) (raw string, ok bool)
}

// JSONOutput is a compute unit's raw JSON output.
type JSONOutput struct {
	result gjson.Result
}

// ParseOutput checks that raw is a JSON object and wraps it for field lookup.
func ParseOutput(raw []byte) (*JSONOutput, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("output is not valid JSON")
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return nil, errors.New("output is not a JSON object")
	}
	return &JSONOutput{result: res}, nil
}

// Field returns the raw JSON text of the top-level key equal to name. Keys are
// compared verbatim, so names containing path syntax like '.' or '*' are safe.
// When a key repeats, the last occurrence wins, as with encoding/json.
func (o *JSONOutput) Field(name string) (string, bool) {
	var (
		raw   string
		found bool
	)
	o.result.ForEach(func(key, value gjson.Result) bool {
		if key.String() == name {
			raw = value.Raw
			found = true
		}
		return true
	})
	return raw, found
}

// Raw returns the whole output document as JSON text.
func (o *JSONOutput) Raw() string {
	return o.result.Raw
}
