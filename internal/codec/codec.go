// Package codec transforms records between the edit-form representation
// (strings) and the normalized storage representation (typed values).
package codec

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/blockedby/recruiting-os/internal/schema"
)

// FieldErrors aggregates per-field decode failures.
type FieldErrors struct {
	Errors []schema.FieldError
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

func (e *FieldErrors) add(field, reason string) {
	e.Errors = append(e.Errors, schema.FieldError{Field: field, Reason: reason})
}

// Encode converts a stored record into its form-native draft.
// Unset values encode to empty text, absent booleans to false.
func Encode(rec schema.Record, s *schema.EntitySchema) schema.Draft {
	d := schema.Draft{
		Values: make(map[string]string, len(s.Fields)),
		Flags:  make(map[string]bool),
	}
	for _, f := range s.Fields {
		v := rec.Values[f.Name]
		switch f.Kind {
		case schema.KindBool:
			b, _ := v.(bool)
			d.Flags[f.Name] = b
		case schema.KindString:
			str, _ := v.(string)
			d.Values[f.Name] = str
		case schema.KindNumber:
			d.Values[f.Name] = encodeNumber(v)
		case schema.KindStringList:
			d.Values[f.Name] = strings.Join(toStringList(v), ", ")
		case schema.KindJSON:
			d.Values[f.Name] = encodeJSON(v)
		}
	}
	return d
}

// Decode converts a draft back into the storage representation.
// Returns *FieldErrors when any required or numeric check fails; the
// returned error is the only failure mode, the lossy list and JSON
// transformations never error.
func Decode(d schema.Draft, s *schema.EntitySchema) (schema.Record, error) {
	rec := schema.Record{Values: make(map[string]any, len(s.Fields))}
	ferrs := &FieldErrors{}

	for _, f := range s.Fields {
		switch f.Kind {
		case schema.KindBool:
			rec.Values[f.Name] = d.Flags[f.Name]
		case schema.KindString:
			rec.Values[f.Name] = d.Values[f.Name]
		case schema.KindNumber:
			n, ok := decodeNumber(d.Values[f.Name])
			if !ok && f.Required {
				ferrs.add(f.Name, schema.ReasonInvalidNumber)
				continue
			}
			rec.Values[f.Name] = n
		case schema.KindStringList:
			rec.Values[f.Name] = DecodeList(d.Values[f.Name])
		case schema.KindJSON:
			rec.Values[f.Name] = decodeJSON(d.Values[f.Name])
		}
	}

	// required check runs after type decode
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		if isEmpty(rec.Values[f.Name]) && !hasFieldError(ferrs, f.Name) {
			ferrs.add(f.Name, schema.ReasonRequired)
		}
	}

	if len(ferrs.Errors) > 0 {
		return schema.Record{}, ferrs
	}
	return rec, nil
}

// DecodeList splits draft text into list elements: comma-separated, each
// token trimmed, empty tokens dropped, order and duplicates preserved.
// The round trip is intentionally lossy. Always returns a non-nil slice.
func DecodeList(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// decodeJSON parses draft text as structured data. Malformed input is not
// rejected: it is wrapped in the user-message envelope so that free text
// pasted into the JSON field still produces a valid stored value. Empty
// text decodes to nil so the required check can fire.
func decodeJSON(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return map[string]any{"type": "user", "content": raw}
	}
	return v
}

// encodeJSON pretty-prints a stored value with two-space indent, matching
// the representation the dashboard textarea always used.
func encodeJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// decodeNumber converts draft text to a number. Empty text is null.
// Invalid text reports ok=false and coerces to null; the caller decides
// whether that is a hard failure (required) or silent (optional).
func decodeNumber(raw string) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func encodeNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	default:
		return ""
	}
}

func toStringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

func hasFieldError(ferrs *FieldErrors, field string) bool {
	for _, fe := range ferrs.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}
