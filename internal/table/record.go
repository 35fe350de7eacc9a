// Package table holds the record model shared by every export format and
// the text serializers (CSV, JSON) built on top of it.
package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Field is a single named scalar inside a Record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of fields. Order is significant: the header row
// of an export is inferred from the field order of the first record.
type Record []Field

// R builds a Record from alternating name/value arguments.
// It panics on a non-string name, so it is meant for literals.
func R(kv ...any) Record {
	if len(kv)%2 != 0 {
		panic("table.R: odd number of arguments")
	}
	rec := make(Record, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("table.R: field name at %d is %T, not string", i, kv[i]))
		}
		rec = rec.Set(name, kv[i+1])
	}
	return rec
}

func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing field or appends a new one.
func (r Record) Set(name string, value any) Record {
	for i := range r {
		if r[i].Name == name {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Name: name, Value: value})
}

func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := marshalValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	rec := Record{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		rec = rec.Set(key, normalize(value))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = rec
	return nil
}

func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	for node.Kind == yaml.DocumentNode || node.Kind == yaml.AliasNode {
		if node.Kind == yaml.AliasNode {
			node = node.Alias
			continue
		}
		if len(node.Content) == 0 {
			*r = nil
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*r = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: record must be a mapping", node.Line)
	}

	rec := make(Record, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("line %d: field %q: %w", node.Content[i].Line, node.Content[i].Value, err)
		}
		rec = rec.Set(node.Content[i].Value, value)
	}
	*r = rec
	return nil
}

// Table is an ordered sequence of records that are assumed to share a
// field set.
type Table []Record

// Headers returns the field names of the first record, or nil for an
// empty table.
func (t Table) Headers() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0].Names()
}

// Rows renders every record as strings in header order using format.
// A field absent from a record becomes "".
func (t Table) Rows(headers []string, format func(any) string) [][]string {
	rows := make([][]string, len(t))
	for i, rec := range t {
		row := make([]string, len(headers))
		for j, h := range headers {
			if v, ok := rec.Get(h); ok {
				row[j] = format(v)
			}
		}
		rows[i] = row
	}
	return rows
}

// FromMaps converts generic maps into records. Map iteration order is
// random, so fields are sorted by name to keep headers stable.
func FromMaps(rows []map[string]any) Table {
	t := make(Table, len(rows))
	for i, m := range rows {
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		rec := make(Record, len(names))
		for j, k := range names {
			rec[j] = Field{Name: k, Value: m[k]}
		}
		t[i] = rec
	}
	return t
}

// FromAny reports whether v is table shaped (a slice of records or maps)
// and returns it as a Table. Anything else, nil included, is rejected.
func FromAny(v any) (Table, bool) {
	switch data := v.(type) {
	case Table:
		return data, true
	case []Record:
		return Table(data), true
	case []map[string]any:
		return FromMaps(data), true
	case []any:
		t := make(Table, 0, len(data))
		for _, item := range data {
			switch row := item.(type) {
			case Record:
				t = append(t, row)
			case map[string]any:
				t = append(t, FromMaps([]map[string]any{row})...)
			default:
				return nil, false
			}
		}
		return t, true
	}
	return nil, false
}

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalize turns json.Number into int64 when it is integral and float64
// otherwise, recursing into nested containers.
func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	}
	return v
}
