package table

import (
	"bytes"
	"encoding/json"
)

// ToJSON serializes any value. Pretty output is indented with two spaces.
// HTML characters are left unescaped so the file reads like the on-screen data.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
