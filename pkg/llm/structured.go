package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// UnparsedKey is the single key of the fallback record produced for malformed output.
const UnparsedKey = "raw"

// StructuredResult is what the structured variant of the generation boundary returns.
// It is either Parsed or Unparsed; callers switch on the concrete type.
type StructuredResult interface {
	// AsMap renders the result as a loose record: the object itself, or {"raw": text}.
	AsMap() map[string]any
	isStructuredResult()
}

// Parsed holds a JSON object decoded from the model output. Numbers are kept as json.Number.
type Parsed struct {
	Fields map[string]any
}

// Unparsed holds the original text when the output was not a JSON object.
type Unparsed struct {
	Raw string
}

func (p Parsed) AsMap() map[string]any {
	return p.Fields
}

func (u Unparsed) AsMap() map[string]any {
	return map[string]any{UnparsedKey: u.Raw}
}

func (Parsed) isStructuredResult()   {}
func (Unparsed) isStructuredResult() {}

// Lookup returns the value stored under key. Unparsed results have no keys.
func Lookup(result StructuredResult, key string) (any, bool) {
	parsed, ok := result.(Parsed)
	if !ok {
		return nil, false
	}
	value, found := parsed.Fields[key]
	return value, found
}

// ParseStructured decodes raw as a single JSON object. Anything else, including valid JSON
// that is not an object, yields Unparsed. It never fails.
func ParseStructured(raw string) StructuredResult {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return Unparsed{Raw: raw}
	}
	// Trailing content after the first value makes the whole text malformed.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Unparsed{Raw: raw}
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return Unparsed{Raw: raw}
	}
	return Parsed{Fields: fields}
}
