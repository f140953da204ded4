// Package document defines the document value shape stored in a
// collection: a JSON-like map keyed by string, with a mandatory "id"
// field that doubles as the collection's primary key.
package document

import (
	"encoding/json"
	"fmt"
)

// Doc is a document payload. Keys map directly onto JSON object fields.
type Doc map[string]any

// IDField is the reserved key carrying the primary key. It is detached
// from the payload before storage and reattached on read.
const IDField = "id"

// DetachID extracts the string "id" field from doc and returns it
// alongside a shallow copy of doc with "id" removed. doc itself is never
// mutated: the source may be owned by the caller and reused afterward.
func DetachID(doc Doc) (id string, rest Doc, err error) {
	raw, ok := doc[IDField]
	if !ok {
		return "", nil, fmt.Errorf("document: missing %q field", IDField)
	}

	id, ok = raw.(string)
	if !ok || id == "" {
		return "", nil, fmt.Errorf("document: %q field must be a non-empty string", IDField)
	}

	rest = make(Doc, len(doc)-1)
	for k, v := range doc {
		if k == IDField {
			continue
		}
		rest[k] = v
	}

	return id, rest, nil
}

// WithID returns a shallow copy of doc with the "id" field set, used to
// reattach the primary key read from the id column onto the payload
// decoded from the value column.
func WithID(id string, doc Doc) Doc {
	out := make(Doc, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[IDField] = id
	return out
}

// Marshal serializes doc to canonical JSON text for storage.
func Marshal(doc Doc) (string, error) {
	buf, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("document: marshal: %w", err)
	}
	return string(buf), nil
}

// Unmarshal parses JSON text into a Doc. The result is guaranteed to be
// a JSON object; an array or scalar at the top level is an error.
func Unmarshal(text string) (Doc, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("document: unmarshal: %w", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document: payload is not a JSON object")
	}

	return Doc(obj), nil
}

// MarshalLiteral serializes an arbitrary rule value (used by the
// predicate compiler) to the JSON literal text that is bound as a
// placeholder value in a SQL comparison against
// json_quote(json_extract(...)).
func MarshalLiteral(v any) (string, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("document: marshal literal: %w", err)
	}
	return string(buf), nil
}
