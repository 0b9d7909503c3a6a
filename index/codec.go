package index

import "encoding/json"

// Index records are JSON arrays of strings. The store is schema-less and
// shared, so a record can come back with any shape; the index is advisory
// and must degrade gracefully against tampering or drift.

// encodeStrings serializes a record value.
func encodeStrings(values []string) ([]byte, error) {
	return json.Marshal(values)
}

// decodeStrings deserializes a record value. Anything that is not a JSON
// array of strings decodes as absent (nil), never as an error.
func decodeStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil
	}
	return values
}
