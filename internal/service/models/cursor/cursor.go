package cursor

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCursor is returned whenever a token fails to decode to the
// expected shape. Callers surface it as a client error, never as a crash.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// Key identifies the last returned record of an indexed query. All four
// fields are required and must be non-empty; the shape is validated on every
// decode because tokens arrive from clients and are opaque, not tamper-proof.
type Key struct {
	PK     string `json:"pk"`
	SK     string `json:"sk"`
	GSI1PK string `json:"gsi1pk"`
	GSI1SK string `json:"gsi1sk"`
}

// EncodeOffset encodes a numeric offset into an opaque token.
func EncodeOffset(offset int) string {
	payload, _ := json.Marshal(offset)

	return base64.URLEncoding.EncodeToString(payload)
}

// DecodeOffset decodes a token produced by EncodeOffset. The decoded payload
// must be a whole finite number in [0, length]; anything else is rejected.
func DecodeOffset(token string, length int) (int, error) {
	payload, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCursor, err.Error())
	}

	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return 0, fmt.Errorf("%w: not a JSON payload", ErrInvalidCursor)
	}

	num, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: payload is not a number", ErrInvalidCursor)
	}
	if math.IsNaN(num) || math.IsInf(num, 0) || num != math.Trunc(num) {
		return 0, fmt.Errorf("%w: payload is not a whole number", ErrInvalidCursor)
	}

	offset := int(num)
	if offset < 0 || offset > length {
		return 0, fmt.Errorf("%w: offset %d out of range [0, %d]", ErrInvalidCursor, offset, length)
	}

	return offset, nil
}

// EncodeKey encodes a continuation key into an opaque token.
func EncodeKey(key Key) string {
	payload, _ := json.Marshal(key)

	return base64.URLEncoding.EncodeToString(payload)
}

// DecodeKey decodes a token produced by EncodeKey. The payload must be a
// JSON object carrying exactly the four required keys, each a non-empty
// string. Arrays, null, missing keys, extra keys and empty values are all
// rejected; a partially valid cursor is never trusted.
func DecodeKey(token string) (Key, error) {
	payload, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %s", ErrInvalidCursor, err.Error())
	}

	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return Key{}, fmt.Errorf("%w: not a JSON payload", ErrInvalidCursor)
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return Key{}, fmt.Errorf("%w: payload is not an object", ErrInvalidCursor)
	}
	if len(fields) != 4 {
		return Key{}, fmt.Errorf("%w: expected exactly 4 key fields, got %d", ErrInvalidCursor, len(fields))
	}

	key := Key{}
	for name, target := range map[string]*string{
		"pk":     &key.PK,
		"sk":     &key.SK,
		"gsi1pk": &key.GSI1PK,
		"gsi1sk": &key.GSI1SK,
	} {
		raw, present := fields[name]
		if !present {
			return Key{}, fmt.Errorf("%w: missing key field %q", ErrInvalidCursor, name)
		}
		str, isString := raw.(string)
		if !isString || str == "" {
			return Key{}, fmt.Errorf("%w: key field %q must be a non-empty string", ErrInvalidCursor, name)
		}
		*target = str
	}

	return key, nil
}
