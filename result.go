package ec2meta

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Result maps field names to values. Scalar fields and user-data are
// strings, BlockDeviceMapping is a map[string]string, PublicKeys is a
// []PublicKey and Network is a map[string]map[string]string.
//
// A requested scalar or user-data field that the metadata service doesn't
// serve (HTTP 404) has no key in the Result. Use the comma-ok form to tell
// an absent field from an empty one.
type Result map[string]any

// Scalar returns the value of a scalar field, or "" if it is absent or not a
// string.
func (r Result) Scalar(name string) string {
	s, _ := r[name].(string)

	return s
}

// UnmarshalJSON decodes each value into the Go type for its field, so a
// decoded Result is equal to the one that was encoded.
func (r *Result) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if raw == nil {
		return errors.New("decode result: not a JSON object")
	}

	out := make(Result, len(raw))

	for name, msg := range raw {
		field, err := LookupField(name)
		if err != nil {
			return err
		}

		v, err := decodeValue(field.Kind, msg)
		if err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}

		out[name] = v
	}

	*r = out

	return nil
}

func decodeValue(kind Kind, msg json.RawMessage) (any, error) {
	switch kind {
	case KindBlockDeviceMapping:
		v := map[string]string{}
		err := json.Unmarshal(msg, &v)

		return v, err
	case KindPublicKeys:
		v := []PublicKey{}
		err := json.Unmarshal(msg, &v)

		return v, err
	case KindNetwork:
		v := map[string]map[string]string{}
		err := json.Unmarshal(msg, &v)

		return v, err
	default:
		var v string
		err := json.Unmarshal(msg, &v)

		return v, err
	}
}
