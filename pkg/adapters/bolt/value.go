package bolt

import (
	"fmt"
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/aretw0/fireclass/pkg/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Stored documents are JSON objects of tagged values so that integers,
// floats, bytes and timestamps survive the round trip unchanged.
//
//	{"email_address": {"t": "string", "v": "a@b.com"}, "count": {"t": "int", "v": 3}}
type value struct {
	T string              `json:"t"`
	V jsoniter.RawMessage `json:"v,omitempty"`
}

const (
	tagNull   = "null"
	tagBool   = "bool"
	tagInt    = "int"
	tagFloat  = "float"
	tagString = "string"
	tagBytes  = "bytes"
	tagTime   = "time"
	tagArray  = "array"
	tagMap    = "map"
)

func encodeDoc(fields map[string]any) ([]byte, error) {
	doc := make(map[string]value, len(fields))
	for k, v := range fields {
		enc, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		doc[k] = enc
	}
	return json.Marshal(doc)
}

func decodeDoc(raw []byte) (map[string]any, error) {
	var doc map[string]value
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("corrupt document: %w", err)
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		dec, err := fromValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = dec
	}
	return out, nil
}

func toValue(v any) (value, error) {
	var (
		tag     string
		payload any
	)
	switch x := v.(type) {
	case nil:
		return value{T: tagNull}, nil
	case bool:
		tag, payload = tagBool, x
	case int64:
		tag, payload = tagInt, x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return value{}, fmt.Errorf("%w: %v cannot be stored", core.ErrInvalidValue, x)
		}
		tag, payload = tagFloat, x
	case string:
		tag, payload = tagString, x
	case []byte:
		tag, payload = tagBytes, x
	case time.Time:
		tag, payload = tagTime, x.Format(time.RFC3339Nano)
	case []any:
		elems := make([]value, len(x))
		for i, e := range x {
			enc, err := toValue(e)
			if err != nil {
				return value{}, fmt.Errorf("index %d: %w", i, err)
			}
			elems[i] = enc
		}
		tag, payload = tagArray, elems
	case map[string]any:
		m := make(map[string]value, len(x))
		for k, e := range x {
			enc, err := toValue(e)
			if err != nil {
				return value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = enc
		}
		tag, payload = tagMap, m
	default:
		return value{}, fmt.Errorf("%w: %T is not a wire value", core.ErrInvalidValue, v)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return value{}, err
	}
	return value{T: tag, V: raw}, nil
}

func fromValue(v value) (any, error) {
	switch v.T {
	case tagNull:
		return nil, nil
	case tagBool:
		var b bool
		err := json.Unmarshal(v.V, &b)
		return b, err
	case tagInt:
		var n int64
		err := json.Unmarshal(v.V, &n)
		return n, err
	case tagFloat:
		var f float64
		err := json.Unmarshal(v.V, &f)
		return f, err
	case tagString:
		var s string
		err := json.Unmarshal(v.V, &s)
		return s, err
	case tagBytes:
		var b []byte
		err := json.Unmarshal(v.V, &b)
		if b == nil {
			b = []byte{}
		}
		return b, err
	case tagTime:
		var s string
		if err := json.Unmarshal(v.V, &s); err != nil {
			return nil, err
		}
		// Parsing against UTC keeps the stored offset as a fixed zone; plain
		// Parse would hand back time.Local when the offsets coincide.
		return time.ParseInLocation(time.RFC3339Nano, s, time.UTC)
	case tagArray:
		var elems []value
		if err := json.Unmarshal(v.V, &elems); err != nil {
			return nil, err
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			dec, err := fromValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = dec
		}
		return out, nil
	case tagMap:
		var m map[string]value
		if err := json.Unmarshal(v.V, &m); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(m))
		for k, e := range m {
			dec, err := fromValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = dec
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown value tag %q", v.T)
}
