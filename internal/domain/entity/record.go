package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is a flat row returned by the data service. Unknown fields are kept verbatim.
type Record map[string]interface{}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Text renders a field as a string. Missing and nil fields render as "".
func (r Record) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// WithSerialNo returns a shallow copy whose SERIAL_NO is "" when absent or nil
func (r Record) WithSerialNo() Record {
	out := r.Clone()
	if v, ok := out[FieldSerialNo]; !ok || v == nil {
		out[FieldSerialNo] = ""
	}
	return out
}

// RecordsFrom converts decoded JSON into records. The second result is false
// when v is not a sequence. Elements that are not objects are skipped.
func RecordsFrom(v interface{}) ([]Record, bool) {
	switch list := v.(type) {
	case []Record:
		return list, true
	case []map[string]interface{}:
		out := make([]Record, 0, len(list))
		for _, m := range list {
			if m != nil {
				out = append(out, Record(m))
			}
		}
		return out, true
	case []interface{}:
		out := make([]Record, 0, len(list))
		for _, item := range list {
			switch m := item.(type) {
			case map[string]interface{}:
				out = append(out, Record(m))
			case Record:
				out = append(out, m)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
