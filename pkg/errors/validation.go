package errors

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// TaskID validates an id taken from an interaction payload and returns it as
// an int. Payloads come from renderers and HTTP clients, so the value may be
// a Go int, a float64 from a JSON decode into any, a json.Number or a numeric
// string (graph widgets often key nodes by string). Anything else, including
// fractional or out-of-range numbers, is a MALFORMED_PAYLOAD error. Values are
// never coerced beyond an exact integer conversion.
func TaskID(field string, v any) (int, error) {
	switch id := v.(type) {
	case int:
		return id, nil
	case int32:
		return int(id), nil
	case int64:
		if id > math.MaxInt || id < math.MinInt {
			return 0, New(ErrCodeMalformedPayload, "%s: id %d out of range", field, id)
		}
		return int(id), nil
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) || math.IsNaN(id) {
			return 0, New(ErrCodeMalformedPayload, "%s: id %v is not an integer", field, id)
		}
		// float64(math.MaxInt) rounds up to 2^63, which is itself out of range.
		if id >= float64(math.MaxInt) || id < float64(math.MinInt) {
			return 0, New(ErrCodeMalformedPayload, "%s: id %v out of range", field, id)
		}
		return int(id), nil
	case json.Number:
		return parseIDString(field, id.String())
	case string:
		return parseIDString(field, id)
	case nil:
		return 0, New(ErrCodeMalformedPayload, "%s: id is missing", field)
	default:
		return 0, New(ErrCodeMalformedPayload, "%s: id has unsupported type %T", field, v)
	}
}

func parseIDString(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeMalformedPayload, "%s: id is empty", field)
	}
	n, err := strconv.ParseInt(s, 10, strconv.IntSize)
	if err != nil {
		return 0, Wrap(ErrCodeMalformedPayload, err, "%s: id %q is not an integer", field, s)
	}
	return int(n), nil
}
