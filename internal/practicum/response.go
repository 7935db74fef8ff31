package practicum

import (
	"encoding/json"
	"fmt"
)

// Response is a decoded API payload.
//
// The top level is kept loose on purpose: validation has to distinguish an
// absent "homeworks" key from a wrongly-typed one, and a struct decode would
// collapse both into zero values.
type Response struct {
	value any
}

// ParseResponse decodes a raw JSON body into a Response.
func ParseResponse(data []byte) (Response, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Response{}, &DecodeError{Err: err}
	}
	return Response{value: v}, nil
}

// CurrentDate returns the server-reported timestamp for the next query
// window, if present.
func (r Response) CurrentDate() (int64, bool) {
	m, ok := r.value.(map[string]any)
	if !ok {
		return 0, false
	}
	f, ok := m["current_date"].(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// isEmpty covers every zero-ish JSON value (null, {}, [], "", 0, false),
// not just empty containers: a body of plain 0 is "no data", not a shape
// mismatch.
func (r Response) isEmpty() bool {
	switch v := r.value.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	case float64:
		return v == 0
	case bool:
		return !v
	default:
		return false
	}
}

// Homework is one submission's review record. Pointer fields distinguish
// absent keys from present-but-empty values; extra fields are ignored.
type Homework struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// GetName returns the homework name, reporting absence for both a missing
// key and an empty value.
func (h Homework) GetName() (string, bool) {
	if h.Name == nil || *h.Name == "" {
		return "", false
	}
	return *h.Name, true
}

// GetStatus reports only key presence: an empty status string is present
// but unrecognized, which is a different failure than an absent key.
func (h Homework) GetStatus() (string, bool) {
	if h.Status == nil {
		return "", false
	}
	return *h.Status, true
}

// CheckResponse verifies the payload matches the API documentation and
// extracts the homework list in server order.
//
// The checks run in a fixed sequence: emptiness, top-level shape, key
// presence, list shape. An empty payload and a malformed one are distinct
// conditions and callers handle them differently.
func CheckResponse(resp Response) ([]Homework, error) {
	if resp.isEmpty() {
		return nil, &EmptyResponseError{}
	}

	m, ok := resp.value.(map[string]any)
	if !ok {
		return nil, &ResponseTypeError{Msg: "payload is not an object"}
	}

	raw, ok := m["homeworks"]
	if !ok {
		return nil, &KeyResponseError{Key: "homeworks"}
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, &ResponseTypeError{Msg: `"homeworks" is not a list`}
	}

	out := make([]Homework, 0, len(list))
	for i, item := range list {
		b, err := json.Marshal(item)
		if err == nil {
			var hw Homework
			if err = json.Unmarshal(b, &hw); err == nil {
				out = append(out, hw)
				continue
			}
		}
		return nil, &ResponseTypeError{Msg: fmt.Sprintf("homeworks[%d] is not a homework object", i)}
	}
	return out, nil
}
