package pipeline

import (
	"bytes"
	"encoding/json"
)

// Result maps each stage's output key to the text it produced, in stage order.
type Result struct {
	keys   []string
	values map[string]string
}

func newResult(capacity int) *Result {
	return &Result{
		keys:   make([]string, 0, capacity),
		values: make(map[string]string, capacity),
	}
}

func (r *Result) set(key, value string) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the output stored under key.
func (r *Result) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the output keys in stage order.
func (r *Result) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r *Result) Len() int {
	return len(r.keys)
}

// Map returns a copy of the outputs.
func (r *Result) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the result as an object whose keys follow stage order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
