package folio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// jsonObjectWriter builds a JSON object keeping the order fields are written in.
// The first error stops the writing and is returned by MarshalJSON.
type jsonObjectWriter struct {
	buf bytes.Buffer
	err error
}

// Append writes the field, marshaled with json.Marshal.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	data, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("field %q: %w", key, err)
		return w
	}
	if w.buf.Len() > 0 {
		w.buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(data)
	return w
}

// Optional writes the field unless 'value' is the zero value of its type.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// Amount writes the decimal value of 'm', its currency being written once per object.
func (w *jsonObjectWriter) Amount(key string, m Money) *jsonObjectWriter {
	return w.Append(key, m.value)
}

// Time writes a non-zero time in UTC.
func (w *jsonObjectWriter) Time(key string, t time.Time) *jsonObjectWriter {
	if t.IsZero() {
		return w
	}
	return w.Append(key, t.UTC())
}

func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.buf.Len()+2)
	out = append(out, '{')
	out = append(out, w.buf.Bytes()...)
	return append(out, '}'), nil
}
