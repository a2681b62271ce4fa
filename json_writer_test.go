package folio

import (
	"testing"
	"time"
)

func TestJSONObjectWriter(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *jsonObjectWriter)
		want  string
	}{
		{"empty", func(w *jsonObjectWriter) {}, `{}`},
		{"ordered", func(w *jsonObjectWriter) { w.Append("b", 1).Append("a", "x") }, `{"b":1,"a":"x"}`},
		{"optional", func(w *jsonObjectWriter) {
			w.Append("a", 0).Optional("b", "").Optional("c", 0).Optional("d", "hello")
		}, `{"a":0,"d":"hello"}`},
		{"amount", func(w *jsonObjectWriter) { w.Amount("price", USD(185.5)) }, `{"price":185.5}`},
		{"time", func(w *jsonObjectWriter) {
			w.Time("zero", time.Time{}).Time("at", time.Date(2025, 8, 15, 14, 0, 0, 0, time.FixedZone("CEST", 7200)))
		}, `{"at":"2025-08-15T12:00:00Z"}`},
		{"escaped key", func(w *jsonObjectWriter) { w.Append(`a"b`, true) }, `{"a\"b":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w jsonObjectWriter
			tt.write(&w)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestJSONObjectWriter_Error(t *testing.T) {
	var w jsonObjectWriter
	w.Append("ch", make(chan int)).Append("b", 2)
	if _, err := w.MarshalJSON(); err == nil {
		t.Error("MarshalJSON() succeeded with an unmarshalable field")
	}
}
