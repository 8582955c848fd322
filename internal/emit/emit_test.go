package emit

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jacoelho/streamfilter/internal/tokenfilter"
)

type fakeValues struct {
	text string
	num  json.Number
	b    bool
}

func (f fakeValues) Text() (string, error)             { return f.text, nil }
func (f fakeValues) NumberValue() (json.Number, error) { return f.num, nil }
func (f fakeValues) BoolValue() (bool, error)          { return f.b, nil }

func TestWriter_Object(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := New(&buf)

	steps := []struct {
		tok  tokenfilter.Token
		name string
		vals fakeValues
	}{
		{tok: tokenfilter.StartObject},
		{tok: tokenfilter.PropertyName, name: "a"},
		{tok: tokenfilter.ValueNumber, vals: fakeValues{num: json.Number("1")}},
		{tok: tokenfilter.PropertyName, name: "b"},
		{tok: tokenfilter.ValueString, vals: fakeValues{text: "hi"}},
		{tok: tokenfilter.PropertyName, name: "c"},
		{tok: tokenfilter.ValueBool, vals: fakeValues{b: true}},
		{tok: tokenfilter.PropertyName, name: "d"},
		{tok: tokenfilter.ValueNull},
		{tok: tokenfilter.EndObject},
	}

	for _, s := range steps {
		if err := w.WriteToken(s.tok, s.name, s.vals); err != nil {
			t.Fatalf("WriteToken(%v) error = %v", s.tok, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := `{"a":1,"b":"hi","c":true,"d":null}`
	if got := buf.String(); got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestWriter_Array(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := New(&buf)

	tokens := []struct {
		tok  tokenfilter.Token
		vals fakeValues
	}{
		{tok: tokenfilter.StartArray},
		{tok: tokenfilter.ValueNumber, vals: fakeValues{num: json.Number("1")}},
		{tok: tokenfilter.ValueNumber, vals: fakeValues{num: json.Number("2")}},
		{tok: tokenfilter.ValueString, vals: fakeValues{text: "three"}},
		{tok: tokenfilter.EndArray},
	}
	for _, s := range tokens {
		if err := w.WriteToken(s.tok, "", s.vals); err != nil {
			t.Fatalf("WriteToken(%v) error = %v", s.tok, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := `[1,2,"three"]`
	if got := buf.String(); got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestWriter_NestedContainers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := New(&buf)

	seq := []struct {
		tok  tokenfilter.Token
		name string
		vals fakeValues
	}{
		{tok: tokenfilter.StartObject},
		{tok: tokenfilter.PropertyName, name: "items"},
		{tok: tokenfilter.StartArray},
		{tok: tokenfilter.StartObject},
		{tok: tokenfilter.PropertyName, name: "id"},
		{tok: tokenfilter.ValueNumber, vals: fakeValues{num: json.Number("1")}},
		{tok: tokenfilter.EndObject},
		{tok: tokenfilter.EndArray},
		{tok: tokenfilter.EndObject},
	}
	for _, s := range seq {
		if err := w.WriteToken(s.tok, s.name, s.vals); err != nil {
			t.Fatalf("WriteToken(%v) error = %v", s.tok, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := `{"items":[{"id":1}]}`
	if got := buf.String(); got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestWriter_StringEscaping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := New(&buf)
	if err := w.WriteToken(tokenfilter.ValueString, "", fakeValues{text: "a\"b\nc"}); err != nil {
		t.Fatalf("WriteToken() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var roundTripped string
	if err := json.Unmarshal(buf.Bytes(), &roundTripped); err != nil {
		t.Fatalf("output %s is not valid JSON: %v", buf.String(), err)
	}
	if roundTripped != "a\"b\nc" {
		t.Errorf("round trip = %q, want %q", roundTripped, "a\"b\nc")
	}
}
