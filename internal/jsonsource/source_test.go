package jsonsource

import (
	"strings"
	"testing"

	"github.com/jacoelho/streamfilter/internal/tokenfilter"
)

func drainTokens(t *testing.T, s *Source) []tokenfilter.Token {
	t.Helper()
	var got []tokenfilter.Token
	for {
		tok, err := s.NextToken()
		if err != nil {
			t.Fatalf("NextToken() error = %v", err)
		}
		if tok == tokenfilter.NoToken {
			return got
		}
		got = append(got, tok)
	}
}

func TestSource_Scalars(t *testing.T) {
	t.Parallel()

	s := New(strings.NewReader(`"hello"`))
	tok, err := s.NextToken()
	if err != nil {
		t.Fatalf("NextToken() error = %v", err)
	}
	if tok != tokenfilter.ValueString {
		t.Fatalf("token = %v, want ValueString", tok)
	}
	text, err := s.TextValue()
	if err != nil || text != "hello" {
		t.Errorf("TextValue() = %q, %v, want hello, nil", text, err)
	}
}

func TestSource_ObjectKeysVsStrings(t *testing.T) {
	t.Parallel()

	s := New(strings.NewReader(`{"a": "b", "c": ["d", "e"]}`))

	want := []struct {
		tok  tokenfilter.Token
		name string
		text string
	}{
		{tokenfilter.StartObject, "", ""},
		{tokenfilter.PropertyName, "a", "a"},
		{tokenfilter.ValueString, "", "b"},
		{tokenfilter.PropertyName, "c", "c"},
		{tokenfilter.StartArray, "", ""},
		{tokenfilter.ValueString, "", "d"},
		{tokenfilter.ValueString, "", "e"},
		{tokenfilter.EndArray, "", ""},
		{tokenfilter.EndObject, "", ""},
	}

	for i, w := range want {
		tok, err := s.NextToken()
		if err != nil {
			t.Fatalf("token %d: NextToken() error = %v", i, err)
		}
		if tok != w.tok {
			t.Fatalf("token %d = %v, want %v", i, tok, w.tok)
		}
		if w.name != "" && s.CurrentName() != w.name {
			t.Errorf("token %d: CurrentName() = %q, want %q", i, s.CurrentName(), w.name)
		}
		if w.text != "" {
			text, err := s.TextValue()
			if err != nil || text != w.text {
				t.Errorf("token %d: TextValue() = %q, %v, want %q", i, text, err, w.text)
			}
		}
	}

	tok, err := s.NextToken()
	if err != nil || tok != tokenfilter.NoToken {
		t.Errorf("final NextToken() = %v, %v, want NoToken, nil", tok, err)
	}
}

func TestSource_NumberAndBoolAndNull(t *testing.T) {
	t.Parallel()

	s := New(strings.NewReader(`[1.5, true, null]`))
	got := drainTokens(t, s)
	want := []tokenfilter.Token{
		tokenfilter.StartArray,
		tokenfilter.ValueNumber,
		tokenfilter.ValueBool,
		tokenfilter.ValueNull,
		tokenfilter.EndArray,
	}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSource_SkipChildren(t *testing.T) {
	t.Parallel()

	s := New(strings.NewReader(`{"skip": {"a": [1, 2, 3]}, "keep": "x"}`))

	tok, _ := s.NextToken() // StartObject
	if tok != tokenfilter.StartObject {
		t.Fatalf("got %v, want StartObject", tok)
	}
	tok, _ = s.NextToken() // PropertyName "skip"
	if tok != tokenfilter.PropertyName || s.CurrentName() != "skip" {
		t.Fatalf("got %v %q, want PropertyName skip", tok, s.CurrentName())
	}
	tok, _ = s.NextToken() // StartObject (the value of "skip")
	if tok != tokenfilter.StartObject {
		t.Fatalf("got %v, want StartObject", tok)
	}
	if err := s.SkipChildren(); err != nil {
		t.Fatalf("SkipChildren() error = %v", err)
	}

	tok, err := s.NextToken()
	if err != nil {
		t.Fatalf("NextToken() error = %v", err)
	}
	if tok != tokenfilter.PropertyName || s.CurrentName() != "keep" {
		t.Fatalf("after SkipChildren, got %v %q, want PropertyName keep", tok, s.CurrentName())
	}
}
