package tokenfilter_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jacoelho/streamfilter/internal/emit"
	"github.com/jacoelho/streamfilter/internal/jsonsource"
	"github.com/jacoelho/streamfilter/internal/pathfilter"
	"github.com/jacoelho/streamfilter/internal/tokenfilter"
)

func runFilter(t *testing.T, input string, filter tokenfilter.Filter, inclusion tokenfilter.Inclusion, multi bool) string {
	t.Helper()

	src := jsonsource.New(strings.NewReader(input))
	cur := tokenfilter.NewCursor(src, filter, inclusion, multi)
	var buf bytes.Buffer
	w := emit.New(&buf)

	for {
		tok, err := cur.NextToken()
		if err != nil {
			t.Fatalf("NextToken() error = %v", err)
		}
		if tok == tokenfilter.NoToken {
			break
		}
		if err := w.WriteToken(tok, cur.CurrentName(), cur); err != nil {
			t.Fatalf("WriteToken() error = %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	return buf.String()
}

func mustPointer(t *testing.T, ptr string) tokenfilter.Filter {
	t.Helper()
	f, err := pathfilter.NewPointer(ptr)
	if err != nil {
		t.Fatalf("NewPointer(%q) error = %v", ptr, err)
	}
	return f
}

func mustJSONPath(t *testing.T, expr string) tokenfilter.Filter {
	t.Helper()
	f, err := pathfilter.CompileJSONPath(expr)
	if err != nil {
		t.Fatalf("CompileJSONPath(%q) error = %v", expr, err)
	}
	return f
}

func TestCursor_Identity(t *testing.T) {
	t.Parallel()

	input := `{"a":1,"b":[true,null,"x"]}`
	got := runFilter(t, input, tokenfilter.IncludeAll, tokenfilter.OnlyIncludeAll, true)
	if got != input {
		t.Errorf("IncludeAll passthrough = %s, want %s", got, input)
	}
}

func TestCursor_OnlyIncludeAll_ScalarProperty(t *testing.T) {
	t.Parallel()

	got := runFilter(t, `{"a":1,"b":2}`, mustPointer(t, "/b"), tokenfilter.OnlyIncludeAll, false)
	if got != "2" {
		t.Errorf("got %s, want 2", got)
	}
}

func TestCursor_OnlyIncludeAll_ArrayIndex(t *testing.T) {
	t.Parallel()

	got := runFilter(t, `[10,20,30]`, mustPointer(t, "/1"), tokenfilter.OnlyIncludeAll, false)
	if got != "20" {
		t.Errorf("got %s, want 20", got)
	}
}

func TestCursor_OnlyIncludeAll_ContainerProperty(t *testing.T) {
	t.Parallel()

	got := runFilter(t, `{"a":1,"b":{"c":2,"d":3}}`, mustPointer(t, "/b"), tokenfilter.OnlyIncludeAll, false)
	if got != `{"c":2,"d":3}` {
		t.Errorf("got %s, want {\"c\":2,\"d\":3}", got)
	}
}

func TestCursor_IncludeAllAndPath_KeepsWrappingPath(t *testing.T) {
	t.Parallel()

	got := runFilter(t, `{"a":1,"b":{"c":2,"d":3}}`, mustPointer(t, "/b/c"), tokenfilter.IncludeAllAndPath, false)
	if got != `{"b":{"c":2}}` {
		t.Errorf("got %s, want {\"b\":{\"c\":2}}", got)
	}
}

func TestCursor_JSONPathWildcard_MultipleMatches(t *testing.T) {
	t.Parallel()

	got := runFilter(t, `{"items":[{"id":1},{"id":2},{"id":3}]}`,
		mustJSONPath(t, "$.items[*].id"), tokenfilter.IncludeAllAndPath, true)
	if got != `{"items":[{"id":1},{"id":2},{"id":3}]}` {
		t.Errorf("got %s", got)
	}
}

func TestCursor_SingleMatchStopsAtFirst(t *testing.T) {
	t.Parallel()

	got := runFilter(t, `{"items":[{"id":1},{"id":2}]}`,
		mustJSONPath(t, "$.items[*].id"), tokenfilter.OnlyIncludeAll, false)
	if got != "1" {
		t.Errorf("got %s, want 1 (first match only, multi disabled)", got)
	}
}

func TestCursor_IncludeNonNull_DropsNullMatch(t *testing.T) {
	t.Parallel()

	// IncludeNonNull emits the enclosing object's markers as soon as its
	// filter is non-nil; only the null value itself is dropped.
	got := runFilter(t, `{"a":null}`, mustPointer(t, "/a"), tokenfilter.IncludeNonNull, false)
	if got != "{}" {
		t.Errorf("got %q, want {} (null match dropped under IncludeNonNull)", got)
	}
}

func TestCursor_NoMatch(t *testing.T) {
	t.Parallel()

	got := runFilter(t, `{"a":1}`, mustPointer(t, "/missing"), tokenfilter.OnlyIncludeAll, false)
	if got != "" {
		t.Errorf("got %q, want empty output for no match", got)
	}
}

func TestCursor_MatchCount(t *testing.T) {
	t.Parallel()

	src := jsonsource.New(strings.NewReader(`{"items":[{"id":1},{"id":2},{"id":3}]}`))
	filter := mustJSONPath(t, "$.items[*].id")
	cur := tokenfilter.NewCursor(src, filter, tokenfilter.OnlyIncludeAll, true)

	for {
		tok, err := cur.NextToken()
		if err != nil {
			t.Fatalf("NextToken() error = %v", err)
		}
		if tok == tokenfilter.NoToken {
			break
		}
	}
	if cur.MatchCount() != 3 {
		t.Errorf("MatchCount() = %d, want 3", cur.MatchCount())
	}
}

func TestCursor_WellFormedOutput(t *testing.T) {
	t.Parallel()

	got := runFilter(t, `{"store":{"book":[{"title":"a","price":10},{"title":"b","price":20}]}}`,
		mustJSONPath(t, "$.store.book[*].title"), tokenfilter.IncludeAllAndPath, true)

	depth := 0
	for _, r := range got {
		switch r {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth < 0 {
				t.Fatalf("unbalanced output: %s", got)
			}
		}
	}
	if depth != 0 {
		t.Fatalf("unbalanced output: %s", got)
	}
}
