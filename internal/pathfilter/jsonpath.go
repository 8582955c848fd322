package pathfilter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/streamfilter/internal/tokenfilter"
	"github.com/theory/jsonpath"
)

// jpSelector decides whether one path segment matches a given object
// property name or array index.
type jpSelector interface {
	matchesName(name string) bool
	matchesIndex(index int) bool
}

type nameSel string

func (n nameSel) matchesName(name string) bool { return string(n) == name }
func (nameSel) matchesIndex(int) bool          { return false }

type wildcardSel struct{}

func (wildcardSel) matchesName(string) bool { return true }
func (wildcardSel) matchesIndex(int) bool   { return true }

type indexSel int

func (i indexSel) matchesName(string) bool  { return false }
func (i indexSel) matchesIndex(idx int) bool { return int(i) == idx }

type sliceSel struct{ start, end, step int }

func (s sliceSel) matchesName(string) bool { return false }
func (s sliceSel) matchesIndex(idx int) bool {
	step := s.step
	if step == 0 {
		step = 1
	}
	if step > 0 {
		return idx >= s.start && idx < s.end && (idx-s.start)%step == 0
	}
	return idx <= s.start && idx > s.end && (s.start-idx)%(-step) == 0
}

// JSONPath is a tokenfilter.Filter matching a restricted subset of
// JSONPath: dotted and bracketed names, wildcards, integer indices, and
// slices. It does not support the descendant operator ('..') or filter
// expressions ('[?...]'): both require either unbounded lookahead or
// whole-value comparison that cannot be decided one token at a time
// while remaining O(depth) in memory, so a streaming Filter cannot
// support them without buffering entire subtrees. Full syntax,
// including those forms, is still validated at compile time against
// github.com/theory/jsonpath so a caller gets a real syntax error rather
// than only "unsupported here".
type JSONPath struct {
	sels []jpSelector
	pos  int
}

// CompileJSONPath compiles expr into a root Filter. The bare root "$"
// selects the entire document.
func CompileJSONPath(expr string) (tokenfilter.Filter, error) {
	if _, err := jsonpath.Parse(expr); err != nil {
		return nil, fmt.Errorf("pathfilter: invalid JSONPath %q: %w", expr, err)
	}
	sels, err := compileSegments(expr)
	if err != nil {
		return nil, err
	}
	if len(sels) == 0 {
		return tokenfilter.IncludeAll, nil
	}
	return &JSONPath{sels: sels}, nil
}

func compileSegments(expr string) ([]jpSelector, error) {
	if !strings.HasPrefix(expr, "$") {
		return nil, fmt.Errorf("pathfilter: JSONPath %q must start with '$'", expr)
	}
	rest := expr[1:]
	var sels []jpSelector

	for i := 0; i < len(rest); {
		switch rest[i] {
		case '.':
			i++
			if i < len(rest) && rest[i] == '.' {
				return nil, fmt.Errorf("pathfilter: descendant segments ('..') are not supported for streaming filtering: %q", expr)
			}
			j := i
			for j < len(rest) && rest[j] != '.' && rest[j] != '[' {
				j++
			}
			name := rest[i:j]
			i = j
			if name == "*" {
				sels = append(sels, wildcardSel{})
			} else {
				sels = append(sels, nameSel(name))
			}

		case '[':
			end := strings.IndexByte(rest[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("pathfilter: unterminated bracket in %q", expr)
			}
			inner := rest[i+1 : i+end]
			i += end + 1
			sel, err := parseBracket(inner, expr)
			if err != nil {
				return nil, err
			}
			sels = append(sels, sel)

		default:
			return nil, fmt.Errorf("pathfilter: unexpected character %q in %q", rest[i], expr)
		}
	}
	return sels, nil
}

func parseBracket(inner, expr string) (jpSelector, error) {
	inner = strings.TrimSpace(inner)
	switch {
	case inner == "*":
		return wildcardSel{}, nil
	case strings.HasPrefix(inner, "'") || strings.HasPrefix(inner, `"`):
		return nameSel(strings.Trim(inner, `'"`)), nil
	case strings.Contains(inner, ":"):
		return parseSlice(inner, expr)
	default:
		n, err := strconv.Atoi(inner)
		if err != nil {
			return nil, fmt.Errorf("pathfilter: unsupported selector [%s] in %q: filter expressions are not supported for streaming filtering", inner, expr)
		}
		return indexSel(n), nil
	}
}

func parseSlice(inner, expr string) (jpSelector, error) {
	parts := strings.Split(inner, ":")
	if len(parts) > 3 {
		return nil, fmt.Errorf("pathfilter: malformed slice [%s] in %q", inner, expr)
	}
	vals := [3]int{0, 1 << 30, 1}
	for i, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("pathfilter: malformed slice [%s] in %q", inner, expr)
		}
		vals[i] = n
	}
	return sliceSel{start: vals[0], end: vals[1], step: vals[2]}, nil
}

func (p *JSONPath) advance() tokenfilter.Filter {
	next := p.pos + 1
	if next == len(p.sels) {
		return tokenfilter.IncludeAll
	}
	return &JSONPath{sels: p.sels, pos: next}
}

func (p *JSONPath) IncludeElement(index int) tokenfilter.Filter {
	if p.pos >= len(p.sels) || !p.sels[p.pos].matchesIndex(index) {
		return nil
	}
	return p.advance()
}

func (p *JSONPath) IncludeProperty(name string) tokenfilter.Filter {
	if p.pos >= len(p.sels) || !p.sels[p.pos].matchesName(name) {
		return nil
	}
	return p.advance()
}

// IncludeValue always rejects: like Pointer, a matching scalar is reached
// through the tokenfilter.IncludeAll returned for the last selector, and
// the cursor consults IncludeValue only for a scalar found where
// selectors still remain.
func (p *JSONPath) IncludeValue(tokenfilter.ScalarAccessor) bool { return false }

func (p *JSONPath) FilterStartObject() tokenfilter.Filter { return p }
func (p *JSONPath) FilterStartArray() tokenfilter.Filter  { return p }
func (p *JSONPath) FilterFinishObject()                   {}
func (p *JSONPath) FilterFinishArray()                    {}
func (p *JSONPath) IncludeEmptyObject(bool) bool           { return false }
func (p *JSONPath) IncludeEmptyArray(bool) bool            { return false }
