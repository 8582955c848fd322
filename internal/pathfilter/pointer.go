// Package pathfilter provides concrete tokenfilter.Filter implementations
// selecting a single JSON-pointer-shaped path or a JSONPath expression
// out of a streamed document.
package pathfilter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/streamfilter/internal/tokenfilter"
)

// Pointer is a tokenfilter.Filter matching one JSON Pointer, extended
// with a "*" segment matching any property name or array index (RFC
// 6901 itself has no wildcard; this is a streamfilter extension). A "*"
// segment is always the wildcard: there is no escape form that selects
// only a literal "*" key. Each frame advances pos by one segment on an exact or wildcard
// match; reaching the last segment yields tokenfilter.IncludeAll for
// that value.
type Pointer struct {
	segments []string
	pos      int
}

// NewPointer compiles a JSON Pointer such as "/b/c" or "/a/0/x" into a
// root Filter. The empty pointer "" selects the entire document.
func NewPointer(pointer string) (tokenfilter.Filter, error) {
	if pointer == "" {
		return tokenfilter.IncludeAll, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("pathfilter: pointer %q must start with '/'", pointer)
	}
	raw := strings.Split(pointer[1:], "/")
	segments := make([]string, len(raw))
	for i, seg := range raw {
		segments[i] = unescapeToken(seg)
	}
	return &Pointer{segments: segments}, nil
}

func unescapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

func (p *Pointer) advance() tokenfilter.Filter {
	next := p.pos + 1
	if next == len(p.segments) {
		return tokenfilter.IncludeAll
	}
	return &Pointer{segments: p.segments, pos: next}
}

func (p *Pointer) IncludeElement(index int) tokenfilter.Filter {
	if p.pos >= len(p.segments) {
		return nil
	}
	seg := p.segments[p.pos]
	if seg != "*" && seg != strconv.Itoa(index) {
		return nil
	}
	return p.advance()
}

func (p *Pointer) IncludeProperty(name string) tokenfilter.Filter {
	if p.pos >= len(p.segments) {
		return nil
	}
	seg := p.segments[p.pos]
	if seg != "*" && seg != name {
		return nil
	}
	return p.advance()
}

// IncludeValue always rejects. A matching scalar is reached through the
// tokenfilter.IncludeAll returned for the final segment, which skips
// IncludeValue; the cursor consults it only for a scalar found where
// segments still remain (the pointer runs deeper than the document).
func (p *Pointer) IncludeValue(tokenfilter.ScalarAccessor) bool { return false }

func (p *Pointer) FilterStartObject() tokenfilter.Filter { return p }
func (p *Pointer) FilterStartArray() tokenfilter.Filter  { return p }
func (p *Pointer) FilterFinishObject()                   {}
func (p *Pointer) FilterFinishArray()                    {}
func (p *Pointer) IncludeEmptyObject(bool) bool           { return false }
func (p *Pointer) IncludeEmptyArray(bool) bool            { return false }
