// Package jsonsource adapts an encoding/json.Decoder into a
// tokenfilter.Source.
package jsonsource

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jacoelho/streamfilter/internal/tokenfilter"
)

type frame struct {
	isObject bool
	needKey  bool
}

// Source is a tokenfilter.Source backed by a streaming JSON decoder. It
// tracks just enough container state (mirroring the JSON grammar's own
// key/value alternation inside objects) to disambiguate the decoder's
// bare string tokens between property names and string values, which
// encoding/json.Decoder itself does not distinguish.
type Source struct {
	dec   *json.Decoder
	stack []frame

	current Token
	name    string
	text    string
	num     json.Number
	boolean bool
}

type Token = tokenfilter.Token

// New wraps r as a tokenfilter.Source, decoding numbers as json.Number
// so the original textual representation survives round-tripping.
func New(r io.Reader) *Source {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Source{dec: dec}
}

func (s *Source) NextToken() (tokenfilter.Token, error) {
	raw, err := s.dec.Token()
	if err == io.EOF {
		s.current = tokenfilter.NoToken
		return tokenfilter.NoToken, nil
	}
	if err != nil {
		return tokenfilter.NoToken, err
	}

	switch v := raw.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{isObject: true, needKey: true})
			s.current = tokenfilter.StartObject
		case '[':
			s.stack = append(s.stack, frame{})
			s.current = tokenfilter.StartArray
		case '}':
			s.popFrame()
			s.current = tokenfilter.EndObject
		case ']':
			s.popFrame()
			s.current = tokenfilter.EndArray
		default:
			return tokenfilter.NoToken, fmt.Errorf("jsonsource: unexpected delimiter %q", v)
		}

	case string:
		if s.expectingKey() {
			s.name = v
			s.markKeyRead()
			s.current = tokenfilter.PropertyName
		} else {
			s.text = v
			s.afterValue()
			s.current = tokenfilter.ValueString
		}

	case json.Number:
		s.num = v
		s.text = v.String()
		s.afterValue()
		s.current = tokenfilter.ValueNumber

	case bool:
		s.boolean = v
		s.afterValue()
		s.current = tokenfilter.ValueBool

	case nil:
		s.afterValue()
		s.current = tokenfilter.ValueNull

	default:
		return tokenfilter.NoToken, fmt.Errorf("jsonsource: unexpected token type %T", raw)
	}

	return s.current, nil
}

func (s *Source) expectingKey() bool {
	n := len(s.stack)
	return n > 0 && s.stack[n-1].isObject && s.stack[n-1].needKey
}

func (s *Source) markKeyRead() {
	s.stack[len(s.stack)-1].needKey = false
}

// afterValue flags the enclosing object (if any) as expecting a key
// again, now that a property's value has been fully consumed.
func (s *Source) afterValue() {
	if n := len(s.stack); n > 0 && s.stack[n-1].isObject {
		s.stack[n-1].needKey = true
	}
}

func (s *Source) popFrame() {
	s.stack = s.stack[:len(s.stack)-1]
	s.afterValue()
}

func (s *Source) CurrentName() string { return s.name }

func (s *Source) TextValue() (string, error) {
	if s.current == tokenfilter.PropertyName {
		return s.name, nil
	}
	return s.text, nil
}

func (s *Source) NumberValue() (json.Number, error) { return s.num, nil }

func (s *Source) BoolValue() (bool, error) { return s.boolean, nil }

// SkipChildren advances past the remainder of the current container by
// re-driving NextToken until the matching close, keeping the decoder's
// key/value bookkeeping consistent.
func (s *Source) SkipChildren() error {
	if s.current != tokenfilter.StartObject && s.current != tokenfilter.StartArray {
		return nil
	}
	depth := 1
	for depth > 0 {
		t, err := s.NextToken()
		if err != nil {
			return err
		}
		if t == tokenfilter.NoToken {
			return io.ErrUnexpectedEOF
		}
		switch {
		case t.IsStructStart():
			depth++
		case t.IsStructEnd():
			depth--
		}
	}
	return nil
}
