// Package emit reconstructs valid JSON text from a filtered token
// sequence, the mirror image of jsonsource: where jsonsource turns bytes
// into tokens, emit turns tokens back into bytes.
package emit

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"

	"github.com/jacoelho/streamfilter/internal/tokenfilter"
)

// ValueSource supplies the payload for scalar tokens. *tokenfilter.Cursor
// satisfies it.
type ValueSource interface {
	Text() (string, error)
	NumberValue() (json.Number, error)
	BoolValue() (bool, error)
}

type frame struct {
	isObject bool
	count    int
}

// Writer serializes a token-at-a-time stream into JSON.
type Writer struct {
	w     *bufio.Writer
	stack []frame
	err   error
}

// New wraps w for writing.
func New(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteToken appends tok to the output. name is the current property
// name for a PropertyName token; values is consulted for scalar tokens.
func (e *Writer) WriteToken(tok tokenfilter.Token, name string, values ValueSource) error {
	switch tok {
	case tokenfilter.StartObject:
		e.beforeValue()
		e.writeByte('{')
		e.stack = append(e.stack, frame{isObject: true})
	case tokenfilter.StartArray:
		e.beforeValue()
		e.writeByte('[')
		e.stack = append(e.stack, frame{})
	case tokenfilter.EndObject:
		e.writeByte('}')
		e.pop()
	case tokenfilter.EndArray:
		e.writeByte(']')
		e.pop()
	case tokenfilter.PropertyName:
		e.beforeKey()
		e.writeJSON(name)
	case tokenfilter.ValueString:
		e.beforeValue()
		s, err := values.Text()
		e.fail(err)
		e.writeJSON(s)
	case tokenfilter.ValueNumber:
		e.beforeValue()
		n, err := values.NumberValue()
		e.fail(err)
		e.writeString(n.String())
	case tokenfilter.ValueBool:
		e.beforeValue()
		b, err := values.BoolValue()
		e.fail(err)
		e.writeString(strconv.FormatBool(b))
	case tokenfilter.ValueNull:
		e.beforeValue()
		e.writeString("null")
	}
	return e.err
}

// Flush drains the underlying buffer and returns the first error
// encountered by WriteToken or Flush itself.
func (e *Writer) Flush() error {
	e.fail(e.w.Flush())
	return e.err
}

func (e *Writer) top() *frame { return &e.stack[len(e.stack)-1] }

func (e *Writer) pop() {
	if len(e.stack) > 0 {
		e.stack = e.stack[:len(e.stack)-1]
	}
}

// beforeValue writes the separator preceding a value: a colon inside an
// object (the PropertyName step already placed the comma), a comma
// before any array element after the first, nothing at the document
// root.
func (e *Writer) beforeValue() {
	if len(e.stack) == 0 {
		return
	}
	f := e.top()
	if f.isObject {
		e.writeByte(':')
		return
	}
	if f.count > 0 {
		e.writeByte(',')
	}
	f.count++
}

func (e *Writer) beforeKey() {
	f := e.top()
	if f.count > 0 {
		e.writeByte(',')
	}
	f.count++
}

func (e *Writer) writeByte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *Writer) writeString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *Writer) writeJSON(s string) {
	if e.err != nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		e.err = err
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *Writer) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}
