package tokenfilter

import "encoding/json"

// Text returns the current token's value as text. For a PropertyName it
// is the property name itself (the shadow stack's own record, since a
// property name replayed from the buffer may no longer be the Source's
// live current token); for a scalar it forwards to the Source.
func (c *Cursor) Text() (string, error) {
	if c.currentToken == PropertyName {
		return c.CurrentName(), nil
	}
	return c.source.TextValue()
}

// TextLength returns len(Text()).
func (c *Cursor) TextLength() (int, error) {
	s, err := c.Text()
	if err != nil {
		return 0, err
	}
	return len(s), nil
}

// TextOffset always returns 0: stream location tracking is out of scope.
func (c *Cursor) TextOffset() int { return 0 }

// HasTextCharacters reports whether Text() reflects the Source's own
// buffer rather than a value synthesized by the cursor.
func (c *Cursor) HasTextCharacters() bool { return c.currentToken != PropertyName }

// ValueAsString is an alias for Text, kept for symmetry with the
// upstream accessor names a caller migrating from a plain Source might
// expect.
func (c *Cursor) ValueAsString() (string, error) { return c.Text() }

// NumberValue forwards to the Source. Only valid when CurrentToken is
// ValueNumber.
func (c *Cursor) NumberValue() (json.Number, error) { return c.source.NumberValue() }

// BoolValue forwards to the Source. Only valid when CurrentToken is
// ValueBool.
func (c *Cursor) BoolValue() (bool, error) { return c.source.BoolValue() }
