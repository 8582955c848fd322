package tokenfilter

import "encoding/json"

// Token identifies the kind of the last token read from a Source or
// emitted by a Cursor.
type Token int

const (
	NoToken Token = iota
	StartObject
	EndObject
	StartArray
	EndArray
	PropertyName
	ValueString
	ValueNumber
	ValueBool
	ValueNull
)

// IsScalar reports whether t is a leaf value (string, number, bool, or null).
func (t Token) IsScalar() bool {
	switch t {
	case ValueString, ValueNumber, ValueBool, ValueNull:
		return true
	default:
		return false
	}
}

// IsStructStart reports whether t opens a container.
func (t Token) IsStructStart() bool {
	return t == StartObject || t == StartArray
}

// IsStructEnd reports whether t closes a container.
func (t Token) IsStructEnd() bool {
	return t == EndObject || t == EndArray
}

func (t Token) String() string {
	switch t {
	case NoToken:
		return "NoToken"
	case StartObject:
		return "StartObject"
	case EndObject:
		return "EndObject"
	case StartArray:
		return "StartArray"
	case EndArray:
		return "EndArray"
	case PropertyName:
		return "PropertyName"
	case ValueString:
		return "ValueString"
	case ValueNumber:
		return "ValueNumber"
	case ValueBool:
		return "ValueBool"
	case ValueNull:
		return "ValueNull"
	default:
		return "Unknown"
	}
}

// Source is the opaque forward cursor over tokens that a Cursor filters.
// It carries no rewind capability beyond the single current token: every
// method reports information about the token most recently returned by
// NextToken.
//
// Source is the concrete stand-in for the upstream token producer that
// tokenfilter treats as an external collaborator: decoding, location
// tracking, and error reporting all live on the implementation, not here.
type Source interface {
	// NextToken advances to and returns the next token, or NoToken with
	// a nil error at end of stream.
	NextToken() (Token, error)

	// CurrentName returns the property name for the current
	// PropertyName token. Undefined for any other token.
	CurrentName() string

	// TextValue returns the current token's value as text: the string
	// value for ValueString, the name for PropertyName, or the decimal
	// text for ValueNumber.
	TextValue() (string, error)

	// NumberValue returns the current token's numeric value. Only
	// valid when the current token is ValueNumber.
	NumberValue() (json.Number, error)

	// BoolValue returns the current token's boolean value. Only valid
	// when the current token is ValueBool.
	BoolValue() (bool, error)

	// SkipChildren advances past the remainder of the current
	// container. Only valid when the current token is StartObject or
	// StartArray; a no-op otherwise.
	SkipChildren() error
}
