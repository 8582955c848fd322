package tokenfilter

import "testing"

func TestToken_IsScalar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tok  Token
		want bool
	}{
		{ValueString, true},
		{ValueNumber, true},
		{ValueBool, true},
		{ValueNull, true},
		{StartObject, false},
		{EndArray, false},
		{PropertyName, false},
		{NoToken, false},
	}
	for _, tt := range tests {
		if got := tt.tok.IsScalar(); got != tt.want {
			t.Errorf("%v.IsScalar() = %t, want %t", tt.tok, got, tt.want)
		}
	}
}

func TestToken_StartEnd(t *testing.T) {
	t.Parallel()

	if !StartObject.IsStructStart() || !StartArray.IsStructStart() {
		t.Error("StartObject/StartArray should be struct starts")
	}
	if !EndObject.IsStructEnd() || !EndArray.IsStructEnd() {
		t.Error("EndObject/EndArray should be struct ends")
	}
	if ValueString.IsStructStart() || ValueString.IsStructEnd() {
		t.Error("ValueString should be neither")
	}
}

func TestToken_String(t *testing.T) {
	t.Parallel()

	tests := map[Token]string{
		NoToken:      "NoToken",
		StartObject:  "StartObject",
		EndObject:    "EndObject",
		StartArray:   "StartArray",
		EndArray:     "EndArray",
		PropertyName: "PropertyName",
		ValueString:  "ValueString",
		ValueNumber:  "ValueNumber",
		ValueBool:    "ValueBool",
		ValueNull:    "ValueNull",
		Token(999):   "Unknown",
	}
	for tok, want := range tests {
		if got := tok.String(); got != want {
			t.Errorf("Token(%d).String() = %q, want %q", tok, got, want)
		}
	}
}
