package tokenfilter

// NameMatcher maps a property name to an application-defined index, used
// by Cursor.NextNameMatch to let a caller dispatch on property names
// without allocating a string per comparison.
type NameMatcher interface {
	MatchName(name string) int
}

// NameMatch is the three-way result of Cursor.NextNameMatch: a matcher
// index for a resolved property name, or one of the two sentinels below
// when the current token isn't a matched property name.
type NameMatch int

// Sentinel results returned by NextNameMatch when the current token
// isn't a matched property name.
const (
	MatchOddToken  NameMatch = -2
	MatchEndObject NameMatch = -1
)
