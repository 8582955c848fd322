package tokenfilter

// Filter is a tree of inclusion decisions paralleling the document
// structure, but never materialized: each node returns the child filter
// lazily, on demand, as the cursor walks the stream.
//
// A filter returning itself means "keep deciding child by child". A
// filter returning nil means "drop the entire value, including its
// subtree". A filter returning IncludeAll means "emit this subtree
// without further consultation" — IncludeAll short-circuits every
// descendant decision inside its subtree.
type Filter interface {
	// IncludeElement decides the filter for the array element at index,
	// or nil to drop it, or IncludeAll.
	IncludeElement(index int) Filter

	// IncludeProperty decides the filter for the object property named
	// name, or nil to drop it, or IncludeAll.
	IncludeProperty(name string) Filter

	// IncludeValue decides whether to keep a leaf scalar. accessor
	// exposes the scalar's text/number/bool payload without requiring
	// the filter to know which one applies.
	IncludeValue(accessor ScalarAccessor) bool

	// FilterStartObject/FilterStartArray refine the filter at a
	// container's start: return f itself to keep deciding property by
	// property or element by element, a different Filter, nil to drop
	// the whole container, or IncludeAll.
	FilterStartObject() Filter
	FilterStartArray() Filter

	// FilterFinishObject/FilterFinishArray notify the filter that a
	// container it was consulted for has closed.
	FilterFinishObject()
	FilterFinishArray()

	// IncludeEmptyObject/IncludeEmptyArray decide whether to synthesize
	// an empty container when nothing inside it matched. hasName /
	// hasIndex report whether the container had at least one property
	// name or element observed before closing.
	IncludeEmptyObject(hasName bool) bool
	IncludeEmptyArray(hasIndex bool) bool
}

// ScalarAccessor exposes a scalar token's payload to IncludeValue
// without committing to a single representation.
type ScalarAccessor interface {
	Token() Token
	TextValue() (string, error)
}

// Base is a ready-to-use permissive filter: it keeps deciding
// child-by-child (returns itself, never IncludeAll) and accepts every
// leaf. Each accepted leaf counts against the match budget (with
// allowMultiple disabled only the first leaf surfaces), and under
// IncludeAllAndPath an accepted leaf triggers replay of its enclosing
// path. Useful directly, e.g. to exercise the cursor's plumbing with a
// filter that never rejects anything.
//
// Base is not meant to be embedded: because Go has no virtual dispatch,
// a struct embedding Base that overrides only some methods would still
// have the embedded methods return a bare Base, silently discarding the
// override for descendants. Implement Filter directly instead.
type Base struct{}

func (Base) IncludeElement(int) Filter        { return Base{} }
func (Base) IncludeProperty(string) Filter    { return Base{} }
func (Base) IncludeValue(ScalarAccessor) bool { return true }
func (Base) FilterStartObject() Filter        { return Base{} }
func (Base) FilterStartArray() Filter         { return Base{} }
func (Base) FilterFinishObject()              {}
func (Base) FilterFinishArray()               {}
func (Base) IncludeEmptyObject(bool) bool     { return false }
func (Base) IncludeEmptyArray(bool) bool      { return false }

// includeAll is the concrete type behind the IncludeAll sentinel.
// Its methods are never called: every code path that would consult a
// filter checks identity against IncludeAll first and skips the call
// entirely, matching the pointer-identity semantics called for in the
// design (a distinguished singleton, not a filter that "happens" to
// accept everything).
type includeAll struct{}

func (includeAll) IncludeElement(int) Filter        { panic("tokenfilter: IncludeAll must not be consulted") }
func (includeAll) IncludeProperty(string) Filter    { panic("tokenfilter: IncludeAll must not be consulted") }
func (includeAll) IncludeValue(ScalarAccessor) bool { panic("tokenfilter: IncludeAll must not be consulted") }
func (includeAll) FilterStartObject() Filter        { panic("tokenfilter: IncludeAll must not be consulted") }
func (includeAll) FilterStartArray() Filter         { panic("tokenfilter: IncludeAll must not be consulted") }
func (includeAll) FilterFinishObject()              {}
func (includeAll) FilterFinishArray()               {}
func (includeAll) IncludeEmptyObject(bool) bool     { return false }
func (includeAll) IncludeEmptyArray(bool) bool      { return false }

// IncludeAll is the distinguished sentinel meaning "emit this subtree
// without further consultation". Compare against it with ==; a user
// filter that merely happens to accept everything is not IncludeAll.
var IncludeAll Filter = includeAll{}

// Inclusion governs how enclosing path tokens and scalar nulls are
// treated once a descendant has been included.
type Inclusion int

const (
	// OnlyIncludeAll emits only the tokens for which a filter returned
	// IncludeAll; enclosing containers and property names are suppressed.
	OnlyIncludeAll Inclusion = iota

	// IncludeAllAndPath additionally emits the enclosing start-markers
	// and property names on the path from the current IncludeAll root
	// down to an included descendant, in original order.
	IncludeAllAndPath

	// IncludeNonNull behaves like IncludeAllAndPath but never emits a
	// scalar null even when the filter accepts it.
	IncludeNonNull
)

func (i Inclusion) String() string {
	switch i {
	case OnlyIncludeAll:
		return "OnlyIncludeAll"
	case IncludeAllAndPath:
		return "IncludeAllAndPath"
	case IncludeNonNull:
		return "IncludeNonNull"
	default:
		return "Unknown"
	}
}
