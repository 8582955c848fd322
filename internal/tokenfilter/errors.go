package tokenfilter

import "errors"

var (
	// ErrUpstream wraps any error returned by a Source: decode failures,
	// truncated input, or a broken SkipChildren.
	ErrUpstream = errors.New("tokenfilter: upstream read failed")

	// ErrInternal marks a violated invariant of the cursor's own shadow
	// stack, such as a replay chain that ran past head without finding a
	// pending token. It should never surface for a well-formed Source.
	ErrInternal = errors.New("tokenfilter: internal invariant violated")

	// ErrUnsupported marks an operation the cursor deliberately does not
	// implement, such as overriding the current name mid-filter.
	ErrUnsupported = errors.New("tokenfilter: unsupported operation")
)
