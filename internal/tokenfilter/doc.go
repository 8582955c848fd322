// Package tokenfilter provides an O(depth) memory transformer that sits
// between a producer of a structured token stream (objects, arrays,
// property names, scalars, plus start/end markers) and a consumer, and
// re-exposes that stream with tokens a caller-supplied TokenFilter
// rejects dropped.
//
// Container values whose inclusion depends on a not-yet-seen descendant
// are handled by buffering the container's start marker and any pending
// property name in the frame's own replay queue; once a descendant earns
// inclusion, the cursor drains that queue (the "exposed" context) before
// resuming live forwarding from the "head" context. Scalars and entire
// rejected subtrees are never buffered — only the decision to include or
// drop a start marker or property name can be deferred.
package tokenfilter
