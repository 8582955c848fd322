package tokenfilter

import "github.com/jacoelho/streamfilter/internal/stack"

type contextKind uint8

const (
	ctxRoot contextKind = iota
	ctxObject
	ctxArray
)

// FilterContext is one frame per open container on the shadow stack: it
// mirrors the depth of the upstream token stream and records the filter
// in effect for that container, whether its start marker has already
// reached the consumer, and the path component (name or index) of the
// child currently being processed.
//
// A frame's pending replay is fully described by startHandled and
// needToHandleName: at most one buffered start marker and one buffered
// property name are ever outstanding for a frame at once, so no
// separate queue data structure is needed.
type FilterContext struct {
	kind             contextKind
	filter           Filter
	startHandled     bool
	needToHandleName bool
	sawName          bool
	currentName      string
	currentIndex     int
}

// Kind reports whether this frame represents the document root, an
// object, or an array.
func (ctx *FilterContext) Kind() string {
	switch ctx.kind {
	case ctxObject:
		return "OBJECT"
	case ctxArray:
		return "ARRAY"
	default:
		return "ROOT"
	}
}

// Filter returns the TokenFilter in effect for this container.
func (ctx *FilterContext) Filter() Filter { return ctx.filter }

// StartHandled reports whether this frame's start marker has already
// been emitted downstream.
func (ctx *FilterContext) StartHandled() bool { return ctx.startHandled }

// CurrentName returns the path component (property name) most recently
// set for this frame, if any.
func (ctx *FilterContext) CurrentName() string { return ctx.currentName }

// CurrentIndex returns the array index most recently checked for this
// frame, or -1 if no element has been checked yet.
func (ctx *FilterContext) CurrentIndex() int { return ctx.currentIndex }

func (ctx *FilterContext) hasCurrentIndex() bool { return ctx.currentIndex >= 0 }
func (ctx *FilterContext) hasCurrentName() bool  { return ctx.sawName }

// setPropertyName records the property name about to be processed and
// marks it as owing emission. The filter it returns is this frame's own
// filter, unchanged: the property-name step narrows that filter further
// via IncludeProperty, but setPropertyName itself only does bookkeeping.
func (ctx *FilterContext) setPropertyName(name string) Filter {
	ctx.currentName = name
	ctx.needToHandleName = true
	ctx.sawName = true
	return ctx.filter
}

// checkValue refines filter for the child value about to be processed.
// For array elements it advances currentIndex and asks filter to decide
// per-index; for object properties the name step has already narrowed
// the filter, so this is a pass-through.
func (ctx *FilterContext) checkValue(filter Filter) Filter {
	if ctx.kind != ctxArray {
		return filter
	}
	ctx.currentIndex++
	if filter == nil || filter == IncludeAll {
		return filter
	}
	return filter.IncludeElement(ctx.currentIndex)
}

// nextTokenToRead pops the next buffered replay token for this frame:
// the start marker first (if not yet handled), then the pending
// property name (if any). Returns ok=false once both are drained.
func (ctx *FilterContext) nextTokenToRead() (Token, bool) {
	if !ctx.startHandled {
		ctx.startHandled = true
		if ctx.kind == ctxArray {
			return StartArray, true
		}
		return StartObject, true
	}
	if ctx.needToHandleName {
		ctx.needToHandleName = false
		return PropertyName, true
	}
	return NoToken, false
}

// reseedItemFilter re-seeds the frame's own filter as the item filter
// for name, used after a candidate INCLUDE_ALL match is rejected by the
// match budget: the property name step must be redone so a later
// consumer sees the same IncludeProperty decision it would have on a
// fresh pass, rather than being left pointed at the stale IncludeAll
// result.
func (ctx *FilterContext) reseedItemFilter(name string) Filter {
	return ctx.setPropertyName(name)
}

// resetPendingName cancels an outstanding property name and reverts
// currentName to the enclosing frame's, used when an empty container is
// synthesized so a rejected property name from this frame doesn't leak
// into the replay of the next.
func (ctx *FilterContext) resetPendingName(parentName string) {
	ctx.currentName = parentName
	ctx.needToHandleName = false
}

// shadowStack is the cursor's own copy of the upstream parse tree,
// stored as a flat vector indexed by depth rather than a chain of
// parent pointers: because the stack always represents a single active
// path (no sibling frames survive after a pop), "the child of frame i"
// is always frame i+1, and draining the replay of an ancestor toward
// head is a forward walk over indices instead of pointer-chasing.
type shadowStack struct {
	frames *stack.Stack[FilterContext]
}

func newShadowStack(rootFilter Filter) *shadowStack {
	s := &shadowStack{frames: stack.NewWithCapacity[FilterContext](8)}
	s.frames.Push(FilterContext{kind: ctxRoot, filter: rootFilter, startHandled: true, currentIndex: -1})
	return s
}

func (s *shadowStack) headIndex() int { return s.frames.Size() - 1 }

func (s *shadowStack) head() *FilterContext {
	return s.frames.PeekRef()
}

func (s *shadowStack) at(i int) *FilterContext {
	ref, _ := s.frames.At(i)
	return ref
}

func (s *shadowStack) pushObject(filter Filter, startHandled bool) {
	s.frames.Push(FilterContext{kind: ctxObject, filter: filter, startHandled: startHandled, currentIndex: -1})
}

func (s *shadowStack) pushArray(filter Filter, startHandled bool) {
	s.frames.Push(FilterContext{kind: ctxArray, filter: filter, startHandled: startHandled, currentIndex: -1})
}

func (s *shadowStack) pop() (FilterContext, bool) {
	return s.frames.Pop()
}

// findChildOf returns the immediate child frame of the frame at idx, or
// ok=false if idx is already at head (no child exists yet).
func (s *shadowStack) findChildOf(idx int) (int, bool) {
	child := idx + 1
	if child > s.headIndex() {
		return -1, false
	}
	return child, true
}

func (s *shadowStack) parentNameOf(idx int) string {
	if idx == 0 {
		return ""
	}
	return s.at(idx - 1).currentName
}
