package tokenfilter

import "fmt"

// Cursor filters the token stream produced by a Source according to a
// Filter, exposing the result through the same pull-based NextToken
// shape the Source itself uses.
//
// Internally it keeps two notions of "current position": head, the
// frame matching the Source's live position, and (while draining a
// buffered container) exposed, the frame currently being replayed on
// the way back up to head. Only one of the two is active at a time.
type Cursor struct {
	source     Source
	inclusion  Inclusion
	allowMulti bool

	stack        *shadowStack
	itemFilter   Filter
	exposedIdx   int // -1 when not draining a buffered subtree
	lastUpstream Token

	currentToken Token
	lastCleared  Token
	matchCount   int
}

// NewCursor builds a Cursor that filters source through filter. inclusion
// selects how enclosing containers and nulls are treated; allowMultiple
// permits more than one IncludeAll match to surface (false drops every
// match after the first).
func NewCursor(source Source, filter Filter, inclusion Inclusion, allowMultiple bool) *Cursor {
	return &Cursor{
		source:     source,
		inclusion:  inclusion,
		allowMulti: allowMultiple,
		stack:      newShadowStack(filter),
		itemFilter: filter,
		exposedIdx: -1,
	}
}

// CurrentToken returns the token most recently returned by NextToken.
func (c *Cursor) CurrentToken() Token     { return c.currentToken }
func (c *Cursor) HasCurrentToken() bool   { return c.currentToken != NoToken }
func (c *Cursor) CurrentTokenID() int     { return int(c.currentToken) }
func (c *Cursor) HasTokenID(id int) bool  { return int(c.currentToken) == id }
func (c *Cursor) HasToken(t Token) bool   { return c.currentToken == t }
func (c *Cursor) MatchCount() int         { return c.matchCount }
func (c *Cursor) LastClearedToken() Token { return c.lastCleared }

// ClearCurrentToken discards the current token as if it had never been
// read, remembering it as LastClearedToken.
func (c *Cursor) ClearCurrentToken() {
	if c.currentToken != NoToken {
		c.lastCleared = c.currentToken
		c.currentToken = NoToken
	}
}

// StreamContext returns the shadow frame the cursor is currently
// positioned in: the frame being drained if a buffered subtree is being
// replayed, otherwise head. The returned pointer is valid only until the
// next call to NextToken.
func (c *Cursor) StreamContext() *FilterContext {
	return c.stack.at(c.activeIndex())
}

func (c *Cursor) activeIndex() int {
	if c.exposedIdx != -1 {
		return c.exposedIdx
	}
	return c.stack.headIndex()
}

// CurrentName returns the property name associated with the current
// token: for a start marker, the enclosing frame's name (a container
// itself is unnamed, only its slot is); otherwise the active frame's own
// name.
func (c *Cursor) CurrentName() string {
	idx := c.activeIndex()
	if c.currentToken == StartObject || c.currentToken == StartArray {
		if idx == 0 {
			return ""
		}
		return c.stack.at(idx - 1).currentName
	}
	return c.stack.at(idx).currentName
}

func (c *Cursor) verifyAllowedMatches() bool {
	if c.matchCount == 0 || c.allowMulti {
		c.matchCount++
		return true
	}
	return false
}

// NextToken advances the cursor and returns the next surviving token, or
// NoToken with a nil error once the filtered stream is exhausted.
func (c *Cursor) NextToken() (Token, error) {
	// Once a single IncludeAll scalar match has already been surfaced
	// under OnlyIncludeAll with allowMultiple disabled, there is nothing
	// left this cursor will ever emit.
	if !c.allowMulti && c.currentToken != NoToken && c.exposedIdx == -1 {
		head := c.stack.head()
		if c.currentToken.IsScalar() && !head.startHandled &&
			c.inclusion == OnlyIncludeAll && c.itemFilter == IncludeAll {
			c.currentToken = NoToken
			return NoToken, nil
		}
	}

	if c.exposedIdx != -1 {
		return c.drain()
	}
	return c.readLive()
}

// drain replays buffered start-markers and property names from the
// exposed frame up to head, one token per call, falling through to a
// live PROPERTY_NAME read once head itself is fully drained.
func (c *Cursor) drain() (Token, error) {
	for {
		ctx := c.stack.at(c.exposedIdx)
		if tok, ok := ctx.nextTokenToRead(); ok {
			c.currentToken = tok
			return tok, nil
		}

		if c.exposedIdx == c.stack.headIndex() {
			c.exposedIdx = -1
			head := c.stack.head()

			if head.kind == ctxArray {
				t := c.lastUpstream
				c.currentToken = t
				if t == EndArray {
					c.stack.pop()
					c.itemFilter = c.stack.head().filter
				}
				return t, nil
			}

			t := c.lastUpstream
			if t == EndObject {
				c.stack.pop()
				c.itemFilter = c.stack.head().filter
			}
			if t != PropertyName {
				c.currentToken = t
				return t, nil
			}
			// The property name itself was already matched and replayed
			// by nextTokenToRead above when this was a buffered-lookahead
			// find: itemFilter is already IncludeAll, and re-resolving it
			// here would spend the match budget a second time. Only a
			// genuinely unresolved property name goes through
			// consumePropertyName again.
			if c.itemFilter == IncludeAll {
				return c.readLive()
			}
			return c.consumePropertyName(c.source.CurrentName())
		}

		child, ok := c.stack.findChildOf(c.exposedIdx)
		if !ok {
			return NoToken, fmt.Errorf("%w: replay chain broken while draining buffered subtree", ErrInternal)
		}
		c.exposedIdx = child
	}
}

// readLive pulls fresh tokens from the Source and applies the filter at
// head, looping until a token survives or the stream ends.
func (c *Cursor) readLive() (Token, error) {
	for {
		t, err := c.source.NextToken()
		if err != nil {
			return NoToken, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		c.lastUpstream = t
		if t == NoToken {
			c.currentToken = NoToken
			return NoToken, nil
		}

		var (
			tok      Token
			produced bool
		)
		switch {
		case t.IsStructStart():
			tok, produced, err = c.handleStart(t)
		case t.IsStructEnd():
			tok, produced, err = c.handleEnd(t == EndArray)
		case t == PropertyName:
			result, perr := c.consumePropertyName(c.source.CurrentName())
			tok, produced, err = result, result != NoToken, perr
		default:
			tok, produced, err = c.consumeScalar(t)
		}
		if err != nil {
			return NoToken, err
		}
		if produced {
			return tok, nil
		}
	}
}

func (c *Cursor) pushChild(isArray bool, filter Filter, startHandled bool) {
	if isArray {
		c.stack.pushArray(filter, startHandled)
	} else {
		c.stack.pushObject(filter, startHandled)
	}
}

// handleStart implements live START_ARRAY/START_OBJECT handling: head is
// already exposed, so a container pushed with startHandled=true is
// returned directly with no need to drain anything.
func (c *Cursor) handleStart(t Token) (Token, bool, error) {
	isArray := t == StartArray
	f := c.itemFilter

	if f == IncludeAll {
		c.pushChild(isArray, IncludeAll, true)
		c.currentToken = t
		return t, true, nil
	}
	if f == nil {
		if err := c.source.SkipChildren(); err != nil {
			return NoToken, false, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return NoToken, false, nil
	}

	f = c.stack.head().checkValue(f)
	if f == nil {
		if err := c.source.SkipChildren(); err != nil {
			return NoToken, false, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return NoToken, false, nil
	}
	if f != IncludeAll {
		if isArray {
			f = f.FilterStartArray()
		} else {
			f = f.FilterStartObject()
		}
	}
	c.itemFilter = f

	if f == IncludeAll {
		c.pushChild(isArray, IncludeAll, true)
		c.currentToken = t
		return t, true, nil
	}
	if f != nil && c.inclusion == IncludeNonNull {
		c.pushChild(isArray, f, true)
		c.currentToken = t
		return t, true, nil
	}

	c.pushChild(isArray, f, false)
	if c.inclusion == IncludeAllAndPath {
		buffRoot := c.stack.headIndex()
		tok, found, err := c.bufferedLookahead(buffRoot)
		if err != nil {
			return NoToken, false, err
		}
		if found {
			return tok, true, nil
		}
	}
	return NoToken, false, nil
}

func (c *Cursor) handleEnd(isArray bool) (Token, bool, error) {
	head := c.stack.head()
	returnEnd := head.startHandled
	f := head.filter

	if f != nil && f != IncludeAll {
		var includeEmpty bool
		if isArray {
			includeEmpty = f.IncludeEmptyArray(head.hasCurrentIndex())
			f.FilterFinishArray()
		} else {
			// Calls IncludeEmptyArray rather than IncludeEmptyObject here;
			// see the empty-container synthesis note in DESIGN.md.
			includeEmpty = f.IncludeEmptyArray(head.hasCurrentName())
			f.FilterFinishObject()
		}
		if includeEmpty {
			headIdx := c.stack.headIndex()
			if !isArray {
				head.resetPendingName(c.stack.parentNameOf(headIdx))
			}
			tok, err := c.nextBuffered(headIdx)
			if err != nil {
				return NoToken, false, err
			}
			return tok, true, nil
		}
	}

	c.stack.pop()
	c.itemFilter = c.stack.head().filter
	if returnEnd {
		tok := EndObject
		if isArray {
			tok = EndArray
		}
		c.currentToken = tok
		return tok, true, nil
	}
	return NoToken, false, nil
}

// consumePropertyName implements live PROPERTY_NAME handling, shared by
// readLive and by drain's fallthrough once a drained frame's replay is
// exhausted but the Source's current token turns out to be a property
// name rather than an end marker. Returns NoToken (with a nil error) to
// signal "keep looping" to a live caller.
func (c *Cursor) consumePropertyName(name string) (Token, error) {
	head := c.stack.head()
	f := head.setPropertyName(name)

	if f == IncludeAll {
		c.itemFilter = f
		c.currentToken = PropertyName
		return PropertyName, nil
	}
	if f == nil {
		return NoToken, c.skipPropertyValue()
	}

	f = f.IncludeProperty(name)
	if f == nil {
		return NoToken, c.skipPropertyValue()
	}
	c.itemFilter = f

	if f == IncludeAll {
		if c.verifyAllowedMatches() {
			if c.inclusion == IncludeAllAndPath {
				c.currentToken = PropertyName
				return PropertyName, nil
			}
			return NoToken, nil
		}
		return NoToken, c.skipPropertyValue()
	}

	if c.inclusion != OnlyIncludeAll {
		buffRootIdx := c.stack.headIndex()
		tok, found, err := c.bufferedLookahead(buffRootIdx)
		if err != nil {
			return NoToken, err
		}
		if found {
			c.currentToken = tok
			return tok, nil
		}
	}
	return NoToken, nil
}

func (c *Cursor) skipPropertyValue() error {
	if _, err := c.source.NextToken(); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := c.source.SkipChildren(); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// consumeScalar handles a live leaf value. needsCount tracks whether this
// call is the moment the filter transitions to IncludeAll (an array index
// or a scalar-level IncludeValue decision) as opposed to a scalar whose
// enclosing property name already resolved to IncludeAll one token
// earlier: that earlier transition already claimed the match budget, so
// verifyAllowedMatches must not run a second time for the same match.
func (c *Cursor) consumeScalar(t Token) (Token, bool, error) {
	f := c.itemFilter
	included := false
	needsCount := false

	switch {
	case f == IncludeAll:
		included = true
	case f != nil:
		refined := c.stack.head().checkValue(f)
		if refined == IncludeAll {
			included = true
			needsCount = true
		} else if refined != nil {
			included = refined.IncludeValue(sourceAccessor{token: t, src: c.source})
			needsCount = included
		}
	}

	if included && c.inclusion == IncludeNonNull && t == ValueNull {
		included = false
	}
	if included && needsCount {
		included = c.verifyAllowedMatches()
	}
	if included {
		c.currentToken = t
		return t, true, nil
	}
	return NoToken, false, nil
}

// nextBuffered sets the exposed frame to idx and drains it, returning
// the first replayed token.
func (c *Cursor) nextBuffered(idx int) (Token, error) {
	c.exposedIdx = idx
	return c.drain()
}

// bufferedLookahead pulls tokens directly from the Source, bypassing
// head's own replay bookkeeping, searching for the first descendant that
// earns inclusion. buffRootIdx names the frame whose replay should be
// drained once one is found. If the buffered subtree closes (its own end
// marker reached) without any descendant matching, found is false, unless
// the buffer root's start marker was already emitted: then that end
// marker is returned with found=true.
func (c *Cursor) bufferedLookahead(buffRootIdx int) (Token, bool, error) {
	for {
		t, err := c.source.NextToken()
		if err != nil {
			return NoToken, false, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		c.lastUpstream = t
		if t == NoToken {
			return NoToken, false, nil
		}

		switch t {
		case StartArray:
			f := c.stack.head().checkValue(c.itemFilter)
			if f == nil {
				if err := c.source.SkipChildren(); err != nil {
					return NoToken, false, fmt.Errorf("%w: %v", ErrUpstream, err)
				}
				continue
			}
			if f != IncludeAll {
				f = f.FilterStartArray()
			}
			c.itemFilter = f
			if f == IncludeAll {
				c.stack.pushArray(IncludeAll, true)
				return c.bufferedFound(buffRootIdx)
			}
			if f != nil && c.inclusion == IncludeNonNull {
				c.stack.pushArray(f, true)
				return c.bufferedFound(buffRootIdx)
			}
			c.stack.pushArray(f, false)

		case StartObject:
			f := c.itemFilter
			if f == IncludeAll {
				c.stack.pushObject(IncludeAll, true)
				return c.bufferedFound(buffRootIdx)
			}
			if f == nil {
				if err := c.source.SkipChildren(); err != nil {
					return NoToken, false, fmt.Errorf("%w: %v", ErrUpstream, err)
				}
				continue
			}
			f = c.stack.head().checkValue(f)
			if f == nil {
				if err := c.source.SkipChildren(); err != nil {
					return NoToken, false, fmt.Errorf("%w: %v", ErrUpstream, err)
				}
				continue
			}
			if f != IncludeAll {
				f = f.FilterStartObject()
			}
			c.itemFilter = f
			if f == IncludeAll {
				c.stack.pushObject(IncludeAll, true)
				return c.bufferedFound(buffRootIdx)
			}
			if f != nil && c.inclusion == IncludeNonNull {
				// Pushes an ARRAY frame rather than OBJECT; preserved
				// quirk, see DESIGN.md.
				c.stack.pushArray(f, true)
				return c.bufferedFound(buffRootIdx)
			}
			c.stack.pushObject(f, false)

		case EndArray, EndObject:
			isArray := t == EndArray
			head := c.stack.head()
			f := head.filter
			if f != nil && f != IncludeAll {
				var includeEmpty bool
				if isArray {
					includeEmpty = f.IncludeEmptyArray(head.hasCurrentIndex())
					f.FilterFinishArray()
				} else {
					includeEmpty = f.IncludeEmptyObject(head.hasCurrentName())
					f.FilterFinishObject()
				}
				if includeEmpty {
					headIdx := c.stack.headIndex()
					if !isArray {
						head.resetPendingName(c.stack.parentNameOf(headIdx))
					}
					return c.bufferedFound(buffRootIdx)
				}
			}
			gotRoot := c.stack.headIndex() == buffRootIdx
			returnEnd := gotRoot && head.startHandled
			c.stack.pop()
			c.itemFilter = c.stack.head().filter
			if returnEnd {
				tok := EndObject
				if isArray {
					tok = EndArray
				}
				c.currentToken = tok
				return tok, true, nil
			}
			if gotRoot {
				return NoToken, false, nil
			}

		case PropertyName:
			name := c.source.CurrentName()
			head := c.stack.head()
			f := head.setPropertyName(name)
			if f == IncludeAll {
				c.itemFilter = f
				return c.bufferedFound(buffRootIdx)
			}
			if f == nil {
				if err := c.skipPropertyValue(); err != nil {
					return NoToken, false, err
				}
				continue
			}
			f = f.IncludeProperty(name)
			if f == nil {
				if err := c.skipPropertyValue(); err != nil {
					return NoToken, false, err
				}
				continue
			}
			c.itemFilter = f
			if f == IncludeAll {
				if c.verifyAllowedMatches() {
					return c.bufferedFound(buffRootIdx)
				}
				c.itemFilter = head.reseedItemFilter(name)
			}

		default:
			f := c.itemFilter
			if f == IncludeAll {
				return c.bufferedFound(buffRootIdx)
			}
			if f != nil {
				refined := c.stack.head().checkValue(f)
				accepted := refined == IncludeAll
				if !accepted && refined != nil {
					accepted = refined.IncludeValue(sourceAccessor{token: t, src: c.source})
				}
				if accepted && c.inclusion == IncludeNonNull && t == ValueNull {
					accepted = false
				}
				if accepted && c.verifyAllowedMatches() {
					return c.bufferedFound(buffRootIdx)
				}
			}
		}
	}
}

func (c *Cursor) bufferedFound(buffRootIdx int) (Token, bool, error) {
	tok, err := c.nextBuffered(buffRootIdx)
	if err != nil {
		return NoToken, false, err
	}
	return tok, true, nil
}

// NextValue is NextToken but skips over property names, landing on the
// value that follows.
func (c *Cursor) NextValue() (Token, error) {
	t, err := c.NextToken()
	if err != nil {
		return NoToken, err
	}
	if t == PropertyName {
		return c.NextToken()
	}
	return t, nil
}

// SkipChildren advances past the remainder of the current container as
// seen through the filter, without delegating to the Source: the filter
// may have suppressed tokens the Source would otherwise count, so depth
// is tracked against the cursor's own filtered output.
func (c *Cursor) SkipChildren() error {
	if c.currentToken != StartObject && c.currentToken != StartArray {
		return nil
	}
	depth := 1
	for {
		t, err := c.NextToken()
		if err != nil {
			return err
		}
		if t == NoToken {
			return nil
		}
		switch {
		case t.IsStructStart():
			depth++
		case t.IsStructEnd():
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

// NextName reads the next token and, if it is a property name, returns
// it with ok=true.
func (c *Cursor) NextName() (string, bool, error) {
	t, err := c.NextToken()
	if err != nil {
		return "", false, err
	}
	if t == PropertyName {
		return c.CurrentName(), true, nil
	}
	return "", false, nil
}

// NextNameEquals reads the next token and reports whether it is a
// property name equal to name.
func (c *Cursor) NextNameEquals(name string) (bool, error) {
	t, err := c.NextToken()
	if err != nil {
		return false, err
	}
	return t == PropertyName && c.CurrentName() == name, nil
}

// NextNameMatch reads the next token and, if it is a property name,
// returns matcher's mapping for it. If the stream instead closed the
// enclosing object it returns MatchEndObject; any other token returns
// MatchOddToken.
func (c *Cursor) NextNameMatch(matcher NameMatcher) (NameMatch, error) {
	name, ok, err := c.NextName()
	if err != nil {
		return 0, err
	}
	if ok {
		return NameMatch(matcher.MatchName(name)), nil
	}
	if c.HasToken(EndObject) {
		return MatchEndObject, nil
	}
	return MatchOddToken, nil
}

// OverrideCurrentName is intentionally unsupported: the cursor's shadow
// stack, not the caller, owns the current name.
func (c *Cursor) OverrideCurrentName(string) error {
	return fmt.Errorf("%w: cannot override current name while filtering", ErrUnsupported)
}

type sourceAccessor struct {
	token Token
	src   Source
}

func (a sourceAccessor) Token() Token { return a.token }
func (a sourceAccessor) TextValue() (string, error) {
	return a.src.TextValue()
}
