package http11

// HeaderSet is a compile-time-declared (in the sense that route tables
// list their header identifiers as a literal Go slice at construction,
// not discovered at runtime) collection of one Slot per unique
// identifier, plus an implicit Authorization slot. It gives O(1) typed
// access via Get, O(k) runtime lookup by wire name via AcceptHeader /
// AcceptAndParse, and serializes itself back out via SendHeaders.
type HeaderSet struct {
	ids   []Header
	slots []Slot
}

// BuildHeaderSet builds a set over the given identifiers, collapsing
// duplicates and implicitly adding Authorization if absent. slotFor
// constructs the typed Slot for each identifier (see DefaultSlotFactory).
func BuildHeaderSet(ids []Header, slotFor func(Header) Slot) *HeaderSet {
	seen := make(map[Header]bool, len(ids)+1)
	hs := &HeaderSet{}
	add := func(h Header) {
		if seen[h] {
			return
		}
		seen[h] = true
		hs.ids = append(hs.ids, h)
		hs.slots = append(hs.slots, slotFor(h))
	}
	for _, h := range ids {
		add(h)
	}
	add(HeaderAuthorization)
	return hs
}

// AcceptHeader reports whether name is one of the set's declared
// identifiers, returning it (or InvalidHeader if not).
func (hs *HeaderSet) AcceptHeader(name []byte) Header {
	h := ParseHeaderName(name)
	if h == InvalidHeader {
		return InvalidHeader
	}
	for _, id := range hs.ids {
		if id == h {
			return h
		}
	}
	return InvalidHeader
}

// AcceptAndParse dispatches name's value to the matching slot.
func (hs *HeaderSet) AcceptAndParse(h Header, v *View) ParsingError {
	for i, id := range hs.ids {
		if id == h {
			return hs.slots[i].ParseFrom(v)
		}
	}
	return InvalidRequest
}

// Get returns the slot bound to h, or nil if h was not part of the
// declared set. Route code that knows its own header list at the call
// site gets effectively-O(1) access since the set is small and fixed.
func (hs *HeaderSet) Get(h Header) Slot {
	for i, id := range hs.ids {
		if id == h {
			return hs.slots[i]
		}
	}
	return nil
}

// PersistAll persists every slot that has been set, used by the
// parse_persist variant of the generic header loop right before a
// refill drops the vault's head.
func (hs *HeaderSet) PersistAll(p Persister) bool {
	for _, s := range hs.slots {
		if s.IsSet() {
			if !s.Persist(p) {
				return false
			}
		}
	}
	return true
}

// SendHeaders serializes every set slot as "Canonical-Name: value\r\n"
// into dst, skipping unset slots. Returns the bytes written and false if
// dst was too small to hold the whole block.
func (hs *HeaderSet) SendHeaders(dst []byte) (int, bool) {
	off := 0
	for i, id := range hs.ids {
		if !hs.slots[i].IsSet() {
			continue
		}
		name := id.WireName()
		line := len(name) + 2 // "Name: "
		if off+line > len(dst) {
			return off, false
		}
		off += copy(dst[off:], name)
		off += copy(dst[off:], ": ")
		n, ok := hs.slots[i].Write(dst[off:])
		if !ok {
			return off, false
		}
		off += n
		if off+2 > len(dst) {
			return off, false
		}
		off += copy(dst[off:], "\r\n")
	}
	return off, true
}

// Reset clears every slot back to "never parsed", reusing the set's
// slice capacity without reallocating.
func (hs *HeaderSet) Reset() {
	for _, s := range hs.slots {
		s.Reset()
	}
}

// DefaultSlotFactory builds the header-to-parser assignment mandated by
// the header table: Accept is a strict 16-element MIME list, the other
// Accept-* / TE / Transfer-Encoding / Content-Encoding headers are lax
// lists of their respective enum-with-attribute element type,
// Cache-Control is a lax 4-element list, Connection is a strict scalar
// enum, Content-Type is a scalar enum-with-attribute, Content-Length is
// Unsigned, Cookie/Range are KeyValue and everything else is opaque
// String.
func DefaultSlotFactory(h Header) Slot {
	switch h {
	case HeaderAccept:
		return NewList[*EnumWithAttribute[MIMEType]](16, true, func() *EnumWithAttribute[MIMEType] {
			return NewEnumWithAttribute(ParseMIMEType, MIMEUnknown)
		})
	case HeaderAcceptCharset:
		return NewList[*EnumWithAttribute[Encoding]](4, false, func() *EnumWithAttribute[Encoding] {
			return NewEnumWithAttribute(ParseEncoding, EncodingUnknown)
		})
	case HeaderAcceptEncoding:
		return NewList[*EnumWithAttribute[Encoding]](4, false, func() *EnumWithAttribute[Encoding] {
			return NewEnumWithAttribute(ParseEncoding, EncodingUnknown)
		})
	case HeaderAcceptLanguage:
		return NewList[*EnumWithAttribute[Language]](8, false, func() *EnumWithAttribute[Language] {
			return NewEnumWithAttribute(ParseLanguage, LanguageUnknown)
		})
	case HeaderCacheControl:
		return NewList[*EnumWithAttribute[CacheDirective]](4, false, func() *EnumWithAttribute[CacheDirective] {
			return NewEnumWithAttribute(ParseCacheDirective, CacheDirectiveUnknown)
		})
	case HeaderConnection:
		return NewEnumValue(ParseConnection, ConnectionUnknown, true)
	case HeaderContentEncoding:
		return NewList[*EnumWithAttribute[Encoding]](2, false, func() *EnumWithAttribute[Encoding] {
			return NewEnumWithAttribute(ParseEncoding, EncodingUnknown)
		})
	case HeaderContentType:
		return NewEnumWithAttribute(ParseMIMEType, MIMEUnknown)
	case HeaderContentLength:
		return &UnsignedValue{}
	case HeaderCookie, HeaderRange:
		return &KeyValue{}
	case HeaderTE:
		return NewList[*EnumWithAttribute[Encoding]](4, false, func() *EnumWithAttribute[Encoding] {
			return NewEnumWithAttribute(ParseEncoding, EncodingUnknown)
		})
	case HeaderTransferEncoding:
		return NewList[*EnumWithAttribute[Encoding]](4, false, func() *EnumWithAttribute[Encoding] {
			return NewEnumWithAttribute(ParseEncoding, EncodingUnknown)
		})
	default:
		return &StringValue{}
	}
}
