package http11

import "strconv"

// Persister copies a byte range out of the vault so it survives a
// subsequent drop of the vault's head; it is exactly vault.Vault.Persist
// with the vault reference already bound, so value types in this file
// stay vault-agnostic.
type Persister func(view []byte) (persisted []byte, ok bool)

// Slot is the common interface every typed header value implements.
// Header sets hold one Slot per declared identifier; the generic header
// loop dispatches to ParseFrom, and a route that survives a refill calls
// Persist on every slot that was already set before the refill.
type Slot interface {
	ParseFrom(v *View) ParsingError
	Write(dst []byte) (int, bool)
	Persist(p Persister) bool
	Reset()
	IsSet() bool
}

// StringValue is the opaque "trim spaces, take the rest of the line"
// parser used for Authorization, Date, Host, Origin, Referer, Upgrade
// and User-Agent.
type StringValue struct {
	Value View
	set   bool
}

func (s *StringValue) ParseFrom(v *View) ParsingError {
	s.Value = v.Trim(' ')
	s.set = true
	return EndOfRequest
}

func (s *StringValue) Write(dst []byte) (int, bool) {
	if len(dst) < s.Value.Len() {
		return s.Value.Len(), false
	}
	return copy(dst, s.Value.Bytes()), true
}

func (s *StringValue) Persist(p Persister) bool {
	persisted, ok := p(s.Value.Bytes())
	if !ok {
		return false
	}
	s.Value = ViewOf(persisted)
	return true
}

func (s *StringValue) Reset() { *s = StringValue{} }
func (s *StringValue) IsSet() bool { return s.set }

// KeyValue is StringValue plus a find_value_for(key) helper, used for
// Cookie and Range: "key1=val1; key2=val2" with FindValueFor extracting
// the value after "key=" up to the next ';'.
type KeyValue struct {
	StringValue
}

func (k *KeyValue) FindValueFor(key string) View {
	rest := k.Value
	idx := indexOfToken(rest.Bytes(), key)
	if idx < 0 {
		return View{}
	}
	rest = View{b: rest.Bytes()[idx+len(key):]}
	rest.TrimLeft(' ')
	if rest.At(0) != '=' {
		return View{}
	}
	rest = View{b: rest.Bytes()[1:]}
	rest.TrimLeft(' ')
	v := rest.SplitUpTo(';')
	v.TrimRight(' ')
	return v
}

func indexOfToken(haystack []byte, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if string(haystack[i:i+n]) == needle {
			return i
		}
	}
	return -1
}

// UnsignedValue parses a decimal integer, rejecting overflow as
// InvalidRequest; used for Content-Length.
type UnsignedValue struct {
	Value uint64
	set   bool
}

func (u *UnsignedValue) ParseFrom(v *View) ParsingError {
	trimmed := v.Trim(' ')
	val, consumed, ok := trimmed.ParseUnsigned()
	if !ok || consumed == 0 {
		return InvalidRequest
	}
	u.Value = val
	u.set = true
	return EndOfRequest
}

func (u *UnsignedValue) Write(dst []byte) (int, bool) {
	s := strconv.FormatUint(u.Value, 10)
	if len(dst) < len(s) {
		return len(s), false
	}
	return copy(dst, s), true
}

func (u *UnsignedValue) Persist(Persister) bool { return true }
func (u *UnsignedValue) Reset()                 { *u = UnsignedValue{} }
func (u *UnsignedValue) IsSet() bool            { return u.set }

// EnumValue resolves a single token case-insensitively against resolve.
// Strict: an unknown token is InvalidRequest. Lax (the default): an
// unknown token still reports EndOfRequest, with Value left at the
// resolver's sentinel ("unknown") value, so an unrecognized token is
// recorded rather than rejected.
type EnumValue[E ~int] struct {
	Value   E
	Strict  bool
	resolve func([]byte) E
	unknown E
	set     bool
}

// NewEnumValue constructs an EnumValue bound to resolve, whose "unknown"
// sentinel is the value resolve returns for an unrecognized token.
func NewEnumValue[E ~int](resolve func([]byte) E, unknown E, strict bool) *EnumValue[E] {
	return &EnumValue[E]{resolve: resolve, unknown: unknown, Strict: strict}
}

func (e *EnumValue[E]) ParseFrom(v *View) ParsingError {
	trimmed := v.Trim(' ')
	e.Value = e.resolve(trimmed.Bytes())
	e.set = true
	if e.Value == e.unknown && e.Strict {
		return InvalidRequest
	}
	return EndOfRequest
}

func (e *EnumValue[E]) Write(dst []byte) (int, bool) {
	s := enumString(e.Value)
	if len(dst) < len(s) {
		return len(s), false
	}
	return copy(dst, s), true
}

func (e *EnumValue[E]) Persist(Persister) bool { return true }
func (e *EnumValue[E]) Reset()                 { e.Value = e.unknown; e.set = false }
func (e *EnumValue[E]) IsSet() bool            { return e.set }

type stringer interface{ String() string }

func enumString[E ~int](v E) string {
	if s, ok := any(v).(stringer); ok {
		return s.String()
	}
	return strconv.Itoa(int(v))
}

// splitEnumWithToken implements the ";ATTR][,...]" splitting rule shared
// by EnumWithAttribute and List-of-enum-with-attribute slots: it
// consumes one list element from v, returning the bare enum token and
// (if present) the attribute segment before the next ','.
func splitEnumWithToken(v *View) (token, attr View, err ParsingError) {
	rest := *v
	semi := rest.Find(';')
	comma := rest.Find(',')
	if semi < len(rest.Bytes()) && semi < comma {
		token = rest.Mid(0, semi).Trim(' ')
		afterSemi := View{b: rest.Bytes()[semi+1:]}
		attr = afterSemi.SplitUpTo(',')
		attr = attr.Trim(' ')
		*v = afterSemi
		v.TrimLeft(',')
	} else {
		token = rest.SplitUpTo(',').Trim(' ')
		*v = rest
	}
	if v.Empty() {
		return token, attr, EndOfRequest
	}
	return token, attr, MoreData
}

// EnumWithAttribute accepts "ENUM[;ATTR][,...]", consuming exactly one
// list element per ParseFrom call; FindAttributeValueFor searches
// "key=value" pairs inside the attribute segment the same way KeyValue
// does inside its own value. Used standalone for Content-Type and as the
// element type of the Accept*/Cache-Control/TE list slots.
type EnumWithAttribute[E ~int] struct {
	Value      E
	Attributes View
	resolve    func([]byte) E
	unknown    E
	set        bool
}

func NewEnumWithAttribute[E ~int](resolve func([]byte) E, unknown E) *EnumWithAttribute[E] {
	return &EnumWithAttribute[E]{resolve: resolve, unknown: unknown}
}

func (e *EnumWithAttribute[E]) ParseFrom(v *View) ParsingError {
	token, attr, err := splitEnumWithToken(v)
	if err == InvalidRequest {
		return err
	}
	e.Value = e.resolve(token.Bytes())
	e.Attributes = attr
	e.set = true
	return err
}

func (e *EnumWithAttribute[E]) Write(dst []byte) (int, bool) {
	s := enumString(e.Value)
	need := len(s)
	if e.Attributes.Len() > 0 {
		need += 1 + e.Attributes.Len()
	}
	if len(dst) < need {
		return need, false
	}
	n := copy(dst, s)
	if e.Attributes.Len() > 0 {
		dst[n] = ';'
		n++
		n += copy(dst[n:], e.Attributes.Bytes())
	}
	return n, true
}

func (e *EnumWithAttribute[E]) Persist(p Persister) bool {
	if e.Attributes.Len() == 0 {
		return true
	}
	persisted, ok := p(e.Attributes.Bytes())
	if !ok {
		return false
	}
	e.Attributes = ViewOf(persisted)
	return true
}

func (e *EnumWithAttribute[E]) Reset() { *e = EnumWithAttribute[E]{resolve: e.resolve, unknown: e.unknown} }
func (e *EnumWithAttribute[E]) IsSet() bool { return e.set }

// FindAttributeValueFor searches "key=value" pairs inside the attribute
// segment, e.g. "q=1.0" inside an Accept-Encoding element's attributes.
func (e *EnumWithAttribute[E]) FindAttributeValueFor(key string) View {
	idx := indexOfToken(e.Attributes.Bytes(), key)
	if idx < 0 {
		return View{}
	}
	rest := View{b: e.Attributes.Bytes()[idx+len(key):]}
	rest.TrimLeft(' ')
	if rest.At(0) != '=' {
		return View{}
	}
	rest = View{b: rest.Bytes()[1:]}
	rest.TrimLeft(' ')
	v := rest.SplitUpTo(';')
	v.TrimRight(' ')
	return v
}

// List applies an element constructor up to N times, accumulating into
// Items. Overflow policy (see SPEC_FULL.md): a mid-fill parse error is
// always InvalidRequest; running out of input before filling is
// EndOfRequest; filling to capacity N without running out is MoreData
// when lax and InvalidRequest when Strict, so a route can choose to
// reject excess list elements instead of silently truncating.
type List[T Slot] struct {
	Items  []T
	N      int
	Strict bool
	newT   func() T
	set    bool
}

// NewList preallocates a List with capacity N so ParseFrom never
// reallocates Items on the request path; newItem constructs a fresh
// element slot on demand.
func NewList[T Slot](n int, strict bool, newItem func() T) *List[T] {
	return &List[T]{Items: make([]T, 0, n), N: n, Strict: strict, newT: newItem}
}

func (l *List[T]) ParseFrom(v *View) ParsingError {
	l.Items = l.Items[:0]
	l.set = true
	for len(l.Items) < l.N {
		item := l.newT()
		err := item.ParseFrom(v)
		if err == InvalidRequest {
			return InvalidRequest
		}
		l.Items = append(l.Items, item)
		if err == EndOfRequest {
			return EndOfRequest
		}
	}
	if l.Strict {
		return InvalidRequest
	}
	return MoreData
}

func (l *List[T]) Write(dst []byte) (int, bool) {
	total := 0
	for i, item := range l.Items {
		n, _ := item.Write(nil) // nil dst: every Write reports required size via its return n
		total += n
		if i < len(l.Items)-1 {
			total++
		}
	}
	if len(dst) < total {
		return total, false
	}
	off := 0
	for i, item := range l.Items {
		n, _ := item.Write(dst[off:])
		off += n
		if i < len(l.Items)-1 {
			dst[off] = ','
			off++
		}
	}
	return off, true
}

func (l *List[T]) Persist(p Persister) bool {
	for _, item := range l.Items {
		if !item.Persist(p) {
			return false
		}
	}
	return true
}

func (l *List[T]) Reset() {
	l.Items = l.Items[:0]
	l.set = false
}
func (l *List[T]) IsSet() bool { return l.set }
