package http11

import "bytes"

// View is a non-owning (pointer, length) slice over a backing buffer.
// Every operation either returns a sub-view or mutates the view in place
// (advancing it past consumed bytes); none of them ever touch the
// underlying bytes. The backing storage must outlive every View derived
// from it -- a View that outlives its vault slot is a bug, not a panic.
type View struct {
	b []byte
}

// ViewOf wraps a byte slice as a View. The caller keeps ownership of b.
func ViewOf(b []byte) View { return View{b: b} }

// Bytes returns the raw bytes currently covered by the view.
func (v View) Bytes() []byte { return v.b }

// String copies the view into a Go string. Used at API boundaries only;
// hot-path comparisons should stay on Bytes()/Equal to avoid the copy.
func (v View) String() string { return string(v.b) }

// Len reports the number of bytes in the view.
func (v View) Len() int { return len(v.b) }

// Empty reports whether the view has zero length.
func (v View) Empty() bool { return len(v.b) == 0 }

// At returns the byte at i, or 0 if i is out of range.
func (v View) At(i int) byte {
	if i < 0 || i >= len(v.b) {
		return 0
	}
	return v.b[i]
}

// Find returns the index of the first occurrence of sep, or v.Len() if
// sep does not occur.
func (v View) Find(sep byte) int {
	if i := bytes.IndexByte(v.b, sep); i >= 0 {
		return i
	}
	return len(v.b)
}

// FindAny returns the index of the first occurrence of any byte in seps,
// or v.Len() if none occur.
func (v View) FindAny(seps []byte) int {
	if i := bytes.IndexAny(v.b, string(seps)); i >= 0 {
		return i
	}
	return len(v.b)
}

// SplitUpTo returns the prefix of v before the first occurrence of sep
// and advances v past sep. If sep is not found, the whole view is
// returned and v becomes empty.
func (v *View) SplitUpTo(sep byte) View {
	i := bytes.IndexByte(v.b, sep)
	if i < 0 {
		head := v.b
		v.b = v.b[len(v.b):]
		return View{b: head}
	}
	head := v.b[:i]
	v.b = v.b[i+1:]
	return View{b: head}
}

// SplitFrom returns the prefix of v before the first occurrence of sep
// and advances v past sep. If sep is not found, an empty view is
// returned and v is left unchanged.
func (v *View) SplitFrom(sep byte) View {
	i := bytes.IndexByte(v.b, sep)
	if i < 0 {
		return View{}
	}
	head := v.b[:i]
	v.b = v.b[i+1:]
	return View{b: head}
}

// TrimLeft removes every leading occurrence of c.
func (v *View) TrimLeft(c byte) {
	i := 0
	for i < len(v.b) && v.b[i] == c {
		i++
	}
	v.b = v.b[i:]
}

// TrimRight removes every trailing occurrence of c.
func (v *View) TrimRight(c byte) {
	i := len(v.b)
	for i > 0 && v.b[i-1] == c {
		i--
	}
	v.b = v.b[:i]
}

// Trim removes leading and trailing occurrences of c.
func (v View) Trim(c byte) View {
	v.TrimLeft(c)
	v.TrimRight(c)
	return v
}

// Mid returns the sub-view [start, start+length), clamped to v's bounds.
func (v View) Mid(start, length int) View {
	if start < 0 {
		start = 0
	}
	if start > len(v.b) {
		start = len(v.b)
	}
	end := start + length
	if end > len(v.b) {
		end = len(v.b)
	}
	if end < start {
		end = start
	}
	return View{b: v.b[start:end]}
}

// UpToLast returns the prefix of v before the last occurrence of c, or
// the whole view if c does not occur.
func (v View) UpToLast(c byte) View {
	i := bytes.LastIndexByte(v.b, c)
	if i < 0 {
		return v
	}
	return View{b: v.b[:i]}
}

// FromLast returns the suffix of v after the last occurrence of c, or an
// empty view if c does not occur.
func (v View) FromLast(c byte) View {
	i := bytes.LastIndexByte(v.b, c)
	if i < 0 {
		return View{}
	}
	return View{b: v.b[i+1:]}
}

// Equal reports byte-exact equality.
func (v View) Equal(other View) bool { return bytes.Equal(v.b, other.b) }

// EqualString reports byte-exact equality against a Go string.
func (v View) EqualString(s string) bool { return string(v.b) == s }

// EqualFold reports case-insensitive equality, used for method, header
// and enum-value resolution where the wire allows any casing.
func (v View) EqualFold(s string) bool { return bytes.EqualFold(v.b, []byte(s)) }

// ParseUnsigned parses a decimal unsigned integer from the front of v.
// It accepts optional leading whitespace, stops at the first non-digit,
// and reports the number of bytes consumed. Overflow saturates to
// ^uint64(0) and is reported via ok=false so callers can surface
// InvalidRequest.
func (v View) ParseUnsigned() (value uint64, consumed int, ok bool) {
	i := 0
	for i < len(v.b) && (v.b[i] == ' ' || v.b[i] == '\t') {
		i++
	}
	start := i
	ok = true
	for i < len(v.b) && v.b[i] >= '0' && v.b[i] <= '9' {
		d := uint64(v.b[i] - '0')
		if value > (^uint64(0)-d)/10 {
			ok = false
			value = ^uint64(0)
		} else {
			value = value*10 + d
		}
		i++
	}
	if i == start {
		return 0, 0, false
	}
	return value, i, ok
}
