package http11

// URI holds the request-target split into its path and query parts. The
// path has already been normalized (percent-decoded, "."/".." segments
// collapsed) by the time a RequestLine is returned from ParseRequestLine.
type URI struct {
	AbsolutePath View
	Query        View
}

// Applies reports whether this is the "*" request-target (OPTIONS *).
func (u URI) Applies() bool { return u.AbsolutePath.EqualString("*") }

// Version is the parsed HTTP version off the request line; this core
// only ever produces Version10 or Version11, anything else fails
// parsing before a Version value would exist.
type Version int8

const (
	Version10 Version = iota
	Version11
)

// RequestLine is {method, uri, version} as built from
// "METHOD SP REQUEST-URI SP HTTP/1.X CRLF".
type RequestLine struct {
	Method  Method
	URI     URI
	Version Version
}

// ParseRequestLine consumes one request line from the front of v,
// returning EndOfRequest on a well-formed line (v is advanced past the
// trailing CRLF) or InvalidRequest on any deviation: unknown method,
// malformed URI, or a version other than 1.0/1.1. It never returns
// MoreData -- an incomplete line (no CRLF yet) is the caller's job to
// detect before invoking this (see Client.tryParseRequestLine).
func ParseRequestLine(v *View) (RequestLine, ParsingError) {
	var rl RequestLine

	methodTok := v.SplitUpTo(' ')
	if methodTok.Empty() || v.Empty() {
		return rl, InvalidRequest
	}
	rl.Method = ParseMethod(methodTok.Bytes())
	if rl.Method == InvalidMethod {
		return rl, InvalidRequest
	}

	uriTok := v.SplitUpTo(' ')
	if uriTok.Empty() {
		return rl, InvalidRequest
	}
	uri, ok := normalizeURI(uriTok)
	if !ok {
		return rl, InvalidRequest
	}
	rl.URI = uri

	proto := v.SplitUpTo('\r')
	if v.At(0) != '\n' {
		return rl, InvalidRequest
	}
	*v = View{b: v.Bytes()[1:]}

	switch {
	case proto.EqualString("HTTP/1.1"):
		rl.Version = Version11
	case proto.EqualString("HTTP/1.0"):
		rl.Version = Version10
	default:
		return rl, InvalidRequest
	}

	return rl, EndOfRequest
}

// normalizeURI splits raw into path/query, percent-decodes the path in
// place and collapses "." / ".." segments. The returned path view
// aliases raw's own backing array (percent-decoding can only shrink the
// byte count, so decoding happens into the same backing array at a
// lower offset -- no allocation).
func normalizeURI(raw View) (URI, bool) {
	var u URI
	path := raw.SplitUpTo('?')
	u.Query = raw

	decoded, ok := percentDecodeInPlace(path.Bytes())
	if !ok {
		return u, false
	}
	collapsed := collapseDotSegments(decoded)
	u.AbsolutePath = ViewOf(collapsed)
	if u.AbsolutePath.Empty() || u.AbsolutePath.At(0) != '/' {
		if !u.Applies() {
			return u, false
		}
	}
	return u, true
}

// percentDecodeInPlace decodes %XX escapes without allocating: the
// decoded form is never longer than the input, so it is written back
// into the same slice and returned re-sliced to its new length.
func percentDecodeInPlace(b []byte) ([]byte, bool) {
	w := 0
	for r := 0; r < len(b); r++ {
		if b[r] == '%' {
			if r+2 >= len(b) {
				return nil, false
			}
			hi, ok1 := hexDigit(b[r+1])
			lo, ok2 := hexDigit(b[r+2])
			if !ok1 || !ok2 {
				return nil, false
			}
			b[w] = hi<<4 | lo
			r += 2
		} else {
			b[w] = b[r]
		}
		w++
	}
	return b[:w], true
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// collapseDotSegments removes "." and ".." path segments in place,
// matching the RFC 3986 remove_dot_segments algorithm (the same
// read-pointer/write-pointer shape as path.Clean in the standard
// library, adapted to write back into path itself rather than a
// separate buffer: the write cursor never runs ahead of the read
// cursor, so no second allocation is needed on top of the in-place
// percent-decode that already ran over this same slice).
func collapseDotSegments(path []byte) []byte {
	if len(path) == 0 {
		return path
	}
	n := len(path)
	rooted := path[0] == '/'
	r, w, dotdot := 0, 0, 0
	if rooted {
		r, w, dotdot = 1, 1, 1
	}

	for r < n {
		switch {
		case path[r] == '/':
			r++
		case path[r] == '.' && (r+1 == n || path[r+1] == '/'):
			r++
		case path[r] == '.' && path[r+1] == '.' && (r+2 == n || path[r+2] == '/'):
			r += 2
			switch {
			case w > dotdot:
				w--
				for w > dotdot && path[w] != '/' {
					w--
				}
			case !rooted:
				if w > 0 {
					path[w] = '/'
					w++
				}
				path[w] = '.'
				w++
				path[w] = '.'
				w++
				dotdot = w
			}
		default:
			if rooted && w != 1 || !rooted && w != 0 {
				path[w] = '/'
				w++
			}
			for ; r < n && path[r] != '/'; r++ {
				path[w] = path[r]
				w++
			}
		}
	}
	if w == 0 {
		path[0] = '/'
		w = 1
	}
	return path[:w]
}
