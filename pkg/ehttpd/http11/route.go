package http11

// Handler is a route's callback. It receives the matched client (to
// read persisted request-line/header state) and the answer sink to
// write to, and reports whether it handled the request; false means the
// server must reply InternalServerError unless the handler already
// emitted something of its own.
type Handler func(c *Client, w Writer) bool

// Route is {method_mask, path_prefix, expected_headers, callback}. A
// zero-length PathPrefix is the wildcard catch-all; matching is always
// byte-exact with no wildcard expansion beyond that.
type Route struct {
	MethodMask      uint32
	PathPrefix      string
	ExpectedHeaders []Header
	Callback        Handler
}

// Matches reports whether this route accepts method and path, per the
// route-matching invariant: the method bit must be set in the mask, and
// either the prefix is empty or path starts with it.
func (r *Route) Matches(method Method, path View) bool {
	if r.MethodMask&method.Mask() == 0 {
		return false
	}
	if r.PathPrefix == "" {
		return true
	}
	pb := path.Bytes()
	if len(pb) < len(r.PathPrefix) {
		return false
	}
	return string(pb[:len(r.PathPrefix)]) == r.PathPrefix
}

// Router holds routes in declaration order and dispatches to the first
// match: linear scan, first match wins, no route matching falls through
// to 404.
type Router struct {
	routes []*Route
}

// NewRouter builds a router over routes, preserving declaration order.
func NewRouter(routes ...*Route) *Router {
	return &Router{routes: routes}
}

// Match returns the first route accepting method/path, or nil.
func (rt *Router) Match(method Method, path View) *Route {
	for _, r := range rt.routes {
		if r.Matches(method, path) {
			return r
		}
	}
	return nil
}

// Dispatch runs the matched route's callback against c, letting it
// write its Answer to w. Called once c.Status == HeadersDone.
func (rt *Router) Dispatch(c *Client, w Writer) bool {
	if c.route == nil || c.route.Callback == nil {
		return false
	}
	return c.route.Callback(c, w)
}

// headerLoopResult is the outcome of one pass of the generic header
// loop: it ran out of headers cleanly (headerLoopDone), it needs more
// bytes to continue (headerLoopNeedMore), or a slot rejected its value
// (headerLoopInvalid).
type headerLoopResult int

const (
	headerLoopNeedMore headerLoopResult = iota
	headerLoopDone
	headerLoopInvalid
)

// runHeaderLoop implements the generic header loop from the route-table
// design: repeatedly parse one "Name: value\r\n" header line, look it up
// in hs, dispatch to the matching slot (or skip the value if the header
// isn't one hs declared), and stop at the CRLF that ends the header
// block. It reports how many bytes of v were consumed so the caller can
// Drop exactly that much from the vault even when it returns
// headerLoopNeedMore (a dangling partial header line is never consumed).
func runHeaderLoop(hs *HeaderSet, v *View) (result headerLoopResult, consumed int) {
	start := v.Bytes()
	for {
		if len(v.Bytes()) >= 2 && v.At(0) == '\r' && v.At(1) == '\n' {
			return headerLoopDone, len(start) - len(v.Bytes())
		}

		name, value, lineErr := parseHeaderLine(v)
		switch lineErr {
		case MoreData:
			return headerLoopNeedMore, len(start) - len(v.Bytes())
		case InvalidRequest:
			return headerLoopInvalid, len(start) - len(v.Bytes())
		}

		h := hs.AcceptHeader(name.Bytes())
		if h == InvalidHeader {
			continue
		}
		if err := hs.AcceptAndParse(h, &value); err == InvalidRequest {
			return headerLoopInvalid, len(start) - len(v.Bytes())
		}
	}
}

// parseHeaderLine consumes one "Name: value\r\n" line from the front of
// v, returning EndOfRequest on success. It rejects a name containing
// whitespace before the colon (request smuggling hardening: RFC 9112
// forbids OWS between field-name and ':') as InvalidRequest, and reports
// MoreData without consuming anything when no CRLF has arrived yet.
func parseHeaderLine(v *View) (name, value View, status ParsingError) {
	buf := v.Bytes()
	crlf := findCRLF(buf)
	if crlf < 0 {
		return View{}, View{}, MoreData
	}
	line := ViewOf(buf[:crlf])
	name = line.SplitUpTo(':')
	*v = View{b: buf[crlf+2:]}
	if name.Empty() {
		return View{}, View{}, InvalidRequest
	}
	for _, c := range name.Bytes() {
		if c == ' ' || c == '\t' {
			return View{}, View{}, InvalidRequest
		}
	}
	value = line.Trim(' ')
	return name, value, EndOfRequest
}
