package http11

import "github.com/X-Ryl669/eHTTPd/pkg/ehttpd/vault"

// State is the per-client parsing state, advanced by Client.Parse and
// reset to Invalid once a request/response cycle completes.
type State int

const (
	Invalid State = iota
	ReqLine
	RecvHeaders
	NeedRefillHeaders
	HeadersDone
	ReqDone
)

func (s State) String() string {
	switch s {
	case Invalid:
		return "Invalid"
	case ReqLine:
		return "ReqLine"
	case RecvHeaders:
		return "RecvHeaders"
	case NeedRefillHeaders:
		return "NeedRefillHeaders"
	case HeadersDone:
		return "HeadersDone"
	case ReqDone:
		return "ReqDone"
	default:
		return "State(?)"
	}
}

// RefillPolicy governs what happens when the header block does not fit
// in one vault fill; see SPEC_FULL.md for why RefillUnsupported is the
// default.
type RefillPolicy int

const (
	// RefillUnsupported fails the request with EntityTooLarge as soon
	// as the vault fills without an end-of-headers marker: the whole
	// header block must fit in one vault.
	RefillUnsupported RefillPolicy = iota
	// RefillPersistAndResume persists every header slot already parsed,
	// drops the consumed prefix, and keeps receiving into NeedRefillHeaders.
	RefillPersistAndResume
)

// Client is one connection's parsing state: its vault, current request
// line, parsing status and pending answer bookkeeping. The vault is the
// only heap-backed resource owned per-client; it is sized once at
// construction and never regrows.
type Client struct {
	Vault        *vault.Vault
	Status       State
	RequestLine  RequestLine
	ReplyCode    StatusCode
	AnswerLength int
	Refill       RefillPolicy

	// Scratch is the server's pooled scratch-buffer source, if any; a
	// route callback that emits a StreamAnswer should pass this to
	// EmitWithScratch instead of plain Emit so the copy onto the wire
	// reuses a pooled buffer rather than allocating one per request.
	// Nil when the server was built without a scratch pool.
	Scratch ScratchProvider

	// BodyFraming and BodyLength describe the request body Body() will
	// decode, resolved once headers finish parsing (resolveBodyFraming).
	BodyFraming BodyFraming
	BodyLength  uint64

	// BodyRefill pulls more bytes off the socket once Body()'s reader
	// has drained whatever the vault already buffered; the server loop
	// sets this right before dispatch. Nil means no more bytes are
	// available (e.g. in tests that feed a complete request up front).
	BodyRefill func(buf []byte) (int, error)

	route      *Route
	headerSet  *HeaderSet
	closeAfter bool
}

// NewClient allocates a client with a vault of the given fixed capacity.
func NewClient(vaultCapacity int, refill RefillPolicy) *Client {
	return &Client{Vault: vault.New(vaultCapacity), Status: Invalid, Refill: refill}
}

// Reset clears the client back to Invalid, ready for a new request.
// zeroVault mirrors the paranoid-mode knob that also wipes the vault's
// backing bytes instead of just rewinding head/tail.
func (c *Client) Reset(zeroVault bool) {
	c.Vault.Reset(zeroVault)
	c.Status = Invalid
	c.RequestLine = RequestLine{}
	c.ReplyCode = 0
	c.AnswerLength = 0
	c.route = nil
	c.headerSet = nil
	c.closeAfter = false
	c.BodyFraming = BodyNone
	c.BodyLength = 0
	c.BodyRefill = nil
}

// Append reports whether n newly received bytes would fit in the vault;
// it does not write them. Callers that get false must close with 413 --
// capacity exhaustion mid-receive has nowhere left to grow.
func (c *Client) Append(n int) bool {
	return n <= c.Vault.TailFree()
}

// Parse advances the client's state machine as far as the currently
// buffered bytes allow, following the table from the connection state
// machine design: Invalid -> ReqLine -> RecvHeaders ->
// [NeedRefillHeaders] -> HeadersDone -> ReqDone. It returns the status
// reached and, if a terminal error status code was assigned along the
// way (ReplyCode != 0 while not reaching HeadersDone), the caller should
// emit that code and close.
func (c *Client) Parse(router *Router) State {
	if c.Status == Invalid {
		if c.Vault.Len() == 0 {
			return c.Status
		}
		c.Status = ReqLine
	}

	if c.Status == ReqLine {
		if !c.tryParseRequestLine() {
			return c.Status
		}
	}

	if c.Status == RecvHeaders || c.Status == NeedRefillHeaders {
		c.tryParseHeaders(router)
	}

	return c.Status
}

// tryParseRequestLine looks for a CRLF-terminated request line in the
// vault; on success it parses it, persists the URI path, and advances to
// RecvHeaders (or fails the connection with 400/413).
func (c *Client) tryParseRequestLine() bool {
	buf := c.Vault.View()
	crlf := findCRLF(buf)
	if crlf < 0 {
		if c.Vault.TailFree() == 0 {
			c.fail(StatusEntityTooLarge)
			return false
		}
		return false // wait for more bytes
	}

	line := ViewOf(buf[:crlf+2])
	rl, err := ParseRequestLine(&line)
	if err != InvalidRequest {
		if path, ok := c.Vault.Persist(rl.URI.AbsolutePath.Bytes()); ok {
			rl.URI.AbsolutePath = ViewOf(path)
		} else {
			// No session room left for the URI means the vault filled
			// before the end-of-headers marker could possibly arrive;
			// that is the oversize row of the error table, not the
			// mid-refill persist failure (which stays 500).
			c.fail(StatusEntityTooLarge)
			return false
		}
	}
	c.Vault.Drop(crlf + 2)
	if err == InvalidRequest {
		c.fail(StatusBadRequest)
		return false
	}
	c.RequestLine = rl
	c.Status = RecvHeaders
	return true
}

// tryParseHeaders runs the generic header loop (see route.go) against
// whatever route matches the now-known method/path, persisting slots
// across a refill if the policy allows it, and failing the request with
// 413/500 otherwise.
func (c *Client) tryParseHeaders(router *Router) {
	if c.route == nil {
		route := router.Match(c.RequestLine.Method, c.RequestLine.URI.AbsolutePath)
		if route == nil {
			c.fail(StatusNotFound)
			return
		}
		c.route = route
		c.headerSet = BuildHeaderSet(route.ExpectedHeaders, DefaultSlotFactory)
	}

	for {
		buf := c.Vault.View()
		if len(buf) >= 2 && buf[0] == '\r' && buf[1] == '\n' {
			c.Vault.Drop(2)
			c.resolveBodyFraming()
			c.Status = HeadersDone
			return
		}

		view := ViewOf(buf)
		result, consumed := runHeaderLoop(c.headerSet, &view)
		switch result {
		case headerLoopInvalid:
			c.fail(StatusNotAcceptable)
			return
		case headerLoopDone:
			// consumed stops before the blank line; drop its CRLF too so
			// the vault starts at the request body.
			c.Vault.Drop(consumed + 2)
			c.resolveBodyFraming()
			c.Status = HeadersDone
			return
		case headerLoopNeedMore:
			if c.Vault.TailFree() > 0 {
				c.Status = RecvHeaders
				return
			}
			if c.Refill == RefillUnsupported {
				c.fail(StatusEntityTooLarge)
				return
			}
			if !c.headerSet.PersistAll(c.Vault.Persist) {
				c.fail(StatusInternalServerError)
				return
			}
			c.Vault.Drop(consumed)
			c.Vault.Compact()
			c.Status = NeedRefillHeaders
			return
		}
	}
}

func (c *Client) fail(code StatusCode) {
	c.ReplyCode = code
	c.Status = ReqDone
	c.closeAfter = true
}

// Headers returns the HeaderSet built for the matched route, or nil
// before a route has matched. A route callback uses this to read
// request header slots (including Accept-Encoding for response
// compression negotiation via NegotiateEncoding/SimpleAnswerCompressed).
func (c *Client) Headers() *HeaderSet { return c.headerSet }

// Compressed builds a SimpleAnswer whose body is compressed according
// to the request's own Accept-Encoding, sparing route callbacks from
// having to call NegotiateEncoding/CompressBody themselves. The route
// must have declared HeaderAcceptEncoding in its ExpectedHeaders for
// this to negotiate anything beyond identity.
func (c *Client) Compressed(code StatusCode, mime string, body []byte) Answer {
	return SimpleAnswerCompressed(code, mime, body, c.headerSet)
}

// CapturedCompressed is CapturedAnswerCompressed negotiated against this
// client's own request headers, for routes that stream chunks they
// can't size ahead of time but still want gzip when the client accepts it.
func (c *Client) CapturedCompressed(code StatusCode, headers *HeaderSet, producer ChunkProducer) Answer {
	return CapturedAnswerCompressed(code, headers, c.headerSet, producer)
}

// CloseAfter reports whether the connection must be closed once the
// pending answer (if any) has been flushed.
func (c *Client) CloseAfter() bool { return c.closeAfter }

// WantsKeepAlive reports whether the connection should survive this
// request: HTTP/1.1 defaults to keep-alive unless "Connection: close"
// was parsed into the route's header set, HTTP/1.0 defaults to close
// unless "Connection: keep-alive" was. A client already marked for
// closing (any terminal error) never keeps alive.
func (c *Client) WantsKeepAlive() bool {
	if c.closeAfter {
		return false
	}
	conn := ConnectionUnknown
	if c.headerSet != nil {
		if slot := c.headerSet.Get(HeaderConnection); slot != nil && slot.IsSet() {
			if ev, ok := slot.(*EnumValue[Connection]); ok {
				conn = ev.Value
			}
		}
	}
	if c.RequestLine.Version == Version10 {
		return conn == ConnectionKeepAlive
	}
	return conn != ConnectionClose
}

// MarkDone transitions a successfully dispatched request to ReqDone; the
// server loop resets the client once the answer has been sent.
func (c *Client) MarkDone(keepAlive bool) {
	c.Status = ReqDone
	c.closeAfter = !keepAlive
}

func findCRLF(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == '\r' && buf[i+1] == '\n' {
			return i
		}
	}
	return -1
}
