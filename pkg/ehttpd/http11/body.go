package http11

import "io"

// BodyFraming reports how a request body is delimited, resolved once
// headers are fully parsed (see Client.resolveBodyFraming): a route that
// declared neither HeaderContentLength nor HeaderTransferEncoding in its
// ExpectedHeaders always gets BodyNone, matching a GET/HEAD/DELETE
// request with no body.
type BodyFraming int

const (
	BodyNone BodyFraming = iota
	BodyFixedLength
	BodyChunked
)

// Body returns a reader over the request body framed the way the parsed
// headers declared it: Content-Length for BodyFixedLength, chunked
// decoding (ChunkedBodyReader) for BodyChunked, or an always-empty
// reader for BodyNone. It first drains whatever body bytes already sit
// in the vault (arrived in the same read as the trailing header CRLF),
// then falls back to BodyRefill -- set by the server loop to pull more
// bytes off the socket -- once the vault runs dry.
func (c *Client) Body() io.Reader {
	switch c.BodyFraming {
	case BodyChunked:
		return NewChunkedBodyReader(c.bodySource())
	case BodyFixedLength:
		return &fixedLengthBodyReader{c: c, remaining: c.BodyLength}
	default:
		return emptyBodyReader{}
	}
}

// bodySource adapts the vault's already-buffered bytes plus BodyRefill
// into the func(buf []byte) (int, error) shape ChunkedBodyReader expects.
func (c *Client) bodySource() func(buf []byte) (int, error) {
	return func(buf []byte) (int, error) {
		if v := c.Vault.View(); len(v) > 0 {
			n := copy(buf, v)
			c.Vault.Drop(n)
			return n, nil
		}
		if c.BodyRefill == nil {
			return 0, io.EOF
		}
		return c.BodyRefill(buf)
	}
}

// fixedLengthBodyReader reads exactly Content-Length bytes total,
// preferring whatever the vault already holds before calling refill.
type fixedLengthBodyReader struct {
	c         *Client
	remaining uint64
}

func (r *fixedLengthBodyReader) Read(dst []byte) (int, error) {
	if r.remaining == 0 {
		return 0, io.EOF
	}
	want := uint64(len(dst))
	if want > r.remaining {
		want = r.remaining
	}
	if v := r.c.Vault.View(); len(v) > 0 {
		n := copy(dst[:want], v)
		r.c.Vault.Drop(n)
		r.remaining -= uint64(n)
		return n, nil
	}
	if r.c.BodyRefill == nil {
		return 0, io.EOF
	}
	n, err := r.c.BodyRefill(dst[:want])
	r.remaining -= uint64(n)
	return n, err
}

type emptyBodyReader struct{}

func (emptyBodyReader) Read([]byte) (int, error) { return 0, io.EOF }

// resolveBodyFraming inspects the now-complete header set for
// Transfer-Encoding/Content-Length and sets BodyFraming/BodyLength
// accordingly. Transfer-Encoding: chunked wins over Content-Length when
// a route (unusually) declared both, per RFC 9112 §6.1.
func (c *Client) resolveBodyFraming() {
	c.BodyFraming = BodyNone
	c.BodyLength = 0
	if c.headerSet == nil {
		return
	}

	if slot := c.headerSet.Get(HeaderTransferEncoding); slot != nil && slot.IsSet() {
		if list, ok := slot.(*List[*EnumWithAttribute[Encoding]]); ok {
			for _, item := range list.Items {
				if item.Value == EncodingChunked {
					c.BodyFraming = BodyChunked
					return
				}
			}
		}
	}

	if slot := c.headerSet.Get(HeaderContentLength); slot != nil && slot.IsSet() {
		if uv, ok := slot.(*UnsignedValue); ok {
			c.BodyFraming = BodyFixedLength
			c.BodyLength = uv.Value
		}
	}
}
