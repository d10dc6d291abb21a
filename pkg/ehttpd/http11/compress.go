package http11

import (
	"bytes"
	"compress/flate"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// NegotiateEncoding picks the best Content-Encoding for a response given
// the request's parsed Accept-Encoding header set, preferring br over
// gzip over deflate, the order most HTTP/1.1 servers in this corpus use.
// An element with an explicit "q=0" attribute is treated as refused,
// matching RFC 9110 §12.5.3; anything else is accepted at whatever
// weight, since the core does not otherwise do quality-value ranking.
// hs may be nil (no Accept-Encoding expected by the route), in which
// case NegotiateEncoding always returns EncodingIdentity.
func NegotiateEncoding(hs *HeaderSet) Encoding {
	sawBr, sawGzip, sawDeflate := acceptedEncodings(hs)
	switch {
	case sawBr:
		return EncodingBr
	case sawGzip:
		return EncodingGzip
	case sawDeflate:
		return EncodingDeflate
	default:
		return EncodingIdentity
	}
}

// acceptedEncodings walks hs's Accept-Encoding list (if any) and reports
// which of br/gzip/deflate the client accepts, per the same q=0 refusal
// rule NegotiateEncoding applies.
func acceptedEncodings(hs *HeaderSet) (br, gzip, deflate bool) {
	if hs == nil {
		return false, false, false
	}
	slot := hs.Get(HeaderAcceptEncoding)
	if slot == nil || !slot.IsSet() {
		return false, false, false
	}
	list, ok := slot.(*List[*EnumWithAttribute[Encoding]])
	if !ok {
		return false, false, false
	}

	for _, item := range list.Items {
		if refusedByQValue(item) {
			continue
		}
		switch item.Value {
		case EncodingBr:
			br = true
		case EncodingGzip:
			gzip = true
		case EncodingDeflate:
			deflate = true
		}
	}
	return br, gzip, deflate
}

func refusedByQValue(item *EnumWithAttribute[Encoding]) bool {
	q := item.FindAttributeValueFor("q")
	b := q.Bytes()
	return len(b) > 0 && b[0] == '0' && (len(b) == 1 || b[1] == '.' && allZero(b[2:]))
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != '0' {
			return false
		}
	}
	return true
}

// CompressBody compresses body under enc, returning the compressed bytes
// and the wire name to send as Content-Encoding ("" for EncodingIdentity,
// meaning body should be sent unmodified). This targets
// already-materialized answer bodies -- a SimpleAnswer's fixed byte
// slice or a CapturedAnswer's fully-buffered content -- not the
// request-parsing path, so the compressor's own internal buffers do not
// conflict with the vault's fixed-capacity discipline.
func CompressBody(enc Encoding, body []byte) (compressed []byte, contentEncoding string) {
	switch enc {
	case EncodingGzip:
		var buf bytes.Buffer
		w, _ := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
		_, _ = w.Write(body)
		_ = w.Close()
		return buf.Bytes(), "gzip"
	case EncodingDeflate:
		var buf bytes.Buffer
		w, _ := flate.NewWriter(&buf, flate.BestSpeed)
		_, _ = w.Write(body)
		_ = w.Close()
		return buf.Bytes(), "deflate"
	case EncodingBr:
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		_, _ = w.Write(body)
		_ = w.Close()
		return buf.Bytes(), "br"
	default:
		return body, ""
	}
}

// SimpleAnswerCompressed builds a SimpleAnswer whose body is compressed
// according to hs's negotiated Accept-Encoding, setting Content-Encoding
// via the MIME-adjacent header plumbing the emitter already understands.
// Route handlers that serve generated (not memory-mapped) content should
// prefer this over SimpleAnswer when the route declared AcceptEncoding
// in its ExpectedHeaders.
func SimpleAnswerCompressed(code StatusCode, mime string, body []byte, hs *HeaderSet) Answer {
	enc := NegotiateEncoding(hs)
	data, name := CompressBody(enc, body)
	ans := SimpleAnswer(code, mime, data)
	ans.ContentEncoding = name
	return ans
}

// CapturedAnswerCompressed wraps producer so each chunk it yields is
// compressed and sent as its own gzip member, when hs's negotiated
// Accept-Encoding accepts gzip. Only gzip is offered here: RFC 1952
// explicitly permits concatenating independent gzip members into one
// stream and Go's gzip.Reader decodes the concatenation transparently
// (Multistream defaults to true), which is what lets a chunk-at-a-time
// producer compress incrementally instead of buffering the whole body
// the way CompressBody does. Neither raw deflate nor brotli define that
// concatenation behavior, so a client that only accepts those gets the
// answer uncompressed rather than a stream most decoders would reject.
func CapturedAnswerCompressed(code StatusCode, headers *HeaderSet, hs *HeaderSet, producer ChunkProducer) Answer {
	br, canGzip, deflate := acceptedEncodings(hs)
	_ = br
	_ = deflate
	if !canGzip {
		return CapturedAnswer(code, headers, producer)
	}

	wrapped := func() ([]byte, bool) {
		chunk, ok := producer()
		if len(chunk) == 0 {
			return chunk, ok
		}
		var buf bytes.Buffer
		w, _ := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
		_, _ = w.Write(chunk)
		_ = w.Close()
		return buf.Bytes(), ok
	}
	ans := CapturedAnswer(code, headers, wrapped)
	ans.ContentEncoding = "gzip"
	return ans
}
