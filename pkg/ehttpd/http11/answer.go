package http11

import (
	"io"
	"strconv"
)

// Stream is the minimal contract an answer body source must expose:
// Size reports a known length or 0 when unknown (in which case chunked
// transfer encoding is used), HasContent distinguishes "empty body" from
// "no body at all" the way a HEAD response needs to, and Read drains the
// stream the same way io.Reader does (0, nil at a clean EOF boundary
// here since callers loop on Size()/running total rather than on error).
type Stream interface {
	Size() int
	HasContent() bool
	Read(buf []byte) (int, error)
}

// ChunkProducer yields the body of a CapturedAnswer one chunk at a
// time; a zero-length chunk with ok=true signals the end of the stream.
type ChunkProducer func() (chunk []byte, ok bool)

// Answer is the sum type the emitter dispatches on. Exactly one of the
// Simple/Stream/Captured fields is meaningful, selected by Kind.
type Answer struct {
	Kind     AnswerKind
	Code     StatusCode
	Headers  *HeaderSet
	MIME     string
	Body     []byte
	Input    Stream
	Producer ChunkProducer

	// ContentEncoding, when non-empty, is sent as the Content-Encoding
	// header; it is the caller's responsibility to have already
	// compressed Body accordingly (see CompressBody/SimpleAnswerCompressed).
	ContentEncoding string
}

type AnswerKind int

const (
	KindCode AnswerKind = iota
	KindSimple
	KindStream
	KindCaptured
)

// CodeAnswer builds a bare status-line-only answer.
func CodeAnswer(code StatusCode) Answer { return Answer{Kind: KindCode, Code: code} }

// SimpleAnswer builds a fixed in-memory body answer.
func SimpleAnswer(code StatusCode, mime string, body []byte) Answer {
	return Answer{Kind: KindSimple, Code: code, MIME: mime, Body: body}
}

// StreamAnswer builds an answer whose body comes from a Stream of known
// or unknown size (Content-Length vs chunked is chosen accordingly).
func StreamAnswer(code StatusCode, headers *HeaderSet, input Stream) Answer {
	return Answer{Kind: KindStream, Code: code, Headers: headers, Input: input}
}

// CapturedAnswer builds a chunked answer whose total size is unknown
// ahead of time; producer is called until it yields a zero-length chunk
// or reports ok=false.
func CapturedAnswer(code StatusCode, headers *HeaderSet, producer ChunkProducer) Answer {
	return Answer{Kind: KindCaptured, Code: code, Headers: headers, Producer: producer}
}

// Writer is the byte-sink contract the emitter writes to: a single
// Write call per logical chunk, reporting a short write as an error so
// Emit can abort and the caller can close the connection per the "any
// socket short-write aborts emission" rule.
type Writer interface {
	Write(p []byte) (int, error)
}

// ScratchProvider supplies the one buffer the emitter needs that is not
// the per-client vault: copying a Stream's bytes onto the wire has to
// land somewhere between Read and Write. A server built with a fixed
// client count can size a ScratchProvider to that count (see
// ehttpd.ScratchPool) so this copy never allocates past start-up;
// EmitWithScratch(..., nil) falls back to a fresh buffer per call,
// which is what Emit does for callers (tests, simple embedders) that
// have no pool to offer.
type ScratchProvider interface {
	Get() []byte
	Put([]byte)
}

// Emit serializes ans to w: status line, headers (Content-Length or
// Transfer-Encoding: chunked as appropriate), and body, honoring the
// HEAD short-circuit (no body octets, even for a declared Content-Length).
// Any write error aborts immediately -- Emit never retries or buffers
// the whole response before sending.
func Emit(w Writer, ans Answer, method Method) error {
	return EmitWithScratch(w, ans, method, nil)
}

// EmitWithScratch is Emit with an explicit scratch buffer source for
// the KindStream copy paths.
func EmitWithScratch(w Writer, ans Answer, method Method, scratch ScratchProvider) error {
	switch ans.Kind {
	case KindCode:
		return emitStatusOnly(w, ans.Code)
	case KindSimple:
		return emitSimple(w, ans, method)
	case KindStream:
		return emitStream(w, ans, method, scratch)
	case KindCaptured:
		return emitCaptured(w, ans, method)
	default:
		return emitStatusOnly(w, StatusInternalServerError)
	}
}

func writeStatusLine(w Writer, code StatusCode) error {
	line := "HTTP/1.1 " + strconv.Itoa(int(code)) + " " + code.Reason() + "\r\n"
	_, err := w.Write([]byte(line))
	return err
}

func emitStatusOnly(w Writer, code StatusCode) error {
	if err := writeStatusLine(w, code); err != nil {
		return err
	}
	_, err := w.Write([]byte("Content-Length: 0\r\n\r\n"))
	return err
}

func emitSimple(w Writer, ans Answer, method Method) error {
	if err := writeStatusLine(w, ans.Code); err != nil {
		return err
	}
	head := "Content-Length: " + strconv.Itoa(len(ans.Body)) + "\r\n"
	if ans.MIME != "" {
		head += "Content-Type: " + ans.MIME + "\r\n"
	}
	if ans.ContentEncoding != "" {
		head += "Content-Encoding: " + ans.ContentEncoding + "\r\n"
	}
	head += "\r\n"
	if _, err := w.Write([]byte(head)); err != nil {
		return err
	}
	if method == MethodHEAD || len(ans.Body) == 0 {
		return nil
	}
	_, err := w.Write(ans.Body)
	return err
}

func emitStream(w Writer, ans Answer, method Method, scratch ScratchProvider) error {
	if err := writeStatusLine(w, ans.Code); err != nil {
		return err
	}
	mimeLine := ""
	if ans.MIME != "" {
		mimeLine = "Content-Type: " + ans.MIME + "\r\n"
	}
	size := ans.Input.Size()
	if size > 0 || !ans.Input.HasContent() {
		if _, err := w.Write([]byte("Content-Length: " + strconv.Itoa(size) + "\r\n" + mimeLine + "\r\n")); err != nil {
			return err
		}
		if method == MethodHEAD {
			return nil
		}
		return copyExactly(w, ans.Input, size, scratch)
	}
	if _, err := w.Write([]byte("Transfer-Encoding: chunked\r\n" + mimeLine + "\r\n")); err != nil {
		return err
	}
	if method == MethodHEAD {
		return nil
	}
	return copyChunkedFromStream(w, ans.Input, scratch)
}

func emitCaptured(w Writer, ans Answer, method Method) error {
	if err := writeStatusLine(w, ans.Code); err != nil {
		return err
	}
	head := "Transfer-Encoding: chunked\r\n"
	if ans.ContentEncoding != "" {
		head += "Content-Encoding: " + ans.ContentEncoding + "\r\n"
	}
	head += "\r\n"
	if _, err := w.Write([]byte(head)); err != nil {
		return err
	}
	if method == MethodHEAD {
		return nil
	}
	for {
		chunk, ok := ans.Producer()
		if err := writeChunk(w, chunk); err != nil {
			return err
		}
		if !ok || len(chunk) == 0 {
			return nil
		}
	}
}

func copyExactly(w Writer, s Stream, n int, scratch ScratchProvider) error {
	buf := scratchBuf(scratch)
	defer putScratchBuf(scratch, buf)
	remaining := n
	for remaining > 0 {
		want := len(buf)
		if want > remaining {
			want = remaining
		}
		rn, err := s.Read(buf[:want])
		if rn > 0 {
			if _, werr := w.Write(buf[:rn]); werr != nil {
				return werr
			}
			remaining -= rn
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if rn == 0 {
			return nil
		}
	}
	return nil
}

func copyChunkedFromStream(w Writer, s Stream, scratch ScratchProvider) error {
	buf := scratchBuf(scratch)
	defer putScratchBuf(scratch, buf)
	for {
		n, err := s.Read(buf)
		if n > 0 {
			if werr := writeChunk(w, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if n == 0 {
			break
		}
	}
	return writeChunk(w, nil)
}

func scratchBuf(scratch ScratchProvider) []byte {
	if scratch == nil {
		return make([]byte, 4096)
	}
	return scratch.Get()
}

func putScratchBuf(scratch ScratchProvider, buf []byte) {
	if scratch != nil {
		scratch.Put(buf)
	}
}
