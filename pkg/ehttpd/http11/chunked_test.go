package http11

import (
	"bytes"
	"io"
	"testing"
)

func TestChunkedBodyReaderDecodesChunks(t *testing.T) {
	wire := "5\r\nHello\r\n5\r\n, Wor\r\n2\r\nld\r\n0\r\n\r\n"
	r := NewChunkedBodyReader(bytes.NewReader([]byte(wire)).Read)

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "Hello, World" {
		t.Fatalf("decoded = %q, want %q", got, "Hello, World")
	}
}

func TestChunkedBodyReaderSkipsExtensions(t *testing.T) {
	wire := "4;ignore=me\r\nWolf\r\n0\r\n\r\n"
	r := NewChunkedBodyReader(bytes.NewReader([]byte(wire)).Read)

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "Wolf" {
		t.Fatalf("decoded = %q, want %q", got, "Wolf")
	}
}

func TestChunkedBodyReaderRejectsBadSize(t *testing.T) {
	wire := "zz\r\nbad\r\n"
	r := NewChunkedBodyReader(bytes.NewReader([]byte(wire)).Read)

	_, err := io.ReadAll(r)
	if err == nil {
		t.Fatal("expected an error decoding a non-hex chunk size")
	}
}

// chunkedBodyRoute accepts a chunked POST and echoes back the fully
// decoded body, the same shape a real upload-handling route would use.
func chunkedBodyRoute() *Route {
	return &Route{
		MethodMask:      MethodPOST.Mask(),
		PathPrefix:      "/upload",
		ExpectedHeaders: []Header{HeaderTransferEncoding},
		Callback: func(c *Client, w Writer) bool {
			body, err := io.ReadAll(c.Body())
			if err != nil {
				return false
			}
			return Emit(w, SimpleAnswer(StatusOK, "", body), c.RequestLine.Method) == nil
		},
	}
}

func TestClientBodyDecodesChunkedRequestBody(t *testing.T) {
	router := NewRouter(chunkedBodyRoute())
	c := NewClient(1024, RefillUnsupported)
	feed(c, "POST /upload HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nLorem\r\n0\r\n\r\n")

	if status := c.Parse(router); status != HeadersDone {
		t.Fatalf("status = %v, want HeadersDone", status)
	}
	if c.BodyFraming != BodyChunked {
		t.Fatalf("BodyFraming = %v, want BodyChunked", c.BodyFraming)
	}

	var out bytes.Buffer
	if !router.Dispatch(c, &out) {
		t.Fatal("Dispatch() = false")
	}
	want := "HTTP/1.1 200 Ok\r\nContent-Length: 5\r\n\r\nLorem"
	if out.String() != want {
		t.Fatalf("emitted = %q, want %q", out.String(), want)
	}
}

// fixedLengthBodyRoute accepts a Content-Length-framed POST and echoes
// it back.
func fixedLengthBodyRoute() *Route {
	return &Route{
		MethodMask:      MethodPOST.Mask(),
		PathPrefix:      "/submit",
		ExpectedHeaders: []Header{HeaderContentLength},
		Callback: func(c *Client, w Writer) bool {
			body, err := io.ReadAll(c.Body())
			if err != nil {
				return false
			}
			return Emit(w, SimpleAnswer(StatusOK, "", body), c.RequestLine.Method) == nil
		},
	}
}

func TestClientBodyDecodesFixedLengthRequestBody(t *testing.T) {
	router := NewRouter(fixedLengthBodyRoute())
	c := NewClient(1024, RefillUnsupported)
	feed(c, "POST /submit HTTP/1.1\r\nContent-Length: 11\r\n\r\nhello world")

	if status := c.Parse(router); status != HeadersDone {
		t.Fatalf("status = %v, want HeadersDone", status)
	}
	if c.BodyFraming != BodyFixedLength || c.BodyLength != 11 {
		t.Fatalf("BodyFraming=%v BodyLength=%d, want BodyFixedLength/11", c.BodyFraming, c.BodyLength)
	}

	var out bytes.Buffer
	if !router.Dispatch(c, &out) {
		t.Fatal("Dispatch() = false")
	}
	want := "HTTP/1.1 200 Ok\r\nContent-Length: 11\r\n\r\nhello world"
	if out.String() != want {
		t.Fatalf("emitted = %q, want %q", out.String(), want)
	}
}

func TestClientBodyNoneWhenNoFramingHeaderDeclared(t *testing.T) {
	router := NewRouter(colorRoute("GET Color"))
	c := NewClient(1024, RefillUnsupported)
	feed(c, "GET /Color HTTP/1.1\r\nHost: h\r\n\r\n")

	if status := c.Parse(router); status != HeadersDone {
		t.Fatalf("status = %v, want HeadersDone", status)
	}
	if c.BodyFraming != BodyNone {
		t.Fatalf("BodyFraming = %v, want BodyNone", c.BodyFraming)
	}
	body, err := io.ReadAll(c.Body())
	if err != nil || len(body) != 0 {
		t.Fatalf("Body() = %q, %v; want empty, nil", body, err)
	}
}
