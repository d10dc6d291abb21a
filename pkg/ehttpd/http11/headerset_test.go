package http11

import "testing"

func TestBuildHeaderSetCollapsesDuplicatesAndAddsAuthorization(t *testing.T) {
	hs := BuildHeaderSet([]Header{HeaderDate, HeaderDate, HeaderHost}, DefaultSlotFactory)
	if len(hs.ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3 (Date, Host, implicit Authorization)", len(hs.ids))
	}
	if hs.Get(HeaderAuthorization) == nil {
		t.Fatal("Authorization must be implicitly included")
	}
	if hs.Get(HeaderUserAgent) != nil {
		t.Fatal("Get() of an undeclared header should be nil")
	}
}

func TestAcceptHeaderOnlyMatchesDeclaredSet(t *testing.T) {
	hs := BuildHeaderSet([]Header{HeaderDate}, DefaultSlotFactory)
	if got := hs.AcceptHeader([]byte("date")); got != HeaderDate {
		t.Fatalf("AcceptHeader(date) = %v, want HeaderDate (case-insensitive)", got)
	}
	// User-Agent is a known header but not declared by this set.
	if got := hs.AcceptHeader([]byte("User-Agent")); got != InvalidHeader {
		t.Fatalf("AcceptHeader(User-Agent) = %v, want InvalidHeader", got)
	}
	if got := hs.AcceptHeader([]byte("X-Custom")); got != InvalidHeader {
		t.Fatalf("AcceptHeader(X-Custom) = %v, want InvalidHeader", got)
	}
}

func TestSendHeadersSerializesSetSlotsOnly(t *testing.T) {
	hs := BuildHeaderSet([]Header{HeaderHost, HeaderContentLength}, DefaultSlotFactory)
	v := ViewOf([]byte("example.org"))
	if err := hs.AcceptAndParse(HeaderHost, &v); err != EndOfRequest {
		t.Fatalf("AcceptAndParse(Host) = %v", err)
	}

	var dst [128]byte
	n, ok := hs.SendHeaders(dst[:])
	if !ok {
		t.Fatal("SendHeaders() reported out-of-space on a roomy buffer")
	}
	if got := string(dst[:n]); got != "Host: example.org\r\n" {
		t.Fatalf("SendHeaders() = %q, want %q", got, "Host: example.org\r\n")
	}
}

func TestSendHeadersReportsOutOfSpace(t *testing.T) {
	hs := BuildHeaderSet([]Header{HeaderHost}, DefaultSlotFactory)
	v := ViewOf([]byte("example.org"))
	hs.AcceptAndParse(HeaderHost, &v)

	var dst [8]byte
	if _, ok := hs.SendHeaders(dst[:]); ok {
		t.Fatal("SendHeaders() into a too-small buffer should report false")
	}
}

func TestWithMaxSupportRegistersExtendedHeaders(t *testing.T) {
	hs := BuildHeaderSet(WithMaxSupport([]Header{HeaderHost}), DefaultSlotFactory)
	if hs.Get(HeaderIfNoneMatch) == nil {
		t.Fatal("MaxSupport set should carry If-None-Match")
	}
	if got := hs.AcceptHeader([]byte("access-control-request-method")); got != HeaderAccessControlRequestMethod {
		t.Fatalf("AcceptHeader(access-control-request-method) = %v", got)
	}
}

func TestHeaderSetResetClearsSlots(t *testing.T) {
	hs := BuildHeaderSet([]Header{HeaderHost}, DefaultSlotFactory)
	v := ViewOf([]byte("example.org"))
	hs.AcceptAndParse(HeaderHost, &v)
	hs.Reset()
	if hs.Get(HeaderHost).IsSet() {
		t.Fatal("Reset() should clear every slot's set bit")
	}
}
