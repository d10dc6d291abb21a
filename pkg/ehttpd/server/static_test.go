package server

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/X-Ryl669/eHTTPd/pkg/ehttpd/http11"
)

func tempFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "body")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestEmitFileStreamedFallback(t *testing.T) {
	f := tempFile(t, "static content")
	var out bytes.Buffer

	// A plain buffer is not the server's socket writer, so this takes
	// the streamed path rather than sendfile.
	if err := EmitFile(&out, http11.MethodGET, http11.StatusOK, "text/plain", f); err != nil {
		t.Fatalf("EmitFile: %v", err)
	}
	want := "HTTP/1.1 200 Ok\r\nContent-Length: 14\r\nContent-Type: text/plain\r\n\r\nstatic content"
	if out.String() != want {
		t.Fatalf("emitted = %q, want %q", out.String(), want)
	}
}

func TestEmitFileHeadSkipsBody(t *testing.T) {
	f := tempFile(t, "static content")
	var out bytes.Buffer

	if err := EmitFile(&out, http11.MethodHEAD, http11.StatusOK, "text/plain", f); err != nil {
		t.Fatalf("EmitFile: %v", err)
	}
	want := "HTTP/1.1 200 Ok\r\nContent-Length: 14\r\nContent-Type: text/plain\r\n\r\n"
	if out.String() != want {
		t.Fatalf("emitted = %q, want %q", out.String(), want)
	}
}

func TestFileStreamContract(t *testing.T) {
	f := tempFile(t, "abc")
	fs, err := NewFileStream(f)
	if err != nil {
		t.Fatal(err)
	}
	if fs.Size() != 3 || !fs.HasContent() {
		t.Fatalf("Size=%d HasContent=%v, want 3/true", fs.Size(), fs.HasContent())
	}

	empty := tempFile(t, "")
	es, err := NewFileStream(empty)
	if err != nil {
		t.Fatal(err)
	}
	if es.Size() != 0 || es.HasContent() {
		t.Fatalf("Size=%d HasContent=%v for an empty file, want 0/false", es.Size(), es.HasContent())
	}
}
