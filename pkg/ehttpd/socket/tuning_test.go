package socket

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
)

// loopback returns a connected TCP pair over 127.0.0.1; the listener
// and both conns are cleaned up with the test.
func loopback(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	server = <-accepted
	t.Cleanup(func() { client.Close(); server.Close() })
	return client, server
}

func TestConfigProfiles(t *testing.T) {
	def, ht, ll := DefaultConfig(), HighThroughputConfig(), LowLatencyConfig()

	for name, cfg := range map[string]*Config{"default": def, "high-throughput": ht, "low-latency": ll} {
		if !cfg.NoDelay {
			t.Errorf("%s: NoDelay should be on in every shipped profile", name)
		}
		if !cfg.KeepAlive {
			t.Errorf("%s: KeepAlive should be on in every shipped profile", name)
		}
	}

	if ht.RecvBuffer <= def.RecvBuffer || def.RecvBuffer <= ll.RecvBuffer {
		t.Errorf("buffer sizes should order high-throughput > default > low-latency, got %d/%d/%d",
			ht.RecvBuffer, def.RecvBuffer, ll.RecvBuffer)
	}
	if ll.DeferAccept {
		t.Error("low-latency profile should not defer accept wakeups")
	}
	if !ll.QuickAck || ht.QuickAck {
		t.Error("QuickAck should be on for low-latency and off for high-throughput")
	}
}

func TestApplyOnTCPConn(t *testing.T) {
	client, _ := loopback(t)
	if err := Apply(client, nil); err != nil {
		t.Fatalf("Apply(nil config) on a TCP conn: %v", err)
	}
	if err := Apply(client, LowLatencyConfig()); err != nil {
		t.Fatalf("Apply(LowLatencyConfig): %v", err)
	}
}

func TestApplyLeavesNonTCPConnsAlone(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	if err := Apply(a, DefaultConfig()); err != nil {
		t.Fatalf("Apply on a non-TCP conn should be a no-op, got %v", err)
	}
}

func TestApplyListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if err := ApplyListener(ln, DefaultConfig()); err != nil {
		t.Fatalf("ApplyListener: %v", err)
	}
}

func TestGetTCPInfoOnLiveConn(t *testing.T) {
	client, _ := loopback(t)
	raw, err := client.(*net.TCPConn).SyscallConn()
	if err != nil {
		t.Fatal(err)
	}

	var info *SocketInfo
	var infoErr error
	if err := raw.Control(func(fd uintptr) { info, infoErr = GetTCPInfo(int(fd)) }); err != nil {
		t.Fatal(err)
	}
	if infoErr != nil {
		t.Fatalf("GetTCPInfo: %v", infoErr)
	}
	if info == nil {
		t.Fatal("GetTCPInfo returned a nil SocketInfo")
	}
}

func TestSendFileRoundTrip(t *testing.T) {
	content := bytes.Repeat([]byte("sendfile payload "), 1024)
	path := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	client, server := loopback(t)

	received := make(chan []byte, 1)
	go func() {
		got, _ := io.ReadAll(server)
		received <- got
	}()

	written, err := SendFileAll(client, f)
	if err != nil {
		t.Fatalf("SendFileAll: %v", err)
	}
	client.Close()

	if written != int64(len(content)) {
		t.Fatalf("written = %d, want %d", written, len(content))
	}
	if got := <-received; !bytes.Equal(got, content) {
		t.Fatalf("received %d bytes, want the %d file bytes back unchanged", len(got), len(content))
	}
}

func TestSendFileRangeBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranged")
	if err := os.WriteFile(path, []byte("0123456789"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	client, server := loopback(t)
	received := make(chan []byte, 1)
	go func() {
		got, _ := io.ReadAll(server)
		received <- got
	}()

	written, err := SendFileRange(client, f, 2, 5)
	if err != nil {
		t.Fatalf("SendFileRange: %v", err)
	}
	client.Close()

	if written != 4 {
		t.Fatalf("written = %d, want 4 for the inclusive range [2,5]", written)
	}
	if got := string(<-received); got != "2345" {
		t.Fatalf("received %q, want %q", got, "2345")
	}
}
