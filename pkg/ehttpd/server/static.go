package server

import (
	"net"
	"os"
	"strconv"

	"github.com/X-Ryl669/eHTTPd/pkg/ehttpd/http11"
	"github.com/X-Ryl669/eHTTPd/pkg/ehttpd/socket"
)

// FileStream adapts an opened file to the emitter's Stream contract:
// the size is snapshotted at construction so the emitted Content-Length
// and the bytes actually copied always agree, even if the file grows
// underneath a long emission.
type FileStream struct {
	f    *os.File
	size int
}

// NewFileStream stats f and wraps it; the caller keeps ownership of f
// and closes it after the answer has been emitted.
func NewFileStream(f *os.File) (*FileStream, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &FileStream{f: f, size: int(st.Size())}, nil
}

func (s *FileStream) Size() int                    { return s.size }
func (s *FileStream) HasContent() bool             { return s.size > 0 }
func (s *FileStream) Read(buf []byte) (int, error) { return s.f.Read(buf) }

// netConn is implemented by sockets that can surface their underlying
// net.Conn for the sendfile fast path.
type netConn interface{ NetConn() net.Conn }

// EmitFile emits a fixed-length file answer to w. When w is the
// server's own socket writer over a TCP connection the body skips the
// userspace copy entirely via socket.SendFile; any other writer (tests,
// a TLS-wrapped conn, a pipe) takes the emitter's ordinary streamed
// path. A route callback serving static content calls this instead of
// building a StreamAnswer by hand.
func EmitFile(w http11.Writer, method http11.Method, code http11.StatusCode, mime string, f *os.File) error {
	fs, err := NewFileStream(f)
	if err != nil {
		return err
	}

	sw, ok := w.(socketWriter)
	if !ok {
		return emitFileStream(w, method, code, mime, fs)
	}
	nc, ok := sw.sock.(netConn)
	if !ok || !socket.CanUseSendFile(nc.NetConn()) {
		return emitFileStream(w, method, code, mime, fs)
	}

	head := "HTTP/1.1 " + strconv.Itoa(int(code)) + " " + code.Reason() + "\r\n" +
		"Content-Length: " + strconv.Itoa(fs.Size()) + "\r\n"
	if mime != "" {
		head += "Content-Type: " + mime + "\r\n"
	}
	head += "\r\n"
	if _, err := w.Write([]byte(head)); err != nil {
		return err
	}
	if method == http11.MethodHEAD || fs.Size() == 0 {
		return nil
	}
	_, err = socket.SendFile(nc.NetConn(), f, 0, int64(fs.Size()))
	return err
}

func emitFileStream(w http11.Writer, method http11.Method, code http11.StatusCode, mime string, fs *FileStream) error {
	ans := http11.StreamAnswer(code, nil, fs)
	ans.MIME = mime
	return http11.Emit(w, ans, method)
}
