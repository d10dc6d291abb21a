//go:build !linux
// +build !linux

// SendFile and friends give every platform the same zero-copy-when-
// possible API; this file is the fallback for every platform not
// covered by sendfile_linux.go, copying through userspace via io.Copy
// instead.
package socket

import (
	"io"
	"net"
	"os"
)

// SendFile copies count bytes of file starting at offset to conn.
// There is no platform-specific fast path here, so this always goes
// through io.Copy.
func SendFile(conn net.Conn, file *os.File, offset int64, count int64) (written int64, err error) {
	return io.Copy(conn, io.NewSectionReader(file, offset, count))
}

// SendFileAll sends file in its entirety.
func SendFileAll(conn net.Conn, file *os.File) (written int64, err error) {
	stat, err := file.Stat()
	if err != nil {
		return 0, err
	}
	return SendFile(conn, file, 0, stat.Size())
}

// SendFileRange sends the inclusive byte range [start, end] of file.
func SendFileRange(conn net.Conn, file *os.File, start, end int64) (written int64, err error) {
	if end < start {
		return 0, io.EOF
	}
	return SendFile(conn, file, start, end-start+1)
}

// CanUseSendFile always reports false here: this build has no sendfile(2)
// fast path to offer.
func CanUseSendFile(conn net.Conn) bool {
	return false
}
