//go:build linux
// +build linux

package socket

import (
	"io"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// sendfileChunkMax bounds a single sendfile(2) call; transfers larger
// than this are issued as multiple calls.
const sendfileChunkMax = 1 << 30

// SendFile copies count bytes of file starting at offset directly to
// conn via sendfile(2), skipping the userspace copy io.Copy would need.
// It falls back to io.Copy when conn isn't a *net.TCPConn, the raw fd
// can't be reached, or sendfile fails before writing anything.
func SendFile(conn net.Conn, file *os.File, offset int64, count int64) (written int64, err error) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return io.Copy(conn, io.NewSectionReader(file, offset, count))
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return io.Copy(conn, io.NewSectionReader(file, offset, count))
	}

	srcFd := int(file.Fd())
	var total int64
	var sendErr error

	ctrlErr := rawConn.Write(func(dstFd uintptr) bool {
		pos := offset
		remaining := count

		for remaining > 0 {
			chunk := remaining
			if chunk > sendfileChunkMax {
				chunk = sendfileChunkMax
			}

			n, err := unix.Sendfile(int(dstFd), srcFd, &pos, int(chunk))
			if err != nil {
				if err == unix.EAGAIN || err == unix.EINTR {
					continue
				}
				sendErr = err
				return false
			}
			if n == 0 {
				break
			}

			total += int64(n)
			remaining -= int64(n)
		}
		return true
	})

	if ctrlErr != nil {
		return io.Copy(conn, io.NewSectionReader(file, offset, count))
	}

	if sendErr != nil {
		if total > 0 {
			rest := count - total
			if rest > 0 {
				n, err := io.Copy(conn, io.NewSectionReader(file, offset+total, rest))
				total += n
				if err != nil {
					return total, err
				}
			}
			return total, nil
		}
		return io.Copy(conn, io.NewSectionReader(file, offset, count))
	}

	return total, nil
}

// SendFileAll sends file in its entirety via SendFile.
func SendFileAll(conn net.Conn, file *os.File) (written int64, err error) {
	stat, err := file.Stat()
	if err != nil {
		return 0, err
	}
	return SendFile(conn, file, 0, stat.Size())
}

// SendFileRange sends the inclusive byte range [start, end] of file via
// SendFile, the shape an HTTP Range response needs.
func SendFileRange(conn net.Conn, file *os.File, start, end int64) (written int64, err error) {
	if end < start {
		return 0, io.EOF
	}
	return SendFile(conn, file, start, end-start+1)
}

// CanUseSendFile reports whether conn is a TCP connection, the only
// kind sendfile(2) can target here.
func CanUseSendFile(conn net.Conn) bool {
	_, ok := conn.(*net.TCPConn)
	return ok
}
