// Package vault implements the per-connection "transient vault": a
// fixed-capacity byte region that the wire parser appends into and the
// request/response pipeline reads views out of, with an explicit persist
// primitive so a view survives the head being dropped past its origin.
//
// This is the one piece of mutable shared state between the parser and a
// route callback: the callback borrows it for the duration of its call
// and must persist anything it wants to keep past the next drop.
package vault

import (
	"errors"
	"unsafe"
)

// ErrOverflow names the condition of an operation needing more than the
// vault's fixed capacity. No Vault method returns it: Persist reports
// that condition as ok=false. The vault never grows; callers translate
// the failure into InternalServerError or EntityTooLarge depending on
// which phase hit it.
var ErrOverflow = errors.New("vault: capacity exceeded")

// Vault is a contiguous byte region of capacity N split into two parts
// that grow toward each other: the receive region [head, tail) holds
// bytes as they arrive off the socket, and the session region
// [session, N) holds persisted copies. Keeping persisted bytes above
// the receive region means a persist can never splice itself into the
// middle of the byte stream a later socket read appends to.
//
// Capacity should be a power of two by convention but this
// implementation itself just uses a flat buffer with advancing offsets;
// once tail reaches the session boundary, Compact must run before
// further Stored calls, which the Client state machine does as part of
// its drop discipline.
type Vault struct {
	buf        []byte
	head, tail int
	session    int
}

// New allocates a vault of the given fixed capacity. Capacity is never
// grown after construction; this is the only allocation in the vault's
// lifetime.
func New(capacity int) *Vault {
	return &Vault{buf: make([]byte, capacity), session: capacity}
}

// Capacity returns the fixed size of the backing region.
func (v *Vault) Capacity() int { return len(v.buf) }

// TailFree reports how many bytes may still be written at the tail
// before the receive region would collide with the session region.
func (v *Vault) TailFree() int { return v.session - v.tail }

// Len reports the number of live receive bytes currently held, [head, tail).
func (v *Vault) Len() int { return v.tail - v.head }

// WriteSlot returns the raw region available for a socket read to write
// into directly (avoids an intermediate copy). The caller must call
// Stored(n) with however many bytes it actually wrote.
func (v *Vault) WriteSlot() []byte { return v.buf[v.tail:v.session] }

// Stored commits k freshly written bytes at the tail.
func (v *Vault) Stored(k int) {
	v.tail += k
}

// View returns a view of the live receive region [head, tail).
func (v *Vault) View() []byte { return v.buf[v.head:v.tail] }

// Drop advances head by k, invalidating any unpersisted view into the
// dropped range. It does not zero the dropped memory; paranoid-mode
// callers that want that must do it themselves.
func (v *Vault) Drop(k int) {
	v.head += k
	if v.head > v.tail {
		v.head = v.tail
	}
}

// Reset clears both regions back to an empty vault. zero, when true,
// wipes the backing buffer (paranoid mode); otherwise the bytes are
// left in place and simply become unreachable until overwritten.
func (v *Vault) Reset(zero bool) {
	if zero {
		for i := range v.buf {
			v.buf[i] = 0
		}
	}
	v.head, v.tail = 0, 0
	v.session = len(v.buf)
}

// Compact slides the live receive region down to offset 0, maximizing
// TailFree without losing any live bytes. Any view obtained before
// Compact that was not persisted becomes invalid, same as after any
// Drop; persisted views are untouched since the session region does
// not move.
func (v *Vault) Compact() {
	if v.head == 0 {
		return
	}
	n := copy(v.buf, v.buf[v.head:v.tail])
	v.head = 0
	v.tail = n
}

// Persist copies view (which must currently lie within [head, tail))
// into the session region and returns a view over the copy, so the
// original does not need to survive subsequent Drop or Compact calls.
// A view that already lies in the session region is returned as-is, so
// re-persisting after a second refill never duplicates bytes.
//
// Persist fails (returns ok=false) when there is not enough TailFree to
// hold the copy without the session region colliding with the tail.
func (v *Vault) Persist(view []byte) (persisted []byte, ok bool) {
	if len(view) == 0 {
		return view, true
	}
	if v.inSession(view) {
		return view, true
	}
	if v.TailFree() < len(view) {
		return nil, false
	}
	v.session -= len(view)
	dst := v.buf[v.session : v.session+len(view)]
	copy(dst, view)
	return dst, true
}

// inSession reports whether view's first byte already lies inside the
// session region [session, cap). The pointer comparison is the only
// reliable aliasing test between two slices over the same array.
func (v *Vault) inSession(view []byte) bool {
	if len(view) == 0 || v.session == len(v.buf) {
		return false
	}
	p := uintptr(unsafe.Pointer(&view[0]))
	lo := uintptr(unsafe.Pointer(&v.buf[v.session]))
	hi := uintptr(unsafe.Pointer(&v.buf[len(v.buf)-1]))
	return p >= lo && p <= hi
}
