package vault

import "testing"

func TestStoredAndView(t *testing.T) {
	v := New(16)
	n := copy(v.WriteSlot(), "hello")
	v.Stored(n)
	if got := string(v.View()); got != "hello" {
		t.Fatalf("View() = %q, want %q", got, "hello")
	}
}

func TestDropInvalidatesRange(t *testing.T) {
	v := New(16)
	n := copy(v.WriteSlot(), "hello world")
	v.Stored(n)
	v.Drop(6)
	if got := string(v.View()); got != "world" {
		t.Fatalf("View() after drop = %q, want %q", got, "world")
	}
}

func TestPersistSurvivesDrop(t *testing.T) {
	v := New(32)
	n := copy(v.WriteSlot(), "GET /Color HTTP/1.1\r\n")
	v.Stored(n)

	uri := v.View()[4:10] // "/Color"
	persisted, ok := v.Persist(uri)
	if !ok {
		t.Fatalf("Persist() failed unexpectedly")
	}

	v.Drop(v.Len())
	n2 := copy(v.WriteSlot(), "Host: h\r\n\r\n")
	v.Stored(n2)

	if got := string(persisted); got != "/Color" {
		t.Fatalf("persisted view = %q, want %q after drop+refill", got, "/Color")
	}
}

func TestPersistLeavesReceiveRegionIntact(t *testing.T) {
	v := New(32)
	n := copy(v.WriteSlot(), "abc")
	v.Stored(n)
	view := v.View()[1:3]

	persisted, ok := v.Persist(view)
	if !ok {
		t.Fatalf("Persist() failed")
	}
	if v.Len() != 3 {
		t.Fatalf("Persist() should not change the receive region, Len()=%d", v.Len())
	}
	if string(persisted) != "bc" {
		t.Fatalf("persisted = %q, want %q", persisted, "bc")
	}
	if v.TailFree() != 32-3-2 {
		t.Fatalf("TailFree() = %d, want capacity minus receive and session bytes", v.TailFree())
	}
}

func TestPersistDoesNotInterleaveWithLaterAppends(t *testing.T) {
	v := New(64)
	n := copy(v.WriteSlot(), "GET /Color HTTP/1.1\r\n")
	v.Stored(n)

	persisted, ok := v.Persist(v.View()[4:10]) // "/Color"
	if !ok {
		t.Fatal("Persist() failed")
	}
	v.Drop(v.Len())

	// A second receive must land directly after the dropped bytes, not
	// after the persisted copy.
	n2 := copy(v.WriteSlot(), "Host: h\r\n\r\n")
	v.Stored(n2)
	if got := string(v.View()); got != "Host: h\r\n\r\n" {
		t.Fatalf("View() = %q; persisted bytes must not splice into the stream", got)
	}
	if string(persisted) != "/Color" {
		t.Fatalf("persisted = %q, want %q", persisted, "/Color")
	}
}

func TestPersistTwiceIsIdempotent(t *testing.T) {
	v := New(32)
	n := copy(v.WriteSlot(), "value")
	v.Stored(n)

	first, ok := v.Persist(v.View())
	if !ok {
		t.Fatal("Persist() failed")
	}
	free := v.TailFree()
	second, ok := v.Persist(first)
	if !ok {
		t.Fatal("re-Persist() failed")
	}
	if v.TailFree() != free {
		t.Fatal("re-persisting an already-persisted view must not consume more space")
	}
	if string(second) != "value" {
		t.Fatalf("second = %q, want %q", second, "value")
	}
}

func TestPersistFailsOnOverflow(t *testing.T) {
	v := New(8)
	n := copy(v.WriteSlot(), "abcdefgh")
	v.Stored(n)
	// view in the middle, not at tail -- would require a copy that
	// doesn't fit since the vault is already full.
	view := v.View()[0:4]
	if _, ok := v.Persist(view); ok {
		t.Fatalf("Persist() should fail when TailFree < len(view)")
	}
}

func TestResetClearsBookkeeping(t *testing.T) {
	v := New(8)
	n := copy(v.WriteSlot(), "abcd")
	v.Stored(n)
	v.Reset(false)
	if v.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", v.Len())
	}
	if v.TailFree() != 8 {
		t.Fatalf("TailFree() after Reset = %d, want 8", v.TailFree())
	}
}

func TestCompactReclaimsHead(t *testing.T) {
	v := New(8)
	n := copy(v.WriteSlot(), "abcdefgh")
	v.Stored(n)
	v.Drop(4)
	v.Compact()
	if v.TailFree() != 4 {
		t.Fatalf("TailFree() after Compact = %d, want 4", v.TailFree())
	}
	if string(v.View()) != "efgh" {
		t.Fatalf("View() after Compact = %q, want %q", v.View(), "efgh")
	}
}
