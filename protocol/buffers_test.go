package protocol

import "testing"

func TestScratchOutput(t *testing.T) {
	scratch := NewScratchOutput()

	data1 := []byte{1, 2, 3}
	scratch.Output(data1)

	if scratch.CurPosition() != 3 {
		t.Errorf("Expected position 3, got %d", scratch.CurPosition())
	}

	result := scratch.Result()
	if len(result) != 3 {
		t.Errorf("Expected 3 bytes in result, got %d", len(result))
	}

	data2 := []byte{4, 5}
	scratch.Output(data2)

	if scratch.CurPosition() != 5 {
		t.Errorf("Expected position 5, got %d", scratch.CurPosition())
	}

	// Test Update
	scratch.Update(0, 99)
	result = scratch.Result()
	if result[0] != 99 {
		t.Errorf("Expected first byte to be 99, got %d", result[0])
	}

	// Test DataSince
	since := scratch.DataSince(2)
	if len(since) != 3 || since[0] != 3 {
		t.Errorf("DataSince(2) failed: expected [3 4 5], got %v", since)
	}

	// Test Reset
	scratch.Reset()
	if scratch.CurPosition() != 0 {
		t.Errorf("After reset, expected position 0, got %d", scratch.CurPosition())
	}
}

func TestScratchOutputOverflow(t *testing.T) {
	scratch := NewScratchOutput()
	scratch.Output(make([]byte, MessageMax-2))
	scratch.Output([]byte{1, 2, 3, 4})

	if scratch.CurPosition() != MessageMax {
		t.Errorf("Expected position %d, got %d", MessageMax, scratch.CurPosition())
	}
	if scratch.Dropped() != 2 {
		t.Errorf("Expected 2 dropped bytes, got %d", scratch.Dropped())
	}

	scratch.Reset()
	if scratch.Dropped() != 0 {
		t.Errorf("After reset, expected 0 dropped bytes, got %d", scratch.Dropped())
	}
}

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)
	if !fifo.IsEmpty() || fifo.Free() != 10 {
		t.Fatalf("New FIFO: available %d, free %d", fifo.Available(), fifo.Free())
	}

	if n := fifo.Write([]byte{1, 2, 3, 4, 5}); n != 5 {
		t.Errorf("Expected to write 5 bytes, wrote %d", n)
	}
	if fifo.Available() != 5 || fifo.Free() != 5 {
		t.Errorf("After write: available %d, free %d", fifo.Available(), fifo.Free())
	}

	fifo.Pop(3)
	if got := fifo.Data(); len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Errorf("After pop: got %v", got)
	}

	fifo.Pop(10)
	if !fifo.IsEmpty() {
		t.Errorf("Expected empty FIFO, got %d available", fifo.Available())
	}

	big := make([]byte, 12)
	if n := fifo.Write(big); n != 10 {
		t.Errorf("Expected to write 10 bytes to a size-10 FIFO, wrote %d", n)
	}
	if n := fifo.Write([]byte{1}); n != 0 {
		t.Errorf("Full FIFO accepted %d bytes", n)
	}
}

func TestFifoBufferCompacts(t *testing.T) {
	fifo := NewFifoBuffer(5)
	fifo.Write([]byte{1, 2, 3, 4})
	fifo.Pop(2)

	// Only one byte free at the end; the unread bytes move to the front
	if n := fifo.Write([]byte{5, 6, 7}); n != 3 {
		t.Errorf("Expected to write 3 bytes, wrote %d", n)
	}

	got := fifo.Data()
	want := []byte{3, 4, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}
