package tinycompress

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"
)

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + i>>8)
	}
	return data
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 40, 1000, maxStoredBlock, maxStoredBlock + 1, 3*maxStoredBlock + 17} {
		data := pattern(n)
		stream := Encode(data)
		if len(stream) != EncodedLen(n) {
			t.Errorf("n=%d: expected %d bytes, got %d", n, EncodedLen(n), len(stream))
		}

		got, err := Decode(stream)
		if err != nil {
			t.Fatalf("n=%d: Decode failed: %v", n, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("n=%d: round trip mismatch", n)
		}
	}
}

func TestReadableByZlib(t *testing.T) {
	data := pattern(2*maxStoredBlock + 5)

	r, err := zlib.NewReader(bytes.NewReader(Encode(data)))
	if err != nil {
		t.Fatalf("zlib.NewReader failed: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("zlib read failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("zlib decoded different data")
	}
}

func TestDecodeErrors(t *testing.T) {
	good := Encode([]byte("get_time\nset_time sec=%u\n"))

	badSum := append([]byte(nil), good...)
	badSum[len(badSum)-1] ^= 0xFF

	badLen := append([]byte(nil), good...)
	badLen[5] ^= 0x01

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(bytes.Repeat([]byte("abc"), 100))
	zw.Close()

	testCases := []struct {
		name   string
		stream []byte
		err    error
	}{
		{"empty", nil, ErrHeader},
		{"bad header", []byte{0x12, 0x34, 0x01, 0, 0, 0xFF, 0xFF}, ErrHeader},
		{"truncated", good[:len(good)-2], ErrTruncated},
		{"checksum", badSum, ErrChecksum},
		{"length check", badLen, ErrBlockLength},
		{"huffman block", compressed.Bytes(), ErrBlockType},
	}

	for _, tc := range testCases {
		if _, err := Decode(tc.stream); err != tc.err {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
	}
}

func TestWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	w.Write([]byte("time_report "))
	w.Write([]byte("ticks=%u"))
	if out.Len() != 0 {
		t.Error("Writer emitted data before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := Decode(out.Bytes())
	if err != nil || string(got) != "time_report ticks=%u" {
		t.Errorf("got %q, %v", got, err)
	}
	if _, err := w.Write([]byte("x")); err == nil {
		t.Error("Write after Close should fail")
	}
}
