package protocol

import (
	"bytes"
	"testing"
)

func TestVLQKnownEncodings(t *testing.T) {
	testCases := []struct {
		value   int32
		encoded []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{95, []byte{0x5F}},
		{-1, []byte{0x7F}},
		{-32, []byte{0x60}},
		{96, []byte{0x80, 0x60}},
		{-33, []byte{0xFF, 0x5F}},
		{1000, []byte{0x87, 0x68}},
		{1 << 20, []byte{0xC0, 0x80, 0x00}},
		{-1 << 30, []byte{0xFC, 0x80, 0x80, 0x80, 0x00}},
	}

	for _, tc := range testCases {
		got := AppendVLQInt(nil, tc.value)
		if !bytes.Equal(got, tc.encoded) {
			t.Errorf("%d: expected % X, got % X", tc.value, tc.encoded, got)
		}
		if VLQLen(tc.value) != len(tc.encoded) {
			t.Errorf("%d: VLQLen %d, expected %d", tc.value, VLQLen(tc.value), len(tc.encoded))
		}

		data := append(append([]byte(nil), tc.encoded...), 0xAA)
		v, err := DecodeVLQInt(&data)
		if err != nil || v != tc.value {
			t.Errorf("% X: decoded %d, %v", tc.encoded, v, err)
		}
		if len(data) != 1 || data[0] != 0xAA {
			t.Errorf("% X: decode left % X", tc.encoded, data)
		}
	}
}

func TestVLQRoundTrip(t *testing.T) {
	values := []uint32{0, 127, 128, 65535, 1000000, 1 << 31, 0xFFFFFFFE, 0xFFFFFFFF}
	for shift := 0; shift < 32; shift++ {
		values = append(values, 1<<shift-1, 1<<shift, 1<<shift+1)
	}

	for _, expected := range values {
		output := NewScratchOutput()
		EncodeVLQUint(output, expected)
		EncodeVLQInt(output, -int32(expected))
		data := output.Result()

		u, err := DecodeVLQUint(&data)
		if err != nil || u != expected {
			t.Errorf("uint %d: got %d, %v", expected, u, err)
		}
		s, err := DecodeVLQInt(&data)
		if err != nil || s != -int32(expected) {
			t.Errorf("int %d: got %d, %v", -int32(expected), s, err)
		}
		if len(data) != 0 {
			t.Errorf("%d: %d bytes left over", expected, len(data))
		}
	}
}

func TestVLQDecodeErrors(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrBufferTooSmall},
		{"missing continuation", []byte{0x80}, ErrBufferTooSmall},
		{"too long", []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}, ErrInvalidVLQ},
	}

	for _, tc := range testCases {
		data := tc.data
		if _, err := DecodeVLQInt(&data); err != tc.err {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
		if len(data) != len(tc.data) {
			t.Errorf("%s: failed decode consumed input", tc.name)
		}
	}
}

func TestVLQBytes(t *testing.T) {
	for _, expected := range [][]byte{{}, {0x01}, {0xFF, 0xFE, 0xFD}, make([]byte, 50)} {
		output := NewScratchOutput()
		EncodeVLQBytes(output, expected)
		output.Output([]byte{0x42})
		data := output.Result()

		got, err := DecodeVLQBytes(&data)
		if err != nil || !bytes.Equal(got, expected) {
			t.Errorf("% X: got % X, %v", expected, got, err)
		}
		if len(data) != 1 || data[0] != 0x42 {
			t.Errorf("% X: unexpected remainder % X", expected, data)
		}
	}

	short := []byte{0x05, 0x01, 0x02}
	if _, err := DecodeVLQBytes(&short); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}
	if len(short) != 3 {
		t.Error("Failed decode consumed input")
	}
}
