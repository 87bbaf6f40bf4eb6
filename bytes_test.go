package asmengine

import (
	"bytes"
	"testing"
)

func TestByteBufferWriteFixedLittleEndian(t *testing.T) {
	b := NewByteBuffer(false)
	b.WriteFixed(0x1234, 2)
	if !bytes.Equal(b.Bytes(), []byte{0x34, 0x12}) {
		t.Errorf("got %x", b.Bytes())
	}
}

func TestByteBufferWriteFixedBigEndian(t *testing.T) {
	b := NewByteBuffer(true)
	b.WriteFixed(0x1234, 2)
	if !bytes.Equal(b.Bytes(), []byte{0x12, 0x34}) {
		t.Errorf("got %x", b.Bytes())
	}
}

func TestByteBufferWriteZeros(t *testing.T) {
	b := NewByteBuffer(false)
	b.WriteZeros(3)
	if b.Len() != 3 {
		t.Errorf("Len: got %d, want 3", b.Len())
	}
	for _, v := range b.Bytes() {
		if v != 0 {
			t.Errorf("expected all-zero bytes, got %x", b.Bytes())
		}
	}
}

func TestByteBufferWriteAppends(t *testing.T) {
	b := NewByteBuffer(false)
	b.WriteByte(1)
	b.Write([]byte{2, 3})
	if !bytes.Equal(b.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("got %x", b.Bytes())
	}
}
