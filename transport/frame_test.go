package transport

import (
	"bytes"
	"testing"
)

func TestStreamRoundTrip(t *testing.T) {
	payload := []byte{'D', 2, 0x05, 0xFF, 0xFF, 0x00, 0x10}

	frame, err := EncodeStream(payload)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	got, consumed, err := DecodeStream(frame)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if consumed != len(frame) {
		t.Errorf("consumed %d bytes, want %d", consumed, len(frame))
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = % x, want % x", got, payload)
	}
}

func TestStreamSkipsLeadingGarbage(t *testing.T) {
	payload := []byte{1, 2, 3}
	frame, err := EncodeStream(payload)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	stream := append([]byte{0x00, 0x55, 0xAA}, frame...)

	// First pass consumes the garbage up to the sync byte.
	got, consumed, err := DecodeStream(stream)
	if err != nil || got != nil || consumed != 3 {
		t.Fatalf("garbage skip = (%v, %d, %v)", got, consumed, err)
	}

	got, consumed, err = DecodeStream(stream[consumed:])
	if err != nil {
		t.Fatalf("DecodeStream after resync: %v", err)
	}
	if consumed != len(frame) || !bytes.Equal(got, payload) {
		t.Errorf("payload = % x (consumed %d)", got, consumed)
	}
}

func TestStreamNeedsMoreBytes(t *testing.T) {
	frame, err := EncodeStream([]byte{9, 8, 7, 6})
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	for cut := 0; cut < len(frame); cut++ {
		got, consumed, err := DecodeStream(frame[:cut])
		if err != nil || got != nil || consumed != 0 {
			t.Fatalf("partial frame of %d bytes = (%v, %d, %v)", cut, got, consumed, err)
		}
	}
}

func TestStreamDetectsCorruption(t *testing.T) {
	frame, err := EncodeStream([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	frame[4] ^= 0xFF // flip a payload byte

	got, consumed, err := DecodeStream(frame)
	if err == nil {
		t.Fatal("corrupt frame accepted")
	}
	if got != nil {
		t.Errorf("corrupt frame yielded payload % x", got)
	}
	if consumed == 0 {
		t.Error("decoder stuck on corrupt frame")
	}
}

func TestEncodeStreamRejectsOversizedPayload(t *testing.T) {
	if _, err := EncodeStream(make([]byte, MaxPayload+1)); err == nil {
		t.Error("oversized payload accepted")
	}
}
