package audio

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestBase64RoundTrip(t *testing.T) {
	sizes := []int{0, 1, TransportChunkSize - 1, TransportChunkSize, TransportChunkSize*3 + 7}
	for _, n := range sizes {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 31)
		}
		enc := EncodeBase64(data)
		if enc != base64.StdEncoding.EncodeToString(data) {
			t.Fatalf("size %d: chunked encoding differs from one-shot encoding", n)
		}
		dec, err := DecodeBase64(enc)
		if err != nil {
			t.Fatalf("size %d: DecodeBase64: %v", n, err)
		}
		if !bytes.Equal(dec, data) {
			t.Fatalf("size %d: round trip mismatch", n)
		}
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	if _, err := DecodeBase64("@@not base64@@"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeBase64TrimsWhitespace(t *testing.T) {
	got, err := DecodeBase64("  aGk=\n")
	if err != nil || string(got) != "hi" {
		t.Fatalf("got %q, %v", got, err)
	}
}
