package clip_helper

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func TestDropFilesRoundTrip(t *testing.T) {
	paths := []string{
		`C:\Users\alice\Documents\report.pdf`,
		`C:\Temp\скриншот 2024.png`, // non-ASCII path
		`D:\data\读我.txt`,
	}
	payload := EncodeDropFiles(paths)

	le := binary.LittleEndian
	if got := le.Uint32(payload[0:]); got != 20 {
		t.Fatalf("expected pFiles offset 20, got %d", got)
	}
	if got := le.Uint32(payload[16:]); got != 1 {
		t.Fatalf("expected fWide=1, got %d", got)
	}
	// Double NUL terminator.
	if payload[len(payload)-1] != 0 || payload[len(payload)-2] != 0 ||
		payload[len(payload)-3] != 0 || payload[len(payload)-4] != 0 {
		t.Fatalf("path list not double-NUL terminated: % x", payload[len(payload)-4:])
	}

	got, err := DecodeDropFiles(payload)
	if err != nil {
		t.Fatalf("DecodeDropFiles failed: %v", err)
	}
	if !reflect.DeepEqual(got, paths) {
		t.Fatalf("paths changed across round trip: got %#v want %#v", got, paths)
	}
}

func TestDecodeDropFilesRejectsMalformed(t *testing.T) {
	if _, err := DecodeDropFiles(make([]byte, 5)); err == nil {
		t.Fatalf("expected error for truncated header")
	}

	ansi := EncodeDropFiles([]string{`C:\x`})
	binary.LittleEndian.PutUint32(ansi[16:], 0) // fWide=0
	if _, err := DecodeDropFiles(ansi); err == nil {
		t.Fatalf("expected error for ANSI list")
	}

	bad := EncodeDropFiles([]string{`C:\x`})
	binary.LittleEndian.PutUint32(bad[0:], 9999) // offset past end
	if _, err := DecodeDropFiles(bad); err == nil {
		t.Fatalf("expected error for out-of-range offset")
	}
}
