package source

import "testing"

func TestDecodeText_UTF8(t *testing.T) {
	got, err := DecodeText([]byte("Müşteri"), "auto")
	if err != nil || got != "Müşteri" {
		t.Errorf("Expected UTF-8 passthrough, got %q, err %v", got, err)
	}
}

func TestDecodeText_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("ID;NAME")...)
	got, err := DecodeText(data, "auto")
	if err != nil || got != "ID;NAME" {
		t.Errorf("Expected BOM stripped, got %q, err %v", got, err)
	}
}

func TestDecodeText_Windows1254Fallback(t *testing.T) {
	// 0xFE is Turkish lowercase s-cedilla in Windows-1254 and thorn in 1252;
	// either way the byte sequence is invalid UTF-8 and must decode via a
	// code page, never pass through raw.
	got, err := DecodeText([]byte{'m', 0xFE, 'x'}, "auto")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got == "m\xfex" {
		t.Errorf("Raw bytes leaked through decoding: %q", got)
	}
	if len(got) < 3 {
		t.Errorf("Decoded text lost characters: %q", got)
	}
}

func TestDecodeText_ExplicitWindows1254(t *testing.T) {
	got, err := DecodeText([]byte{0xFE}, "windows-1254")
	if err != nil || got != "ş" {
		t.Errorf("Expected ş, got %q, err %v", got, err)
	}
}

func TestDecodeText_UnsupportedName(t *testing.T) {
	if _, err := DecodeText([]byte("x"), "ebcdic"); err == nil {
		t.Errorf("Expected error for unsupported encoding name")
	}
}
