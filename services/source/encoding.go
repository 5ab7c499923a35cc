package source

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts raw file bytes to a UTF-8 string. An explicit encoding
// name is honored; "auto" or empty tries UTF-8 first (with or without BOM) and
// falls back through the Windows code pages common in exported business data.
func DecodeText(data []byte, encodingName string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encodingName)) {
	case "", "auto":
		return autoDecode(data), nil
	case "utf-8", "utf8":
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return decodeCharmap(data, charmap.Windows1252), nil
	case "windows-1254", "cp1254", "iso-8859-9":
		return decodeCharmap(data, charmap.Windows1254), nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", encodingName)
	}
}

func autoDecode(data []byte) string {
	if bytes.HasPrefix(data, utf8BOM) {
		return string(data[len(utf8BOM):])
	}
	if utf8.Valid(data) {
		return string(data)
	}
	if s := decodeCharmap(data, charmap.Windows1252); !strings.ContainsRune(s, utf8.RuneError) {
		return s
	}
	return decodeCharmap(data, charmap.Windows1254)
}

// decodeCharmap never fails: bytes without a mapping become the replacement
// rune, which autoDecode uses to reject a candidate code page.
func decodeCharmap(data []byte, cm *charmap.Charmap) string {
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}
