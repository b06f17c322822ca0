// Package encoding provides text encoding utilities for fixed-width binary
// header fields.
package encoding

import (
	"bytes"

	textenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// UTF8ToLatin1 converts a UTF-8 string to ISO-8859-1 bytes.
// Runes outside Latin-1 are replaced with the charset substitute byte.
func UTF8ToLatin1(s string) []byte {
	encoder := textenc.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	result, err := encoder.String(s)
	if err != nil {
		return []byte(s)
	}
	return []byte(result)
}

// Latin1ToUTF8 converts ISO-8859-1 bytes to a UTF-8 string.
func Latin1ToUTF8(data []byte) string {
	result, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// FixedString encodes s into exactly size bytes of Latin-1, truncating
// long input and padding short input with null bytes.
func FixedString(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, UTF8ToLatin1(s))
	return result
}

// FixedStringToUTF8 decodes a fixed-size Latin-1 field, dropping everything
// from the first null byte and any trailing spaces.
func FixedStringToUTF8(data []byte) string {
	if nullIdx := bytes.IndexByte(data, 0); nullIdx >= 0 {
		data = data[:nullIdx]
	}
	return Latin1ToUTF8(bytes.TrimRight(data, " "))
}
