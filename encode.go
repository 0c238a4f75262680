package md5trace

import "unicode/utf8"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Encode returns the UTF-8 encoding of text. Go strings are already byte sequences, so the only
// failure is a string carrying bytes that are not UTF-8, which is reported as *EncodingError.
func Encode(text string) ([]byte, error) {
	if i := invalidAt(text); i >= 0 {
		return nil, &EncodingError{Offset: i}
	}
	return []byte(text), nil
}

func invalidAt(text string) int {
	if utf8.ValidString(text) {
		return -1
	}
	for i := 0; i < len(text); {
		r, n := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && n == 1 {
			return i
		}
		i += n
	}
	return -1 /* Unreachable. */
}

// Char is the span of bytes [Start, End) that encodes one character. Bytes that do not begin a
// valid sequence are listed one at a time with Valid unset and Rune set to utf8.RuneError.
type Char struct {
	Rune  rune `json:"rune"`
	Start int  `json:"start"`
	End   int  `json:"end"`
	Valid bool `json:"valid"`
}

// Len returns the number of bytes in the span.
func (c Char) Len() int { return c.End - c.Start }

// CharBoundaries segments b into the byte spans of the characters it encodes, in order.
func CharBoundaries(b []byte) []Char {
	chars := make([]Char, 0, utf8.RuneCount(b))
	for i := 0; i < len(b); {
		r, n := utf8.DecodeRune(b[i:])
		chars = append(chars, Char{
			Rune: r, Start: i, End: i + n,
			Valid: r != utf8.RuneError || n > 1})
		i += n
	}
	return chars
}
