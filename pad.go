package md5trace

import "encoding/binary"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Padding describes how a message of a given length is laid out once padded:
//
//	message :: 0x80 :: Zeros × 0x00 :: 8-byte little-endian bit length
type Padding struct {
	Message int `json:"message"`
	Zeros   int `json:"zeros"`
	Total   int `json:"total"`
}

// Layout returns the padding layout of an n-byte message.
func Layout(n int) Padding {
	zeros := (BlockSize - 9 - n%BlockSize + BlockSize) % BlockSize
	return Padding{Message: n, Zeros: zeros, Total: n + 1 + zeros + 8}
}

// Marker returns the index of the 0x80 byte.
func (p Padding) Marker() int { return p.Message }

// Length returns the index of the first byte of the length field.
func (p Padding) Length() int { return p.Total - 8 }

// Bits returns the value of the length field. It is 8*Message modulo 2^64; messages of 2^61 bytes
// or more wrap around exactly as RFC 1321 prescribes, rather than being rejected.
func (p Padding) Bits() uint64 { return uint64(p.Message) << 3 }

/* fill writes the terminator and the length field; buf must be zeroed past p.Message. */
func (p Padding) fill(buf []byte) {
	buf[p.Marker()] = 0x80
	binary.LittleEndian.PutUint64(buf[p.Length():], p.Bits())
}

// Pad returns a copy of msg followed by the MD5 padding. The result is always a positive multiple
// of BlockSize bytes long.
func Pad(msg []byte) []byte {
	p := Layout(len(msg))
	buf := make([]byte, p.Total)
	copy(buf, msg)
	p.fill(buf)
	return buf
}

/* padString is Pad for text already known to be valid UTF-8; it allocates exactly once. */
func padString(text string) []byte {
	p := Layout(len(text))
	buf := make([]byte, p.Total)
	copy(buf, text)
	p.fill(buf)
	return buf
}
