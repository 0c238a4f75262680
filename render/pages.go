package render

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/p7r0x7/md5trace"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Dashed prints b as lowercase hex pairs joined by dashes.
func Dashed(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, c := range b {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(hex.EncodeToString([]byte{c}))
	}
	return sb.String()
}

// Message lists every character of msg with the bytes it was encoded to. Malformed bytes are
// listed one by one and marked.
func Message(msg []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Input: %q (%d bytes)\n", msg, len(msg))
	for _, c := range md5trace.CharBoundaries(msg) {
		span := Dashed(msg[c.Start:c.End])
		switch {
		case !c.Valid:
			fmt.Fprintf(&sb, "  [%d]  ??   %s  (malformed)\n", c.Start, span)
		case unicode.IsPrint(c.Rune):
			fmt.Fprintf(&sb, "  [%d]  %q  U+%04X  %s\n", c.Start, c.Rune, c.Rune, span)
		default:
			fmt.Fprintf(&sb, "  [%d]  U+%04X  %s\n", c.Start, c.Rune, span)
		}
	}
	return sb.String()
}

// Padding describes how the message of tr was extended to whole blocks.
func Padding(tr *md5trace.FullTrace) string {
	p := tr.Padding()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Padding: %d message bytes, 0x80 marker at %d, %d zero bytes, length %d bits at %d..%d\n",
		p.Message, p.Marker(), p.Zeros, p.Bits(), p.Length(), p.Total-1)
	fmt.Fprintf(&sb, "  %d bytes in %d block(s)\n", p.Total, p.Total/md5trace.BlockSize)
	return sb.String()
}

// Pages splits the rendering of tr into screens: the input, the padding, one per block and the
// digest.
func Pages(tr *md5trace.FullTrace, r *Renderer) []string {
	pages := make([]string, 0, len(tr.Blocks)+3)
	pages = append(pages, Message(tr.Message), Padding(tr)+Dashed(tr.Padded)+"\n")
	root := Tree(tr)
	for _, b := range root.Children {
		pages = append(pages, r.String(b))
	}
	pages = append(pages, fmt.Sprintf("MD5(%q) = %s\n", tr.Message, tr.Digest))
	return pages
}
