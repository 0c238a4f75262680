package md5trace

import (
	"context"
	"encoding/hex"
	"errors"
	"hash"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// This file contains the entry points of md5trace and a Go-specific API implementing the standard
// hash.Hash interface.

// The size of an MD5 digest and of one block, in bytes.
const Size, BlockSize = 16, 64

// Digest is an MD5 digest. It renders as 32 lowercase hex digits.
type Digest [Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func (d Digest) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Digest) UnmarshalText(b []byte) error {
	if len(b) != Size*2 {
		return errors.New("md5trace: a digest is 32 hex digits")
	}
	_, err := hex.Decode(d[:], b)
	return err
}

// Finalize serializes the registers into a digest.
func Finalize(s State) Digest { return s.Bytes() }

// ComputeDigest returns the MD5 digest of the UTF-8 encoding of text.
func ComputeDigest(text string) (Digest, error) {
	d, _, err := Compute(context.Background(), text, Options{})
	return d, err
}

// ComputeDigestWithTrace returns the digest of text along with the trace of its computation.
// Tracing never changes the digest.
func ComputeDigestWithTrace(text string) (Digest, *FullTrace, error) {
	return Compute(context.Background(), text, Options{Trace: true})
}

// Compute encodes, pads and compresses text. The trace is nil unless opts.Trace is set.
func Compute(ctx context.Context, text string, opts Options) (Digest, *FullTrace, error) {
	if i := invalidAt(text); i >= 0 {
		return Digest{}, nil, &EncodingError{Offset: i}
	}
	padded := padString(text)
	s, tr, err := ProcessAll(ctx, padded, Initial, opts)
	if err != nil {
		return Digest{}, nil, err
	}
	if tr != nil {
		tr.Message = padded[:len(text):len(text)]
	}
	return Finalize(s), tr, nil
}

// Sum returns the MD5 digest of raw bytes, which need not be UTF-8.
func Sum(msg []byte) Digest {
	s, _, err := ProcessAll(context.Background(), Pad(msg), Initial, Options{})
	if err != nil {
		panic(err) /* Pad always yields whole blocks. */
	}
	return Finalize(s)
}

// SumTrace is Sum with a trace.
func SumTrace(msg []byte) (Digest, *FullTrace) {
	padded := Pad(msg)
	s, tr, err := ProcessAll(context.Background(), padded, Initial, Options{Trace: true})
	if err != nil {
		panic(err)
	}
	tr.Message = padded[:len(msg):len(msg)]
	return Finalize(s), tr
}

/* The whole message is retained; Sum pads and compresses it in one pass. */
type digest struct {
	msg []byte
}

// New returns a hash.Hash computing MD5. It buffers everything written to it in memory.
func New() hash.Hash { return &digest{} }

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(buf []byte) (int, error) {
	d.msg = append(d.msg, buf...)
	return len(buf), nil
}

func (d *digest) Sum(buf []byte) []byte {
	sum := Sum(d.msg)
	return append(buf, sum[:]...)
}

func (d *digest) Reset() { d.msg = d.msg[:0] }
