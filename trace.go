package md5trace

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// The trace model: a replayable record of every register transition made while compressing a
// message. Traces are filled in as the engine advances and are read-only once returned.

// State is the four-register MD5 buffer. All arithmetic on it wraps modulo 2^32.
type State struct {
	A, B, C, D uint32
}

// Initial is the buffer every computation starts from.
var Initial = State{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}

// Add returns the register-wise sum of s and o.
func (s State) Add(o State) State {
	return State{s.A + o.A, s.B + o.B, s.C + o.C, s.D + o.D}
}

// Bytes returns the registers in hash order: A‖B‖C‖D, each little-endian.
func (s State) Bytes() [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint32(b[0:], s.A)
	binary.LittleEndian.PutUint32(b[4:], s.B)
	binary.LittleEndian.PutUint32(b[8:], s.C)
	binary.LittleEndian.PutUint32(b[12:], s.D)
	return b
}

func (s State) String() string {
	return fmt.Sprintf("A = 0x%08x, B = 0x%08x, C = 0x%08x, D = 0x%08x", s.A, s.B, s.C, s.D)
}

type jsonState struct {
	A, B, C, D Word
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonState{Word(s.A), Word(s.B), Word(s.C), Word(s.D)})
}

func (s *State) UnmarshalJSON(b []byte) error {
	var j jsonState
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*s = State{uint32(j.A), uint32(j.B), uint32(j.C), uint32(j.D)}
	return nil
}

// Word is a 32-bit value that renders as eight hex digits.
type Word uint32

func (w Word) String() string { return fmt.Sprintf("0x%08x", uint32(w)) }

func (w Word) MarshalText() ([]byte, error) { return []byte(fmt.Sprintf("%08x", uint32(w))), nil }

func (w *Word) UnmarshalText(b []byte) error {
	v, err := strconv.ParseUint(string(b), 16, 32)
	if err != nil {
		return err
	}
	*w = Word(v)
	return nil
}

// HexBytes is a byte slice that marshals as a hex string.
type HexBytes []byte

func (h HexBytes) MarshalText() ([]byte, error) {
	b := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(b, h)
	return b, nil
}

func (h *HexBytes) UnmarshalText(b []byte) error {
	buf := make([]byte, hex.DecodedLen(len(b)))
	if _, err := hex.Decode(buf, b); err != nil {
		return err
	}
	*h = buf
	return nil
}

// Func identifies the nonlinear function of a round.
type Func uint8

const (
	F Func = iota /* (x∧y)∨(¬x∧z) */
	G             /* (x∧z)∨(y∧¬z) */
	H             /* x⊕y⊕z */
	I             /* y⊕(x∨¬z) */
)

// RoundFunc returns the function applied during round r.
func RoundFunc(r int) Func { return Func(r & 3) }

// Apply evaluates f.
func (f Func) Apply(x, y, z uint32) uint32 {
	switch f {
	case F:
		return x&y | ^x&z
	case G:
		return x&z | y&^z
	case H:
		return x ^ y ^ z
	default:
		return y ^ (x | ^z)
	}
}

func (f Func) String() string { return "FGHI"[f&3 : f&3+1] }

func (f Func) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Func) UnmarshalText(b []byte) error {
	switch string(b) {
	case "F":
		*f = F
	case "G":
		*f = G
	case "H":
		*f = H
	case "I":
		*f = I
	default:
		return errors.New("md5trace: unknown round function " + strconv.Quote(string(b)))
	}
	return nil
}

// Step records one of the 64 steps of a block: which round it belongs to, its position within
// that round, its global index T = 16*Round + Index, the inputs it consumed and the working
// registers on either side of it.
type Step struct {
	Round  int   `json:"round"`
	Index  int   `json:"index"`
	T      int   `json:"t"`
	Func   Func  `json:"func"`
	K      int   `json:"k"`
	M      Word  `json:"m"`
	Const  Word  `json:"const"`
	Shift  int   `json:"shift"`
	Before State `json:"before"`
	After  State `json:"after"`
}

// BlockTrace records the compression of one block.
type BlockTrace struct {
	Index   int                 `json:"index"`
	Bytes   HexBytes            `json:"bytes"`
	Words   [wordsPerBlock]Word `json:"words"`
	Initial State               `json:"initial"`
	Steps   [StepsPerBlock]Step `json:"steps"`
	Final   State               `json:"final"`
}

// Round returns the 16 steps of round r.
func (b *BlockTrace) Round(r int) []Step {
	return b.Steps[r*stepsPerRound : (r+1)*stepsPerRound]
}

// FullTrace records a whole computation, block by block, and the digest it produced.
type FullTrace struct {
	Message HexBytes     `json:"message"`
	Padded  HexBytes     `json:"padded"`
	Blocks  []BlockTrace `json:"blocks"`
	Digest  Digest       `json:"digest"`
}

// Padding returns the padding layout of the traced message.
func (t *FullTrace) Padding() Padding { return Layout(len(t.Message)) }

// Len returns the number of steps recorded across all blocks.
func (t *FullTrace) Len() int { return len(t.Blocks) * StepsPerBlock }

// Step returns the n-th step of the whole computation and the block it belongs to.
func (t *FullTrace) Step(n int) (*BlockTrace, *Step, bool) {
	if n < 0 || n >= t.Len() {
		return nil, nil, false
	}
	b := &t.Blocks[n/StepsPerBlock]
	return b, &b.Steps[n%StepsPerBlock], true
}
