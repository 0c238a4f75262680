package md5trace

import (
	"context"
	"encoding/binary"
	"math/bits"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// The compression function of MD5 as described in RFC 1321, instrumented so that every step can be
// replayed later. Blocks are consumed strictly in order: the registers entering block n are the
// registers leaving block n-1.

// Options controls ProcessAll.
type Options struct {
	/* Record a FullTrace. */
	Trace bool
	/* Called synchronously after each block; it cannot influence the result. */
	OnBlockDone func(block, total int)
}

// ProcessBlock compresses a single 64-byte block into s and returns the updated registers. When
// traced is set, the returned BlockTrace holds all 64 steps; its Bytes field refers to block, which
// must not be modified afterwards.
func ProcessBlock(block []byte, s State, traced bool) (State, *BlockTrace, error) {
	if len(block) != BlockSize {
		return s, nil, BlockSizeError(len(block))
	}
	var bt *BlockTrace
	if traced {
		bt = &BlockTrace{}
	}
	return consume(Constants, block, s, bt), bt, nil
}

// ProcessAll compresses every block of padded, starting from s. The context is only consulted
// between blocks, as the 64 steps of a block are never interrupted.
func ProcessAll(ctx context.Context, padded []byte, s State, opts Options) (State, *FullTrace, error) {
	if len(padded) == 0 || len(padded)%BlockSize != 0 {
		return s, nil, BlockSizeError(len(padded) % BlockSize)
	}
	total := len(padded) / BlockSize

	var tr *FullTrace
	if opts.Trace {
		tr = &FullTrace{Padded: padded, Blocks: make([]BlockTrace, total)}
	}
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return s, nil, err
		}
		var bt *BlockTrace
		if tr != nil {
			bt = &tr.Blocks[i]
			bt.Index = i
		}
		s = consume(Constants, padded[i*BlockSize:(i+1)*BlockSize], s, bt)
		if opts.OnBlockDone != nil {
			opts.OnBlockDone(i, total)
		}
	}
	if tr != nil {
		tr.Digest = Finalize(s)
	}
	return s, tr, nil
}

/* consume runs the 4 rounds of 16 steps over one block; blk must be exactly BlockSize bytes. */
func consume(tab *Table, blk []byte, s State, bt *BlockTrace) State {
	var m [wordsPerBlock]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(blk[i<<2:])
	}
	if bt != nil {
		bt.Bytes = HexBytes(blk[:BlockSize:BlockSize])
		bt.Initial = s
		for i, w := range m {
			bt.Words[i] = Word(w)
		}
	}

	a, b, c, d := s.A, s.B, s.C, s.D
	for r := 0; r < rounds; r++ {
		f := RoundFunc(r)
		for i := 0; i < stepsPerRound; i++ {
			t, k, sh := r*stepsPerRound+i, schedule(r, i), tab.Shift(r, i)
			next := b + bits.RotateLeft32(a+f.Apply(b, c, d)+m[k]+tab.T[t], sh)
			if bt != nil {
				bt.Steps[t] = Step{
					Round: r, Index: i, T: t, Func: f, K: k,
					M: Word(m[k]), Const: Word(tab.T[t]), Shift: sh,
					Before: State{a, b, c, d},
					After:  State{d, next, b, c}}
			}
			/* The new A is the old D, not a cyclic shift of all four registers. */
			a, b, c, d = d, next, b, c
		}
	}

	s = s.Add(State{a, b, c, d})
	if bt != nil {
		bt.Final = s
	}
	return s
}
