package main

import (
	"crypto/md5"
	"encoding/binary"
	"github.com/aead/chacha20/chacha"
	"github.com/p7r0x7/md5trace"
	"math/bits"
)

// Copyright © 2021 Matthew R Bonnette. Licensed under a BSD-3-Clause license.

const ints = uint32(5e4)

/* corpus returns n reproducible pseudo-random bytes from a ChaCha20 keystream keyed by seed. */
func corpus(n int, seed byte) []byte {
	key, nonce := make([]byte, chacha.KeySize), make([]byte, chacha.NonceSize)
	key[0] = seed
	buf := make([]byte, n)
	chacha.XORKeyStream(buf, buf, nonce, key, 20)
	return buf
}

// meanBias returns how far, on average, each digest bit strays from being set half of the time,
// as a percentage of the ideal count. Good hashes stay well under 1%.
func meanBias(digests []md5trace.Digest) float64 {
	var tally [md5trace.Size * 8]int
	for _, d := range digests {
		for i := range tally {
			tally[i] += int(d[i>>3] >> (i & 7) & 1)
		}
	}
	half := len(digests) / 2
	var total int
	for _, t := range tally {
		if t -= half; t < 0 {
			t = -t
		}
		total += t
	}
	return float64(total) / float64(len(tally)) / float64(half) * 100
}

/* monobit hashes the integers 1..ints and as many random 1 KiB messages. */
func monobit() (integers, random float64) {
	iBytes, ints1, rand1 := make([]byte, 4), make([]md5trace.Digest, 0, ints), make([]md5trace.Digest, 0, ints)
	stream := corpus(int(ints)*64, 0xb1)
	for i := ints; i > 0; i-- {
		binary.BigEndian.PutUint32(iBytes, i)
		ints1 = append(ints1, md5trace.Sum(iBytes))
		rand1 = append(rand1, md5trace.Sum(stream[(i-1)*64:i*64]))
	}
	return meanBias(ints1), meanBias(rand1)
}

// avalanche flips one input bit per trial and returns the mean number of digest bits that
// changed; 64 of 128 is ideal.
func avalanche(trials int) float64 {
	msgs := corpus(trials*64, 0xa7)
	var flipped int
	for t := 0; t < trials; t++ {
		msg := msgs[t*64 : (t+1)*64]
		before := md5trace.Sum(msg)
		bit := int(msg[0]) * 2 % 512
		msg[bit>>3] ^= 1 << (bit & 7)
		after := md5trace.Sum(msg)
		for i := 0; i < md5trace.Size; i += 8 {
			flipped += bits.OnesCount64(binary.LittleEndian.Uint64(before[i:]) ^ binary.LittleEndian.Uint64(after[i:]))
		}
	}
	return float64(flipped) / float64(trials)
}

/* agree reports whether plain, traced and standard library digests match over every length up to
n bytes. */
func agree(n int) bool {
	msg := corpus(n, 0x5e)
	for i := 0; i <= n; i++ {
		plain := md5trace.Sum(msg[:i])
		traced, _ := md5trace.SumTrace(msg[:i])
		if plain != traced || plain != md5trace.Digest(md5.Sum(msg[:i])) {
			return false
		}
	}
	return true
}
