package md5trace

import (
	"context"
	"crypto/md5"
	"errors"
	"math/bits"
	"testing"

	"github.com/aead/chacha20/chacha"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var golden = []struct {
	in, out string
}{
	{"", "d41d8cd98f00b204e9800998ecf8427e"},
	{"a", "0cc175b9c0f1b6a831c399e269772661"},
	{"abc", "900150983cd24fb0d6963f7d28e17f72"},
	{"message digest", "f96b697d7cb7938d525a2f31aaf161d0"},
	{"abcdefghijklmnopqrstuvwxyz", "c3fcd3d76192e4007dfb496cca67e13b"},
	{"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789", "d174ab98d277d9f5a5611c2c9f419d9f"},
	{"12345678901234567890123456789012345678901234567890123456789012345678901234567890", "57edf4a22be3c955ac49da2e2107b67a"},
	{"The quick brown fox jumps over the lazy dog", "9e107d9d372bb6826bd81d3542a419d6"},
}

/* corpus returns n deterministic pseudo-random bytes drawn from a ChaCha20 keystream. */
func corpus(n int, seed byte) []byte {
	key, nonce := make([]byte, 32), make([]byte, 8)
	key[0] = seed
	buf := make([]byte, n)
	chacha.XORKeyStream(buf, buf, nonce, key, 20)
	return buf
}

func TestComputeDigest_Golden(t *testing.T) {
	for _, g := range golden {
		d, err := ComputeDigest(g.in)
		if err != nil {
			t.Fatalf("ComputeDigest(%q): %v", g.in, err)
		}
		if d.String() != g.out {
			t.Errorf("ComputeDigest(%q) = %s, want %s", g.in, d, g.out)
		}
	}
}

func TestComputeDigest_MatchesCryptoMD5(t *testing.T) {
	for _, text := range []string{"фф", "日本語のテキスト", "emoji 😀 and ∑ symbols", "é́"} {
		d, err := ComputeDigest(text)
		if err != nil {
			t.Fatal(err)
		}
		if want := Digest(md5.Sum([]byte(text))); d != want {
			t.Errorf("ComputeDigest(%q) = %s, want %s", text, d, want)
		}
	}
	/* Every length around the block and length-field boundaries. */
	msg := corpus(300, 1)
	for n := 0; n <= len(msg); n++ {
		if got, want := Sum(msg[:n]), Digest(md5.Sum(msg[:n])); got != want {
			t.Fatalf("Sum of %d bytes = %s, want %s", n, got, want)
		}
	}
}

func TestComputeDigest_Deterministic(t *testing.T) {
	a, _ := ComputeDigest("determinism")
	for i := 0; i < 10; i++ {
		if b, _ := ComputeDigest("determinism"); a != b {
			t.Fatalf("call %d returned %s, previously %s", i, b, a)
		}
	}
}

func TestComputeDigest_InvalidUTF8(t *testing.T) {
	_, err := ComputeDigest("ok\xffno")
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %v", err)
	}
	if encErr.Offset != 2 {
		t.Errorf("Offset = %d, want 2", encErr.Offset)
	}
}

func TestComputeDigestWithTrace_SameDigest(t *testing.T) {
	for _, text := range []string{"", "abc", string(make([]byte, 200)), "фф"} {
		plain, err := ComputeDigest(text)
		if err != nil {
			t.Fatal(err)
		}
		traced, tr, err := ComputeDigestWithTrace(text)
		if err != nil {
			t.Fatal(err)
		}
		if plain != traced || tr.Digest != plain {
			t.Errorf("%q: plain %s, traced %s, trace %s", text, plain, traced, tr.Digest)
		}
		if string(tr.Message) != text {
			t.Errorf("trace message %q, want %q", tr.Message, text)
		}
	}
}

func TestAvalanche(t *testing.T) {
	msg := corpus(100, 2)
	base := Sum(msg)
	var total int
	for i := range msg {
		msg[i] ^= 1
		d := Sum(msg)
		msg[i] ^= 1
		if d == base {
			t.Fatalf("flipping byte %d left the digest unchanged", i)
		}
		for j := range d {
			total += bits.OnesCount8(d[j] ^ base[j])
		}
	}
	/* Roughly half of the 128 output bits should flip on average. */
	if mean := float64(total) / float64(len(msg)); mean < 48 || mean > 80 {
		t.Errorf("mean flipped bits %.2f, want about 64", mean)
	}
}

func TestProcessBlock_InvalidSize(t *testing.T) {
	for _, n := range []int{0, 63, 65, 128} {
		s, bt, err := ProcessBlock(make([]byte, n), Initial, true)
		var sizeErr BlockSizeError
		if !errors.As(err, &sizeErr) || int(sizeErr) != n {
			t.Errorf("%d-byte block: err = %v", n, err)
		}
		if s != Initial || bt != nil {
			t.Errorf("%d-byte block altered state or produced a trace", n)
		}
	}
}

func TestProcessBlock_Trace(t *testing.T) {
	padded := Pad([]byte("abc"))
	s, bt, err := ProcessBlock(padded, Initial, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := Finalize(s).String(); got != "900150983cd24fb0d6963f7d28e17f72" {
		t.Fatalf("digest %s", got)
	}
	if bt.Final != s || bt.Initial != Initial {
		t.Errorf("trace bounds %v -> %v, state %v", bt.Initial, bt.Final, s)
	}
	s2, bt2, _ := ProcessBlock(padded, Initial, false)
	if s2 != s || bt2 != nil {
		t.Errorf("untraced block: %v, %v", s2, bt2)
	}
}

func TestProcessAll_MisalignedInput(t *testing.T) {
	for _, n := range []int{0, 1, 65, 127} {
		_, _, err := ProcessAll(context.Background(), make([]byte, n), Initial, Options{})
		var sizeErr BlockSizeError
		if !errors.As(err, &sizeErr) {
			t.Errorf("%d bytes: err = %v", n, err)
		}
	}
}

func TestProcessAll_Progress(t *testing.T) {
	padded := Pad(corpus(150, 3))
	var calls []int
	_, _, err := ProcessAll(context.Background(), padded, Initial, Options{
		OnBlockDone: func(block, total int) {
			if total != 3 {
				t.Errorf("total = %d, want 3", total)
			}
			calls = append(calls, block)
		}})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 3 || calls[0] != 0 || calls[1] != 1 || calls[2] != 2 {
		t.Errorf("progress calls %v", calls)
	}
}

func TestProcessAll_CancelBetweenBlocks(t *testing.T) {
	padded := Pad(corpus(150, 4))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var done int
	_, tr, err := ProcessAll(ctx, padded, Initial, Options{Trace: true,
		OnBlockDone: func(block, total int) {
			done++
			cancel()
		}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if done != 1 || tr != nil {
		t.Errorf("%d blocks completed, trace %v", done, tr)
	}
}

func TestHash(t *testing.T) {
	msg := corpus(1000, 5)
	h := New()
	if h.Size() != Size || h.BlockSize() != BlockSize {
		t.Fatalf("Size %d BlockSize %d", h.Size(), h.BlockSize())
	}
	for i := 0; i < len(msg); i += 77 {
		end := i + 77
		if end > len(msg) {
			end = len(msg)
		}
		h.Write(msg[i:end])
	}
	want := md5.Sum(msg)
	if got := h.Sum(nil); string(got) != string(want[:]) {
		t.Errorf("Sum = %x, want %x", got, want)
	}
	/* Sum does not change the underlying state. */
	if got := h.Sum([]byte{0xaa}); got[0] != 0xaa || string(got[1:]) != string(want[:]) {
		t.Errorf("appending Sum = %x", got)
	}
	h.Reset()
	h.Write([]byte("abc"))
	if got := h.Sum(nil); Digest(*(*[Size]byte)(got)).String() != "900150983cd24fb0d6963f7d28e17f72" {
		t.Errorf("after Reset: %x", got)
	}
}

func TestDigest_Text(t *testing.T) {
	want, _ := ComputeDigest("abc")
	var d Digest
	if err := d.UnmarshalText([]byte(want.String())); err != nil || d != want {
		t.Errorf("UnmarshalText: %v, %s", err, d)
	}
	if err := d.UnmarshalText([]byte("abc")); err == nil {
		t.Error("short digest accepted")
	}
}
