package main

import (
	"crypto/md5"
	. "fmt"
	"github.com/dterei/gotsc"
	"github.com/minio/sha256-simd"
	"github.com/p7r0x7/md5trace"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"sync"
	"testing"
	"time"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var sizes = [...]int{64, 4 << 10, 512 << 10, 64 << 20}
var bytes, calltime = []byte(nil), gotsc.TSCOverhead()

/* alg is one benchmarked function; limit skips inputs whose traces would not fit in memory. */
type alg struct {
	name  string
	limit int
	fn    func(b *testing.B)
}

var algs = []alg{
	{"md5trace.Sum", 0, BenchmarkSum},
	{"md5trace.SumTrace", 512 << 10, BenchmarkSumTrace},
	{"crypto/md5", 0, BenchmarkCryptoMD5},
	{"minio/sha256-simd", 0, BenchmarkSHA256},
	{"zeebo/blake3", 0, BenchmarkBlake3},
	{"zeebo/xxh3", 0, BenchmarkXXH3},
}

func BenchmarkSum(b *testing.B) {
	b.SetBytes(int64(len(bytes)))
	b.ResetTimer()
	for i := b.N; i > 0; i-- {
		md5trace.Sum(bytes)
	}
}

func BenchmarkSumTrace(b *testing.B) {
	b.SetBytes(int64(len(bytes)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := b.N; i > 0; i-- {
		md5trace.SumTrace(bytes)
	}
}

func BenchmarkCryptoMD5(b *testing.B) {
	b.SetBytes(int64(len(bytes)))
	b.ResetTimer()
	for i := b.N; i > 0; i-- {
		md5.Sum(bytes)
	}
}

func BenchmarkSHA256(b *testing.B) {
	b.SetBytes(int64(len(bytes)))
	b.ResetTimer()
	for i := b.N; i > 0; i-- {
		sha256.Sum256(bytes)
	}
}

func BenchmarkBlake3(b *testing.B) {
	b.SetBytes(int64(len(bytes)))
	b.ResetTimer()
	for i := b.N; i > 0; i-- {
		blake3.Sum256(bytes)
	}
}

func BenchmarkXXH3(b *testing.B) {
	b.SetBytes(int64(len(bytes)))
	b.ResetTimer()
	for i := b.N; i > 0; i-- {
		xxh3.Hash(bytes)
	}
}

/* result holds one row of the report; a zero throughput marks a skipped size. */
type result struct {
	throughputs, speeds, usages [len(sizes)]float64
}

func benchAlg(a alg) (res result) {
	for i, v := range sizes {
		if a.limit > 0 && v > a.limit {
			continue
		}
		bytes = corpus(v, byte(i))

		totalHz, polls, mut, done := uint64(0), uint64(0), &sync.Mutex{}, make(chan struct{})
		if calltime > 0 {
			go func() {
				for {
					select {
					case <-done:
						return
					default:
					}
					tsc1 := gotsc.BenchStart()
					time.Sleep(time.Millisecond)
					tsc2 := gotsc.BenchEnd()

					mut.Lock()
					totalHz += tsc2 - tsc1 - calltime
					polls++
					mut.Unlock()

					time.Sleep(time.Millisecond * 9)
				}
			}()
		}
		r := testing.Benchmark(a.fn)
		close(done)
		mut.Lock()
		totalHz *= 1000

		res.throughputs[i] = float64(r.Bytes*int64(r.N)) / r.T.Seconds() /* B/s */
		if polls > 0 {
			res.speeds[i] = float64(totalHz) / float64(polls) / res.throughputs[i]
		}
		res.throughputs[i] /= 1e6 /* MB/s */
		res.usages[i] = float64(r.AllocedBytesPerOp())
		mut.Unlock()
	}
	return res
}

func fmtFloat(v float64) string {
	var style string
	switch whole := float64(int64(v)) == v; {
	case v > 1e8 || (v < 1e-6 && !whole):
		style = "%.3g"
	case v <= 1e1 && !whole:
		style = "%.6f"
	case v <= 1e2 && !whole:
		style = "%.5f"
	case v <= 1e3 && !whole:
		style = "%.4f"
	case v <= 1e4 && !whole:
		style = "%.3f"
	case v <= 1e5 && !whole:
		style = "%.2f"
	case v <= 1e6 && !whole:
		style = "%.1f"
	default:
		style = "%.f"
	}
	return Sprintf(style, v)
}
