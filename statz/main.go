package main

import (
	. "fmt"
	"github.com/markkurossi/tabulate"
	"golang.org/x/sys/cpu"
	"os"
	"runtime"
	"strings"
	"time"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var sizeNames = [len(sizes)]string{"64B", "4K", "512K", "64M"}

/* features lists the CPU extensions that decide which code paths the compared libraries take. */
func features() string {
	var f []string
	for _, v := range []struct {
		name string
		has  bool
	}{
		{"popcnt", cpu.X86.HasPOPCNT},
		{"avx2", cpu.X86.HasAVX2},
		{"avx512f", cpu.X86.HasAVX512F},
		{"sha2", cpu.ARM64.HasSHA2},
		{"asimd", cpu.ARM64.HasASIMD},
	} {
		if v.has {
			f = append(f, v.name)
		}
	}
	if len(f) == 0 {
		return "none detected"
	}
	return strings.Join(f, " ")
}

func report(results []result) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Algorithm").SetAlign(tabulate.ML)
	tab.Header("").SetAlign(tabulate.ML)
	for _, name := range sizeNames {
		tab.Header(name).SetAlign(tabulate.MR)
	}
	for i, a := range algs {
		res := results[i]
		for j, line := range []struct {
			unit string
			v    *[len(sizes)]float64
		}{
			{"MB/s", &res.throughputs},
			{"cpb", &res.speeds},
			{"B/op", &res.usages},
		} {
			if line.unit == "cpb" && calltime == 0 {
				continue
			}
			row := tab.Row()
			if j == 0 {
				row.Column(a.name).SetFormat(tabulate.FmtBold)
			} else {
				row.Column("")
			}
			row.Column(line.unit).SetFormat(tabulate.FmtItalic)
			for k, v := range line.v {
				if res.throughputs[k] == 0 {
					row.Column("-")
				} else {
					row.Column(fmtFloat(v))
				}
			}
		}
	}
	tab.Print(os.Stdout)
}

func main() {
	Printf("Running Statz on %d CPUs!\n%s/%s, features: %s\n\n",
		runtime.NumCPU(), runtime.GOOS, runtime.GOARCH, features())
	t := time.Now()

	if !agree(300) {
		Println("md5trace disagrees with crypto/md5; refusing to benchmark.")
		os.Exit(1)
	}
	integers, random := monobit()
	Printf("Integer input Monobit test:  %5.3f%%\n", integers)
	Printf("Random input Monobit test:   %5.3f%%\n", random)
	Printf("Avalanche:                   %5.2f of 128 bits\n\n", avalanche(int(ints)))

	results := make([]result, len(algs))
	for i, a := range algs {
		Fprintln(os.Stderr, "benchmarking", a.name)
		results[i] = benchAlg(a)
	}
	report(results)

	Println("Finished in " + time.Since(t).Truncate(time.Millisecond).String() + ".")
}
