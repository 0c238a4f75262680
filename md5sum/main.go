package main

import (
	"context"
	"encoding/base64"
	"errors"
	. "fmt"
	"github.com/p7r0x7/md5trace"
	"github.com/p7r0x7/md5trace/internal/config"
	"github.com/p7r0x7/md5trace/internal/log"
	"github.com/p7r0x7/md5trace/render"
	"github.com/p7r0x7/md5trace/server"
	"github.com/p7r0x7/vainpath"
	. "github.com/spf13/pflag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"
	"unicode/utf8"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const n = "\n"
const success, failure, invalid = 0, 1, 2

var warnings = 0

func main() {
	parseFlags()
	os.Exit(program())
}

// help prints a usage menu and quietly exits if no non-flag arguments are given. To consistently
// correctly render this menu in most terminal windows, its content should be no wider than 80
// columns.
func help() {
	origin, err := os.Executable()
	if err != nil {
		origin = "md5sum" /* Default binary name */
	} else {
		origin = filepath.Base(origin)
	}
	name := vainpath.Trim(origin, "…", 12)
	spaces := strings.Repeat(" ", utf8.RuneCountInString(name)+3)
	Fprint(os.Stderr, yell, "MD5 with every step of the computation on display.", zero, n+n+
		"Usage:"+n+
		"  ", name, " [-h]"+n,
		spaces, "[-bqtv] [--no-codes] [--strict] [--trace STYLE] -|PATH..."+n,
		spaces, "[-bqtv] [--no-codes] [--strict] [--trace STYLE] -s STRING..."+n,
		spaces, "[-v] [--config FILE] --serve[=ADDR]"+n+n+
			"Options:"+n)
	PrintDefaults()
	name = vainpath.Trim(origin, "…", 15)
	Fprint(os.Stderr, n+"Order of arguments placed after `", name, "` does not matter unless `--` is"+
		n+"specified, signaling the end of parsed flags. Long-form flag equivalents are"+n+
		"above. `-` is treated as a reference to ", os.Stdin.Name(), " on this platform."+n)
}

// This program is a command-line interface for md5trace: It handles various flags and an
// unlimited number of arguments, hashing files or strings and optionally printing how each digest
// came to be.
func program() int {
	if pDebug {
		cf, err := os.Create("cpu.prof")
		if err != nil {
			panic(err)
		}
		_ = pprof.StartCPUProfile(cf)
		defer pprof.StopCPUProfile()
	}
	log.SetVerbose(pVerbose)
	log.SetPlain(pNoCodes)
	if pQuiet {
		log.DisableLogs()
	}

	cfg := config.Default()
	if pConfig != "" {
		var err error
		if cfg, err = config.Load(vainpath.Clean(pConfig)); err != nil {
			log.Errorf("%v", err)
			return invalid
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if pServe != "" {
		if pServe != serveFromConfig {
			cfg.Server.Listen = pServe
		}
		return serve(ctx, cfg)
	}
	if pHelp || NArg() == 0 {
		help()
		return success
	}

	var renderer *render.Renderer
	if pTrace != "" {
		style, err := render.ParseStyle(pTrace)
		if err == nil {
			renderer = render.New(style)
			err = renderer.SetBorder(cfg.Render.Border)
		}
		if err == nil {
			err = renderer.SetTemplates(cfg.Render.StepTemplate, cfg.Render.BlockTemplate)
		}
		if err != nil {
			log.Errorf("%v", err)
			return invalid
		}
	}

	for _, target := range Args() {
		start, delta := time.Now(), ""
		d, tr, err := hashTarget(ctx, target, renderer != nil)
		if errors.Is(err, context.Canceled) {
			log.Warnf("Interrupted while hashing %s", target)
			return failure
		} else if err != nil {
			if pStrict {
				log.Errorf("%s: %v", target, err)
				return failure
			}
			if !pQuiet {
				log.Warnf("%s: %v", target, err)
			}
			warnings++
			continue
		}

		if pTime {
			d := time.Since(start)
			if d.Microseconds() > 99 {
				d = d.Truncate(10 * time.Microsecond)
			}
			delta = " (" + d.String() + ")"
		}
		sum := d.String()
		if pBase64 {
			sum = base64.StdEncoding.EncodeToString(d[:])
		}

		if pQuiet {
			Print(sum, n)
		} else if pString {
			Print(yell, sum, zero, `  "`, target, `"`, delta, n)
		} else if pNoCodes {
			Print(sum, `  `, filepath.Clean(target), delta, n)
		} else {
			Print(yell, sum, zero, `  `, und, vainpath.Simplify(target), zero, delta, n)
		}
		if tr != nil {
			printTrace(os.Stdout, tr, renderer)
		}
	}

	if !pQuiet {
		if warnings == 1 {
			Fprint(os.Stderr, "1 ", purp, "target is a directory or is otherwise inaccessible.", zero, n)
		} else if warnings > 1 {
			Fprint(os.Stderr, warnings, " ", purp, "targets are directories or are otherwise inaccessible.", zero, n)
		}
	}
	if warnings > 0 {
		return failure
	}
	return success
}

// hashTarget hashes one argument: a string with -s, STDIN for `-`, otherwise a file. Plain file
// digests stream through md5trace.New; traces and progress logging need the whole message.
func hashTarget(ctx context.Context, target string, traced bool) (md5trace.Digest, *md5trace.FullTrace, error) {
	opts := md5trace.Options{Trace: traced}
	if log.IsVerbose() {
		opts.OnBlockDone = func(block, total int) {
			log.Debugf("%s: block %d/%d", vainpath.Trim(target, "…", 24), block+1, total)
		}
	}
	if pString {
		return md5trace.Compute(ctx, target, opts)
	}

	var r io.Reader = os.Stdin
	if target != "-" && target != os.Stdin.Name() {
		file, err := os.Open(target)
		if err != nil {
			return md5trace.Digest{}, nil, err
		}
		defer file.Close()
		r = file
	}

	if !traced && opts.OnBlockDone == nil {
		digest := md5trace.New()
		if _, err := io.Copy(digest, r); err != nil {
			return md5trace.Digest{}, nil, err
		}
		var d md5trace.Digest
		digest.Sum(d[:0])
		return d, nil, nil
	}
	msg, err := io.ReadAll(r)
	if err != nil {
		return md5trace.Digest{}, nil, err
	}
	padded := md5trace.Pad(msg)
	st, tr, err := md5trace.ProcessAll(ctx, padded, md5trace.Initial, opts)
	if err != nil {
		return md5trace.Digest{}, nil, err
	}
	if tr != nil {
		tr.Message = padded[:len(msg):len(msg)]
	}
	return md5trace.Finalize(st), tr, nil
}

/* printTrace pages the text style and prints the other styles whole. */
func printTrace(w io.Writer, tr *md5trace.FullTrace, r *render.Renderer) {
	var pages []string
	if pTrace == "text" {
		pages = render.Pages(tr, r)
	} else {
		pages = []string{r.String(render.Tree(tr))}
	}
	rule := strings.Repeat("─", 40)
	if pNoCodes {
		rule = strings.Repeat("-", 40)
	}
	for i, page := range pages {
		if i > 0 {
			Fprint(w, purp, rule, zero, n)
		}
		Fprint(w, page)
	}
	Fprint(w, n)
}

func serve(ctx context.Context, cfg *config.Config) int {
	if err := cfg.Validate(); err != nil {
		log.Errorf("%v", err)
		return invalid
	}
	s, err := server.New(cfg)
	if err != nil {
		log.Errorf("%v", err)
		return invalid
	}
	done := make(chan error, 1)
	go func() { done <- s.Start() }()
	select {
	case err = <-done:
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.Stop(shutdown)
	}
	if err != nil {
		log.Errorf("%v", err)
		return failure
	}
	return success
}
