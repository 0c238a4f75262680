package main

import (
	. "github.com/spf13/pflag"
	"os"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var pTrace, pConfig, pServe, pNoCodesDefault = "", "", "", false
var pHelp, pBase64, pNoCodes, pQuiet, pStrict, pString, pTime, pVerbose, pDebug bool
var yell, purp, und, zero = "\033[33m", "\033[35m", "\033[4m", "\033[0m"

/* serveFromConfig stands in for a bare --serve: listen where the configuration says. */
const serveFromConfig = "config"

func parseFlags() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--no-codes=false":
			pNoCodes = false
		case "--quiet", "--quiet=true", "-q":
			pNoCodes, pQuiet = true, true
		case "--no-codes", "--no-codes=true":
			pNoCodes = true
		}
	}
	if pNoCodes {
		yell, purp, und, zero = "", "", "", ""
	}

	BoolVarP(&pHelp, "help", "h", false,
		purp+"print this help menu"+zero+n)

	BoolVarP(&pBase64, "base64", "b", false,
		purp+"render digests in base64"+zero+" (default hex)")

	StringVar(&pConfig, "config", "",
		purp+"read render and server settings from a TOML file"+zero)

	BoolVar(&pDebug, "debug", false, "")
	CommandLine.MarkHidden("debug")

	Bool("no-codes", pNoCodesDefault,
		purp+"print to console w/o formatting codes or simplified"+zero+
			n+purp+"filepaths"+zero)

	BoolVarP(&pQuiet, "quiet", "q", false,
		purp+"suppress non-breaking errors and print ONLY digests"+zero+
			n+"(enables --no-codes)")

	StringVar(&pServe, "serve", "",
		purp+"serve the trace API on ADDR instead of hashing"+zero+
			n+purp+"arguments"+zero+" (bare: listen address from --config)")
	CommandLine.Lookup("serve").NoOptDefVal = serveFromConfig

	BoolVar(&pStrict, "strict", false,
		purp+"stop at the first target that cannot be hashed"+zero)

	BoolVarP(&pString, "string", "s", false,
		purp+"process arguments instead as UTF-8 strings to be hashed"+zero)

	BoolVarP(&pTime, "time", "t", false,
		purp+"print time taken to read and hash each message"+zero)

	StringVar(&pTrace, "trace", "",
		purp+"print every step of the computation as a tree, table"+zero+
			n+purp+"or text"+zero)

	BoolVarP(&pVerbose, "verbose", "v", false,
		purp+"log configuration and per-block progress to STDERR"+zero)

	/* Order flags alphabetically except for help, which is hoisted to the top. */
	CommandLine.SortFlags = false
	Parse()
	pStrict = pStrict || pDebug
	if pQuiet && !pNoCodes {
		pNoCodes = true
		yell, purp, und, zero = "", "", "", ""
	}
}
