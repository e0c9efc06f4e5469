// Package main implements gbrecomp, a Game Boy ROM to Go static recompiler.
package main

import (
	"errors"
	"os"

	"github.com/retroenv/retrogolib/log"

	"github.com/arcanite24/gb-recompiled/internal/cli"
	"github.com/arcanite24/gb-recompiled/internal/config"
	"github.com/arcanite24/gb-recompiled/internal/fileprocessor"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

func main() {
	opts, translatorOpts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	if err := fileprocessor.ProcessFile(logger, opts, translatorOpts); err != nil {
		logger.Error("translation failed", log.Err(err))
		os.Exit(1)
	}
}
