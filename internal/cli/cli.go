// Package cli handles command line interface logic.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/arcanite24/gb-recompiled/internal/options"
)

// ParseFlags parses command line flags and returns program and translator options.
func ParseFlags() (options.Program, options.Translator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, options.Translator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Translator{}, err
	}

	opts.Input = args[0]
	if opts.Output == "" {
		return opts, options.Translator{}, &UsageError{msg: "an output directory (-o) is required"}
	}

	translatorOptions := createTranslatorOptions(opts)
	return opts, translatorOptions, nil
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: gbrecomp [options] <rom>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order.
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("potential argument %s found after the ROM file, pass the ROM file as the last argument", arg),
			}
		}
	}
	return nil
}

// createTranslatorOptions creates translator options based on program options.
func createTranslatorOptions(opts options.Program) options.Translator {
	return options.Translator{
		Input:      opts.Input,
		Output:     opts.Output,
		Trace:      opts.Trace,
		Limit:      opts.Limit,
		CGB:        opts.CGB,
		NoPlatform: opts.NoPlatform,
	}
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "output directory for the generated Go project")
	flags.BoolVar(&opts.Trace, "trace", false, "emit a disassembly trace alongside the generated project")
	flags.IntVar(&opts.Limit, "limit", 0, "override the analyzer's discovered-address budget (0 uses the default)")
	flags.BoolVar(&opts.CGB, "cgb", false, "target Game Boy Color")
	flags.BoolVar(&opts.NoPlatform, "no-platform", false, "omit the ebiten-backed platform from the generated project")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
