// Package fileprocessor drives one end-to-end translation run: load a ROM,
// analyze its reachable code, emit native Go source, and scaffold a
// standalone project around it.
package fileprocessor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"github.com/arcanite24/gb-recompiled/internal/analysis"
	"github.com/arcanite24/gb-recompiled/internal/cartridge"
	"github.com/arcanite24/gb-recompiled/internal/emit"
	"github.com/arcanite24/gb-recompiled/internal/options"
	"github.com/arcanite24/gb-recompiled/internal/scaffold"
)

// sourceModuleDir locates this module's own source tree at runtime, so a
// generated project's go.mod replace directive can point at it without a
// hardcoded build-time path.
func sourceModuleDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	// file is .../internal/fileprocessor/processor.go; the module root is
	// two directories up.
	return filepath.Dir(filepath.Dir(filepath.Dir(file)))
}

// ProcessFile runs the full translate pipeline for a single ROM: load the
// cartridge, analyze its reachable code, emit native Go source per bank plus
// a dispatch table, and scaffold a runnable project around the result.
func ProcessFile(logger *log.Logger, opts options.Program, translatorOpts options.Translator) error {
	data, err := os.ReadFile(translatorOpts.Input)
	if err != nil {
		return fmt.Errorf("reading ROM file: %w", err)
	}

	cart, err := cartridge.Load(data)
	if err != nil {
		return fmt.Errorf("loading cartridge: %w", err)
	}
	logger.Info("loaded cartridge", log.String("title", cart.Title), log.Int("rom_banks", cart.ROMBankCount()))

	analyzer := analysis.New(cart)
	if translatorOpts.Limit > 0 {
		analyzer.SetLimit(translatorOpts.Limit)
	}

	graph, err := analyzer.Run()
	if err != nil {
		return fmt.Errorf("analyzing control flow: %w", err)
	}
	logger.Info("analysis complete",
		log.Int("functions", len(graph.Functions)),
		log.Int("blocks", len(graph.Blocks)))

	if err := os.MkdirAll(translatorOpts.Output, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	writer := emit.New(graph, "main")
	if err := writeGenerated(writer, translatorOpts.Output); err != nil {
		return fmt.Errorf("emitting generated source: %w", err)
	}

	if translatorOpts.Trace {
		if err := writeTrace(graph, translatorOpts.Output); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}

	cfg := scaffold.Config{
		OutputDir:       translatorOpts.Output,
		Package:         "main",
		ROMPath:         translatorOpts.Input,
		CGB:             translatorOpts.CGB,
		NoPlatform:      translatorOpts.NoPlatform,
		SourceModuleDir: sourceModuleDir(),
	}
	if err := scaffold.Write(cfg); err != nil {
		return fmt.Errorf("scaffolding generated project: %w", err)
	}

	logger.Info("wrote generated project", log.String("dir", translatorOpts.Output))
	return nil
}

// writeGenerated writes one gen_<bank>.go file per discovered bank plus
// dispatch.go into dir.
func writeGenerated(w *emit.Writer, dir string) error {
	for _, bank := range w.Banks() {
		name := fmt.Sprintf("gen_%02x.go", bank)
		if err := writeFile(filepath.Join(dir, name), func(f io.Writer) error {
			return w.WriteBank(f, bank)
		}); err != nil {
			return err
		}
	}

	return writeFile(filepath.Join(dir, "dispatch.go"), w.WriteDispatch)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := fn(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeTrace writes a human-readable listing of every discovered function
// and block, with each block's instructions (address, mnemonic, raw bytes),
// alongside the generated project, for inspecting what the analyzer found.
func writeTrace(graph *analysis.Graph, dir string) error {
	path := filepath.Join(dir, "trace.txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, fn := range graph.SortedFunctions() {
		fmt.Fprintf(&b, "%s (bank %02X, entry %#04x)\n", fn.Name(), fn.Bank, fn.Entry)
		for _, blk := range fn.Blocks {
			fmt.Fprintf(&b, "  block %#04x: %d instructions", blk.Entry, len(blk.Instructions))
			if blk.Dynamic {
				fmt.Fprintf(&b, " (dynamic terminator)")
			}
			fmt.Fprintf(&b, "\n")
			for _, ins := range blk.Instructions {
				fmt.Fprintf(&b, "    %#04x: %-6s % x\n", ins.Address, ins.Opcode.Mnemonic, ins.Bytes)
			}
		}
	}
	_, err = f.WriteString(b.String())
	return err
}

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("gbrecomp", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("build", log.String("date", date))
	}
}
