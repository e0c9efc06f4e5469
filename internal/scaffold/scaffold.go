// Package scaffold writes the go.mod and main.go of a generated project
// around a set of emit-produced bank/dispatch source files. It follows
// internal/emit's plain fmt.Fprintf-onto-a-file approach rather than a
// templating library.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// ModulePrefix is the import path prefix every generated project's module
// path must share with this module, so its own package sits on the same
// import-path tree as internal/gbrt, internal/ppu and internal/platform and
// can therefore import them despite Go's internal-package visibility rule
// (which is keyed on import path, not module boundaries).
const ModulePrefix = "github.com/arcanite24/gb-recompiled/generated"

// Config describes the project scaffold to write.
type Config struct {
	OutputDir  string // directory the generated project is written to
	Package    string // Go package name shared with the emit.Writer output
	ROMPath    string // path to the source ROM file; not written into go.mod or main.go
	CGB        bool
	NoPlatform bool

	// SourceModuleDir is the absolute path to this module's own source tree,
	// used to compute the go.mod replace directive that lets the generated
	// project's separate module resolve internal/gbrt, internal/ppu and
	// internal/platform locally rather than over the network.
	SourceModuleDir string
}

// ModulePath returns the generated project's own module path: a leaf under
// ModulePrefix, named for its output directory.
func (c Config) ModulePath() string {
	return ModulePrefix + "/" + filepath.Base(c.OutputDir)
}

// Write emits go.mod and main.go into cfg.OutputDir. The caller is
// responsible for having already written the emit.Writer bank/dispatch
// files into the same directory under cfg.Package.
func Write(cfg Config) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := writeGoMod(cfg); err != nil {
		return fmt.Errorf("writing go.mod: %w", err)
	}
	if err := writeMain(cfg); err != nil {
		return fmt.Errorf("writing main.go: %w", err)
	}
	return nil
}

func writeGoMod(cfg Config) error {
	path := filepath.Join(cfg.OutputDir, "go.mod")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	relSource, err := filepath.Rel(cfg.OutputDir, cfg.SourceModuleDir)
	if err != nil {
		relSource = cfg.SourceModuleDir
	}

	fmt.Fprintf(f, "module %s\n\n", cfg.ModulePath())
	fmt.Fprintf(f, "go 1.21\n\n")
	fmt.Fprintf(f, "require (\n")
	fmt.Fprintf(f, "\tgithub.com/arcanite24/gb-recompiled v0.0.0\n")
	if !cfg.NoPlatform {
		fmt.Fprintf(f, "\tgithub.com/hajimehoshi/ebiten/v2 v2.9.9\n")
	}
	fmt.Fprintf(f, ")\n\n")
	fmt.Fprintf(f, "replace github.com/arcanite24/gb-recompiled => %s\n", filepath.ToSlash(relSource))
	return nil
}

func writeMain(cfg Config) error {
	path := filepath.Join(cfg.OutputDir, "main.go")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	fmt.Fprintf(f, "package main\n\n")
	fmt.Fprintf(f, "import (\n")
	fmt.Fprintf(f, "\t\"fmt\"\n")
	fmt.Fprintf(f, "\t\"os\"\n\n")
	fmt.Fprintf(f, "\t\"github.com/arcanite24/gb-recompiled/internal/cartridge\"\n")
	fmt.Fprintf(f, "\t\"github.com/arcanite24/gb-recompiled/internal/gbrt\"\n")
	fmt.Fprintf(f, "\t\"github.com/arcanite24/gb-recompiled/internal/ppu\"\n")
	if cfg.NoPlatform {
		fmt.Fprintf(f, "\t\"github.com/arcanite24/gb-recompiled/internal/platform/null\"\n")
	} else {
		fmt.Fprintf(f, "\t\"github.com/arcanite24/gb-recompiled/internal/platform\"\n")
	}
	fmt.Fprintf(f, ")\n\n")

	fmt.Fprintf(f, "func main() {\n")
	fmt.Fprintf(f, "\tif len(os.Args) != 2 {\n")
	fmt.Fprintf(f, "\t\tfmt.Fprintf(os.Stderr, \"usage: %%s <rom>\\n\", os.Args[0])\n")
	fmt.Fprintf(f, "\t\tos.Exit(1)\n")
	fmt.Fprintf(f, "\t}\n\n")
	fmt.Fprintf(f, "\tdata, err := os.ReadFile(os.Args[1])\n")
	fmt.Fprintf(f, "\tif err != nil {\n")
	fmt.Fprintf(f, "\t\tfmt.Fprintln(os.Stderr, err)\n")
	fmt.Fprintf(f, "\t\tos.Exit(1)\n")
	fmt.Fprintf(f, "\t}\n\n")
	fmt.Fprintf(f, "\tcart, err := cartridge.Load(data)\n")
	fmt.Fprintf(f, "\tif err != nil {\n")
	fmt.Fprintf(f, "\t\tfmt.Fprintln(os.Stderr, err)\n")
	fmt.Fprintf(f, "\t\tos.Exit(1)\n")
	fmt.Fprintf(f, "\t}\n\n")
	fmt.Fprintf(f, "\tctx := gbrt.New(cart)\n")
	fmt.Fprintf(f, "\tctx.Dispatch = Table{}\n")
	fmt.Fprintf(f, "\tctx.PPU = ppu.New()\n")
	fmt.Fprintf(f, "\tif attacher, ok := ctx.PPU.(interface{ Attach(*gbrt.Context) }); ok {\n")
	fmt.Fprintf(f, "\t\tattacher.Attach(ctx)\n")
	fmt.Fprintf(f, "\t}\n\n")

	if cfg.NoPlatform {
		fmt.Fprintf(f, "\tplat := null.New()\n")
	} else {
		fmt.Fprintf(f, "\tplat := platform.New(3)\n")
	}
	fmt.Fprintf(f, "\tctx.Platform = plat\n\n")

	fmt.Fprintf(f, "\tfor plat.PollEvents(ctx) {\n")
	fmt.Fprintf(f, "\t\tctx.RunFrame()\n")
	fmt.Fprintf(f, "\t\tif ctx.PPU.FrameReady() {\n")
	fmt.Fprintf(f, "\t\t\tplat.RenderFrame(ctx.PPU.Framebuffer())\n")
	fmt.Fprintf(f, "\t\t\tctx.PPU.ClearFrameReady()\n")
	fmt.Fprintf(f, "\t\t\tplat.VSync()\n")
	fmt.Fprintf(f, "\t\t}\n")
	fmt.Fprintf(f, "\t}\n")
	fmt.Fprintf(f, "}\n")
	return nil
}
