// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"ROM file to translate"`
}

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"output directory for the generated Go project"`
}

// Flags contains behavior options.
type Flags struct {
	Trace       bool `flag:"trace" usage:"emit a disassembly trace of analyzed blocks alongside the generated project"`
	Limit       int  `flag:"limit" usage:"override the analyzer's discovered-address budget" default:"0"`
	CGB         bool `flag:"cgb" usage:"target Game Boy Color"`
	NoPlatform  bool `flag:"no-platform" usage:"omit the ebiten-backed platform from the generated project (headless build)"`
	Debug       bool `flag:"debug" usage:"enable debug logging"`
	Quiet       bool `flag:"q" usage:"quiet mode"`
}

// Program options of the translator.
type Program struct {
	Parameters
	Flags
}

// Translator defines options to control the translation run, derived from
// Program after flag parsing and validation.
type Translator struct {
	Input      string // ROM file path
	Output     string // output project directory
	Trace      bool   // emit a disassembly trace alongside the generated project
	Limit      int    // analyzer discovery budget override, 0 uses analysis.DefaultLimit
	CGB        bool   // target Game Boy Color
	NoPlatform bool   // omit the ebiten platform from the generated project
}

// NewTranslator returns a new options instance with default options.
func NewTranslator(input, output string) Translator {
	return Translator{
		Input:  input,
		Output: output,
	}
}
