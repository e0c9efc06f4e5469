// Package gbrt is the Game Boy runtime library: the memory bus, ALU
// primitives, stack, interrupt controller and timing tick shared by
// translated native code and the interpreter. It is
// grounded on _examples/original_source/runtime/src/gbrt.c, reworked from a
// single C translation unit into the idiomatic Go package that both the
// emitted program and this module's own tests import.
package gbrt

import "github.com/arcanite24/gb-recompiled/internal/cartridge"

const (
	vramSize = 0x2000
	wramBankSize = 0x1000
	oamSize  = 0xA0
	ioSize   = 0x80
	hramSize = 0x7F

	cyclesPerFrame = 70224 // 154 scanlines * 456 dots, the HALT safety fuse bound
)

// PPU is the narrow collaborator interface the runtime core drives;
// internal/ppu provides a concrete implementation.
type PPU interface {
	Tick(ctx *Context, cycles int)
	ReadRegister(addr uint16) byte
	WriteRegister(ctx *Context, addr uint16, value byte)
	FrameReady() bool
	Framebuffer() *[160 * 144]uint32
	ClearFrameReady()
}

// Platform is the narrow collaborator interface for windowing/input;
// internal/platform provides ebiten-backed and headless implementations.
type Platform interface {
	PollEvents(ctx *Context) bool // false requests program exit
	RenderFrame(fb *[160 * 144]uint32)
	VSync()
}

// NativeFunc is the signature every emitted translated function and the
// interpreter entry point share.
type NativeFunc func(ctx *Context)

// Context is the single mutable execution context: the runtime state
// registers, memory, and peripherals. Exactly one instance exists per
// running program and it is owned by a single goroutine.
type Context struct {
	A, B, C, D, E, H, L byte
	SP, PC              uint16

	FlagZ, FlagN, FlagH, FlagC bool

	IME        bool
	IMEPending bool
	imeArmed   bool // IMEPending survived one Tick already; promote on the next
	Halted     bool
	Stopped    bool

	Cart *cartridge.Cartridge

	ROMBank  int
	RAMBank  int
	WRAMBank int
	VRAMBank int
	RAMEnabled bool
	BankingMode int // MBC1 mode register: 0 = ROM banking, 1 = RAM banking

	VRAM []byte
	ERAM []byte
	WRAM []byte
	OAM  [oamSize]byte
	HRAM [hramSize]byte
	IO   [ioSize]byte
	IE   byte

	Cycles      uint64
	FrameCycles uint64

	DPad    byte // active-low: bits R/L/U/D at 0/1/2/3
	Buttons byte // active-low: bits A/B/Select/Start at 0/1/2/3

	PPU      PPU
	Platform Platform

	Dispatch Dispatcher

	missLog *missLog
}

// Dispatcher routes a program counter to either a translated native
// function or the interpreter fallback: "smart dispatcher".
type Dispatcher interface {
	Dispatch(ctx *Context, addr uint16)
}

// New constructs a context for the given cartridge and resets it to the
// post-boot-ROM state.
func New(cart *cartridge.Cartridge) *Context {
	ctx := &Context{
		Cart: cart,
		VRAM: make([]byte, vramSize*2), // 2 banks, second unused outside CGB
		ERAM: make([]byte, cart.ERAMSize),
		WRAM: make([]byte, wramBankSize*8), // 8 banks, banks 2-7 unused outside CGB
		missLog: newMissLog(20),
	}
	ctx.Reset()
	return ctx
}

// Reset restores post-boot-ROM register and I/O state, matching
// gbrt.c's gb_context_reset(ctx, true).
func (ctx *Context) Reset() {
	ctx.A = 0x01
	ctx.setF(0xB0)
	ctx.B, ctx.C = 0x00, 0x13
	ctx.D, ctx.E = 0x00, 0xD8
	ctx.H, ctx.L = 0x01, 0x4D
	ctx.SP = 0xFFFE
	ctx.PC = 0x0100

	ctx.IME = false
	ctx.IMEPending = false
	ctx.imeArmed = false
	ctx.Halted = false
	ctx.Stopped = false

	ctx.ROMBank = 1
	ctx.RAMBank = 0
	ctx.WRAMBank = 1
	ctx.VRAMBank = 0
	ctx.RAMEnabled = false
	ctx.BankingMode = 0

	ctx.Cycles = 0
	ctx.FrameCycles = 0

	for i := range ctx.IO {
		ctx.IO[i] = 0
	}
	for addr, value := range powerOnIO {
		ctx.IO[addr-0xFF00] = value
	}
	ctx.IE = 0
	ctx.DPad = 0x0F
	ctx.Buttons = 0x0F
}

// powerOnIO enumerates the I/O register power-on values, grounded on
// gbrt.c's gb_context_reset initializer list.
var powerOnIO = map[uint16]byte{
	0xFF00: 0xCF,
	0xFF01: 0x00,
	0xFF02: 0x7E,
	0xFF04: 0xAB,
	0xFF05: 0x00,
	0xFF06: 0x00,
	0xFF07: 0xF8,
	0xFF0F: 0xE1,
	0xFF10: 0x80,
	0xFF11: 0xBF,
	0xFF12: 0xF3,
	0xFF14: 0xBF,
	0xFF16: 0x3F,
	0xFF17: 0x00,
	0xFF19: 0xBF,
	0xFF1A: 0x7F,
	0xFF1B: 0xFF,
	0xFF1C: 0x9F,
	0xFF1E: 0xBF,
	0xFF20: 0xFF,
	0xFF21: 0x00,
	0xFF22: 0x00,
	0xFF23: 0xBF,
	0xFF24: 0x77,
	0xFF25: 0xF3,
	0xFF26: 0xF1,
	0xFF40: 0x91,
	0xFF41: 0x85,
	0xFF42: 0x00,
	0xFF43: 0x00,
	0xFF44: 0x00,
	0xFF45: 0x00,
	0xFF47: 0xFC,
	0xFF48: 0xFF,
	0xFF49: 0xFF,
	0xFF4A: 0x00,
	0xFF4B: 0x00,
}

// F packs the four flag booleans into a flag register byte with its low
// nibble always zero.
func (ctx *Context) F() byte {
	var f byte
	if ctx.FlagZ {
		f |= 0x80
	}
	if ctx.FlagN {
		f |= 0x40
	}
	if ctx.FlagH {
		f |= 0x20
	}
	if ctx.FlagC {
		f |= 0x10
	}
	return f
}

// setF unpacks a flag byte into the four booleans, ignoring its low nibble.
func (ctx *Context) setF(f byte) {
	ctx.FlagZ = f&0x80 != 0
	ctx.FlagN = f&0x40 != 0
	ctx.FlagH = f&0x20 != 0
	ctx.FlagC = f&0x10 != 0
}

// SetF is the exported form used by translated code lowering POP AF.
func (ctx *Context) SetF(f byte) { ctx.setF(f) }

// AF returns the packed 16-bit AF register pair.
func (ctx *Context) AF() uint16 { return uint16(ctx.A)<<8 | uint16(ctx.F()) }

// SetAF sets A and F from a packed 16-bit value.
func (ctx *Context) SetAF(v uint16) {
	ctx.A = byte(v >> 8)
	ctx.setF(byte(v))
}

func (ctx *Context) BC() uint16 { return uint16(ctx.B)<<8 | uint16(ctx.C) }
func (ctx *Context) SetBC(v uint16) { ctx.B, ctx.C = byte(v>>8), byte(v) }
func (ctx *Context) DE() uint16 { return uint16(ctx.D)<<8 | uint16(ctx.E) }
func (ctx *Context) SetDE(v uint16) { ctx.D, ctx.E = byte(v>>8), byte(v) }
func (ctx *Context) HL() uint16 { return uint16(ctx.H)<<8 | uint16(ctx.L) }
func (ctx *Context) SetHL(v uint16) { ctx.H, ctx.L = byte(v>>8), byte(v) }
