package gbrt

import (
	"testing"

	"github.com/arcanite24/gb-recompiled/internal/cartridge"
)

// stubDispatcher always falls back to the interpreter, mirroring a runtime
// with no translated functions registered at all.
type stubDispatcher struct{}

func (stubDispatcher) Dispatch(ctx *Context, addr uint16) {
	ctx.RecordMiss(addr)
	ctx.Interpret(addr)
}

// recordingDispatcher records the last address it was asked to dispatch to
// and jumps PC there, without executing anything further: it isolates
// dispatchInterrupt's own effects from whatever lives at the vector.
type recordingDispatcher struct {
	addr   uint16
	called bool
}

func (r *recordingDispatcher) Dispatch(ctx *Context, addr uint16) {
	r.called = true
	r.addr = addr
	ctx.PC = addr
}

// TestInterpret_EIDoesNotServiceInterruptBeforeFollowingInstruction covers
// the literal EI;NOP scenario: with a VBlank interrupt already pending
// (IE & IF both set) before EI even runs, the interrupt must not be
// serviced between EI and NOP. It is only serviced once NOP has executed.
func TestInterpret_EIDoesNotServiceInterruptBeforeFollowingInstruction(t *testing.T) {
	ctx := newTestContext(t)
	dispatcher := &recordingDispatcher{}
	ctx.Dispatch = dispatcher

	rom := ctx.Cart.ROM
	copy(rom[0x0150:], []byte{0xFB, 0x00, 0x00}) // EI ; NOP ; NOP
	ctx.PC = 0x0150
	ctx.IE = intVBlank
	ctx.IO[ifRegister-ioStart] = intVBlank

	ctx.Interpret(ctx.PC) // EI
	if ctx.IME {
		t.Fatalf("IME must not be set immediately after EI")
	}
	if dispatcher.called {
		t.Fatalf("interrupt must not dispatch between EI and NOP")
	}
	if ctx.PC != 0x0151 {
		t.Fatalf("PC after EI = %#04x, want 0x0151", ctx.PC)
	}

	ctx.Interpret(ctx.PC) // NOP: IME promotes here, then the pending interrupt dispatches
	if ctx.IME {
		t.Fatalf("IME must be cleared again by the interrupt dispatch itself")
	}
	if !dispatcher.called || dispatcher.addr != 0x0040 {
		t.Fatalf("expected a dispatch to the VBlank vector 0x0040 right after NOP, got called=%v addr=%#04x", dispatcher.called, dispatcher.addr)
	}
	if got := ctx.Pop16(); got != 0x0152 {
		t.Fatalf("pushed return address = %#04x, want 0x0152 (the instruction after NOP)", got)
	}
}

func TestInterpret_BasicArithmetic(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Dispatch = stubDispatcher{}
	// LD A,0x05 ; ADD A,0x03 ; HALT-free tail so the test doesn't spin.
	rom := ctx.Cart.ROM
	copy(rom[0x0150:], []byte{0x3E, 0x05, 0xC6, 0x03})
	ctx.PC = 0x0150
	ctx.Interpret(ctx.PC)
	ctx.Interpret(ctx.PC)
	if ctx.A != 0x08 {
		t.Fatalf("A = %#02x, want 0x08", ctx.A)
	}
}

// TestInterpret_IndirectJumpInterception covers a function whose last
// instruction is JP HL with HL pointing at WRAM: with no translated
// function registered there, dispatch must route to the interpreter, which
// decodes and executes the staged instruction from WRAM.
func TestInterpret_IndirectJumpInterception(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Dispatch = stubDispatcher{}

	// Stage LD A,0x42 at 0xC100.
	ctx.Write8(0xC100, 0x3E)
	ctx.Write8(0xC101, 0x42)

	ctx.SetHL(0xC100)
	ctx.A = 0x00
	// JP HL at the current PC, written directly into the ROM image since
	// the bus treats writes to ROM addresses as MBC register selects.
	ctx.Cart.ROM[ctx.PC] = 0xE9
	ctx.Interpret(ctx.PC) // executes JP HL, dispatches to interpreter at 0xC100
	if ctx.PC != 0xC102 {
		t.Fatalf("PC after JP HL dispatch = %#04x, want 0xC102", ctx.PC)
	}
	if ctx.A != 0x42 {
		t.Fatalf("A = %#02x, want 0x42 (instruction staged at 0xC100 never executed)", ctx.A)
	}
}

func TestInterpret_HRAMDMATrampoline_Generic(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Dispatch = stubDispatcher{}

	// LDH (0xFF46),A ; RET, staged at 0xFFB6, with a return address on the stack.
	ctx.HRAM[0xFFB6-hramStart] = 0xE0
	ctx.HRAM[0xFFB6-hramStart+1] = 0x46
	ctx.SP = 0xFFFE
	ctx.Push16(0x0200)
	ctx.A = 0x80 // source page for OAM DMA

	for i := 0; i < oamSize; i++ {
		ctx.Write8(0x8000+uint16(i), byte(i))
	}

	ctx.Interpret(0xFFB6)

	if ctx.PC != 0x0200 {
		t.Fatalf("PC after DMA trampoline = %#04x, want 0x0200", ctx.PC)
	}
	for i := 0; i < oamSize; i++ {
		if ctx.OAM[i] != byte(i) {
			t.Fatalf("OAM[%d] = %#02x, want %#02x", i, ctx.OAM[i], byte(i))
		}
	}
}

func TestInterpret_HaltViaHRAMDMA_TetrisVariant(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Dispatch = stubDispatcher{}

	// LD A,0x80 ; LDH (0xFF46),A ; RET: the historical Tetris shape.
	base := uint16(0xFFB6)
	off := base - hramStart
	ctx.HRAM[off] = 0x3E
	ctx.HRAM[off+1] = 0x90
	ctx.HRAM[off+2] = 0xE0
	ctx.HRAM[off+3] = 0x46
	ctx.SP = 0xFFFE
	ctx.Push16(0x0300)

	for i := 0; i < oamSize; i++ {
		ctx.Write8(0x9000+uint16(i), 0xAA)
	}

	ctx.Interpret(base)

	if ctx.PC != 0x0300 {
		t.Fatalf("PC = %#04x, want 0x0300", ctx.PC)
	}
	if ctx.A != 0x90 {
		t.Fatalf("A = %#02x, want 0x90", ctx.A)
	}
	if ctx.OAM[0] != 0xAA {
		t.Fatalf("OAM not populated by Tetris-variant trampoline")
	}
}

func TestInterpret_InvalidOpcodeRecordsMiss(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Dispatch = stubDispatcher{}
	// Undefined opcode, written directly into the ROM image since the bus
	// treats writes to ROM addresses as MBC register selects.
	ctx.Cart.ROM[ctx.PC] = 0xD3
	ctx.Interpret(ctx.PC)
	if len(ctx.MissEntries()) != 1 {
		t.Fatalf("expected one recorded miss, got %d", len(ctx.MissEntries()))
	}
}

func TestMBC1_BankSwitching(t *testing.T) {
	data := make([]byte, cartridge.HeaderSize+0x4000*4)
	data[cartridge.MBCTypeOffset] = 0x01 // MBC1
	data[cartridge.RAMSizeOffset] = 0x00
	for bank := 0; bank < 4; bank++ {
		data[bank*0x4000+cartridge.HeaderSize] = byte(bank) // sentinel just past bank 0's header region
	}
	// Put a distinguishing byte at 0x4000 of each bank's region directly.
	for bank := 1; bank < 4; bank++ {
		data[bank*0x4000] = byte(0x10 + bank)
	}
	cart, err := cartridge.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx := New(cart)

	ctx.Write8(0x2000, 0x02) // select ROM bank 2
	if got := ctx.Read8(0x4000); got != byte(0x10+2) {
		t.Fatalf("bank 2 byte = %#02x, want %#02x", got, byte(0x10+2))
	}

	ctx.Write8(0x2000, 0x03) // select ROM bank 3
	if got := ctx.Read8(0x4000); got != byte(0x10+3) {
		t.Fatalf("bank 3 byte = %#02x, want %#02x", got, byte(0x10+3))
	}

	ctx.Write8(0x2000, 0x00) // bank 0 written to the 5-bit register aliases to bank 1
	if got := ctx.Read8(0x4000); got != byte(0x10+1) {
		t.Fatalf("bank 0->1 alias byte = %#02x, want %#02x", got, byte(0x10+1))
	}
}
