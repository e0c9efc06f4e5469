package analysis

import (
	"testing"

	"github.com/arcanite24/gb-recompiled/internal/cartridge"
)

func newTestCart(t *testing.T, size int) (*cartridge.Cartridge, []byte) {
	t.Helper()
	if size < cartridge.HeaderSize+0x4000 {
		size = cartridge.HeaderSize + 0x4000
	}
	data := make([]byte, size)
	data[cartridge.MBCTypeOffset] = 0x00
	data[cartridge.RAMSizeOffset] = 0x00
	cart, err := cartridge.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cart, data
}

// TestRun_SeedsEntryAndVectors verifies the required seed set: 0x0100,
// every RST vector, and every interrupt vector are always function entries,
// even though nothing in this ROM ever jumps to them.
func TestRun_SeedsEntryAndVectors(t *testing.T) {
	cart, data := newTestCart(t, cartridge.HeaderSize+0x4000)
	// RET at every vector and at the entry point so each seed terminates
	// immediately as its own one-instruction dynamic block.
	for _, addr := range append(append([]uint16{0x0100}, cartridge.RSTVectors()...), cartridge.InterruptVectors()...) {
		data[addr] = 0xC9 // RET
	}

	res, err := New(cart).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := append(append([]uint16{0x0100}, cartridge.RSTVectors()...), cartridge.InterruptVectors()...)
	for _, addr := range want {
		if _, ok := res.Functions[addr]; !ok {
			t.Errorf("expected function entry at %#04x", addr)
		}
	}
}

// TestRun_SelfReferentialJumpTerminates is critical edge
// case: a self-referential jump (JR -2, an infinite loop idiom common at
// the end of a Game Boy program) must not hang the analyzer.
func TestRun_SelfReferentialJumpTerminates(t *testing.T) {
	cart, data := newTestCart(t, cartridge.HeaderSize+0x4000)
	data[0x0100] = 0x18 // JR
	data[0x0101] = 0xFE // -2: jump to self

	res, err := New(cart).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	fn, ok := res.Functions[0x0100]
	if !ok {
		t.Fatalf("expected function entry at 0x0100")
	}
	if len(fn.Blocks) != 1 {
		t.Fatalf("expected exactly one block for a self-loop, got %d", len(fn.Blocks))
	}
	if fn.Blocks[0].Successors[0] != 0x0100 {
		t.Fatalf("expected self-loop successor 0x0100, got %#04x", fn.Blocks[0].Successors[0])
	}
}

// TestRun_DynamicJumpTerminatesBlockWithoutSuccessors covers JP HL: a dynamic
// target means the block must terminate with no static successor, deferring
// entirely to the interpreter at runtime.
func TestRun_DynamicJumpTerminatesBlockWithoutSuccessors(t *testing.T) {
	cart, data := newTestCart(t, cartridge.HeaderSize+0x4000)
	data[0x0100] = 0xE9 // JP HL

	res, err := New(cart).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	fn := res.Functions[0x0100]
	if fn == nil || len(fn.Blocks) != 1 {
		t.Fatalf("expected one block at entry 0x0100")
	}
	if !fn.Blocks[0].Dynamic {
		t.Fatalf("JP HL block must be marked Dynamic")
	}
	if len(fn.Blocks[0].Successors) != 0 {
		t.Fatalf("JP HL block must have no static successors, got %v", fn.Blocks[0].Successors)
	}
}

// TestRun_CallTargetBecomesFunctionEntry verifies that a CALL target, even
// one only reached via a call (never a direct jump), is classified as its
// own function entry rather than folded into the caller's block list.
func TestRun_CallTargetBecomesFunctionEntry(t *testing.T) {
	cart, data := newTestCart(t, cartridge.HeaderSize+0x4000)
	// CALL 0x0200 ; RET  at 0x0100
	data[0x0100] = 0xCD
	data[0x0101] = 0x00
	data[0x0102] = 0x02
	data[0x0200] = 0xC9 // RET

	res, err := New(cart).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.Functions[0x0200]; !ok {
		t.Fatalf("expected CALL target 0x0200 to be discovered as a function entry")
	}
}

// TestRun_ConditionalJumpEnqueuesBothTargets exercises a JR cond block,
// expecting both the taken target and the fallthrough to be discovered.
func TestRun_ConditionalJumpEnqueuesBothTargets(t *testing.T) {
	cart, data := newTestCart(t, cartridge.HeaderSize+0x4000)
	// JR NZ,+2 at 0x0100 (falls through to 0x0102, jumps to 0x0104).
	data[0x0100] = 0x20
	data[0x0101] = 0x02
	data[0x0102] = 0xC9 // RET (fallthrough path)
	data[0x0104] = 0xC9 // RET (taken path)

	res, err := New(cart).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.Blocks[BlockKey{Bank: 0, Addr: 0x0102}]; !ok {
		t.Fatalf("expected fallthrough block discovered at 0x0102")
	}
	if _, ok := res.Blocks[BlockKey{Bank: 0, Addr: 0x0104}]; !ok {
		t.Fatalf("expected taken-branch block discovered at 0x0104")
	}
}

// TestRun_LimitReached exercises defensive discovery bound.
func TestRun_LimitReached(t *testing.T) {
	cart, data := newTestCart(t, cartridge.HeaderSize+0x4000)
	// A chain of 10 unconditional jumps, each to the next address, so the
	// worklist discovers more than a tiny limit allows.
	addr := uint16(0x0100)
	for i := 0; i < 10; i++ {
		data[addr] = 0xC3 // JP
		target := addr + 3
		data[addr+1] = byte(target)
		data[addr+2] = byte(target >> 8)
		addr = target
	}
	data[addr] = 0xC9 // RET terminates the chain

	a := New(cart)
	a.SetLimit(2)
	_, err := a.Run()
	if err == nil {
		t.Fatalf("expected ErrLimitReached")
	}
}

// TestRun_BankSelectWriteSetsCallTargetBank covers the literal MBC1 bank
// switch idiom: LD A,5 ; LD (0x2000),A ; CALL 0x4000 must produce a function
// entry at bank 5, address 0x4000, not just the entry bank the call site
// itself was analyzed under.
func TestRun_BankSelectWriteSetsCallTargetBank(t *testing.T) {
	data := make([]byte, cartridge.HeaderSize+0x4000*6)
	data[cartridge.MBCTypeOffset] = 0x01 // MBC1
	data[cartridge.RAMSizeOffset] = 0x00

	// LD A,0x05 ; LD (0x2000),A ; CALL 0x4000
	data[0x0100] = 0x3E
	data[0x0101] = 0x05
	data[0x0102] = 0xEA
	data[0x0103] = 0x00
	data[0x0104] = 0x20
	data[0x0105] = 0xCD
	data[0x0106] = 0x00
	data[0x0107] = 0x40

	data[5*0x4000] = 0xC9 // RET at bank 5, 0x4000

	cart, err := cartridge.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	res, err := New(cart).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.Blocks[BlockKey{Bank: 5, Addr: 0x4000}]; !ok {
		t.Fatalf("expected a block discovered at bank 5, addr 0x4000")
	}
	fn, ok := res.Functions[0x4000]
	if !ok || fn.Bank != 5 {
		t.Fatalf("expected function entry at 0x4000 recorded under bank 5, got %+v", fn)
	}
}

func TestFunction_Name(t *testing.T) {
	fn := &Function{Entry: 0x0150, Bank: 3}
	if got, want := fn.Name(), "func_03_0150"; got != want {
		t.Fatalf("Name() = %q, want %q", got, want)
	}
}
