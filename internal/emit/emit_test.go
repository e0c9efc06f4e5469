package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arcanite24/gb-recompiled/internal/analysis"
	"github.com/arcanite24/gb-recompiled/internal/decode"
)

// byteReader implements decode.MemoryReader over a plain byte slice.
type byteReader []byte

func (b byteReader) ReadByte(addr uint16) byte {
	if int(addr) >= len(b) {
		return 0xFF
	}
	return b[addr]
}

func decodeAt(mem byteReader, addr uint16) decode.Instruction {
	return decode.Decode(mem, addr)
}

func TestWriteBank_EmitsOneFunctionPerBlock(t *testing.T) {
	// NOP (0x00) at 0x0100 falling through to RET (0xC9) at 0x0101.
	mem := make(byteReader, 0x0102)
	mem[0x0100] = 0x00
	mem[0x0101] = 0xC9
	nop := decodeAt(mem, 0x0100)
	ret := decodeAt(mem, 0x0101)

	block := &analysis.Block{
		Entry:        0x0100,
		Bank:         0,
		Instructions: []decode.Instruction{nop, ret},
	}
	graph := &analysis.Graph{
		Functions: map[uint16]*analysis.Function{
			0x0100: {Entry: 0x0100, Bank: 0, Blocks: []*analysis.Block{block}},
		},
		Blocks: map[analysis.BlockKey]*analysis.Block{
			{Bank: 0, Addr: 0x0100}: block,
		},
	}

	w := New(graph, "main")
	var buf bytes.Buffer
	if err := w.WriteBank(&buf, 0); err != nil {
		t.Fatalf("WriteBank returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "package main") {
		t.Errorf("expected package clause, got:\n%s", out)
	}
	if !strings.Contains(out, "func func_00_0100(ctx *gbrt.Context)") {
		t.Errorf("expected generated function signature, got:\n%s", out)
	}
	if !strings.Contains(out, "ctx.Pop16()") {
		t.Errorf("expected the RET terminator to pop a return address, got:\n%s", out)
	}
}

func TestBanks_ReturnsSortedDistinctBanks(t *testing.T) {
	graph := &analysis.Graph{
		Functions: map[uint16]*analysis.Function{},
		Blocks: map[analysis.BlockKey]*analysis.Block{
			{Bank: 2, Addr: 0x4000}: {Entry: 0x4000, Bank: 2},
			{Bank: 0, Addr: 0x0100}: {Entry: 0x0100, Bank: 0},
			{Bank: 2, Addr: 0x4100}: {Entry: 0x4100, Bank: 2},
		},
	}
	w := New(graph, "main")
	got := w.Banks()
	want := []int{0, 2}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Banks() = %v, want %v", got, want)
	}
}

func TestWriteDispatch_MapsEveryFunction(t *testing.T) {
	graph := &analysis.Graph{
		Functions: map[uint16]*analysis.Function{
			0x0100: {Entry: 0x0100, Bank: 0},
			0x4000: {Entry: 0x4000, Bank: 1},
		},
		Blocks: map[analysis.BlockKey]*analysis.Block{},
	}
	w := New(graph, "main")
	var buf bytes.Buffer
	if err := w.WriteDispatch(&buf); err != nil {
		t.Fatalf("WriteDispatch returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "func_00_0100") || !strings.Contains(out, "func_01_4000") {
		t.Errorf("expected both functions in the dispatch table, got:\n%s", out)
	}
	if !strings.Contains(out, "type Table struct{}") {
		t.Errorf("expected the Table dispatcher type, got:\n%s", out)
	}
	if !strings.Contains(out, "ctx.Interpret(addr)") {
		t.Errorf("expected a dispatch miss to fall back to the interpreter, got:\n%s", out)
	}
}

func TestFuncName_MatchesConvention(t *testing.T) {
	if got, want := FuncName(0x03, 0x4A2C), "func_03_4A2C"; got != want {
		t.Errorf("FuncName() = %q, want %q", got, want)
	}
}
