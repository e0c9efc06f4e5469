// Package emit lowers an analyzed control-flow graph into Go source,
// generating one native function per discovered block plus an address
// dispatch table. It follows nesgodisasm's internal/writer.Writer shape:
// plain fmt.Fprintf calls onto an io.Writer rather than a templating
// library.
package emit

import (
	"fmt"
	"io"
	"sort"

	"github.com/arcanite24/gb-recompiled/internal/analysis"
	"github.com/arcanite24/gb-recompiled/internal/decode"
	"github.com/arcanite24/gb-recompiled/internal/ir"
)

// RuntimeImportPath is the import path the generated project uses to reach
// the shared runtime primitives. It must be rooted at the same prefix as
// this module so Go's internal-package visibility rule admits the import
// from a separately-moduled generated project (see DESIGN.md).
const RuntimeImportPath = "github.com/arcanite24/gb-recompiled/internal/gbrt"

// Writer generates the gen_<bank>.go and dispatch.go files of a translated
// project from an analyzed Graph.
type Writer struct {
	graph   *analysis.Graph
	Package string
}

// New constructs a Writer for the given analyzed graph.
func New(graph *analysis.Graph, pkg string) *Writer {
	if pkg == "" {
		pkg = "main"
	}
	return &Writer{graph: graph, Package: pkg}
}

// FuncName returns the generated Go function name for a block entry,
// matching analysis.Function.Name()'s `func_BB_AAAA` convention.
func FuncName(bank int, addr uint16) string {
	return fmt.Sprintf("func_%02X_%04X", bank, addr)
}

// Banks returns the sorted set of bank numbers with at least one discovered
// block, for per-bank file splitting.
func (w *Writer) Banks() []int {
	seen := map[int]bool{}
	for key := range w.graph.Blocks {
		seen[key.Bank] = true
	}
	out := make([]int, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

// WriteBank writes every block discovered under bank as one Go source file.
func (w *Writer) WriteBank(out io.Writer, bank int) error {
	fmt.Fprintf(out, "package %s\n\n", w.Package)
	fmt.Fprintf(out, "import %q\n\n", RuntimeImportPath)

	keys := make([]analysis.BlockKey, 0)
	for key := range w.graph.Blocks {
		if key.Bank == bank {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Addr < keys[j].Addr })

	for _, key := range keys {
		block := w.graph.Blocks[key]
		if err := w.writeBlock(out, block); err != nil {
			return fmt.Errorf("writing block %s: %w", FuncName(block.Bank, block.Entry), err)
		}
	}
	return nil
}

// WriteDispatch writes the generated dispatch.go mapping every discovered
// function entry address to its native Go function: a plain Go map standing
// in for a jump table, since Go has no portable computed goto.
func (w *Writer) WriteDispatch(out io.Writer) error {
	fmt.Fprintf(out, "package %s\n\n", w.Package)
	fmt.Fprintf(out, "import %q\n\n", RuntimeImportPath)

	fmt.Fprintf(out, "// dispatchTable maps a (bank, address) pair, packed as bank<<16|address,\n")
	fmt.Fprintf(out, "// to its translated native function.\n")
	fmt.Fprintf(out, "var dispatchTable = map[uint32]gbrt.NativeFunc{\n")

	fns := w.graph.SortedFunctions()
	for _, fn := range fns {
		key := uint32(fn.Bank)<<16 | uint32(fn.Entry)
		fmt.Fprintf(out, "\t%#08x: %s, // bank %02X, %#04x\n", key, FuncName(fn.Bank, fn.Entry), fn.Bank, fn.Entry)
	}
	fmt.Fprintf(out, "}\n\n")

	fmt.Fprintf(out, "// Table is the gbrt.Dispatcher implementation wired into gbrt.Context.Dispatch.\n")
	fmt.Fprintf(out, "// A miss (no translated function at the current bank/address) falls back to\n")
	fmt.Fprintf(out, "// the interpreter: not an error, just an analysis boundary.\n")
	fmt.Fprintf(out, "type Table struct{}\n\n")
	fmt.Fprintf(out, "func (Table) Dispatch(ctx *gbrt.Context, addr uint16) {\n")
	fmt.Fprintf(out, "\tkey := uint32(ctx.ROMBank)<<16 | uint32(addr)\n")
	fmt.Fprintf(out, "\tif addr < 0x4000 {\n")
	fmt.Fprintf(out, "\t\tkey = uint32(addr)\n")
	fmt.Fprintf(out, "\t}\n")
	fmt.Fprintf(out, "\tif fn, ok := dispatchTable[key]; ok {\n")
	fmt.Fprintf(out, "\t\tfn(ctx)\n")
	fmt.Fprintf(out, "\t\treturn\n")
	fmt.Fprintf(out, "\t}\n")
	fmt.Fprintf(out, "\tctx.RecordMiss(addr)\n")
	fmt.Fprintf(out, "\tctx.Interpret(addr)\n")
	fmt.Fprintf(out, "}\n")
	return nil
}

func (w *Writer) writeBlock(out io.Writer, block *analysis.Block) error {
	fmt.Fprintf(out, "// %s translates the block at bank %02X, address %#04x.\n",
		FuncName(block.Bank, block.Entry), block.Bank, block.Entry)
	fmt.Fprintf(out, "func %s(ctx *gbrt.Context) {\n", FuncName(block.Bank, block.Entry))
	fmt.Fprintf(out, "\tvar v8 byte\n\tvar v16 uint16\n")

	for i, ins := range block.Instructions {
		last := i == len(block.Instructions)-1
		if ins.IsInvalid() {
			fmt.Fprintf(out, "\t// undefined opcode at %#04x, deferred to the interpreter\n", ins.Address)
			fmt.Fprintf(out, "\tctx.RecordMiss(%#04x)\n\tctx.Interpret(%#04x)\n\treturn\n", ins.Address, ins.Address)
			break
		}
		if last {
			writeTerminal(out, ins)
			break
		}
		writeBody(out, ins)
	}

	fmt.Fprintf(out, "\t_ = v8\n\t_ = v16\n")
	fmt.Fprintf(out, "}\n\n")
	return nil
}

// writeBody emits the non-control-flow statements for one instruction: the
// IR op sequence Lower produced, minus its trailing Tick (folded into a
// single ctx.Tick call at the end) since this instruction falls through to
// the next one in the same block.
func writeBody(out io.Writer, ins decode.Instruction) {
	fmt.Fprintf(out, "\t// %s @ %#04x\n", ins.Opcode.Mnemonic, ins.Address)
	ops := ir.Lower(ins)
	for _, op := range ops {
		if _, isTick := op.(ir.Tick); isTick {
			continue
		}
		writeOp(out, op, ins)
	}
	fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
}

// writeTerminal emits the control-transfer tail for a block's last
// instruction, derived directly from the decoder's Successor/Targets/
// Fallthrough fields rather than the IR Branch/Call/Ret op (which cannot
// carry a runtime-resolved taken/not-taken cycle count on its own).
func writeTerminal(out io.Writer, ins decode.Instruction) {
	fmt.Fprintf(out, "\t// %s @ %#04x (block terminator)\n", ins.Opcode.Mnemonic, ins.Address)

	switch ins.Opcode.Successor {
	case decode.SuccessorFallthrough:
		ops := ir.Lower(ins)
		for _, op := range ops {
			if _, isTick := op.(ir.Tick); isTick {
				continue
			}
			writeOp(out, op, ins)
		}
		fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
		fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Fallthrough)
		fmt.Fprintf(out, "\treturn\n")

	case decode.SuccessorJump:
		fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
		fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Targets[0])
		fmt.Fprintf(out, "\treturn\n")

	case decode.SuccessorJumpCond:
		writeCondBranch(out, ins, condExpr(ins.Opcode.Operand1.Cond), func() {
			fmt.Fprintf(out, "\t\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Targets[0])
		})

	case decode.SuccessorCall:
		fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
		fmt.Fprintf(out, "\tctx.Push16(%#04x)\n", ins.Fallthrough)
		fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Targets[0])
		fmt.Fprintf(out, "\treturn\n")

	case decode.SuccessorCallCond:
		writeCondBranch(out, ins, condExpr(ins.Opcode.Operand1.Cond), func() {
			fmt.Fprintf(out, "\t\tctx.Push16(%#04x)\n", ins.Fallthrough)
			fmt.Fprintf(out, "\t\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Targets[0])
		})

	case decode.SuccessorReturn:
		fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
		if ins.Opcode.Mnemonic == "RETI" {
			fmt.Fprintf(out, "\tretAddr := ctx.Pop16()\n\tctx.IME = true\n")
		} else {
			fmt.Fprintf(out, "\tretAddr := ctx.Pop16()\n")
		}
		fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, retAddr)\n")
		fmt.Fprintf(out, "\treturn\n")

	case decode.SuccessorReturnCond:
		writeCondBranch(out, ins, condExpr(ins.Opcode.Operand1.Cond), func() {
			fmt.Fprintf(out, "\t\tretAddr := ctx.Pop16()\n")
			fmt.Fprintf(out, "\t\tctx.Dispatch.Dispatch(ctx, retAddr)\n")
		})

	case decode.SuccessorRst:
		fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
		fmt.Fprintf(out, "\tctx.Push16(%#04x)\n", ins.Fallthrough)
		fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Opcode.RSTVector)
		fmt.Fprintf(out, "\treturn\n")

	case decode.SuccessorDynamicJump:
		fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
		fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, ctx.HL())\n")
		fmt.Fprintf(out, "\treturn\n")

	case decode.SuccessorHalt:
		fmt.Fprintf(out, "\tctx.Halt()\n")
		fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Fallthrough)
		fmt.Fprintf(out, "\treturn\n")

	case decode.SuccessorStop:
		fmt.Fprintf(out, "\tctx.Stop()\n")
		fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
		fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Fallthrough)
		fmt.Fprintf(out, "\treturn\n")

	default: // SuccessorInvalid, or anything this emitter doesn't recognize
		fmt.Fprintf(out, "\tctx.RecordMiss(%#04x)\n\tctx.Interpret(%#04x)\n", ins.Address, ins.Address)
	}
}

func writeCondBranch(out io.Writer, ins decode.Instruction, cond string, writeTaken func()) {
	fmt.Fprintf(out, "\tif %s {\n", cond)
	fmt.Fprintf(out, "\t\tctx.Tick(%d)\n", ins.Opcode.CyclesTaken)
	writeTaken()
	fmt.Fprintf(out, "\t\treturn\n")
	fmt.Fprintf(out, "\t}\n")
	fmt.Fprintf(out, "\tctx.Tick(%d)\n", ins.Opcode.Cycles)
	fmt.Fprintf(out, "\tctx.Dispatch.Dispatch(ctx, %#04x)\n", ins.Fallthrough)
	fmt.Fprintf(out, "\treturn\n")
}

func condExpr(cond decode.Condition) string {
	switch cond {
	case decode.CondNZ:
		return "!ctx.FlagZ"
	case decode.CondZ:
		return "ctx.FlagZ"
	case decode.CondNC:
		return "!ctx.FlagC"
	case decode.CondC:
		return "ctx.FlagC"
	default:
		return "true"
	}
}

func reg8Get(r decode.Reg8) string {
	switch r {
	case decode.RegA:
		return "ctx.A"
	case decode.RegB:
		return "ctx.B"
	case decode.RegC:
		return "ctx.C"
	case decode.RegD:
		return "ctx.D"
	case decode.RegE:
		return "ctx.E"
	case decode.RegH:
		return "ctx.H"
	case decode.RegL:
		return "ctx.L"
	default: // RegHLInd
		return "ctx.Read8(ctx.HL())"
	}
}

func reg8Set(out io.Writer, r decode.Reg8, valExpr string) {
	switch r {
	case decode.RegA:
		fmt.Fprintf(out, "\tctx.A = %s\n", valExpr)
	case decode.RegB:
		fmt.Fprintf(out, "\tctx.B = %s\n", valExpr)
	case decode.RegC:
		fmt.Fprintf(out, "\tctx.C = %s\n", valExpr)
	case decode.RegD:
		fmt.Fprintf(out, "\tctx.D = %s\n", valExpr)
	case decode.RegE:
		fmt.Fprintf(out, "\tctx.E = %s\n", valExpr)
	case decode.RegH:
		fmt.Fprintf(out, "\tctx.H = %s\n", valExpr)
	case decode.RegL:
		fmt.Fprintf(out, "\tctx.L = %s\n", valExpr)
	default: // RegHLInd
		fmt.Fprintf(out, "\tctx.Write8(ctx.HL(), %s)\n", valExpr)
	}
}

func reg16Get(r decode.Reg16) string {
	switch r {
	case decode.RegBC:
		return "ctx.BC()"
	case decode.RegDE:
		return "ctx.DE()"
	case decode.RegHL:
		return "ctx.HL()"
	case decode.RegSP:
		return "ctx.SP"
	default: // RegAF
		return "ctx.AF()"
	}
}

func reg16Set(out io.Writer, r decode.Reg16, valExpr string) {
	switch r {
	case decode.RegBC:
		fmt.Fprintf(out, "\tctx.SetBC(%s)\n", valExpr)
	case decode.RegDE:
		fmt.Fprintf(out, "\tctx.SetDE(%s)\n", valExpr)
	case decode.RegHL:
		fmt.Fprintf(out, "\tctx.SetHL(%s)\n", valExpr)
	case decode.RegSP:
		fmt.Fprintf(out, "\tctx.SP = %s\n", valExpr)
	default: // RegAF
		fmt.Fprintf(out, "\tctx.SetAF(%s)\n", valExpr)
	}
}

func memGet(mode ir.MemMode, ins decode.Instruction) string {
	switch mode {
	case ir.MemBC:
		return "ctx.Read8(ctx.BC())"
	case ir.MemDE:
		return "ctx.Read8(ctx.DE())"
	case ir.MemHLIncrement:
		return "ctx.Read8(ctx.HL())"
	case ir.MemHLDecrement:
		return "ctx.Read8(ctx.HL())"
	case ir.MemCHigh:
		return "ctx.Read8(0xFF00 + uint16(ctx.C))"
	case ir.MemA8High:
		return fmt.Sprintf("ctx.Read8(0xFF00 + uint16(%#02x))", ins.Imm8)
	case ir.MemA16:
		return fmt.Sprintf("ctx.Read8(%#04x)", ins.Imm16)
	default: // MemHL
		return "ctx.Read8(ctx.HL())"
	}
}

func memSet(out io.Writer, mode ir.MemMode, ins decode.Instruction, valExpr string) {
	switch mode {
	case ir.MemBC:
		fmt.Fprintf(out, "\tctx.Write8(ctx.BC(), %s)\n", valExpr)
	case ir.MemDE:
		fmt.Fprintf(out, "\tctx.Write8(ctx.DE(), %s)\n", valExpr)
	case ir.MemHLIncrement:
		fmt.Fprintf(out, "\tctx.Write8(ctx.HL(), %s)\n", valExpr)
	case ir.MemHLDecrement:
		fmt.Fprintf(out, "\tctx.Write8(ctx.HL(), %s)\n", valExpr)
	case ir.MemCHigh:
		fmt.Fprintf(out, "\tctx.Write8(0xFF00+uint16(ctx.C), %s)\n", valExpr)
	case ir.MemA8High:
		fmt.Fprintf(out, "\tctx.Write8(0xFF00+uint16(%#02x), %s)\n", ins.Imm8, valExpr)
	case ir.MemA16:
		fmt.Fprintf(out, "\tctx.Write8(%#04x, %s)\n", ins.Imm16, valExpr)
	default: // MemHL
		fmt.Fprintf(out, "\tctx.Write8(ctx.HL(), %s)\n", valExpr)
	}
}

// writeHLStep emits the HL post-increment/decrement a MemHLIncrement or
// MemHLDecrement addressing mode implies, since the Go read/write
// expressions above only perform the access itself.
func writeHLStep(out io.Writer, mode ir.MemMode) {
	switch mode {
	case ir.MemHLIncrement:
		fmt.Fprintf(out, "\tctx.SetHL(ctx.HL() + 1)\n")
	case ir.MemHLDecrement:
		fmt.Fprintf(out, "\tctx.SetHL(ctx.HL() - 1)\n")
	}
}

func writeOp(out io.Writer, op ir.Op, ins decode.Instruction) {
	switch o := op.(type) {
	case ir.LoadReg8:
		fmt.Fprintf(out, "\tv8 = %s\n", reg8Get(o.Reg))
	case ir.StoreReg8:
		reg8Set(out, o.Reg, "v8")
	case ir.LoadReg16:
		fmt.Fprintf(out, "\tv16 = %s\n", reg16Get(o.Reg))
	case ir.StoreReg16:
		reg16Set(out, o.Reg, "v16")
	case ir.LoadImm8:
		fmt.Fprintf(out, "\tv8 = %#02x\n", o.Value)
	case ir.LoadImm16:
		fmt.Fprintf(out, "\tv16 = %#04x\n", o.Value)
	case ir.LoadMem8:
		fmt.Fprintf(out, "\tv8 = %s\n", memGet(o.Mode, ins))
		writeHLStep(out, o.Mode)
	case ir.StoreMem8:
		memSet(out, o.Mode, ins, "v8")
		writeHLStep(out, o.Mode)
	case ir.StoreMem16:
		fmt.Fprintf(out, "\tctx.Write16(%#04x, %s)\n", o.Addr, reg16Get(o.Reg))
	case ir.Push16:
		fmt.Fprintf(out, "\tctx.Push16(%s)\n", reg16Get(o.Reg))
	case ir.Pop16:
		reg16Set(out, o.Reg, "ctx.Pop16()")
	case ir.Alu8:
		writeAlu8(out, o)
	case ir.Alu16:
		writeAlu16(out, o)
	case ir.Rot:
		writeRot(out, o)
	case ir.Interrupt:
		writeInterrupt(out, o)
	case ir.Halt:
		fmt.Fprintf(out, "\tctx.Halt()\n")
	case ir.Stop:
		fmt.Fprintf(out, "\tctx.Stop()\n")
	default:
		fmt.Fprintf(out, "\t// unhandled IR op %T\n", op)
	}
}

func writeAlu8(out io.Writer, o ir.Alu8) {
	switch o.Kind {
	case ir.AluAdd:
		fmt.Fprintf(out, "\tctx.Add8(v8)\n")
	case ir.AluAdc:
		fmt.Fprintf(out, "\tctx.Adc8(v8)\n")
	case ir.AluSub:
		fmt.Fprintf(out, "\tctx.Sub8(v8)\n")
	case ir.AluSbc:
		fmt.Fprintf(out, "\tctx.Sbc8(v8)\n")
	case ir.AluAnd:
		fmt.Fprintf(out, "\tctx.And8(v8)\n")
	case ir.AluOr:
		fmt.Fprintf(out, "\tctx.Or8(v8)\n")
	case ir.AluXor:
		fmt.Fprintf(out, "\tctx.Xor8(v8)\n")
	case ir.AluCp:
		fmt.Fprintf(out, "\tctx.Cp8(v8)\n")
	case ir.AluInc:
		fmt.Fprintf(out, "\tv8 = ctx.Inc8(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.AluDec:
		fmt.Fprintf(out, "\tv8 = ctx.Dec8(v8)\n")
		writeBackTarget(out, o.Target)
	}
}

func writeAlu16(out io.Writer, o ir.Alu16) {
	switch o.Kind {
	case ir.Alu16AddHL:
		fmt.Fprintf(out, "\tctx.Add16(%s)\n", reg16Get(o.Reg))
	case ir.Alu16AddSP:
		fmt.Fprintf(out, "\tctx.SP = ctx.AddSP(%d)\n", o.SPRel)
	case ir.Alu16LoadHLSP:
		fmt.Fprintf(out, "\tctx.SetHL(ctx.AddSP(%d))\n", o.SPRel)
	case ir.Alu16Inc:
		reg16Set(out, o.Reg, reg16Get(o.Reg)+"+1")
	case ir.Alu16Dec:
		reg16Set(out, o.Reg, reg16Get(o.Reg)+"-1")
	}
}

func writeRot(out io.Writer, o ir.Rot) {
	switch o.Kind {
	case ir.RotRLC:
		fmt.Fprintf(out, "\tv8 = ctx.Rlc(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.RotRRC:
		fmt.Fprintf(out, "\tv8 = ctx.Rrc(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.RotRL:
		fmt.Fprintf(out, "\tv8 = ctx.Rl(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.RotRR:
		fmt.Fprintf(out, "\tv8 = ctx.Rr(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.RotSLA:
		fmt.Fprintf(out, "\tv8 = ctx.Sla(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.RotSRA:
		fmt.Fprintf(out, "\tv8 = ctx.Sra(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.RotSRL:
		fmt.Fprintf(out, "\tv8 = ctx.Srl(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.RotSwap:
		fmt.Fprintf(out, "\tv8 = ctx.Swap(v8)\n")
		writeBackTarget(out, o.Target)
	case ir.RotBit:
		fmt.Fprintf(out, "\tctx.Bit(%d, v8)\n", o.Bit)
	case ir.RotRes:
		fmt.Fprintf(out, "\tv8 = v8 &^ (1 << %d)\n", o.Bit)
		writeBackTarget(out, o.Target)
	case ir.RotSet:
		fmt.Fprintf(out, "\tv8 = v8 | (1 << %d)\n", o.Bit)
		writeBackTarget(out, o.Target)
	case ir.RotRLCA:
		fmt.Fprintf(out, "\tctx.Rlca()\n")
	case ir.RotRRCA:
		fmt.Fprintf(out, "\tctx.Rrca()\n")
	case ir.RotRLA:
		fmt.Fprintf(out, "\tctx.Rla()\n")
	case ir.RotRRA:
		fmt.Fprintf(out, "\tctx.Rra()\n")
	}
}

func writeBackTarget(out io.Writer, target ir.Op) {
	switch t := target.(type) {
	case ir.StoreReg8:
		reg8Set(out, t.Reg, "v8")
	case ir.StoreMem8:
		fmt.Fprintf(out, "\tctx.Write8(ctx.HL(), v8)\n")
	}
}

func writeInterrupt(out io.Writer, o ir.Interrupt) {
	switch o.Kind {
	case ir.InterruptDisable:
		fmt.Fprintf(out, "\tctx.IME = false\n\tctx.IMEPending = false\n")
	case ir.InterruptEnableDelayed:
		fmt.Fprintf(out, "\tctx.IMEPending = true\n")
	case ir.InterruptRetAndEnable:
		fmt.Fprintf(out, "\tctx.IME = true\n")
	}
}
