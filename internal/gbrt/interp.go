package gbrt

import "github.com/arcanite24/gb-recompiled/internal/decode"

// Interpret decodes and executes exactly one instruction starting at addr
// against live context state, sharing the same decoder table and ALU
// primitives translated code uses. It is the fallback the smart dispatcher
// invokes whenever execution reaches an address the static analyzer never
// discovered: RAM-resident routines, computed jumps, data-driven callback
// tables.
//
// Grounded on _examples/original_source/runtime/src/gbrt.c's gb_interpret,
// generalized from that function's stubbed fallback into a full
// decode-and-execute step, while keeping its HRAM OAM-DMA trampoline
// short-circuit as a recognized optimization.
func (ctx *Context) Interpret(addr uint16) {
	ctx.PC = addr

	if addr >= hramStart && addr <= hramEnd && ctx.interceptHRAMDMA(addr) {
		return
	}

	ins := decode.Decode(ctx, addr)
	if ins.IsInvalid() {
		ctx.RecordMiss(addr)
		return
	}
	ctx.PC = ins.Fallthrough
	extra := ctx.execute(ins)
	ctx.Tick(ins.Opcode.Cycles + extra)
}

// interceptHRAMDMA recognizes the two canonical OAM-DMA trampoline shapes
// games place in HRAM: a bare `LDH (FF46),A` or a `LD A,n` immediately
// followed by it. Recognizing these lets the interpreter short-circuit the
// routine in one step instead of decoding through it; the generic decode
// path above still produces identical results for any shape this misses.
func (ctx *Context) interceptHRAMDMA(addr uint16) bool {
	off := addr - hramStart
	opcode := ctx.HRAM[off]

	if opcode == 0xE0 && int(off)+1 < len(ctx.HRAM) && ctx.HRAM[off+1] == 0x46 {
		ctx.Write8(dmaRegister, ctx.A)
		ctx.PC = ctx.Pop16()
		ctx.Tick(28) // LDH (n),A (12) + RET (16)
		return true
	}

	if opcode == 0x3E && int(off)+3 < len(ctx.HRAM) &&
		ctx.HRAM[off+2] == 0xE0 && ctx.HRAM[off+3] == 0x46 {
		ctx.A = ctx.HRAM[off+1]
		ctx.Write8(dmaRegister, ctx.A)
		ctx.PC = ctx.Pop16()
		ctx.Tick(36) // LD A,n (8) + LDH (n),A (12) + RET (16)
		return true
	}

	return false
}

// execute carries out the semantic effect of one decoded instruction and
// returns the extra T-states to add when a conditional branch/call/ret was
// taken (CyclesTaken - Cycles), zero otherwise.
func (ctx *Context) execute(ins decode.Instruction) int {
	op := ins.Opcode
	switch op.Mnemonic {
	case "NOP", "PREFIX_CB":
	case "STOP":
		ctx.Stop()
	case "HALT":
		ctx.Halt()
	case "DI":
		ctx.IME = false
		ctx.IMEPending = false
		ctx.imeArmed = false
	case "EI":
		ctx.IMEPending = true

	case "LD", "LDH":
		ctx.execLD(ins)
	case "PUSH":
		ctx.Push16(ctx.readReg16(op.Operand1.Reg16))
	case "POP":
		ctx.writeReg16(op.Operand1.Reg16, ctx.Pop16())

	case "INC":
		ctx.execIncDec8(ins, true)
	case "DEC":
		ctx.execIncDec8(ins, false)
	case "INC16":
		ctx.writeReg16(op.Operand1.Reg16, ctx.readReg16(op.Operand1.Reg16)+1)
	case "DEC16":
		ctx.writeReg16(op.Operand1.Reg16, ctx.readReg16(op.Operand1.Reg16)-1)

	case "ADD":
		ctx.Add8(ctx.readOperand(ins, op.Operand2))
	case "ADDHL":
		ctx.Add16(ctx.readReg16(op.Operand1.Reg16))
	case "ADDSP":
		ctx.SP = ctx.AddSP(ins.SPRel)
	case "LDHLSP":
		ctx.SetHL(ctx.AddSP(ins.SPRel))
	case "ADC":
		ctx.Adc8(ctx.readOperand(ins, op.Operand2))
	case "SUB":
		ctx.Sub8(ctx.readOperand(ins, op.Operand2))
	case "SBC":
		ctx.Sbc8(ctx.readOperand(ins, op.Operand2))
	case "AND":
		ctx.And8(ctx.readOperand(ins, op.Operand2))
	case "OR":
		ctx.Or8(ctx.readOperand(ins, op.Operand2))
	case "XOR":
		ctx.Xor8(ctx.readOperand(ins, op.Operand2))
	case "CP":
		ctx.Cp8(ctx.readOperand(ins, op.Operand2))

	case "RLCA":
		ctx.Rlca()
	case "RRCA":
		ctx.Rrca()
	case "RLA":
		ctx.Rla()
	case "RRA":
		ctx.Rra()
	case "CPL":
		ctx.Cpl()
	case "SCF":
		ctx.Scf()
	case "CCF":
		ctx.Ccf()
	case "DAA":
		ctx.Daa()

	case "RLC", "RRC", "RL", "RR", "SLA", "SRA", "SRL", "SWAP":
		ctx.execShiftCB(ins)
	case "BIT":
		ctx.Bit(uint(op.Operand1.Bit), ctx.readOperand(ins, op.Operand2))
	case "RES":
		ctx.writeOperand(ins, op.Operand2, Res(uint(op.Operand1.Bit), ctx.readOperand(ins, op.Operand2)))
	case "SET":
		ctx.writeOperand(ins, op.Operand2, Set(uint(op.Operand1.Bit), ctx.readOperand(ins, op.Operand2)))

	case "JP":
		return ctx.execJump(ins)
	case "JPHL":
		ctx.dispatchTo(ctx.HL())
	case "JR":
		return ctx.execJumpRelative(ins)
	case "CALL":
		return ctx.execCall(ins)
	case "RET":
		return ctx.execRet(ins)
	case "RETI":
		ctx.PC = ctx.Pop16()
		ctx.IME = true
	case "RST":
		ctx.Push16(ctx.PC)
		ctx.dispatchTo(op.RSTVector)

	default:
		ctx.RecordMiss(ins.Address)
	}
	return 0
}

func (ctx *Context) dispatchTo(addr uint16) {
	if ctx.Dispatch != nil {
		ctx.Dispatch.Dispatch(ctx, addr)
		return
	}
	ctx.PC = addr
}

// taken bumps cycles from base to CyclesTaken when a condition holds.
func taken(op decode.Opcode, hit bool) int {
	if hit {
		return op.CyclesTaken - op.Cycles
	}
	return 0
}

func (ctx *Context) execJump(ins decode.Instruction) int {
	op := ins.Opcode
	if op.NumOperands == 1 {
		ctx.dispatchTo(ins.Imm16)
		return 0
	}
	hit := ctx.conditionMet(op.Operand1.Cond)
	if hit {
		ctx.dispatchTo(ins.Imm16)
	}
	return taken(op, hit)
}

func (ctx *Context) execJumpRelative(ins decode.Instruction) int {
	op := ins.Opcode
	target := uint16(int32(ins.Fallthrough) + int32(int8(ins.Imm8)))
	if op.NumOperands == 1 {
		ctx.dispatchTo(target)
		return 0
	}
	hit := ctx.conditionMet(op.Operand1.Cond)
	if hit {
		ctx.dispatchTo(target)
	}
	return taken(op, hit)
}

func (ctx *Context) execCall(ins decode.Instruction) int {
	op := ins.Opcode
	if op.NumOperands == 1 {
		ctx.Push16(ins.Fallthrough)
		ctx.dispatchTo(ins.Imm16)
		return 0
	}
	hit := ctx.conditionMet(op.Operand1.Cond)
	if hit {
		ctx.Push16(ins.Fallthrough)
		ctx.dispatchTo(ins.Imm16)
	}
	return taken(op, hit)
}

func (ctx *Context) execRet(ins decode.Instruction) int {
	op := ins.Opcode
	if op.NumOperands == 0 {
		ctx.PC = ctx.Pop16()
		return 0
	}
	hit := ctx.conditionMet(op.Operand1.Cond)
	if hit {
		ctx.PC = ctx.Pop16()
	}
	return taken(op, hit)
}

func (ctx *Context) conditionMet(cond decode.Condition) bool {
	switch cond {
	case decode.CondZ:
		return ctx.FlagZ
	case decode.CondNZ:
		return !ctx.FlagZ
	case decode.CondC:
		return ctx.FlagC
	case decode.CondNC:
		return !ctx.FlagC
	default:
		return true
	}
}

func (ctx *Context) execIncDec8(ins decode.Instruction, inc bool) {
	target := ins.Opcode.Operand1
	v := ctx.readOperand(ins, target)
	if inc {
		v = ctx.Inc8(v)
	} else {
		v = ctx.Dec8(v)
	}
	ctx.writeOperand(ins, target, v)
}

func (ctx *Context) execShiftCB(ins decode.Instruction) {
	op := ins.Opcode
	target := op.Operand1
	v := ctx.readOperand(ins, target)
	var result byte
	switch op.Mnemonic {
	case "RLC":
		result = ctx.Rlc(v)
	case "RRC":
		result = ctx.Rrc(v)
	case "RL":
		result = ctx.Rl(v)
	case "RR":
		result = ctx.Rr(v)
	case "SLA":
		result = ctx.Sla(v)
	case "SRA":
		result = ctx.Sra(v)
	case "SRL":
		result = ctx.Srl(v)
	case "SWAP":
		result = ctx.Swap(v)
	}
	ctx.writeOperand(ins, target, result)
}

// execLD handles every LD and LDH form. Operand1 is always the destination
// and Operand2 the source, per the decode table's convention, with two
// 16-bit special cases (LD (a16),SP and LD SP/rr,rr) called out explicitly.
func (ctx *Context) execLD(ins decode.Instruction) {
	op := ins.Opcode
	dst, src := op.Operand1, op.Operand2

	if dst.Kind == decode.OperandMemDirect8 && dst.Mem == decode.IndA16 && src.Kind == decode.OperandReg16 {
		ctx.Write16(ins.Imm16, ctx.readReg16(src.Reg16))
		return
	}
	if dst.Kind == decode.OperandReg16 && src.Kind == decode.OperandReg16 {
		ctx.writeReg16(dst.Reg16, ctx.readReg16(src.Reg16))
		return
	}
	if dst.Kind == decode.OperandReg16 && src.Kind == decode.OperandImm16 {
		ctx.writeReg16(dst.Reg16, ins.Imm16)
		return
	}

	v := ctx.readOperand(ins, src)
	ctx.writeOperand(ins, dst, v)
}

// readOperand reads an 8-bit operand: a register, (HL) via the RegHLInd
// register slot, an immediate, or one of the indirect/direct memory forms.
func (ctx *Context) readOperand(ins decode.Instruction, o decode.Operand) byte {
	switch o.Kind {
	case decode.OperandReg8:
		if o.Reg8 == decode.RegHLInd {
			return ctx.Read8(ctx.HL())
		}
		return ctx.readReg8(o.Reg8)
	case decode.OperandImm8:
		return ins.Imm8
	case decode.OperandMemIndirect:
		switch o.Mem {
		case decode.IndBC:
			return ctx.Read8(ctx.BC())
		case decode.IndDE:
			return ctx.Read8(ctx.DE())
		case decode.IndHL:
			return ctx.Read8(ctx.HL())
		case decode.IndHLIncrement:
			v := ctx.Read8(ctx.HL())
			ctx.SetHL(ctx.HL() + 1)
			return v
		case decode.IndHLDecrement:
			v := ctx.Read8(ctx.HL())
			ctx.SetHL(ctx.HL() - 1)
			return v
		case decode.IndCHigh:
			return ctx.Read8(0xFF00 + uint16(ctx.C))
		}
	case decode.OperandMemDirect8:
		switch o.Mem {
		case decode.IndA8High:
			return ctx.Read8(0xFF00 + uint16(ins.Imm8))
		case decode.IndA16:
			return ctx.Read8(ins.Imm16)
		}
	}
	return 0
}

// writeOperand mirrors readOperand for the store direction.
func (ctx *Context) writeOperand(ins decode.Instruction, o decode.Operand, v byte) {
	switch o.Kind {
	case decode.OperandReg8:
		if o.Reg8 == decode.RegHLInd {
			ctx.Write8(ctx.HL(), v)
			return
		}
		ctx.writeReg8(o.Reg8, v)
	case decode.OperandMemIndirect:
		switch o.Mem {
		case decode.IndBC:
			ctx.Write8(ctx.BC(), v)
		case decode.IndDE:
			ctx.Write8(ctx.DE(), v)
		case decode.IndHL:
			ctx.Write8(ctx.HL(), v)
		case decode.IndHLIncrement:
			ctx.Write8(ctx.HL(), v)
			ctx.SetHL(ctx.HL() + 1)
		case decode.IndHLDecrement:
			ctx.Write8(ctx.HL(), v)
			ctx.SetHL(ctx.HL() - 1)
		case decode.IndCHigh:
			ctx.Write8(0xFF00+uint16(ctx.C), v)
		}
	case decode.OperandMemDirect8:
		switch o.Mem {
		case decode.IndA8High:
			ctx.Write8(0xFF00+uint16(ins.Imm8), v)
		case decode.IndA16:
			ctx.Write8(ins.Imm16, v)
		}
	}
}

func (ctx *Context) readReg8(r decode.Reg8) byte {
	switch r {
	case decode.RegA:
		return ctx.A
	case decode.RegB:
		return ctx.B
	case decode.RegC:
		return ctx.C
	case decode.RegD:
		return ctx.D
	case decode.RegE:
		return ctx.E
	case decode.RegH:
		return ctx.H
	case decode.RegL:
		return ctx.L
	default:
		return 0
	}
}

func (ctx *Context) writeReg8(r decode.Reg8, v byte) {
	switch r {
	case decode.RegA:
		ctx.A = v
	case decode.RegB:
		ctx.B = v
	case decode.RegC:
		ctx.C = v
	case decode.RegD:
		ctx.D = v
	case decode.RegE:
		ctx.E = v
	case decode.RegH:
		ctx.H = v
	case decode.RegL:
		ctx.L = v
	}
}

func (ctx *Context) readReg16(r decode.Reg16) uint16 {
	switch r {
	case decode.RegAF:
		return ctx.AF()
	case decode.RegBC:
		return ctx.BC()
	case decode.RegDE:
		return ctx.DE()
	case decode.RegHL:
		return ctx.HL()
	case decode.RegSP:
		return ctx.SP
	default:
		return 0
	}
}

func (ctx *Context) writeReg16(r decode.Reg16, v uint16) {
	switch r {
	case decode.RegAF:
		ctx.SetAF(v)
	case decode.RegBC:
		ctx.SetBC(v)
	case decode.RegDE:
		ctx.SetDE(v)
	case decode.RegHL:
		ctx.SetHL(v)
	case decode.RegSP:
		ctx.SP = v
	}
}
