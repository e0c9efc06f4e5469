package decode

// MemoryReader is the minimal read surface the decoder needs. Both the
// static analyzer (reading ROM bytes) and the interpreter (reading live bus
// state) satisfy it.
type MemoryReader interface {
	ReadByte(address uint16) byte
}

// Instruction is a fully decoded SM83 instruction record.
type Instruction struct {
	Address uint16
	Length  int
	Opcode  Opcode
	Bytes   []byte

	Imm8   byte
	Imm16  uint16
	SPRel  int8 // signed displacement for ADD SP,r8 / LD HL,SP+r8 / JR

	// Targets holds every statically-known absolute address this
	// instruction can transfer control to: the taken branch target for
	// jumps/calls/RST, or empty when Dynamic is true.
	Targets []uint16
	// Fallthrough is the address of the next sequential instruction.
	Fallthrough uint16
	// Dynamic marks successor kinds the analyzer cannot resolve statically
	// (JP HL, RET, RETI, computed CALL).
	Dynamic bool
}

// Decode reads one instruction starting at address from mem, including any
// 0xCB prefix and immediate operand bytes.
func Decode(mem MemoryReader, address uint16) Instruction {
	first := mem.ReadByte(address)

	if first == 0xCB {
		cbByte := mem.ReadByte(address + 1)
		op := CBTable[cbByte]
		ins := Instruction{
			Address: address,
			Length:  op.Length,
			Opcode:  op,
			Bytes:   []byte{first, cbByte},
		}
		ins.Fallthrough = address + uint16(op.Length)
		return ins
	}

	op := Table[first]
	ins := Instruction{
		Address: address,
		Length:  op.Length,
		Opcode:  op,
	}

	bytes := make([]byte, op.Length)
	bytes[0] = first
	for i := 1; i < op.Length; i++ {
		bytes[i] = mem.ReadByte(address + uint16(i))
	}
	ins.Bytes = bytes

	switch op.Length {
	case 2:
		ins.Imm8 = bytes[1]
		ins.SPRel = int8(bytes[1])
	case 3:
		ins.Imm16 = uint16(bytes[1]) | uint16(bytes[2])<<8
	}

	ins.Fallthrough = address + uint16(op.Length)
	resolveSuccessors(&ins)
	return ins
}

// resolveSuccessors populates Targets/Dynamic from the opcode's successor
// classification and the decoded immediate operand.
func resolveSuccessors(ins *Instruction) {
	op := ins.Opcode
	switch op.Successor {
	case SuccessorJump:
		if op.Mnemonic == "JR" {
			target := uint16(int32(ins.Fallthrough) + int32(int8(ins.Imm8)))
			ins.Targets = []uint16{target}
		} else {
			ins.Targets = []uint16{ins.Imm16}
		}
	case SuccessorJumpCond:
		if op.Mnemonic == "JR" {
			target := uint16(int32(ins.Fallthrough) + int32(int8(ins.Imm8)))
			ins.Targets = []uint16{target}
		} else {
			ins.Targets = []uint16{ins.Imm16}
		}
	case SuccessorCall, SuccessorCallCond:
		ins.Targets = []uint16{ins.Imm16}
	case SuccessorRst:
		ins.Targets = []uint16{op.RSTVector}
	case SuccessorReturn, SuccessorReturnCond, SuccessorDynamicJump:
		ins.Dynamic = true
	}
}

// IsInvalid reports whether this opcode is one of the eleven undefined
// byte values that must terminate the current block during analysis.
func (i Instruction) IsInvalid() bool {
	return i.Opcode.Invalid
}
