// Package decode implements the SM83 instruction decoder: a pure function
// from a byte stream to a typed instruction record. It is consumed
// identically by the static control-flow analyzer (internal/analysis) and
// the runtime interpreter (internal/gbrt), which is the "shared decoder"
// contract requires.
package decode

// Reg8 names an 8-bit register or the (HL) memory operand used in place of one.
type Reg8 int

const (
	RegB Reg8 = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegHLInd // (HL) used as an 8-bit operand
	RegA
	Reg8None
)

func (r Reg8) String() string {
	names := [...]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	if int(r) < len(names) {
		return names[r]
	}
	return "?"
}

// Reg16 names a 16-bit register pair.
type Reg16 int

const (
	RegBC Reg16 = iota
	RegDE
	RegHL
	RegSP
	RegAF
	Reg16None
)

func (r Reg16) String() string {
	names := [...]string{"BC", "DE", "HL", "SP", "AF"}
	if int(r) < len(names) {
		return names[r]
	}
	return "?"
}

// Condition names a branch condition code.
type Condition int

const (
	CondNZ Condition = iota
	CondZ
	CondNC
	CondC
	CondNone
)

func (c Condition) String() string {
	names := [...]string{"NZ", "Z", "NC", "C"}
	if int(c) < len(names) {
		return names[c]
	}
	return ""
}

// OperandKind classifies what an instruction's operand refers to.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandReg8
	OperandReg16
	OperandImm8
	OperandImm16
	OperandMemDirect8  // (a8) / (a16) direct memory address
	OperandMemIndirect // (BC), (DE), (HL+), (HL-), (C)
	OperandCondition
	OperandBit // CB bit index 0-7
	OperandSPOffset
)

// MemIndirectMode distinguishes the indirect memory addressing variants.
type MemIndirectMode int

const (
	IndBC MemIndirectMode = iota
	IndDE
	IndHL
	IndHLIncrement
	IndHLDecrement
	IndCHigh // (0xFF00+C)
	IndA8High
	IndA16
	IndNone
)

// Operand describes one operand slot of a decoded opcode.
type Operand struct {
	Kind OperandKind
	Reg8 Reg8
	Reg16 Reg16
	Cond Condition
	Mem  MemIndirectMode
	Bit  int
}

// FlagMask is a bitmask over the Z N H C flags.
type FlagMask uint8

const (
	FlagZ FlagMask = 1 << iota
	FlagN
	FlagH
	FlagC
)

// Successor classifies how control flow continues after an instruction.
type Successor int

const (
	SuccessorFallthrough Successor = iota
	SuccessorJump                  // unconditional static jump
	SuccessorJumpCond              // conditional jump: taken target + fallthrough
	SuccessorCall
	SuccessorCallCond
	SuccessorReturn    // RET / RETI: dynamic, interpreter resolves
	SuccessorReturnCond
	SuccessorRst
	SuccessorDynamicJump // JP HL / JP (HL)
	SuccessorHalt
	SuccessorStop
	SuccessorInvalid
)

// Opcode is one entry of the fixed 256 (+256 CB-prefixed) decode table.
type Opcode struct {
	Mnemonic     string
	Length       int // total instruction length in bytes, including the opcode byte(s)
	Cycles       int // base T-cycles (untaken, for conditional ops)
	CyclesTaken  int // T-cycles when a conditional branch/call/ret is taken
	Operand1     Operand
	Operand2     Operand
	NumOperands  int
	ReadsFlags   FlagMask
	WritesFlags  FlagMask
	Successor    Successor
	RSTVector    uint16
	CBPrefixed   bool
	Invalid      bool
}

// Table holds the 256 single-byte (or 0xCB-prefixed-header) opcodes.
var Table [256]Opcode

// CBTable holds the 256 opcodes reachable after a 0xCB prefix byte.
var CBTable [256]Opcode

// undefinedOpcodes are the eleven byte values that have no defined SM83
// encoding; requires they decode as invalid and terminate the
// current block.
var undefinedOpcodes = map[byte]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

func reg8Operand(r Reg8) Operand   { return Operand{Kind: OperandReg8, Reg8: r} }
func reg16Operand(r Reg16) Operand { return Operand{Kind: OperandReg16, Reg16: r} }
func condOperand(c Condition) Operand { return Operand{Kind: OperandCondition, Cond: c} }

func init() {
	buildMainTable()
	buildCBTable()
}

// r8Order is the canonical 3-bit register encoding order shared by LD r,r',
// the ALU A,r8 block and every CB-prefixed group.
var r8Order = [8]Reg8{RegB, RegC, RegD, RegE, RegH, RegL, RegHLInd, RegA}

// r16Order is the canonical 2-bit register pair encoding used by
// INC/DEC rr, ADD HL,rr and LD rr,d16.
var r16Order = [4]Reg16{RegBC, RegDE, RegHL, RegSP}

// r16StackOrder is the 2-bit encoding used by PUSH/POP.
var r16StackOrder = [4]Reg16{RegBC, RegDE, RegHL, RegAF}

var condOrder = [4]Condition{CondNZ, CondZ, CondNC, CondC}

func buildMainTable() {
	for i := range Table {
		Table[i] = Opcode{Mnemonic: "INVALID", Length: 1, Cycles: 4, Successor: SuccessorInvalid, Invalid: true}
	}
	for b := range undefinedOpcodes {
		Table[b] = Opcode{Mnemonic: "INVALID", Length: 1, Cycles: 4, Successor: SuccessorInvalid, Invalid: true}
	}

	buildExplicitOpcodes()
	buildLDRegToReg()
	buildALURegBlock()
	buildRSTs()
}

func set(op byte, o Opcode) {
	Table[op] = o
}

func buildExplicitOpcodes() {
	set(0x00, Opcode{Mnemonic: "NOP", Length: 1, Cycles: 4})
	set(0x01, Opcode{Mnemonic: "LD", Length: 3, Cycles: 12, Operand1: reg16Operand(RegBC), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2})
	set(0x02, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: Operand{Kind: OperandMemIndirect, Mem: IndBC}, Operand2: reg8Operand(RegA), NumOperands: 2})
	set(0x03, Opcode{Mnemonic: "INC16", Length: 1, Cycles: 8, Operand1: reg16Operand(RegBC), NumOperands: 1})
	set(0x04, Opcode{Mnemonic: "INC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegB), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x05, Opcode{Mnemonic: "DEC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegB), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x06, Opcode{Mnemonic: "LD", Length: 2, Cycles: 8, Operand1: reg8Operand(RegB), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2})
	set(0x07, Opcode{Mnemonic: "RLCA", Length: 1, Cycles: 4, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0x08, Opcode{Mnemonic: "LD", Length: 3, Cycles: 20, Operand1: Operand{Kind: OperandMemDirect8, Mem: IndA16}, Operand2: reg16Operand(RegSP), NumOperands: 2})
	set(0x09, Opcode{Mnemonic: "ADDHL", Length: 1, Cycles: 8, Operand1: reg16Operand(RegBC), NumOperands: 1, WritesFlags: FlagN | FlagH | FlagC})
	set(0x0A, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandMemIndirect, Mem: IndBC}, NumOperands: 2})
	set(0x0B, Opcode{Mnemonic: "DEC16", Length: 1, Cycles: 8, Operand1: reg16Operand(RegBC), NumOperands: 1})
	set(0x0C, Opcode{Mnemonic: "INC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegC), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x0D, Opcode{Mnemonic: "DEC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegC), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x0E, Opcode{Mnemonic: "LD", Length: 2, Cycles: 8, Operand1: reg8Operand(RegC), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2})
	set(0x0F, Opcode{Mnemonic: "RRCA", Length: 1, Cycles: 4, WritesFlags: FlagZ | FlagN | FlagH | FlagC})

	set(0x10, Opcode{Mnemonic: "STOP", Length: 2, Cycles: 4, Successor: SuccessorStop})
	set(0x11, Opcode{Mnemonic: "LD", Length: 3, Cycles: 12, Operand1: reg16Operand(RegDE), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2})
	set(0x12, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: Operand{Kind: OperandMemIndirect, Mem: IndDE}, Operand2: reg8Operand(RegA), NumOperands: 2})
	set(0x13, Opcode{Mnemonic: "INC16", Length: 1, Cycles: 8, Operand1: reg16Operand(RegDE), NumOperands: 1})
	set(0x14, Opcode{Mnemonic: "INC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegD), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x15, Opcode{Mnemonic: "DEC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegD), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x16, Opcode{Mnemonic: "LD", Length: 2, Cycles: 8, Operand1: reg8Operand(RegD), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2})
	set(0x17, Opcode{Mnemonic: "RLA", Length: 1, Cycles: 4, ReadsFlags: FlagC, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0x18, Opcode{Mnemonic: "JR", Length: 2, Cycles: 12, Operand1: Operand{Kind: OperandImm8}, NumOperands: 1, Successor: SuccessorJump})
	set(0x19, Opcode{Mnemonic: "ADDHL", Length: 1, Cycles: 8, Operand1: reg16Operand(RegDE), NumOperands: 1, WritesFlags: FlagN | FlagH | FlagC})
	set(0x1A, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandMemIndirect, Mem: IndDE}, NumOperands: 2})
	set(0x1B, Opcode{Mnemonic: "DEC16", Length: 1, Cycles: 8, Operand1: reg16Operand(RegDE), NumOperands: 1})
	set(0x1C, Opcode{Mnemonic: "INC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegE), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x1D, Opcode{Mnemonic: "DEC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegE), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x1E, Opcode{Mnemonic: "LD", Length: 2, Cycles: 8, Operand1: reg8Operand(RegE), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2})
	set(0x1F, Opcode{Mnemonic: "RRA", Length: 1, Cycles: 4, ReadsFlags: FlagC, WritesFlags: FlagZ | FlagN | FlagH | FlagC})

	set(0x20, Opcode{Mnemonic: "JR", Length: 2, Cycles: 8, CyclesTaken: 12, Operand1: condOperand(CondNZ), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, ReadsFlags: FlagZ, Successor: SuccessorJumpCond})
	set(0x21, Opcode{Mnemonic: "LD", Length: 3, Cycles: 12, Operand1: reg16Operand(RegHL), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2})
	set(0x22, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: Operand{Kind: OperandMemIndirect, Mem: IndHLIncrement}, Operand2: reg8Operand(RegA), NumOperands: 2})
	set(0x23, Opcode{Mnemonic: "INC16", Length: 1, Cycles: 8, Operand1: reg16Operand(RegHL), NumOperands: 1})
	set(0x24, Opcode{Mnemonic: "INC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegH), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x25, Opcode{Mnemonic: "DEC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegH), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x26, Opcode{Mnemonic: "LD", Length: 2, Cycles: 8, Operand1: reg8Operand(RegH), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2})
	set(0x27, Opcode{Mnemonic: "DAA", Length: 1, Cycles: 4, ReadsFlags: FlagN | FlagH | FlagC, WritesFlags: FlagZ | FlagH | FlagC})
	set(0x28, Opcode{Mnemonic: "JR", Length: 2, Cycles: 8, CyclesTaken: 12, Operand1: condOperand(CondZ), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, ReadsFlags: FlagZ, Successor: SuccessorJumpCond})
	set(0x29, Opcode{Mnemonic: "ADDHL", Length: 1, Cycles: 8, Operand1: reg16Operand(RegHL), NumOperands: 1, WritesFlags: FlagN | FlagH | FlagC})
	set(0x2A, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandMemIndirect, Mem: IndHLIncrement}, NumOperands: 2})
	set(0x2B, Opcode{Mnemonic: "DEC16", Length: 1, Cycles: 8, Operand1: reg16Operand(RegHL), NumOperands: 1})
	set(0x2C, Opcode{Mnemonic: "INC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegL), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x2D, Opcode{Mnemonic: "DEC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegL), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x2E, Opcode{Mnemonic: "LD", Length: 2, Cycles: 8, Operand1: reg8Operand(RegL), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2})
	set(0x2F, Opcode{Mnemonic: "CPL", Length: 1, Cycles: 4, WritesFlags: FlagN | FlagH})

	set(0x30, Opcode{Mnemonic: "JR", Length: 2, Cycles: 8, CyclesTaken: 12, Operand1: condOperand(CondNC), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, ReadsFlags: FlagC, Successor: SuccessorJumpCond})
	set(0x31, Opcode{Mnemonic: "LD", Length: 3, Cycles: 12, Operand1: reg16Operand(RegSP), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2})
	set(0x32, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: Operand{Kind: OperandMemIndirect, Mem: IndHLDecrement}, Operand2: reg8Operand(RegA), NumOperands: 2})
	set(0x33, Opcode{Mnemonic: "INC16", Length: 1, Cycles: 8, Operand1: reg16Operand(RegSP), NumOperands: 1})
	set(0x34, Opcode{Mnemonic: "INC", Length: 1, Cycles: 12, Operand1: reg8Operand(RegHLInd), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x35, Opcode{Mnemonic: "DEC", Length: 1, Cycles: 12, Operand1: reg8Operand(RegHLInd), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x36, Opcode{Mnemonic: "LD", Length: 2, Cycles: 12, Operand1: reg8Operand(RegHLInd), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2})
	set(0x37, Opcode{Mnemonic: "SCF", Length: 1, Cycles: 4, WritesFlags: FlagN | FlagH | FlagC})
	set(0x38, Opcode{Mnemonic: "JR", Length: 2, Cycles: 8, CyclesTaken: 12, Operand1: condOperand(CondC), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, ReadsFlags: FlagC, Successor: SuccessorJumpCond})
	set(0x39, Opcode{Mnemonic: "ADDHL", Length: 1, Cycles: 8, Operand1: reg16Operand(RegSP), NumOperands: 1, WritesFlags: FlagN | FlagH | FlagC})
	set(0x3A, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandMemIndirect, Mem: IndHLDecrement}, NumOperands: 2})
	set(0x3B, Opcode{Mnemonic: "DEC16", Length: 1, Cycles: 8, Operand1: reg16Operand(RegSP), NumOperands: 1})
	set(0x3C, Opcode{Mnemonic: "INC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegA), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x3D, Opcode{Mnemonic: "DEC", Length: 1, Cycles: 4, Operand1: reg8Operand(RegA), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH})
	set(0x3E, Opcode{Mnemonic: "LD", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2})
	set(0x3F, Opcode{Mnemonic: "CCF", Length: 1, Cycles: 4, ReadsFlags: FlagC, WritesFlags: FlagN | FlagH | FlagC})

	// 0x76 HALT occupies the slot that would otherwise be LD (HL),(HL).
	set(0x76, Opcode{Mnemonic: "HALT", Length: 1, Cycles: 4, Successor: SuccessorHalt})

	set(0xC0, Opcode{Mnemonic: "RET", Length: 1, Cycles: 8, CyclesTaken: 20, Operand1: condOperand(CondNZ), NumOperands: 1, ReadsFlags: FlagZ, Successor: SuccessorReturnCond})
	set(0xC1, Opcode{Mnemonic: "POP", Length: 1, Cycles: 12, Operand1: reg16Operand(RegBC), NumOperands: 1})
	set(0xC2, Opcode{Mnemonic: "JP", Length: 3, Cycles: 12, CyclesTaken: 16, Operand1: condOperand(CondNZ), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2, ReadsFlags: FlagZ, Successor: SuccessorJumpCond})
	set(0xC3, Opcode{Mnemonic: "JP", Length: 3, Cycles: 16, Operand1: Operand{Kind: OperandImm16}, NumOperands: 1, Successor: SuccessorJump})
	set(0xC4, Opcode{Mnemonic: "CALL", Length: 3, Cycles: 12, CyclesTaken: 24, Operand1: condOperand(CondNZ), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2, ReadsFlags: FlagZ, Successor: SuccessorCallCond})
	set(0xC5, Opcode{Mnemonic: "PUSH", Length: 1, Cycles: 16, Operand1: reg16Operand(RegBC), NumOperands: 1})
	set(0xC6, Opcode{Mnemonic: "ADD", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0xC8, Opcode{Mnemonic: "RET", Length: 1, Cycles: 8, CyclesTaken: 20, Operand1: condOperand(CondZ), NumOperands: 1, ReadsFlags: FlagZ, Successor: SuccessorReturnCond})
	set(0xC9, Opcode{Mnemonic: "RET", Length: 1, Cycles: 16, NumOperands: 0, Successor: SuccessorReturn})
	set(0xCA, Opcode{Mnemonic: "JP", Length: 3, Cycles: 12, CyclesTaken: 16, Operand1: condOperand(CondZ), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2, ReadsFlags: FlagZ, Successor: SuccessorJumpCond})
	set(0xCB, Opcode{Mnemonic: "PREFIX_CB", Length: 1, Cycles: 4})
	set(0xCC, Opcode{Mnemonic: "CALL", Length: 3, Cycles: 12, CyclesTaken: 24, Operand1: condOperand(CondZ), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2, ReadsFlags: FlagZ, Successor: SuccessorCallCond})
	set(0xCD, Opcode{Mnemonic: "CALL", Length: 3, Cycles: 24, Operand1: Operand{Kind: OperandImm16}, NumOperands: 1, Successor: SuccessorCall})
	set(0xCE, Opcode{Mnemonic: "ADC", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, ReadsFlags: FlagC, WritesFlags: FlagZ | FlagN | FlagH | FlagC})

	set(0xD0, Opcode{Mnemonic: "RET", Length: 1, Cycles: 8, CyclesTaken: 20, Operand1: condOperand(CondNC), NumOperands: 1, ReadsFlags: FlagC, Successor: SuccessorReturnCond})
	set(0xD1, Opcode{Mnemonic: "POP", Length: 1, Cycles: 12, Operand1: reg16Operand(RegDE), NumOperands: 1})
	set(0xD2, Opcode{Mnemonic: "JP", Length: 3, Cycles: 12, CyclesTaken: 16, Operand1: condOperand(CondNC), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2, ReadsFlags: FlagC, Successor: SuccessorJumpCond})
	set(0xD4, Opcode{Mnemonic: "CALL", Length: 3, Cycles: 12, CyclesTaken: 24, Operand1: condOperand(CondNC), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2, ReadsFlags: FlagC, Successor: SuccessorCallCond})
	set(0xD5, Opcode{Mnemonic: "PUSH", Length: 1, Cycles: 16, Operand1: reg16Operand(RegDE), NumOperands: 1})
	set(0xD6, Opcode{Mnemonic: "SUB", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0xD8, Opcode{Mnemonic: "RET", Length: 1, Cycles: 8, CyclesTaken: 20, Operand1: condOperand(CondC), NumOperands: 1, ReadsFlags: FlagC, Successor: SuccessorReturnCond})
	set(0xD9, Opcode{Mnemonic: "RETI", Length: 1, Cycles: 16, Successor: SuccessorReturn})
	set(0xDA, Opcode{Mnemonic: "JP", Length: 3, Cycles: 12, CyclesTaken: 16, Operand1: condOperand(CondC), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2, ReadsFlags: FlagC, Successor: SuccessorJumpCond})
	set(0xDC, Opcode{Mnemonic: "CALL", Length: 3, Cycles: 12, CyclesTaken: 24, Operand1: condOperand(CondC), Operand2: Operand{Kind: OperandImm16}, NumOperands: 2, ReadsFlags: FlagC, Successor: SuccessorCallCond})
	set(0xDE, Opcode{Mnemonic: "SBC", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, ReadsFlags: FlagC, WritesFlags: FlagZ | FlagN | FlagH | FlagC})

	set(0xE0, Opcode{Mnemonic: "LDH", Length: 2, Cycles: 12, Operand1: Operand{Kind: OperandMemDirect8, Mem: IndA8High}, Operand2: reg8Operand(RegA), NumOperands: 2})
	set(0xE1, Opcode{Mnemonic: "POP", Length: 1, Cycles: 12, Operand1: reg16Operand(RegHL), NumOperands: 1})
	set(0xE2, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: Operand{Kind: OperandMemIndirect, Mem: IndCHigh}, Operand2: reg8Operand(RegA), NumOperands: 2})
	set(0xE5, Opcode{Mnemonic: "PUSH", Length: 1, Cycles: 16, Operand1: reg16Operand(RegHL), NumOperands: 1})
	set(0xE6, Opcode{Mnemonic: "AND", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0xE8, Opcode{Mnemonic: "ADDSP", Length: 2, Cycles: 16, Operand1: reg16Operand(RegSP), Operand2: Operand{Kind: OperandSPOffset}, NumOperands: 2, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0xE9, Opcode{Mnemonic: "JPHL", Length: 1, Cycles: 4, Successor: SuccessorDynamicJump})
	set(0xEA, Opcode{Mnemonic: "LD", Length: 3, Cycles: 16, Operand1: Operand{Kind: OperandMemDirect8, Mem: IndA16}, Operand2: reg8Operand(RegA), NumOperands: 2})
	set(0xEE, Opcode{Mnemonic: "XOR", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, WritesFlags: FlagZ | FlagN | FlagH | FlagC})

	set(0xF0, Opcode{Mnemonic: "LDH", Length: 2, Cycles: 12, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandMemDirect8, Mem: IndA8High}, NumOperands: 2})
	set(0xF1, Opcode{Mnemonic: "POP", Length: 1, Cycles: 12, Operand1: reg16Operand(RegAF), NumOperands: 1, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0xF2, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandMemIndirect, Mem: IndCHigh}, NumOperands: 2})
	set(0xF3, Opcode{Mnemonic: "DI", Length: 1, Cycles: 4})
	set(0xF5, Opcode{Mnemonic: "PUSH", Length: 1, Cycles: 16, Operand1: reg16Operand(RegAF), NumOperands: 1})
	set(0xF6, Opcode{Mnemonic: "OR", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0xF8, Opcode{Mnemonic: "LDHLSP", Length: 2, Cycles: 12, Operand1: reg16Operand(RegHL), Operand2: Operand{Kind: OperandSPOffset}, NumOperands: 2, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
	set(0xF9, Opcode{Mnemonic: "LD", Length: 1, Cycles: 8, Operand1: reg16Operand(RegSP), Operand2: reg16Operand(RegHL), NumOperands: 2})
	set(0xFA, Opcode{Mnemonic: "LD", Length: 3, Cycles: 16, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandMemDirect8, Mem: IndA16}, NumOperands: 2})
	set(0xFB, Opcode{Mnemonic: "EI", Length: 1, Cycles: 4})
	set(0xFE, Opcode{Mnemonic: "CP", Length: 2, Cycles: 8, Operand1: reg8Operand(RegA), Operand2: Operand{Kind: OperandImm8}, NumOperands: 2, WritesFlags: FlagZ | FlagN | FlagH | FlagC})
}

// buildLDRegToReg fills the 0x40-0x7F block: LD r,r' for all 64 combinations,
// skipping 0x76 (HALT) which buildExplicitOpcodes already set.
func buildLDRegToReg() {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			op := byte(0x40 + row*8 + col)
			if op == 0x76 {
				continue
			}
			dst := r8Order[row]
			src := r8Order[col]
			cycles := 4
			if dst == RegHLInd || src == RegHLInd {
				cycles = 8
			}
			set(op, Opcode{
				Mnemonic: "LD", Length: 1, Cycles: cycles,
				Operand1: reg8Operand(dst), Operand2: reg8Operand(src), NumOperands: 2,
			})
		}
	}
}

// aluMnemonics is the canonical 3-bit ALU operation encoding order for the
// 0x80-0xBF block and its CB6-style immediate counterparts.
var aluMnemonics = [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

func buildALURegBlock() {
	for row := 0; row < 8; row++ {
		mnemonic := aluMnemonics[row]
		for col := 0; col < 8; col++ {
			op := byte(0x80 + row*8 + col)
			src := r8Order[col]
			cycles := 4
			if src == RegHLInd {
				cycles = 8
			}
			reads := FlagMask(0)
			if mnemonic == "ADC" || mnemonic == "SBC" {
				reads = FlagC
			}
			set(op, Opcode{
				Mnemonic: mnemonic, Length: 1, Cycles: cycles,
				Operand1: reg8Operand(RegA), Operand2: reg8Operand(src), NumOperands: 2,
				ReadsFlags: reads, WritesFlags: FlagZ | FlagN | FlagH | FlagC,
			})
		}
	}
}

func buildRSTs() {
	for i := 0; i < 8; i++ {
		op := byte(0xC7 + i*8)
		vector := uint16(i * 8)
		set(op, Opcode{Mnemonic: "RST", Length: 1, Cycles: 16, RSTVector: vector, Successor: SuccessorRst})
	}
}

// cbMnemonics is the canonical 3-bit rotate/shift group encoding for the
// 0x00-0x3F CB-prefixed block.
var cbMnemonics = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

func buildCBTable() {
	for row := 0; row < 8; row++ {
		mnemonic := cbMnemonics[row]
		for col := 0; col < 8; col++ {
			op := byte(row*8 + col)
			r := r8Order[col]
			cycles := 8
			if r == RegHLInd {
				cycles = 16
			}
			reads := FlagMask(0)
			if mnemonic == "RL" || mnemonic == "RR" {
				reads = FlagC
			}
			CBTable[op] = Opcode{
				Mnemonic: mnemonic, Length: 2, Cycles: cycles, CBPrefixed: true,
				Operand1: reg8Operand(r), NumOperands: 1,
				ReadsFlags: reads, WritesFlags: FlagZ | FlagN | FlagH | FlagC,
			}
		}
	}

	for bit := 0; bit < 8; bit++ {
		for col := 0; col < 8; col++ {
			r := r8Order[col]

			bitOp := byte(0x40 + bit*8 + col)
			bitCycles := 8
			if r == RegHLInd {
				bitCycles = 12
			}
			CBTable[bitOp] = Opcode{
				Mnemonic: "BIT", Length: 2, Cycles: bitCycles, CBPrefixed: true,
				Operand1: Operand{Kind: OperandBit, Bit: bit}, Operand2: reg8Operand(r), NumOperands: 2,
				WritesFlags: FlagZ | FlagN | FlagH,
			}

			resOp := byte(0x80 + bit*8 + col)
			rwCycles := 8
			if r == RegHLInd {
				rwCycles = 16
			}
			CBTable[resOp] = Opcode{
				Mnemonic: "RES", Length: 2, Cycles: rwCycles, CBPrefixed: true,
				Operand1: Operand{Kind: OperandBit, Bit: bit}, Operand2: reg8Operand(r), NumOperands: 2,
			}

			setOp := byte(0xC0 + bit*8 + col)
			CBTable[setOp] = Opcode{
				Mnemonic: "SET", Length: 2, Cycles: rwCycles, CBPrefixed: true,
				Operand1: Operand{Kind: OperandBit, Bit: bit}, Operand2: reg8Operand(r), NumOperands: 2,
			}
		}
	}
}
