package gbrt

import "github.com/arcanite24/gb-recompiled/internal/cartridge"

// Memory map boundaries, grounded on gbrt.c's constant block.
const (
	romBank0End   = 0x3FFF
	romBankNStart = 0x4000
	romBankNEnd   = 0x7FFF
	vramStart     = 0x8000
	vramEnd       = 0x9FFF
	eramStart     = 0xA000
	eramEnd       = 0xBFFF
	wramBank0Start = 0xC000
	wramBank0End   = 0xCFFF
	wramBankNStart = 0xD000
	wramBankNEnd   = 0xDFFF
	echoStart     = 0xE000
	echoEnd       = 0xFDFF
	oamStart      = 0xFE00
	oamEnd        = 0xFE9F
	unusableStart = 0xFEA0
	unusableEnd   = 0xFEFF
	ioStart       = 0xFF00
	ioEnd         = 0xFF7F
	hramStart     = 0xFF80
	hramEnd       = 0xFFFE
	ieRegister    = 0xFFFF

	joypadRegister = 0xFF00
	dmaRegister    = 0xFF46
)

// ReadByte satisfies decode.MemoryReader so the shared decoder can read
// directly through the bus, used by the interpreter.
func (ctx *Context) ReadByte(addr uint16) byte { return ctx.Read8(addr) }

// Read8 routes a single byte read by address range.
func (ctx *Context) Read8(addr uint16) byte {
	switch {
	case addr <= romBank0End:
		return ctx.Cart.ReadROMByte(0, addr)
	case addr <= romBankNEnd:
		return ctx.Cart.ReadROMByte(ctx.ROMBank, addr)
	case addr <= vramEnd:
		return ctx.VRAM[int(ctx.VRAMBank)*vramSize+int(addr-vramStart)]
	case addr <= eramEnd:
		if !ctx.RAMEnabled || len(ctx.ERAM) == 0 {
			return 0xFF
		}
		offset := ctx.eramOffset(addr)
		if offset >= len(ctx.ERAM) {
			return 0xFF
		}
		return ctx.ERAM[offset]
	case addr <= wramBank0End:
		return ctx.WRAM[addr-wramBank0Start]
	case addr <= wramBankNEnd:
		return ctx.WRAM[int(ctx.WRAMBank)*wramBankSize+int(addr-wramBankNStart)]
	case addr <= echoEnd:
		return ctx.Read8(addr - 0x2000)
	case addr <= oamEnd:
		return ctx.OAM[addr-oamStart]
	case addr <= unusableEnd:
		return 0xFF
	case addr <= ioEnd:
		return ctx.readIO(addr)
	case addr <= hramEnd:
		return ctx.HRAM[addr-hramStart]
	default: // 0xFFFF
		return ctx.IE
	}
}

func (ctx *Context) eramOffset(addr uint16) int {
	bank := ctx.RAMBank
	if ctx.Cart.Type == cartridge.MBC2 {
		bank = 0
	}
	return bank*0x2000 + int(addr-eramStart)
}

func (ctx *Context) readIO(addr uint16) byte {
	if addr == joypadRegister {
		return ctx.readJoypad()
	}
	if addr >= 0xFF40 && addr <= 0xFF4B && ctx.PPU != nil {
		return ctx.PPU.ReadRegister(addr)
	}
	return ctx.IO[addr-ioStart]
}

// readJoypad composes the P1/JOYP register from the selection bits in IO
// and the platform-provided button/dpad state.
func (ctx *Context) readJoypad() byte {
	joyp := ctx.IO[0]
	result := joyp | 0x0F
	if joyp&0x10 == 0 { // P14: direction keys selected
		result = result&0xF0 | ctx.DPad&0x0F
	}
	if joyp&0x20 == 0 { // P15: button keys selected
		result = result&0xF0 | ctx.Buttons&0x0F
	}
	return result
}

// Write8 routes a single byte write, including MBC bank-register writes
// over 0x0000-0x7FFF which are never data stores.
func (ctx *Context) Write8(addr uint16, value byte) {
	switch {
	case addr <= romBankNEnd:
		ctx.writeBankRegister(addr, value)
	case addr <= vramEnd:
		ctx.VRAM[int(ctx.VRAMBank)*vramSize+int(addr-vramStart)] = value
	case addr <= eramEnd:
		if !ctx.RAMEnabled || len(ctx.ERAM) == 0 {
			return
		}
		offset := ctx.eramOffset(addr)
		if offset < len(ctx.ERAM) {
			ctx.ERAM[offset] = value
		}
	case addr <= wramBank0End:
		ctx.WRAM[addr-wramBank0Start] = value
	case addr <= wramBankNEnd:
		ctx.WRAM[int(ctx.WRAMBank)*wramBankSize+int(addr-wramBankNStart)] = value
	case addr <= echoEnd:
		ctx.Write8(addr-0x2000, value)
	case addr <= oamEnd:
		ctx.OAM[addr-oamStart] = value
	case addr <= unusableEnd:
		// unusable region: writes ignored
	case addr <= ioEnd:
		ctx.writeIO(addr, value)
	case addr <= hramEnd:
		ctx.HRAM[addr-hramStart] = value
	default: // 0xFFFF
		ctx.IE = value
	}
}

func (ctx *Context) writeIO(addr uint16, value byte) {
	if addr >= 0xFF40 && addr <= 0xFF4B && ctx.PPU != nil {
		ctx.PPU.WriteRegister(ctx, addr, value)
		return
	}
	if addr == dmaRegister {
		ctx.IO[addr-ioStart] = value
		ctx.oamDMA(value)
		return
	}
	ctx.IO[addr-ioStart] = value
}

// oamDMA performs the synchronous 160-byte OAM copy triggered by a write
// to 0xFF46.
func (ctx *Context) oamDMA(value byte) {
	src := uint16(value) << 8
	for i := uint16(0); i < oamSize; i++ {
		ctx.OAM[i] = ctx.Read8(src + i)
	}
}

// writeBankRegister dispatches MBC-specific bank-select writes. MBC1 is the
// fully specified case in; MBC3/MBC5 share its ROM/RAM-bank
// shape but without the mode register, and MBC3's RTC registers are
// best-effort (preserve last written value).
func (ctx *Context) writeBankRegister(addr uint16, value byte) {
	switch ctx.Cart.Type {
	case cartridge.MBC1:
		ctx.writeMBC1(addr, value)
	case cartridge.MBC2:
		ctx.writeMBC2(addr, value)
	case cartridge.MBC3:
		ctx.writeMBC3(addr, value)
	case cartridge.MBC5:
		ctx.writeMBC5(addr, value)
	default: // MBCNone: no registers, writes ignored
	}
}

func (ctx *Context) writeMBC1(addr uint16, value byte) {
	switch {
	case addr <= 0x1FFF:
		ctx.RAMEnabled = value&0x0F == 0x0A
	case addr <= 0x3FFF:
		bank := int(value & 0x1F)
		if bank == 0 {
			bank = 1
		}
		ctx.ROMBank = ctx.ROMBank&^0x1F | bank
	case addr <= 0x5FFF:
		bits := int(value & 0x03)
		if ctx.BankingMode == 1 {
			ctx.RAMBank = bits
		} else {
			ctx.ROMBank = ctx.ROMBank&0x1F | bits<<5
		}
	default: // 0x6000-0x7FFF
		ctx.BankingMode = int(value & 0x01)
	}
}

func (ctx *Context) writeMBC2(addr uint16, value byte) {
	if addr <= 0x3FFF {
		if addr&0x0100 != 0 { // bit 8 of address selects ROM bank vs RAM enable
			bank := int(value & 0x0F)
			if bank == 0 {
				bank = 1
			}
			ctx.ROMBank = bank
		} else {
			ctx.RAMEnabled = value&0x0F == 0x0A
		}
	}
}

func (ctx *Context) writeMBC3(addr uint16, value byte) {
	switch {
	case addr <= 0x1FFF:
		ctx.RAMEnabled = value&0x0F == 0x0A
	case addr <= 0x3FFF:
		bank := int(value & 0x7F)
		if bank == 0 {
			bank = 1
		}
		ctx.ROMBank = bank
	case addr <= 0x5FFF:
		// 0x00-0x03 selects an ERAM bank; 0x08-0x0C selects an RTC register,
		// which this runtime treats as best-effort: the selector is
		// latched into RAMBank but the RTC itself never advances.
		ctx.RAMBank = int(value)
	default: // 0x6000-0x7FFF: RTC latch, best-effort no-op
	}
}

func (ctx *Context) writeMBC5(addr uint16, value byte) {
	switch {
	case addr <= 0x1FFF:
		ctx.RAMEnabled = value&0x0F == 0x0A
	case addr <= 0x2FFF:
		ctx.ROMBank = ctx.ROMBank&0x100 | int(value)
	case addr <= 0x3FFF:
		ctx.ROMBank = ctx.ROMBank&0xFF | int(value&0x01)<<8
	case addr <= 0x5FFF:
		ctx.RAMBank = int(value & 0x0F)
	}
}

// Read16/Write16 build 16-bit access from the 8-bit bus.
func (ctx *Context) Read16(addr uint16) uint16 {
	lo := uint16(ctx.Read8(addr))
	hi := uint16(ctx.Read8(addr + 1))
	return hi<<8 | lo
}

func (ctx *Context) Write16(addr uint16, value uint16) {
	ctx.Write8(addr, byte(value))
	ctx.Write8(addr+1, byte(value>>8))
}
