// Package ppu implements the Game Boy picture processing unit as a
// mode-stepping scanline state machine satisfying gbrt.PPU.
// It is grounded on _examples/IntuitionAmiga-IntuitionEngine's
// video_antic.go scanline/mode-counter shape (ANTIC is also a
// cycle-stepped raster chip driven by a host Tick call), generalized from
// that chip's display-list model to the Game Boy's fixed LCDC/BG/window/
// sprite pipeline. Non-CGB only: no palette RAM, no VRAM banking beyond
// bank 0.
package ppu

import "github.com/arcanite24/gb-recompiled/internal/gbrt"

const (
	screenWidth  = 160
	screenHeight = 144

	modeHBlank = 0
	modeVBlank = 1
	modeOAM    = 2
	modeXfer   = 3

	dotsOAM     = 80
	dotsXfer    = 172
	dotsHBlank  = 204
	dotsPerLine = dotsOAM + dotsXfer + dotsHBlank // 456
	linesVBlank = 10
	totalLines  = screenHeight + linesVBlank // 154

	regLCDC = 0xFF40
	regSTAT = 0xFF41
	regSCY  = 0xFF42
	regSCX  = 0xFF43
	regLY   = 0xFF44
	regLYC  = 0xFF45
	regBGP  = 0xFF47
	regOBP0 = 0xFF48
	regOBP1 = 0xFF49
	regWY   = 0xFF4A
	regWX   = 0xFF4B
)

const (
	lcdcEnable       = 1 << 7
	lcdcWindowMap    = 1 << 6
	lcdcWindowEnable = 1 << 5
	lcdcTileData     = 1 << 4
	lcdcBGMap        = 1 << 3
	lcdcObjSize      = 1 << 2
	lcdcObjEnable    = 1 << 1
	lcdcBGEnable     = 1 << 0

	statLYCInt   = 1 << 6
	statOAMInt   = 1 << 5
	statVBlankInt = 1 << 4
	statHBlankInt = 1 << 3
	statLYCEqual  = 1 << 2
)

// PPU is a real scanline-stepping picture processing unit, non-CGB.
type PPU struct {
	lcdc, stat, scy, scx, ly, lyc byte
	bgp, obp0, obp1               byte
	wy, wx                        byte
	windowLine                    int

	dot  int
	mode int

	fb         [screenWidth * screenHeight]uint32
	frameReady bool

	source tileSource
}

// New constructs a PPU in its post-boot-ROM power-on state.
func New() *PPU {
	p := &PPU{
		lcdc: 0x91,
		stat: 0x85,
		bgp:  0xFC,
		mode: modeOAM,
	}
	return p
}

var dmgPalette = [4]uint32{0xFFFFFFFF, 0xFFAAAAAA, 0xFF555555, 0xFF000000}

// Tick advances the PPU by cycles T-states, mode-stepping through OAM
// search -> pixel transfer -> HBlank, repeated for 144 visible lines, then
// a 10-line VBlank block.
func (p *PPU) Tick(ctx *gbrt.Context, cycles int) {
	if p.lcdc&lcdcEnable == 0 {
		return
	}

	p.dot += cycles
	for p.dot >= p.stepLength() {
		p.dot -= p.stepLength()
		p.advanceMode(ctx)
	}
}

func (p *PPU) stepLength() int {
	switch p.mode {
	case modeOAM:
		return dotsOAM
	case modeXfer:
		return dotsXfer
	case modeHBlank:
		return dotsHBlank
	default: // modeVBlank, one scanline's worth of dots per step
		return dotsPerLine
	}
}

func (p *PPU) advanceMode(ctx *gbrt.Context) {
	switch p.mode {
	case modeOAM:
		p.mode = modeXfer

	case modeXfer:
		p.renderScanline()
		p.mode = modeHBlank
		if p.stat&statHBlankInt != 0 {
			ctx.RequestInterrupt(0x02) // STAT
		}

	case modeHBlank:
		p.ly++
		p.checkLYC(ctx)
		if int(p.ly) == screenHeight {
			p.mode = modeVBlank
			p.frameReady = true
			ctx.RequestInterrupt(0x01) // VBlank
			if p.stat&statVBlankInt != 0 {
				ctx.RequestInterrupt(0x02)
			}
		} else {
			p.mode = modeOAM
			if p.stat&statOAMInt != 0 {
				ctx.RequestInterrupt(0x02)
			}
		}

	case modeVBlank:
		p.ly++
		if int(p.ly) >= totalLines {
			p.ly = 0
			p.windowLine = 0
			p.mode = modeOAM
			p.checkLYC(ctx)
			if p.stat&statOAMInt != 0 {
				ctx.RequestInterrupt(0x02)
			}
		} else {
			p.checkLYC(ctx)
		}
	}
}

func (p *PPU) checkLYC(ctx *gbrt.Context) {
	if p.ly == p.lyc {
		p.stat |= statLYCEqual
		if p.stat&statLYCInt != 0 {
			ctx.RequestInterrupt(0x02)
		}
	} else {
		p.stat &^= statLYCEqual
	}
}

// renderScanline composes background, window, and sprites for the current
// LY into the framebuffer. It reads tile/map data directly out of VRAM via
// the attached gbrt.Context (the bus routes 0x8000-0x9FFF writes through
// gbrt.Context.VRAM, which this package does not own), so rendering shares
// the same live memory Tick's caller writes into rather than a private copy.
func (p *PPU) renderScanline() {
	if int(p.ly) >= screenHeight {
		return
	}
	line := int(p.ly)

	bgPriority := make([]bool, screenWidth)

	if p.lcdc&lcdcBGEnable != 0 {
		p.renderBackgroundLine(line, bgPriority)
	}
	if p.lcdc&lcdcWindowEnable != 0 && int(p.wy) <= line {
		p.renderWindowLine(line, bgPriority)
	}
	if p.lcdc&lcdcObjEnable != 0 {
		p.renderSpriteLine(line, bgPriority)
	}
}

// renderBackgroundLine and renderWindowLine/renderSpriteLine operate on a
// caller-supplied tile/OAM source; ppu.Attach binds that source once the
// owning gbrt.Context exists, since the PPU interface's Tick signature
// carries ctx only for interrupt requests, not pixel data access.
type tileSource interface {
	VRAMByte(addr uint16) byte
	OAMByte(index int) byte
}

var _ tileSource = (*attachedSource)(nil)

type attachedSource struct{ ctx *gbrt.Context }

func (a *attachedSource) VRAMByte(addr uint16) byte { return a.ctx.Read8(addr) }
func (a *attachedSource) OAMByte(index int) byte    { return a.ctx.OAM[index] }

func (p *PPU) renderBackgroundLine(line int, bgPriority []bool) {
	src := p.source
	if src == nil {
		return
	}
	mapBase := uint16(0x9800)
	if p.lcdc&lcdcBGMap != 0 {
		mapBase = 0x9C00
	}
	y := (line + int(p.scy)) & 0xFF
	tileRow := y / 8
	fineY := y % 8

	for x := 0; x < screenWidth; x++ {
		scrolledX := (x + int(p.scx)) & 0xFF
		tileCol := scrolledX / 8
		fineX := scrolledX % 8

		tileIndex := src.VRAMByte(mapBase + uint16(tileRow*32+tileCol))
		tileAddr := p.tileDataAddr(tileIndex)
		lo := src.VRAMByte(tileAddr + uint16(fineY*2))
		hi := src.VRAMByte(tileAddr + uint16(fineY*2+1))
		bit := 7 - fineX
		colorIndex := ((hi>>bit)&1)<<1 | (lo>>bit)&1

		p.fb[line*screenWidth+x] = p.shade(p.bgp, colorIndex)
		bgPriority[x] = colorIndex != 0
	}
}

func (p *PPU) renderWindowLine(line int, bgPriority []bool) {
	src := p.source
	if src == nil {
		return
	}
	wx := int(p.wx) - 7
	if wx >= screenWidth {
		return
	}
	mapBase := uint16(0x9800)
	if p.lcdc&lcdcWindowMap != 0 {
		mapBase = 0x9C00
	}
	tileRow := p.windowLine / 8
	fineY := p.windowLine % 8

	for x := 0; x < screenWidth; x++ {
		if x < wx {
			continue
		}
		col := x - wx
		tileCol := col / 8
		fineX := col % 8

		tileIndex := src.VRAMByte(mapBase + uint16(tileRow*32+tileCol))
		tileAddr := p.tileDataAddr(tileIndex)
		lo := src.VRAMByte(tileAddr + uint16(fineY*2))
		hi := src.VRAMByte(tileAddr + uint16(fineY*2+1))
		bit := 7 - fineX
		colorIndex := ((hi>>bit)&1)<<1 | (lo>>bit)&1

		p.fb[line*screenWidth+x] = p.shade(p.bgp, colorIndex)
		bgPriority[x] = colorIndex != 0
	}
	p.windowLine++
}

func (p *PPU) renderSpriteLine(line int, bgPriority []bool) {
	src := p.source
	if src == nil {
		return
	}
	height := 8
	if p.lcdc&lcdcObjSize != 0 {
		height = 16
	}

	drawn := 0
	for i := 0; i < 40 && drawn < 10; i++ {
		base := i * 4
		spriteY := int(src.OAMByte(base)) - 16
		spriteX := int(src.OAMByte(base+1)) - 8
		tile := src.OAMByte(base + 2)
		attrs := src.OAMByte(base + 3)

		if line < spriteY || line >= spriteY+height {
			continue
		}
		drawn++

		row := line - spriteY
		if attrs&0x40 != 0 {
			row = height - 1 - row
		}
		if height == 16 {
			tile &^= 0x01
		}
		tileAddr := uint16(0x8000) + uint16(tile)*16 + uint16(row*2)
		lo := src.VRAMByte(tileAddr)
		hi := src.VRAMByte(tileAddr + 1)

		palette := p.obp0
		if attrs&0x10 != 0 {
			palette = p.obp1
		}
		behindBG := attrs&0x80 != 0

		for col := 0; col < 8; col++ {
			x := spriteX + col
			if x < 0 || x >= screenWidth {
				continue
			}
			bit := col
			if attrs&0x20 == 0 {
				bit = 7 - col
			}
			colorIndex := ((hi>>bit)&1)<<1 | (lo>>bit)&1
			if colorIndex == 0 {
				continue
			}
			if behindBG && bgPriority[x] {
				continue
			}
			p.fb[line*screenWidth+x] = p.shade(palette, colorIndex)
		}
	}
}

func (p *PPU) tileDataAddr(index byte) uint16 {
	if p.lcdc&lcdcTileData != 0 {
		return 0x8000 + uint16(index)*16
	}
	return uint16(0x9000 + int32(int8(index))*16)
}

func (p *PPU) shade(palette byte, colorIndex byte) uint32 {
	shade := (palette >> (colorIndex * 2)) & 0x03
	return dmgPalette[shade]
}

// Attach binds the gbrt.Context this PPU reads tile and sprite data
// through. Callers must invoke this once after gbrt.New, before the first
// Tick, since gbrt.PPU's interface methods do not all receive ctx.
func (p *PPU) Attach(ctx *gbrt.Context) {
	p.source = &attachedSource{ctx: ctx}
}

// ReadRegister reads one of the PPU's memory-mapped I/O registers.
func (p *PPU) ReadRegister(addr uint16) byte {
	switch addr {
	case regLCDC:
		return p.lcdc
	case regSTAT:
		return p.stat&0xFC | byte(p.mode)
	case regSCY:
		return p.scy
	case regSCX:
		return p.scx
	case regLY:
		return p.ly
	case regLYC:
		return p.lyc
	case regBGP:
		return p.bgp
	case regOBP0:
		return p.obp0
	case regOBP1:
		return p.obp1
	case regWY:
		return p.wy
	case regWX:
		return p.wx
	default:
		return 0xFF
	}
}

// WriteRegister writes one of the PPU's memory-mapped I/O registers.
func (p *PPU) WriteRegister(ctx *gbrt.Context, addr uint16, value byte) {
	switch addr {
	case regLCDC:
		wasEnabled := p.lcdc&lcdcEnable != 0
		p.lcdc = value
		if wasEnabled && value&lcdcEnable == 0 {
			p.ly = 0
			p.dot = 0
			p.mode = modeHBlank
		}
	case regSTAT:
		p.stat = p.stat&statLYCEqual | value&0x78
	case regSCY:
		p.scy = value
	case regSCX:
		p.scx = value
	case regLY: // read-only on real hardware; writes are ignored
	case regLYC:
		p.lyc = value
		p.checkLYC(ctx)
	case regBGP:
		p.bgp = value
	case regOBP0:
		p.obp0 = value
	case regOBP1:
		p.obp1 = value
	case regWY:
		p.wy = value
	case regWX:
		p.wx = value
	}
}

// FrameReady reports whether a full frame has been composed since the last
// ClearFrameReady call.
func (p *PPU) FrameReady() bool { return p.frameReady }

// ClearFrameReady acknowledges the current frame, called by gbrt.Context's
// Halt and by the generated main loop once the framebuffer has been consumed.
func (p *PPU) ClearFrameReady() { p.frameReady = false }

// Framebuffer returns the PPU's owned 160x144 ARGB pixel buffer.
func (p *PPU) Framebuffer() *[screenWidth * screenHeight]uint32 { return &p.fb }
