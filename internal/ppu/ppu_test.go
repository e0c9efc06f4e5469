package ppu

import (
	"testing"

	"github.com/arcanite24/gb-recompiled/internal/cartridge"
	"github.com/arcanite24/gb-recompiled/internal/gbrt"
)

func newAttached() (*PPU, *gbrt.Context) {
	data := make([]byte, cartridge.HeaderSize)
	cart, err := cartridge.Load(data)
	if err != nil {
		panic(err)
	}
	ctx := gbrt.New(cart)
	p := New()
	p.Attach(ctx)
	ctx.PPU = p
	return p, ctx
}

func TestNew_PowerOnState(t *testing.T) {
	p := New()
	if p.ReadRegister(regLCDC) != 0x91 {
		t.Errorf("LCDC = %#02x, want 0x91", p.ReadRegister(regLCDC))
	}
	if p.ReadRegister(regBGP) != 0xFC {
		t.Errorf("BGP = %#02x, want 0xFC", p.ReadRegister(regBGP))
	}
}

func TestTick_CompletesFrameAfter70224Cycles(t *testing.T) {
	p, ctx := newAttached()

	// One frame is 154 lines * 456 dots; feed exactly that many T-states in
	// one shot and expect FrameReady to flip.
	p.Tick(ctx, dotsPerLine*totalLines)

	if !p.FrameReady() {
		t.Fatal("expected FrameReady after one full frame's worth of dots")
	}
}

func TestTick_DisabledLCDDoesNothing(t *testing.T) {
	p, ctx := newAttached()
	p.WriteRegister(ctx, regLCDC, 0x00) // disable LCD

	p.Tick(ctx, dotsPerLine*totalLines)

	if p.FrameReady() {
		t.Fatal("expected no frame progress while LCD is disabled")
	}
}

func TestWriteRegister_LYIsReadOnly(t *testing.T) {
	p, ctx := newAttached()
	before := p.ReadRegister(regLY)
	p.WriteRegister(ctx, regLY, 0x42)
	if got := p.ReadRegister(regLY); got != before {
		t.Errorf("LY changed from %#02x to %#02x after a write, want unchanged", before, got)
	}
}

func TestWriteRegister_LCDCDisableResetsMode(t *testing.T) {
	p, ctx := newAttached()
	p.Tick(ctx, dotsOAM+1) // advance into pixel transfer

	p.WriteRegister(ctx, regLCDC, 0x00)

	if p.mode != modeHBlank {
		t.Errorf("mode = %d, want modeHBlank after disabling the LCD", p.mode)
	}
	if p.ReadRegister(regLY) != 0 {
		t.Errorf("LY = %d, want 0 after disabling the LCD", p.ReadRegister(regLY))
	}
}

func TestClearFrameReady(t *testing.T) {
	p, ctx := newAttached()
	p.Tick(ctx, dotsPerLine*totalLines)
	if !p.FrameReady() {
		t.Fatal("expected FrameReady before clearing")
	}
	p.ClearFrameReady()
	if p.FrameReady() {
		t.Fatal("expected FrameReady to be false after ClearFrameReady")
	}
}

func TestRenderScanline_SolidBackgroundTile(t *testing.T) {
	p, ctx := newAttached()

	// Tile 0 in map 0x9800, all pixels color index 3 (both bitplane bytes
	// 0xFF) under the default BGP palette (11 -> darkest shade).
	for row := 0; row < 8; row++ {
		ctx.Write8(0x8000+uint16(row*2), 0xFF)
		ctx.Write8(0x8000+uint16(row*2+1), 0xFF)
	}
	ctx.Write8(0x9800, 0x00) // map entry 0 -> tile 0

	// Run exactly one scanline's worth of dots to render line 0.
	p.Tick(ctx, dotsOAM)
	p.Tick(ctx, dotsXfer)

	want := dmgPalette[3]
	if got := p.fb[0]; got != want {
		t.Errorf("fb[0] = %#08x, want %#08x", got, want)
	}
}

func TestImplementsGBRTPPU(t *testing.T) {
	var _ gbrt.PPU = New()
}
