package null

import (
	"testing"

	"github.com/arcanite24/gb-recompiled/internal/gbrt"
)

func TestOutput_PollEvents_AlwaysContinues(t *testing.T) {
	out := New()
	ctx := &gbrt.Context{}
	if !out.PollEvents(ctx) {
		t.Fatal("expected PollEvents to report the program should keep running")
	}
	if ctx.DPad != 0x0F || ctx.Buttons != 0x0F {
		t.Fatalf("expected released joypad state, got DPad=%#02x Buttons=%#02x", ctx.DPad, ctx.Buttons)
	}
}

func TestOutput_RenderFrame_CountsFrames(t *testing.T) {
	out := New()
	var fb [160 * 144]uint32
	out.RenderFrame(&fb)
	out.RenderFrame(&fb)
	if got := out.FrameCount(); got != 2 {
		t.Fatalf("FrameCount() = %d, want 2", got)
	}
}

func TestOutput_ImplementsPlatform(t *testing.T) {
	var _ gbrt.Platform = New()
}
