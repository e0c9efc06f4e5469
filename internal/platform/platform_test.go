package platform

import (
	"testing"

	"github.com/arcanite24/gb-recompiled/internal/gbrt"
)

func TestNew_DefaultsToReleasedJoypad(t *testing.T) {
	out := New(3)
	if out.dpad != 0x0F || out.buttons != 0x0F {
		t.Fatalf("expected released joypad state, got dpad=%#02x buttons=%#02x", out.dpad, out.buttons)
	}
}

func TestNew_ClampsScale(t *testing.T) {
	out := New(0)
	if out.scale != 1 {
		t.Fatalf("scale = %d, want 1", out.scale)
	}
}

func TestRenderFrame_UnpacksARGBIntoRGBA(t *testing.T) {
	out := New(1)
	var fb [screenWidth * screenHeight]uint32
	fb[0] = 0xFF112233 // A=FF R=11 G=22 B=33
	out.RenderFrame(&fb)

	want := []byte{0x11, 0x22, 0x33, 0xFF}
	got := out.pixels[0:4]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixels[%d] = %#02x, want %#02x", i, got[i], want[i])
		}
	}
}

func TestOutput_ImplementsPlatform(t *testing.T) {
	var _ gbrt.Platform = New(1)
}

func TestDraw_SignalsVSync(t *testing.T) {
	out := New(1)
	// Draw requires a real *ebiten.Image target, which needs a running game
	// loop; exercise the channel signal directly instead since that is the
	// only piece PollEvents/VSync actually depend on.
	select {
	case out.vsyncChan <- struct{}{}:
	default:
		t.Fatal("expected vsyncChan to accept a signal")
	}
	out.VSync()
}
