// Package platform is the ebiten-backed windowing and input implementation
// of gbrt.Platform. It is grounded on
// _examples/IntuitionAmiga-IntuitionEngine's video_backend_ebiten.go: an
// ebiten.Game wrapping a mutex-guarded frame buffer, started on its own
// goroutine and synced to the caller via a buffered channel, generalized
// from that file's arbitrary-resolution RGBA buffer down to the Game Boy's
// fixed 160x144 frame and DPad/button joypad rather than a PC keyboard.
package platform

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/arcanite24/gb-recompiled/internal/gbrt"
)

const (
	screenWidth  = 160
	screenHeight = 144
)

// Output is the ebiten-backed gbrt.Platform implementation: one window,
// scaled, showing the PPU's framebuffer, with keyboard input mapped to the
// Game Boy's DPad/button matrix.
type Output struct {
	scale int

	running bool

	mu        sync.RWMutex
	window    *ebiten.Image
	pixels    []byte // RGBA, written by RenderFrame, read by Draw
	vsyncChan chan struct{}

	dpad    byte
	buttons byte
}

// New constructs an Output at the given integer window scale (1 means a
// 160x144 window).
func New(scale int) *Output {
	if scale < 1 {
		scale = 1
	}
	return &Output{
		scale:     scale,
		pixels:    make([]byte, screenWidth*screenHeight*4),
		vsyncChan: make(chan struct{}, 1),
		dpad:      0x0F,
		buttons:   0x0F,
	}
}

// Start opens the window and begins the ebiten run loop on its own
// goroutine, returning as soon as that goroutine has been started.
func (o *Output) Start() {
	if o.running {
		return
	}
	o.running = true
	ebiten.SetWindowSize(screenWidth*o.scale, screenHeight*o.scale)
	ebiten.SetWindowTitle("gb-recompiled")
	ebiten.SetWindowResizable(true)

	go func() {
		if err := ebiten.RunGame(o); err != nil {
			fmt.Println("platform: run game:", err)
		}
		o.running = false
	}()
}

// PollEvents reports whether the program should keep running. It drives the
// Game Boy's joypad registers from the last-seen keyboard state and returns
// false once the window has been closed.
func (o *Output) PollEvents(ctx *gbrt.Context) bool {
	if !o.running {
		o.Start()
	}
	o.mu.RLock()
	dpad, buttons := o.dpad, o.buttons
	running := o.running
	o.mu.RUnlock()
	ctx.DPad = dpad
	ctx.Buttons = buttons
	return running
}

// RenderFrame copies a completed PPU framebuffer into the window's pixel
// buffer. Colors are already packed ARGB by the PPU; Draw unpacks them into
// ebiten's RGBA byte order.
func (o *Output) RenderFrame(fb *[screenWidth * screenHeight]uint32) {
	o.mu.Lock()
	for i, argb := range fb {
		a := byte(argb >> 24)
		r := byte(argb >> 16)
		g := byte(argb >> 8)
		b := byte(argb)
		o.pixels[i*4+0] = r
		o.pixels[i*4+1] = g
		o.pixels[i*4+2] = b
		o.pixels[i*4+3] = a
	}
	o.mu.Unlock()
}

// VSync blocks until the next Draw call has consumed a frame.
func (o *Output) VSync() {
	<-o.vsyncChan
}

// Update implements ebiten.Game. Input sampling happens here since ebiten
// only guarantees key state is current inside Update.
func (o *Output) Update() error {
	if ebiten.IsWindowBeingClosed() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		return ebiten.Termination
	}

	var dpad, buttons byte = 0x0F, 0x0F
	if inpututil.KeyPressDuration(ebiten.KeyArrowRight) > 0 {
		dpad &^= 0x01
	}
	if inpututil.KeyPressDuration(ebiten.KeyArrowLeft) > 0 {
		dpad &^= 0x02
	}
	if inpututil.KeyPressDuration(ebiten.KeyArrowUp) > 0 {
		dpad &^= 0x04
	}
	if inpututil.KeyPressDuration(ebiten.KeyArrowDown) > 0 {
		dpad &^= 0x08
	}
	if inpututil.KeyPressDuration(ebiten.KeyZ) > 0 {
		buttons &^= 0x01 // A
	}
	if inpututil.KeyPressDuration(ebiten.KeyX) > 0 {
		buttons &^= 0x02 // B
	}
	if inpututil.KeyPressDuration(ebiten.KeyBackspace) > 0 {
		buttons &^= 0x04 // Select
	}
	if inpututil.KeyPressDuration(ebiten.KeyEnter) > 0 {
		buttons &^= 0x08 // Start
	}

	o.mu.Lock()
	o.dpad, o.buttons = dpad, buttons
	o.mu.Unlock()
	return nil
}

// Draw implements ebiten.Game, blitting the last frame RenderFrame wrote.
func (o *Output) Draw(screen *ebiten.Image) {
	o.mu.Lock()
	if o.window == nil {
		o.window = ebiten.NewImage(screenWidth, screenHeight)
	}
	o.window.WritePixels(o.pixels)
	o.mu.Unlock()

	screen.DrawImage(o.window, nil)

	select {
	case o.vsyncChan <- struct{}{}:
	default:
	}
}

// Layout implements ebiten.Game, reporting the fixed Game Boy resolution.
func (o *Output) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}
