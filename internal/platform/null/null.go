// Package null is the headless implementation of gbrt.Platform, used when
// a generated project is built with -no-platform or run under test. It is
// grounded on _examples/IntuitionAmiga-IntuitionEngine's
// video_backend_headless.go: a same-shaped stand-in that counts frames
// instead of drawing them, so a generated project links and runs identically
// with or without a real window.
package null

import (
	"sync/atomic"

	"github.com/arcanite24/gb-recompiled/internal/gbrt"
)

// Output is the no-op gbrt.Platform implementation.
type Output struct {
	frameCount uint64
}

// New constructs a headless platform.
func New() *Output {
	return &Output{}
}

// PollEvents always reports the program should keep running; nothing ever
// requests it exit.
func (o *Output) PollEvents(ctx *gbrt.Context) bool {
	ctx.DPad = 0x0F
	ctx.Buttons = 0x0F
	return true
}

// RenderFrame discards the frame, counting it for FrameCount.
func (o *Output) RenderFrame(_ *[160 * 144]uint32) {
	atomic.AddUint64(&o.frameCount, 1)
}

// VSync is an immediate no-op: there is no real display to sync to.
func (o *Output) VSync() {}

// FrameCount returns the number of frames rendered so far.
func (o *Output) FrameCount() uint64 {
	return atomic.LoadUint64(&o.frameCount)
}
