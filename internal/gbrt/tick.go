package gbrt

// Interrupt flag bits, in priority order: VBlank > LCD STAT
// > Timer > Serial > Joypad.
const (
	intVBlank byte = 0x01
	intSTAT   byte = 0x02
	intTimer  byte = 0x04
	intSerial byte = 0x08
	intJoypad byte = 0x10
)

var interruptVectors = [5]struct {
	bit    byte
	vector uint16
}{
	{intVBlank, 0x0040},
	{intSTAT, 0x0048},
	{intTimer, 0x0050},
	{intSerial, 0x0058},
	{intJoypad, 0x0060},
}

const ifRegister = 0xFF0F

// RequestInterrupt sets the corresponding bit in IF. The PPU and future
// timer/serial/joypad producers call this rather than writing IO directly.
func (ctx *Context) RequestInterrupt(bit byte) {
	ctx.IO[ifRegister-ioStart] |= bit
}

// Tick advances the runtime clock by cycles T-states, promotes a
// pending IME enable, dispatches the highest-priority ready interrupt, and
// drives the PPU. Every translated function and the interpreter call this
// once per decoded instruction, grounded on gbrt.c's gb_tick.
//
// EI's IMEPending must not become visible on its own instruction's Tick
// call: that call is still accounting for EI's own cycles, and the enable
// is specified to take effect only once the *following* instruction has
// run. So a Tick call that finds IMEPending set only arms it; the promotion
// to IME (and any interrupt dispatch it unblocks) happens on the next Tick
// call after that, by which point the following instruction has already
// executed. A DI in between (which clears IMEPending directly) cancels the
// armed promotion rather than letting it fire on stale state.
func (ctx *Context) Tick(cycles int) {
	ctx.Cycles += uint64(cycles)
	ctx.FrameCycles += uint64(cycles)

	switch {
	case ctx.imeArmed:
		if ctx.IMEPending {
			ctx.IME = true
		}
		ctx.IMEPending = false
		ctx.imeArmed = false
	case ctx.IMEPending:
		ctx.imeArmed = true
	}

	ctx.dispatchInterrupt()

	if ctx.PPU != nil {
		ctx.PPU.Tick(ctx, cycles)
	}
}

// dispatchInterrupt checks IE & IF and, if IME is set and an interrupt is
// pending, clears IME, clears the corresponding IF bit, pushes PC and
// dispatches to the handler vector. Priority is fixed: VBlank first.
func (ctx *Context) dispatchInterrupt() {
	if !ctx.IME {
		return
	}
	ifReg := ctx.IO[ifRegister-ioStart]
	pending := ifReg & ctx.IE & 0x1F
	if pending == 0 {
		return
	}

	ctx.IME = false
	ctx.Halted = false

	for _, v := range interruptVectors {
		if pending&v.bit != 0 {
			ctx.IO[ifRegister-ioStart] &^= v.bit
			ctx.Push16(ctx.PC)
			if ctx.Dispatch != nil {
				ctx.Dispatch.Dispatch(ctx, v.vector)
			} else {
				ctx.PC = v.vector
			}
			return
		}
	}
}

// pendingInterrupt reports whether IE & IF has any bit set, independent of
// IME: used by HALT to decide when to wake.
func (ctx *Context) pendingInterrupt() bool {
	return ctx.IO[ifRegister-ioStart]&ctx.IE&0x1F != 0
}

// Halt enters the HALT state and spins, ticking hardware in 4-cycle steps,
// until an interrupt becomes pending or a one-frame safety fuse elapses,
// guaranteeing HALT always makes bounded progress. Grounded on gbrt.c's
// gb_halt.
func (ctx *Context) Halt() {
	ctx.Halted = true

	remaining := cyclesPerFrame
	for ctx.Halted && remaining > 0 {
		ctx.Tick(4)
		remaining -= 4

		if ctx.pendingInterrupt() {
			ctx.Halted = false
			break
		}

		if ctx.PPU != nil && ctx.PPU.FrameReady() {
			if ctx.Platform != nil {
				if !ctx.Platform.PollEvents(ctx) {
					ctx.Stopped = true
					ctx.Halted = false
					break
				}
				ctx.Platform.RenderFrame(ctx.PPU.Framebuffer())
				ctx.Platform.VSync()
			}
			ctx.PPU.ClearFrameReady()
		}
	}
	ctx.Halted = false
}

// Stop enters the STOP state. The CPU resumes on a joypad press, which
// this runtime treats as equivalent to clearing Stopped from Platform
// input handling.
func (ctx *Context) Stop() {
	ctx.Stopped = true
}

// FrameComplete reports whether the PPU has a completed frame ready.
func (ctx *Context) FrameComplete() bool {
	return ctx.PPU != nil && ctx.PPU.FrameReady()
}

// RunFrame runs the dispatcher until the PPU reports a completed frame,
// ticking hardware through HALT rather than stepping the CPU, per gbrt.c's
// gb_run_frame. It returns the number of T-states consumed.
func (ctx *Context) RunFrame() uint64 {
	start := ctx.Cycles
	for !ctx.FrameComplete() && !ctx.Stopped {
		if ctx.Halted {
			ctx.Tick(4)
			continue
		}
		ctx.Step()
	}
	return ctx.Cycles - start
}

// Step dispatches exactly one translated function or interpreter step at
// the current PC, per gbrt.c's gb_step. Any pending EI promotion is handled
// by Tick itself, called internally by the dispatched instruction.
func (ctx *Context) Step() uint64 {
	start := ctx.Cycles
	if ctx.Dispatch != nil {
		ctx.Dispatch.Dispatch(ctx, ctx.PC)
	}
	return ctx.Cycles - start
}
