package xrsim

// Driver receives the user-side events a script lists.
type Driver interface {
	Confirm()
	End()
}

// StepFunc observes a step after it ran.
type StepFunc func(step int, input FrameSpec, ran bool)

// Play runs one step per scripted frame. Confirm and end events listed on
// a frame reach drv before that step runs, so the loop sees them in the
// same invocation. after may be nil.
func (d *Device) Play(drv Driver, after StepFunc) {
	for range len(d.frames) {
		input := d.spec(d.step + 1)
		if input.Confirm {
			drv.Confirm()
		}
		if input.End {
			drv.End()
		}
		ran := d.Step()
		if after != nil {
			after(d.step, input, ran)
		}
	}
}
