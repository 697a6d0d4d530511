package debugger

import (
	"fmt"
	"strconv"

	"github.com/spinsemi/fv1vm/vm"
)

// cmdRun recompiles the loaded program and starts execution from frame zero.
func (d *Debugger) cmdRun(args []string) error {
	d.VM.Compile(d.Words)
	d.FrameCount = 0
	d.frameOpen = false
	d.Running = true
	d.Println("Starting execution...")
	return nil
}

// cmdContinue resumes free-running execution.
func (d *Debugger) cmdContinue(args []string) error {
	d.Running = true
	d.Println("Continuing...")
	return nil
}

// cmdStepInstruction executes exactly one instruction slot, opening a new
// frame with silent input if the current one has already completed.
func (d *Debugger) cmdStepInstruction(args []string) error {
	if !d.frameOpen {
		d.VM.BeginFrame(vm.AudioFrame{})
		d.frameOpen = true
	}
	done := d.VM.StepInstruction()
	d.Printf("Slot %d executed\n", d.VM.InstructionCounter()-1)
	if done {
		d.VM.EndFrame()
		d.frameOpen = false
		d.FrameCount++
		d.Printf("Frame %d complete\n", d.FrameCount)
	}
	return nil
}

// cmdStepFrame runs the remainder of any in-progress frame, or a full new
// frame, to completion.
func (d *Debugger) cmdStepFrame(args []string) error {
	if !d.frameOpen {
		d.VM.BeginFrame(vm.AudioFrame{})
	}
	for !d.VM.StepInstruction() {
	}
	d.VM.EndFrame()
	d.frameOpen = false
	d.FrameCount++
	d.Printf("Frame %d complete\n", d.FrameCount)
	return nil
}

// cmdBreak sets a breakpoint at a frame index (current frame if omitted).
func (d *Debugger) cmdBreak(args []string) error {
	frame := uint32(d.FrameCount)
	if len(args) > 0 {
		n, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid frame index: %s", args[0])
		}
		frame = uint32(n)
	}
	bp := d.Breakpoints.AddBreakpoint(frame, false, "")
	d.Printf("Breakpoint %d set at frame %d\n", bp.ID, frame)
	return nil
}

// cmdDelete removes a breakpoint by ID.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable re-enables a disabled breakpoint.
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	return d.Breakpoints.EnableBreakpoint(id)
}

// cmdDisable disables a breakpoint without deleting it.
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	return d.Breakpoints.DisableBreakpoint(id)
}

// cmdPrint prints one piece of engine state: acc, pacc, reg N, ramp N, or sin N.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <acc|pacc|reg N|ramp N|sin N>")
	}
	switch args[0] {
	case "acc":
		d.Printf("ACC = %d\n", d.VM.Accumulator())
	case "pacc":
		d.Printf("PACC = %d\n", d.VM.PreviousAccumulator())
	case "reg":
		n, err := regIndex(args)
		if err != nil {
			return err
		}
		d.Printf("REG[%d] = %d\n", n, d.VM.Register(n))
	case "ramp":
		n, err := regIndex(args)
		if err != nil {
			return err
		}
		d.Printf("RAMP%d = %d\n", n, d.VM.RampPhase(n))
	case "sin":
		n, err := regIndex(args)
		if err != nil {
			return err
		}
		s, c := d.VM.SinPhase(n)
		d.Printf("SIN%d sin=%d cos=%d\n", n, s, c)
	default:
		return fmt.Errorf("unknown print target: %s", args[0])
	}
	return nil
}

func regIndex(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("missing index")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid index: %s", args[1])
	}
	return n, nil
}

// cmdInfo prints a full state snapshot: frame/slot counters, ACC/PACC, and
// both LFO pairs.
func (d *Debugger) cmdInfo(args []string) error {
	d.Printf("Frame:  %d\n", d.FrameCount)
	d.Printf("Slot:   %d\n", d.VM.InstructionCounter())
	d.Printf("ACC:    %d\n", d.VM.Accumulator())
	d.Printf("PACC:   %d\n", d.VM.PreviousAccumulator())
	for i := 0; i < 2; i++ {
		d.Printf("RAMP%d:  %d\n", i, d.VM.RampPhase(i))
		s, c := d.VM.SinPhase(i)
		d.Printf("SIN%d:   sin=%d cos=%d\n", i, s, c)
	}
	return nil
}

// cmdReset reloads the current program and zeroes all engine state.
func (d *Debugger) cmdReset(args []string) error {
	d.VM.Compile(d.Words)
	d.FrameCount = 0
	d.frameOpen = false
	d.Running = false
	d.Println("Machine reset")
	return nil
}

// cmdHelp lists available commands.
func (d *Debugger) cmdHelp(args []string) error {
	d.Println(`Commands:
  run, r              Reset and start execution
  continue, c         Resume free-running execution
  step, s             Execute one instruction slot
  frame, f            Execute one full frame
  break, b [N]        Set a breakpoint at frame N (default: current frame)
  delete, d <id>      Delete a breakpoint
  enable/disable <id> Enable or disable a breakpoint
  print, p <target>   Print acc, pacc, reg N, ramp N, or sin N
  info, i             Print a full state snapshot
  reset               Reload the program and reset engine state
  help, h, ?          Show this message`)
	return nil
}
