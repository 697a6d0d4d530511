// Package debugger implements an interactive inspector for the FV-1
// execution engine: single-instruction and single-frame stepping, frame
// breakpoints, and both a line-oriented CLI and a tcell/tview TUI front end,
// grounded on the teacher's CPU debugger (debugger.go, interface.go, tui.go)
// but driving a continuous per-sample DSP loop instead of a steppable ARM
// CPU.
package debugger

import (
	"fmt"
	"strings"

	"github.com/spinsemi/fv1vm/vm"
)

// Debugger represents the debugger state and functionality.
type Debugger struct {
	VM *vm.Machine

	// Words is the raw 128-word program image the Machine was last
	// compiled from, kept here since vm.Machine only retains the optimized
	// form after Compile; "run"/"reset" recompile from this.
	Words []uint32

	// Breakpoint management, keyed by frame index rather than by address.
	Breakpoints *BreakpointManager

	// Command history.
	History *CommandHistory

	// Execution control.
	Running bool

	// frameOpen is true between a "step"-initiated BeginFrame and the
	// EndFrame that completes it; "step" leaves a frame half-executed so a
	// caller can inspect mid-frame state, subsequent steps resume it.
	frameOpen bool

	// FrameCount is the number of frames processed so far.
	FrameCount uint64

	// LastCommand is used to repeat on empty input.
	LastCommand string

	// Output buffer.
	Output strings.Builder
}

// NewDebugger creates a new debugger instance around an already-compiled
// Machine.
func NewDebugger(machine *vm.Machine) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(),
		Running:     false,
	}
}

// LoadProgram records the raw program image and compiles it into the
// Machine, resetting all engine state.
func (d *Debugger) LoadProgram(words []uint32) {
	d.Words = words
	d.VM.Compile(words)
	d.FrameCount = 0
}

// ExecuteCommand processes and executes a debugger command.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	// Empty command repeats last command (for step, frame, etc.)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	return d.handleCommand(cmd, args)
}

// handleCommand dispatches commands to appropriate handlers.
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStepInstruction(args)
	case "frame", "f":
		return d.cmdStepFrame(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "reset":
		return d.cmdReset(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak checks if execution should pause before the next frame runs.
// "step"/"frame" execute synchronously in their command handlers rather
// than through this loop, so only frame breakpoints are checked here.
func (d *Debugger) ShouldBreak() (bool, string) {
	if bp := d.Breakpoints.GetBreakpoint(uint32(d.FrameCount)); bp != nil && bp.Enabled {
		bp.HitCount++
		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}
		return true, fmt.Sprintf("breakpoint %d at frame %d", bp.ID, d.FrameCount)
	}

	return false, ""
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// StepOneFrame runs one silent-input frame through the Machine
// (BeginFrame/StepInstruction*/EndFrame), advancing FrameCount. If a "step"
// command left a frame half-executed, this finishes that frame rather than
// starting a new one, so "run"/"continue" never discard in-progress state.
// Used by the Running loop, which feeds zero input to the VM for inspection
// rather than driving real audio (the CLI's "run"/"continue" modes).
func (d *Debugger) StepOneFrame() {
	if !d.frameOpen {
		d.VM.BeginFrame(vm.AudioFrame{})
	}
	for !d.VM.StepInstruction() {
	}
	d.VM.EndFrame()
	d.frameOpen = false
	d.FrameCount++
}
