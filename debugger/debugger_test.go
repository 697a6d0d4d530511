package debugger

import (
	"testing"

	"github.com/spinsemi/fv1vm/vm"
)

func newTestDebugger(t *testing.T) *Debugger {
	t.Helper()
	words := make([]uint32, 128) // all-zero words decode to harmless zero-coefficient instructions
	machine := vm.NewMachine()
	dbg := NewDebugger(machine)
	dbg.LoadProgram(words)
	return dbg
}

func TestCmdStepInstructionAdvancesOneSlotAtATime(t *testing.T) {
	dbg := newTestDebugger(t)

	if err := dbg.ExecuteCommand("step"); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := dbg.VM.InstructionCounter(); got != 1 {
		t.Errorf("InstructionCounter after one step = %d, want 1", got)
	}
	if dbg.FrameCount != 0 {
		t.Errorf("FrameCount after one step = %d, want 0 (frame still open)", dbg.FrameCount)
	}
}

func TestCmdStepInstructionCompletesFrameAtSlot128(t *testing.T) {
	dbg := newTestDebugger(t)

	for i := 0; i < 128; i++ {
		if err := dbg.ExecuteCommand("step"); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if dbg.FrameCount != 1 {
		t.Errorf("FrameCount after 128 steps = %d, want 1", dbg.FrameCount)
	}
	if got := dbg.VM.InstructionCounter(); got != 0 {
		t.Errorf("InstructionCounter after frame completes = %d, want 0", got)
	}
}

func TestCmdStepFrameRunsWholeFrameAtOnce(t *testing.T) {
	dbg := newTestDebugger(t)

	if err := dbg.ExecuteCommand("frame"); err != nil {
		t.Fatalf("frame: %v", err)
	}

	if dbg.FrameCount != 1 {
		t.Errorf("FrameCount after one frame command = %d, want 1", dbg.FrameCount)
	}
}

func TestCmdStepFrameFinishesPartiallySteppedFrame(t *testing.T) {
	dbg := newTestDebugger(t)

	if err := dbg.ExecuteCommand("step"); err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := dbg.ExecuteCommand("frame"); err != nil {
		t.Fatalf("frame: %v", err)
	}

	if dbg.FrameCount != 1 {
		t.Errorf("FrameCount = %d, want 1 (frame command finishes the open frame, not a second one)", dbg.FrameCount)
	}
}

func TestBreakpointStopsContinueAtTargetFrame(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Breakpoints.AddBreakpoint(3, false, "")

	if err := dbg.ExecuteCommand("continue"); err != nil {
		t.Fatalf("continue: %v", err)
	}

	for dbg.Running {
		if shouldBreak, _ := dbg.ShouldBreak(); shouldBreak {
			dbg.Running = false
			break
		}
		dbg.StepOneFrame()
	}

	if dbg.FrameCount != 3 {
		t.Errorf("FrameCount at breakpoint = %d, want 3", dbg.FrameCount)
	}
}

func TestCmdResetClearsFrameCountAndOpenFrame(t *testing.T) {
	dbg := newTestDebugger(t)
	if err := dbg.ExecuteCommand("step"); err != nil {
		t.Fatalf("step: %v", err)
	}

	if err := dbg.ExecuteCommand("reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if dbg.FrameCount != 0 {
		t.Errorf("FrameCount after reset = %d, want 0", dbg.FrameCount)
	}
	if dbg.frameOpen {
		t.Error("frameOpen should be false after reset")
	}
	if got := dbg.VM.InstructionCounter(); got != 0 {
		t.Errorf("InstructionCounter after reset = %d, want 0", got)
	}
}

func TestCmdPrintReportsAccumulator(t *testing.T) {
	dbg := newTestDebugger(t)

	if err := dbg.ExecuteCommand("print acc"); err != nil {
		t.Fatalf("print acc: %v", err)
	}
	if out := dbg.GetOutput(); out == "" {
		t.Error("print acc produced no output")
	}
}
