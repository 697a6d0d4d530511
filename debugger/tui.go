package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/spinsemi/fv1vm/disasm"
)

// TUI represents the text user interface for the debugger
type TUI struct {
	// Core components
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	// Layout containers
	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	// View panels
	DisassemblyView *tview.TextView
	StateView       *tview.TextView
	DelayMemoryView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI creates a new text user interface
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger: debugger,
		App:      tview.NewApplication(),
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

// NewTUIWithScreen creates a TUI bound to an explicit tcell.Screen, letting
// tests drive it against a simulation screen instead of a real terminal.
func NewTUIWithScreen(debugger *Debugger, screen tcell.Screen) *TUI {
	tui := NewTUI(debugger)
	tui.App.SetScreen(screen)
	return tui
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Program ")

	t.StateView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.StateView.SetBorder(true).SetTitle(" ACC / Registers / LFOs ")

	t.DelayMemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DelayMemoryView.SetBorder(true).SetTitle(" Delay Memory (cursor-relative) ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

// buildLayout constructs the TUI layout
func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 3, false).
		AddItem(t.DelayMemoryView, 0, 2, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.StateView, RegisterViewRows+2, 0, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

// setupKeyBindings sets up keyboard shortcuts. F10 "step over" from the
// teacher's CPU debugger has no FV-1 analogue: the per-sample loop has no
// call stack to step over, so it's dropped.
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

// handleCommand processes command input
func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

// executeCommand executes a debugger command
func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels
func (t *TUI) RefreshAll() {
	t.UpdateDisassemblyView()
	t.UpdateStateView()
	t.UpdateDelayMemoryView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateDisassemblyView renders the 128-slot program with the current
// instruction counter highlighted, scrolled to keep it in view.
func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.Clear()

	prog := t.Debugger.VM.Program()
	ic := t.Debugger.VM.InstructionCounter()

	start := ic - DisassemblyContextBefore
	if start < 0 {
		start = 0
	}
	end := ic + DisassemblyContextAfter
	if end > len(prog) {
		end = len(prog)
	}

	var lines []string
	for i := start; i < end; i++ {
		marker := "  "
		color := "white"
		if i == ic {
			marker = "->"
			color = "yellow"
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %03d: %s[white]", color, marker, i, disasm.FormatCompiled(prog[i])))
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

// UpdateStateView renders ACC/PACC, the pot/ADC/DAC registers, the 32
// general-purpose registers, and the four LFO phases.
func (t *TUI) UpdateStateView() {
	t.StateView.Clear()

	vmRef := t.Debugger.VM
	var lines []string

	lines = append(lines, fmt.Sprintf("ACC: %11d   PACC: %11d", vmRef.Accumulator(), vmRef.PreviousAccumulator()))
	lines = append(lines, fmt.Sprintf("POT0: %10d  POT1: %10d  POT2: %10d", vmRef.Register(0x10), vmRef.Register(0x11), vmRef.Register(0x12)))
	lines = append(lines, fmt.Sprintf("ADCL: %10d  ADCR: %10d", vmRef.Register(0x14), vmRef.Register(0x15)))
	lines = append(lines, fmt.Sprintf("DACL: %10d  DACR: %10d", vmRef.Register(0x16), vmRef.Register(0x17)))
	lines = append(lines, "")

	for row := 0; row < 32/RegisterGroupSize; row++ {
		var cols []string
		for col := 0; col < RegisterGroupSize; col++ {
			reg := 0x20 + row*RegisterGroupSize + col
			cols = append(cols, fmt.Sprintf("REG%-2d: %10d", reg-0x20, vmRef.Register(reg)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	for i := 0; i < 2; i++ {
		sin, cos := vmRef.SinPhase(i)
		lines = append(lines, fmt.Sprintf("RAMP%d: %10d   SIN%d: sin=%d cos=%d", i, vmRef.RampPhase(i), i, sin, cos))
	}

	t.StateView.SetText(strings.Join(lines, "\n"))
}

// UpdateDelayMemoryView renders the cells at offsets 0..63 from the delay
// memory's current cursor; a sample stored at offset 0 shows at offset N
// after N frames.
func (t *TUI) UpdateDelayMemoryView() {
	t.DelayMemoryView.Clear()

	delay := t.Debugger.VM.DelayMemory()
	var lines []string
	for row := 0; row < DelayMemoryViewCells/8; row++ {
		var cols []string
		for col := 0; col < 8; col++ {
			offset := int32(row*8 + col)
			cols = append(cols, fmt.Sprintf("%11d", delay.Load(offset)))
		}
		lines = append(lines, fmt.Sprintf("+%3d: %s", row*8, strings.Join(cols, " ")))
	}

	t.DelayMemoryView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView lists all frame breakpoints and their hit counts.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string
	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) == 0 {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}
	for _, bp := range bps {
		status := "enabled"
		color := "green"
		if !bp.Enabled {
			status = "disabled"
			color = "red"
		}
		lines = append(lines, fmt.Sprintf("  %d: [%s]%s[white] frame %d (hits: %d)", bp.ID, color, status, bp.Address, bp.HitCount))
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]FV-1 DSP Debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F9 to break, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application
func (t *TUI) Stop() {
	t.App.Stop()
}
