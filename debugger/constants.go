package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency is a redraw interval in frames for free-running
	// execution. Nothing reads it: the TUI redraws after every command, and
	// its "run"/"continue" only set Debugger.Running without running frames.
	DisplayUpdateFrequency = 100
)

// Disassembly View Constants
const (
	// ProgramSlots is the fixed number of instruction slots in an FV-1
	// program image (spec.md §2).
	ProgramSlots = 128

	// DisassemblyContextBefore/After bound the scrolling window the TUI
	// keeps centered on the current instruction counter.
	DisassemblyContextBefore = 8
	DisassemblyContextAfter  = 24
)

// Delay Memory View Constants
const (
	// DelayMemoryViewCells is the number of circular delay-memory cells
	// shown at a time in the scrolling hex view (spec.md §4.5's 32768-word
	// ring is far too large to show in full).
	DelayMemoryViewCells = 64
)

// Register Display Constants
const (
	// RegisterViewRows is the fixed height of the register panel: one line
	// each for ACC/PACC, POT0-2, ADCL/ADCR and DACL/DACR, the 32
	// general-purpose registers in rows of RegisterGroupSize, one line per
	// LFO pair, and two blank separator lines.
	RegisterViewRows = 16

	// RegisterGroupSize is the number of registers displayed per row.
	RegisterGroupSize = 4
)
