// Package monitor implements a desktop window with live readouts of a
// running FV-1 Machine's accumulator and LFO state, plus three pot sliders,
// grounded on the teacher's debugger/gui.go widget-per-concern layout but
// trimmed for a headless audio VM with no source/memory/stack views.
package monitor

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/spinsemi/fv1vm/vm"
)

// blockSize is how many frames the monitor's background goroutine feeds the
// Machine between readout snapshots.
const blockSize = 256

// refreshInterval bounds how often the window redraws, independent of how
// fast blocks are processed.
const refreshInterval = 100 * time.Millisecond

// snapshot is one block's worth of engine state, sent from the processing
// goroutine to the UI goroutine. Per spec.md §5, the Machine itself is never
// touched from both goroutines at once — only snapshots cross the channel.
type snapshot struct {
	acc, pacc  int32
	ramp0Phase int32
	ramp1Phase int32
	sin0, cos0 int32
	sin1, cos1 int32
}

// Monitor is a live desktop window over a Machine, processing a silent
// audio stream on a dedicated goroutine so the UI never shares the Machine
// with the caller's own execution loop.
type Monitor struct {
	machine *vm.Machine
	app     fyne.App
	window  fyne.Window

	accLabel   *widget.Label
	paccLabel  *widget.Label
	rampLabels [2]*widget.Label
	sinLabels  [2]*widget.Label

	snapshots chan snapshot
	params    chan vm.Parameters
	stop      chan struct{}
}

// Run opens the monitor window and blocks until it is closed.
func Run(machine *vm.Machine) error {
	m := newMonitor(machine)
	defer close(m.stop)
	go m.processLoop()
	go m.readoutLoop()
	m.window.ShowAndRun()
	return nil
}

func newMonitor(machine *vm.Machine) *Monitor {
	m := &Monitor{
		machine:   machine,
		app:       app.New(),
		snapshots: make(chan snapshot, 1),
		params:    make(chan vm.Parameters, 1),
		stop:      make(chan struct{}),
	}
	m.window = m.app.NewWindow("FV-1 Monitor")
	m.buildLayout()
	m.window.Resize(fyne.NewSize(420, 360))
	return m
}

func (m *Monitor) buildLayout() {
	m.accLabel = widget.NewLabel("ACC:  0")
	m.paccLabel = widget.NewLabel("PACC: 0")
	m.rampLabels[0] = widget.NewLabel("RAMP0: 0")
	m.rampLabels[1] = widget.NewLabel("RAMP1: 0")
	m.sinLabels[0] = widget.NewLabel("SIN0: sin=0 cos=0")
	m.sinLabels[1] = widget.NewLabel("SIN1: sin=0 cos=0")

	readouts := container.NewVBox(
		m.accLabel,
		m.paccLabel,
		m.rampLabels[0],
		m.rampLabels[1],
		m.sinLabels[0],
		m.sinLabels[1],
	)

	sliders := container.NewVBox(
		m.newPotSlider("POT0", 0),
		m.newPotSlider("POT1", 1),
		m.newPotSlider("POT2", 2),
	)

	m.window.SetContent(container.NewBorder(
		widget.NewLabel("FV-1 DSP Monitor"),
		sliders,
		nil, nil,
		readouts,
	))
}

// newPotSlider creates a 0-1000 slider (one-thousandth resolution) for pot
// index i, sending updated Parameters on every change.
func (m *Monitor) newPotSlider(label string, i int) *fyne.Container {
	title := widget.NewLabel(fmt.Sprintf("%s: 0.000", label))
	s := widget.NewSlider(0, 1000)
	s.OnChanged = func(v float64) {
		title.SetText(fmt.Sprintf("%s: %.3f", label, v/1000))
		var p vm.Parameters
		p.Pot[i] = int32((v / 1000) * float64(int32(1)<<23))
		select {
		case m.params <- p:
		default:
		}
	}
	return container.NewBorder(nil, nil, title, nil, s)
}

// processLoop runs the Machine against a silent input stream one block at a
// time, applying pot updates and publishing readout snapshots, never
// touching the Machine from any other goroutine (spec.md §5).
func (m *Monitor) processLoop() {
	in := make([]vm.AudioFrame, blockSize)
	out := make([]vm.AudioFrame, blockSize)
	var params vm.Parameters

	for {
		select {
		case <-m.stop:
			return
		case p := <-m.params:
			params = p
			m.machine.SetParameters(params)
		default:
		}

		m.machine.Execute(in, out)

		sin0, cos0 := m.machine.SinPhase(0)
		sin1, cos1 := m.machine.SinPhase(1)
		snap := snapshot{
			acc:        m.machine.Accumulator(),
			pacc:       m.machine.PreviousAccumulator(),
			ramp0Phase: m.machine.RampPhase(0),
			ramp1Phase: m.machine.RampPhase(1),
			sin0:       sin0, cos0: cos0,
			sin1: sin1, cos1: cos1,
		}
		select {
		case m.snapshots <- snap:
		default:
			select {
			case <-m.snapshots:
			default:
			}
			m.snapshots <- snap
		}
	}
}

// readoutLoop pulls the latest snapshot off the channel at a bounded rate
// and updates the labels on the UI goroutine.
func (m *Monitor) readoutLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	var latest snapshot
	have := false

	for {
		select {
		case <-m.stop:
			return
		case latest = <-m.snapshots:
			have = true
		case <-ticker.C:
			if !have {
				continue
			}
			m.render(latest)
		}
	}
}

func (m *Monitor) render(s snapshot) {
	m.accLabel.SetText(fmt.Sprintf("ACC:  %d", s.acc))
	m.paccLabel.SetText(fmt.Sprintf("PACC: %d", s.pacc))
	m.rampLabels[0].SetText(fmt.Sprintf("RAMP0: %d", s.ramp0Phase))
	m.rampLabels[1].SetText(fmt.Sprintf("RAMP1: %d", s.ramp1Phase))
	m.sinLabels[0].SetText(fmt.Sprintf("SIN0: sin=%d cos=%d", s.sin0, s.cos0))
	m.sinLabels[1].SetText(fmt.Sprintf("SIN1: sin=%d cos=%d", s.sin1, s.cos1))
}
