package monitor

import (
	"testing"

	"github.com/spinsemi/fv1vm/vm"
)

func TestNewMonitorBuildsWindowAndLabels(t *testing.T) {
	machine := vm.NewMachine()
	machine.Compile(make([]uint32, 128))

	m := newMonitor(machine)
	defer m.app.Quit()

	if m.window == nil {
		t.Fatal("window not initialized")
	}
	if m.accLabel == nil || m.paccLabel == nil {
		t.Fatal("ACC/PACC labels not initialized")
	}
	if m.rampLabels[0] == nil || m.rampLabels[1] == nil {
		t.Fatal("ramp labels not initialized")
	}
	if m.sinLabels[0] == nil || m.sinLabels[1] == nil {
		t.Fatal("sin labels not initialized")
	}
}

func TestRenderUpdatesLabelText(t *testing.T) {
	machine := vm.NewMachine()
	machine.Compile(make([]uint32, 128))
	m := newMonitor(machine)
	defer m.app.Quit()

	m.render(snapshot{acc: 42, pacc: -7, ramp0Phase: 100, sin0: 5, cos0: 6})

	if got := m.accLabel.Text; got != "ACC:  42" {
		t.Errorf("accLabel.Text = %q, want %q", got, "ACC:  42")
	}
	if got := m.paccLabel.Text; got != "PACC: -7" {
		t.Errorf("paccLabel.Text = %q, want %q", got, "PACC: -7")
	}
}

func TestPotSliderPublishesParameters(t *testing.T) {
	machine := vm.NewMachine()
	machine.Compile(make([]uint32, 128))
	m := newMonitor(machine)
	defer m.app.Quit()

	cont := m.newPotSlider("POT0", 0)
	slider := cont.Objects[0]
	type changer interface{ SetValue(float64) }
	sl, ok := slider.(changer)
	if !ok {
		t.Fatal("first object in pot slider container is not a *widget.Slider")
	}
	sl.SetValue(500)

	select {
	case p := <-m.params:
		if p.Pot[0] == 0 {
			t.Error("expected a nonzero pot value after SetValue(500)")
		}
	default:
		t.Fatal("no parameters published after SetValue")
	}
}
