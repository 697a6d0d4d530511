// Command fv1run loads an FV-1 bank and program, executes it against an
// input WAV file (or a synthesized test tone), and writes the result to an
// output WAV file. It can instead launch a TUI debugger or desktop monitor
// in place of batch execution.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	pflag "github.com/spf13/pflag"

	"github.com/spinsemi/fv1vm/bank"
	"github.com/spinsemi/fv1vm/config"
	"github.com/spinsemi/fv1vm/debugger"
	"github.com/spinsemi/fv1vm/monitor"
	"github.com/spinsemi/fv1vm/vm"
	"github.com/spinsemi/fv1vm/wavio"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const testToneSeconds = 2

func main() {
	var (
		bankFile    = flag.String("bank", "", "EEPROM bank image to load")
		programIdx  = flag.Int("program", 0, "Program index within the bank (0-7)")
		inFile      = flag.String("in", "", "Input WAV file (default: synthesized test tone)")
		outFile     = flag.String("out", "out.wav", "Output WAV file")
		tuiMode     = flag.Bool("tui", false, "Launch the TUI debugger instead of batch execution")
		monitorMode = flag.Bool("monitor", false, "Launch the desktop monitor instead of batch execution")
		showVersion = flag.Bool("version", false, "Show version information")
	)

	var pot0, pot1, pot2 float64
	pflag.Float64VarP(&pot0, "pot0", "0", 0.0, "Pot 0 value (0.0-1.0)")
	pflag.Float64VarP(&pot1, "pot1", "1", 0.0, "Pot 1 value (0.0-1.0)")
	pflag.Float64VarP(&pot2, "pot2", "2", 0.0, "Pot 2 value (0.0-1.0)")
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()

	if *showVersion {
		fmt.Printf("fv1vm %s\n", Version)
		os.Exit(0)
	}

	if *bankFile == "" {
		fmt.Fprintln(os.Stderr, "fv1run: -bank is required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fv1run: loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fv1run: %v\n", err)
		os.Exit(1)
	}

	words, err := loadProgram(*bankFile, *programIdx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fv1run: %v\n", err)
		os.Exit(1)
	}

	machine := vm.NewMachine()
	machine.Compile(words)
	machine.SetParameters(vm.Parameters{Pot: [3]int32{
		potToS23(pot0), potToS23(pot1), potToS23(pot2),
	}})
	logger.Info("program loaded", "bank", *bankFile, "program", *programIdx)

	if *tuiMode {
		dbg := debugger.NewDebugger(machine)
		dbg.Words = words
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "fv1run: TUI error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *monitorMode {
		if err := monitor.Run(machine); err != nil {
			fmt.Fprintf(os.Stderr, "fv1run: monitor error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sampleRate := uint32(cfg.Execution.SampleRate)
	var in []vm.AudioFrame
	if *inFile != "" {
		f, err := os.Open(*inFile) // #nosec G304 -- user-specified input WAV path
		if err != nil {
			fmt.Fprintf(os.Stderr, "fv1run: opening input WAV: %v\n", err)
			os.Exit(1)
		}
		frames, format, err := wavio.ReadAll(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "fv1run: reading input WAV: %v\n", err)
			os.Exit(1)
		}
		in = frames
		sampleRate = format.SampleRate
	} else {
		in = synthesizeTestTone(sampleRate)
	}

	out := make([]vm.AudioFrame, len(in))
	machine.Execute(in, out)
	logger.Info("batch execution complete", "frames", len(out), "sample_rate", sampleRate)

	outF, err := os.Create(*outFile) // #nosec G304 -- user-specified output WAV path
	if err != nil {
		fmt.Fprintf(os.Stderr, "fv1run: creating output WAV: %v\n", err)
		os.Exit(1)
	}
	defer outF.Close()

	w := wavio.NewWriter(outF, sampleRate)
	w.Write(out)
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "fv1run: writing output WAV: %v\n", err)
		os.Exit(1)
	}
}

func loadProgram(bankFile string, programIdx int) ([]uint32, error) {
	f, err := os.Open(bankFile) // #nosec G304 -- user-specified bank file path
	if err != nil {
		return nil, fmt.Errorf("opening bank file: %w", err)
	}
	defer f.Close()

	b, err := bank.ReadBank(f)
	if err != nil {
		return nil, fmt.Errorf("reading bank: %w", err)
	}
	prog, err := b.Program(programIdx)
	if err != nil {
		return nil, fmt.Errorf("selecting program %d: %w", programIdx, err)
	}
	return prog[:], nil
}

// potToS23 clamps a 0.0-1.0 pot value and converts it to S23.
func potToS23(v float64) int32 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return int32(v * float64(int32(1)<<23))
}

// synthesizeTestTone generates a short 440 Hz sine wave at half scale, used
// when no -in WAV is given.
func synthesizeTestTone(sampleRate uint32) []vm.AudioFrame {
	const freq = 440.0
	n := int(sampleRate) * testToneSeconds
	frames := make([]vm.AudioFrame, n)
	for i := range frames {
		t := float64(i) / float64(sampleRate)
		s := int32(math.Sin(2*math.Pi*freq*t) * float64(int32(1)<<22))
		frames[i] = vm.AudioFrame{L: s, R: s}
	}
	return frames
}
