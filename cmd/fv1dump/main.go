// Command fv1dump decodes and disassembles an FV-1 bank or raw program
// image without executing it.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/spinsemi/fv1vm/bank"
	"github.com/spinsemi/fv1vm/config"
	"github.com/spinsemi/fv1vm/decode"
	"github.com/spinsemi/fv1vm/disasm"
)

func main() {
	var (
		bankFile = flag.String("bank", "", "EEPROM bank image to read")
		rawFile  = flag.String("raw", "", "Raw 128-word program image (big-endian)")
		program  = flag.Int("program", 0, "Program index within the bank (0-7)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fv1dump: loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fv1dump: %v\n", err)
		os.Exit(1)
	}

	if *bankFile == "" && *rawFile == "" {
		fmt.Fprintln(os.Stderr, "fv1dump: one of -bank or -raw is required")
		flag.Usage()
		os.Exit(1)
	}

	var words []uint32

	if *bankFile != "" {
		words, err = loadFromBank(*bankFile, *program)
	} else {
		words, err = loadRaw(*rawFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fv1dump: %v\n", err)
		os.Exit(1)
	}

	for _, line := range disasm.FormatProgram(words) {
		fmt.Println(line)
	}

	unknown := 0
	for _, w := range words {
		if decode.Decode(w).Opcode == decode.UNKNOWN {
			unknown++
		}
	}
	if unknown > 0 {
		logger.Warn("unknown opcodes decoded", "count", unknown)
	}
}

func loadFromBank(path string, programIndex int) ([]uint32, error) {
	f, err := os.Open(path) // #nosec G304 -- user-specified bank file path
	if err != nil {
		return nil, fmt.Errorf("opening bank file: %w", err)
	}
	defer f.Close()

	b, err := bank.ReadBank(f)
	if err != nil {
		return nil, fmt.Errorf("reading bank: %w", err)
	}

	prog, err := b.Program(programIndex)
	if err != nil {
		return nil, fmt.Errorf("selecting program %d: %w", programIndex, err)
	}
	return prog[:], nil
}

func loadRaw(path string) ([]uint32, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified raw file path
	if err != nil {
		return nil, fmt.Errorf("reading raw program: %w", err)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("raw program size %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[i*4 : i*4+4])
	}
	return words, nil
}
