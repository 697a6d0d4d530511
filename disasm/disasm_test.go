package disasm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spinsemi/fv1vm/compile"
	"github.com/spinsemi/fv1vm/decode"
	"github.com/spinsemi/fv1vm/disasm"
)

func TestFormatRendersMnemonicAndOperands(t *testing.T) {
	in := decode.Decode(0) // RDA, addr=0, coeff=0
	out := disasm.Format(in)
	assert.True(t, strings.HasPrefix(out, "RDA "))
}

func TestFormatCompiledRendersMnemonic(t *testing.T) {
	out := disasm.FormatCompiled(compile.Instruction{
		Opcode:    compile.CLR,
		Constants: [3]int32{0, 0, 0},
	})
	assert.Equal(t, "CLR 0", out)
}

func TestFormatProgramProducesOneLinePerSlot(t *testing.T) {
	words := make([]uint32, 4)
	lines := disasm.FormatProgram(words)
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "000: "))
	assert.True(t, strings.HasPrefix(lines[3], "003: "))
}
