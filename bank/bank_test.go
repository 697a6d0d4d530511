package bank_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinsemi/fv1vm/bank"
)

func buildPayload(t *testing.T, fill func(p int, i int) uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	for p := 0; p < bank.NumPrograms; p++ {
		for i := 0; i < bank.ProgramWords; i++ {
			require.NoError(t, binary.Write(&buf, binary.BigEndian, fill(p, i)))
		}
	}
	return buf.Bytes()
}

func TestReadBankWithoutMetadataSucceeds(t *testing.T) {
	payload := buildPayload(t, func(p, i int) uint32 { return uint32(p*1000 + i) })
	b, err := bank.ReadBank(bytes.NewReader(payload))
	require.NoError(t, err)

	prog, err := b.Program(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(3000), prog[0])
	assert.Equal(t, uint32(3127), prog[127])
	assert.Equal(t, "", b.Name())
}

func TestReadBankTooShortIsError(t *testing.T) {
	_, err := bank.ReadBank(bytes.NewReader(make([]byte, 100)))
	assert.Error(t, err)
}

func TestProgramOutOfRangeIsError(t *testing.T) {
	payload := buildPayload(t, func(p, i int) uint32 { return 0 })
	b, err := bank.ReadBank(bytes.NewReader(payload))
	require.NoError(t, err)

	_, err = b.Program(8)
	assert.ErrorIs(t, err, bank.ErrInvalidProgram)
	_, err = b.Program(-1)
	assert.ErrorIs(t, err, bank.ErrInvalidProgram)
}

func TestReadBankWithMetadataDecodesLabels(t *testing.T) {
	payload := buildPayload(t, func(p, i int) uint32 { return 0 })

	label := func(s string) []byte {
		b := make([]byte, 21)
		copy(b, s)
		return b
	}

	var meta bytes.Buffer
	meta.Write(label("My Bank"))
	for p := 0; p < bank.NumPrograms; p++ {
		meta.Write(label("Prog"))
		meta.Write(label("Pot0"))
		meta.Write(label("Pot1"))
		meta.Write(label("Pot2"))
	}

	full := append(payload, meta.Bytes()...)
	b, err := bank.ReadBank(bytes.NewReader(full))
	require.NoError(t, err)

	assert.Equal(t, "My Bank", b.Name())
	info, err := b.Info(0)
	require.NoError(t, err)
	assert.Equal(t, "Prog", info.Name)
	assert.Equal(t, "Pot0", info.Pot0)
	assert.Equal(t, "Pot1", info.Pot1)
	assert.Equal(t, "Pot2", info.Pot2)
}

func TestProgramStreamYieldsWordsThenExhausts(t *testing.T) {
	s := bank.NewProgramStream([]uint32{1, 2, 3})
	w, ok := s.Next()
	assert.True(t, ok)
	assert.Equal(t, uint32(1), w)

	_, _ = s.Next()
	_, _ = s.Next()
	_, ok = s.Next()
	assert.False(t, ok)
}
