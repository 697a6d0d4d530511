package wavio_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinsemi/fv1vm/vm"
	"github.com/spinsemi/fv1vm/wavio"
)

func TestWriteThenReadRoundTripsFrames(t *testing.T) {
	frames := []vm.AudioFrame{
		{L: 1<<23 - 1, R: -(1 << 23)},
		{L: 0, R: 1 << 20},
	}

	var buf bytes.Buffer
	w := wavio.NewWriter(&buf, 44100)
	w.Write(frames)
	require.NoError(t, w.Flush())

	got, format, err := wavio.ReadAll(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(44100), format.SampleRate)
	require.Len(t, got, 2)

	// 16-bit truncation loses the low 8 fraction bits.
	assert.Equal(t, frames[0].L>>8<<8, got[0].L)
	assert.Equal(t, frames[0].R>>8<<8, got[0].R)
	assert.Equal(t, frames[1].L>>8<<8, got[1].L)
	assert.Equal(t, frames[1].R>>8<<8, got[1].R)
}

func TestReadAllRejectsMonoFile(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	writeUint32(&buf, 36)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	writeUint32(&buf, 16)
	writeUint16(&buf, 1) // PCM
	writeUint16(&buf, 1) // mono
	writeUint32(&buf, 44100)
	writeUint32(&buf, 44100*2)
	writeUint16(&buf, 2)
	writeUint16(&buf, 16)

	_, _, err := wavio.ReadAll(&buf)
	assert.Error(t, err)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}

func TestReadAllRejectsNonRIFF(t *testing.T) {
	_, _, err := wavio.ReadAll(bytes.NewReader([]byte("not a wav file at all......")))
	assert.Error(t, err)
}
