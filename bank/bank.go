// Package bank reads FV-1 EEPROM bank images: eight 128-word programs plus
// optional program/pot name metadata, the byte-stream boundary spec.md §1
// calls out as external to the VM core.
package bank

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// ProgramWords is the fixed instruction-slot count of one FV-1 program.
	ProgramWords = 128
	// ProgramBytes is one program's big-endian wire size.
	ProgramBytes = ProgramWords * 4
	// NumPrograms is the number of programs an EEPROM bank holds.
	NumPrograms = 8
	// PayloadBytes is the bank's fixed program payload size.
	PayloadBytes = NumPrograms * ProgramBytes

	labelBytes    = 21
	descriptorLen = 4 * labelBytes
	metadataBytes = labelBytes + NumPrograms*descriptorLen
)

// ErrInvalidProgram is returned by Bank.Program for an out-of-range index.
var ErrInvalidProgram = errors.New("bank: program index out of range 0..7")

// ProgramInfo holds one program's optional EEPROM name labels.
type ProgramInfo struct {
	Name string
	Pot0 string
	Pot1 string
	Pot2 string
}

// Bank is a decoded EEPROM image: eight programs plus optional metadata.
// Metadata strings are empty when the payload wasn't followed by the
// 693-byte metadata block (spec.md §6).
type Bank struct {
	programs [NumPrograms][ProgramWords]uint32
	name     string
	info     [NumPrograms]ProgramInfo
}

// Name returns the bank's 21-byte ASCII name, or "" if no metadata was read.
func (b *Bank) Name() string { return b.name }

// Program returns program n's 128 instruction words. n must be 0..7.
func (b *Bank) Program(n int) ([ProgramWords]uint32, error) {
	if n < 0 || n >= NumPrograms {
		return [ProgramWords]uint32{}, ErrInvalidProgram
	}
	return b.programs[n], nil
}

// Info returns program n's name/pot labels. n must be 0..7.
func (b *Bank) Info(n int) (ProgramInfo, error) {
	if n < 0 || n >= NumPrograms {
		return ProgramInfo{}, ErrInvalidProgram
	}
	return b.info[n], nil
}

// ProgramStream adapts one program's words into the decoder-facing
// "Next() (word, ok)" stream interface spec.md §6 describes as the
// collaborator boundary. ReadBank never yields fewer than ProgramWords
// words per program (a short payload is an error), but ProgramStream itself
// accepts a shorter slice for callers constructing programs ad hoc.
type ProgramStream struct {
	words []uint32
	pos   int
}

// NewProgramStream wraps a word slice for sequential decode consumption.
func NewProgramStream(words []uint32) *ProgramStream {
	return &ProgramStream{words: words}
}

// Next returns the next word and true, or (0, false) once exhausted.
func (s *ProgramStream) Next() (uint32, bool) {
	if s.pos >= len(s.words) {
		return 0, false
	}
	w := s.words[s.pos]
	s.pos++
	return w, true
}

// ReadBank reads a bank image: PayloadBytes of big-endian program words,
// optionally followed by metadataBytes of NUL-padded ASCII labels. A
// payload shorter than PayloadBytes is an error; the metadata block is
// optional and its absence is not an error (spec.md §7).
func ReadBank(r io.Reader) (*Bank, error) {
	payload := make([]byte, PayloadBytes)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("bank: reading program payload: %w", err)
	}

	b := &Bank{}
	for p := 0; p < NumPrograms; p++ {
		for i := 0; i < ProgramWords; i++ {
			off := (p*ProgramWords + i) * 4
			b.programs[p][i] = binary.BigEndian.Uint32(payload[off : off+4])
		}
	}

	meta := make([]byte, metadataBytes)
	n, err := io.ReadFull(r, meta)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return b, nil // no metadata present; not an error
	case err != nil:
		return nil, fmt.Errorf("bank: reading metadata: %w", err)
	case n != metadataBytes:
		return b, nil
	}

	b.name = decodeLabel(meta[:labelBytes])
	rest := meta[labelBytes:]
	for p := 0; p < NumPrograms; p++ {
		d := rest[p*descriptorLen : (p+1)*descriptorLen]
		b.info[p] = ProgramInfo{
			Name: decodeLabel(d[0*labelBytes : 1*labelBytes]),
			Pot0: decodeLabel(d[1*labelBytes : 2*labelBytes]),
			Pot1: decodeLabel(d[2*labelBytes : 3*labelBytes]),
			Pot2: decodeLabel(d[3*labelBytes : 4*labelBytes]),
		}
	}
	return b, nil
}

// decodeLabel trims a fixed-width NUL-padded ASCII label to its content.
func decodeLabel(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
