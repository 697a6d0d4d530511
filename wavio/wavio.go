// Package wavio reads and writes 16-bit PCM stereo WAV files, converting
// between wire samples and the engine's S.23 fixed-point frames. It is the
// audio-file boundary spec.md §1 places outside the VM core; it is built on
// the standard library only (see DESIGN.md: WAV is a fixed, well-known
// binary layout with no parsing ambiguity a third-party codec would help
// with, and none of the example repos carry a WAV dependency).
package wavio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/spinsemi/fv1vm/vm"
)

const (
	bitsPerSample = 16
	numChannels   = 2
	fmtChunkSize  = 16
	pcmFormat     = 1

	// sampleToS23 left-shifts a sign-extended 16-bit sample into S.23's
	// 24-bit field (8 extra fraction/headroom bits).
	sampleToS23 = 8
)

// Format describes a WAV file's sample rate; bit depth and channel count
// are fixed by this package at 16-bit stereo.
type Format struct {
	SampleRate uint32
}

// ReadAll reads an entire WAV file's data chunk into audio frames scaled to
// S.23, alongside its format.
func ReadAll(r io.Reader) ([]vm.AudioFrame, Format, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, Format{}, fmt.Errorf("wavio: reading RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, Format{}, fmt.Errorf("wavio: not a RIFF/WAVE file")
	}

	var format Format
	var haveFmt bool
	var frames []vm.AudioFrame

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, Format{}, fmt.Errorf("wavio: reading chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, Format{}, fmt.Errorf("wavio: reading fmt chunk: %w", err)
			}
			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			channels := binary.LittleEndian.Uint16(body[2:4])
			sampleRate := binary.LittleEndian.Uint32(body[4:8])
			bits := binary.LittleEndian.Uint16(body[14:16])
			if audioFormat != pcmFormat {
				return nil, Format{}, fmt.Errorf("wavio: unsupported audio format %d (only PCM)", audioFormat)
			}
			if channels != numChannels {
				return nil, Format{}, fmt.Errorf("wavio: unsupported channel count %d (only stereo)", channels)
			}
			if bits != bitsPerSample {
				return nil, Format{}, fmt.Errorf("wavio: unsupported bit depth %d (only 16-bit)", bits)
			}
			format.SampleRate = sampleRate
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, Format{}, fmt.Errorf("wavio: data chunk before fmt chunk")
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, Format{}, fmt.Errorf("wavio: reading data chunk: %w", err)
			}
			frameBytes := numChannels * (bitsPerSample / 8)
			frames = make([]vm.AudioFrame, len(body)/frameBytes)
			for i := range frames {
				off := i * frameBytes
				l := int16(binary.LittleEndian.Uint16(body[off : off+2]))
				rr := int16(binary.LittleEndian.Uint16(body[off+2 : off+4]))
				frames[i] = vm.AudioFrame{
					L: int32(l) << sampleToS23,
					R: int32(rr) << sampleToS23,
				}
			}

		default:
			// Skip unrecognized chunks (e.g. LIST, fact); chunks are padded
			// to an even byte boundary.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, Format{}, fmt.Errorf("wavio: skipping chunk %q: %w", id, err)
			}
		}
	}

	if !haveFmt {
		return nil, Format{}, fmt.Errorf("wavio: missing fmt chunk")
	}
	return frames, format, nil
}

// Writer emits a 16-bit stereo PCM WAV file, converting S.23 frames back to
// 16-bit samples by truncating the low 8 fraction bits.
type Writer struct {
	w          io.Writer
	sampleRate uint32
	frames     []vm.AudioFrame
}

// NewWriter returns a Writer buffering frames for a single Flush call, since
// the RIFF/data chunk sizes must be known up front.
func NewWriter(w io.Writer, sampleRate uint32) *Writer {
	return &Writer{w: w, sampleRate: sampleRate}
}

// Write appends frames to the pending output.
func (wr *Writer) Write(frames []vm.AudioFrame) {
	wr.frames = append(wr.frames, frames...)
}

// Flush writes the RIFF header, fmt chunk, and all buffered frames as one
// data chunk.
func (wr *Writer) Flush() error {
	dataSize := uint32(len(wr.frames)) * numChannels * (bitsPerSample / 8)
	byteRate := wr.sampleRate * numChannels * (bitsPerSample / 8)
	blockAlign := uint16(numChannels * (bitsPerSample / 8))

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36+dataSize)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(hdr[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(hdr[22:24], numChannels)
	binary.LittleEndian.PutUint32(hdr[24:28], wr.sampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataSize)

	if _, err := wr.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wavio: writing header: %w", err)
	}

	buf := make([]byte, 4)
	for _, f := range wr.frames {
		binary.LittleEndian.PutUint16(buf[0:2], uint16(int16(f.L>>sampleToS23)))
		binary.LittleEndian.PutUint16(buf[2:4], uint16(int16(f.R>>sampleToS23)))
		if _, err := wr.w.Write(buf); err != nil {
			return fmt.Errorf("wavio: writing samples: %w", err)
		}
	}
	return nil
}
