package vm

// DelayMemorySize is the number of S23 samples the circular delay buffer
// holds (spec.md §3): 32768, the FV-1's full delay RAM.
const DelayMemorySize = 32768

// DelayMemory is the circular sample buffer RDA/WRA/WRAP/RMPA/CHO_RDA*
// address relative to a moving cursor (spec.md §4.4, fv1_delay_memory.h).
// Offsets may be negative (a COMPA chorus read subtracts the LFO offset);
// Load/Store wrap them modulo the buffer size around the current cursor.
type DelayMemory struct {
	buf      [DelayMemorySize]int32
	cursor   int32
	lastRead int32
}

func (d *DelayMemory) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.cursor = 0
	d.lastRead = 0
}

func (d *DelayMemory) index(offset int32) int32 {
	return (d.cursor + offset) & (DelayMemorySize - 1)
}

// Load reads the sample at the given offset from the cursor and records it
// as the "last read" value WRAP consults.
func (d *DelayMemory) Load(offset int32) int32 {
	d.lastRead = d.buf[d.index(offset)]
	return d.lastRead
}

// Store writes a sample at the given offset from the cursor.
func (d *DelayMemory) Store(offset, value int32) {
	d.buf[d.index(offset)] = value
}

// LastRead returns the most recent value returned by Load.
func (d *DelayMemory) LastRead() int32 { return d.lastRead }

// Tick retreats the cursor by one slot (wrapping), so that a value written
// at offset 0 this sample is read back at offset 1 on the next.
func (d *DelayMemory) Tick() {
	if d.cursor == 0 {
		d.cursor = DelayMemorySize - 1
	} else {
		d.cursor--
	}
}
