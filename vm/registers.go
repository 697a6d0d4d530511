package vm

// Register file indices (spec.md §3, fv1_registers.h). SIN0/SIN1/RMP0/RMP1
// rate/range pairs occupy 0-7, the three pot registers and ADC/DAC/address
// pointer occupy 0x10-0x18, and the 32 general-purpose registers start at
// 0x20.
const (
	RegSIN0Rate  = 0x00
	RegSIN0Range = 0x01
	RegSIN1Rate  = 0x02
	RegSIN1Range = 0x03
	RegRMP0Rate  = 0x04
	RegRMP0Range = 0x05
	RegRMP1Rate  = 0x06
	RegRMP1Range = 0x07

	RegPOT0    = 0x10
	RegPOT1    = 0x11
	RegPOT2    = 0x12
	RegADCL    = 0x14
	RegADCR    = 0x15
	RegDACL    = 0x16
	RegDACR    = 0x17
	RegAddrPtr = 0x18

	RegGeneral0 = 0x20
)

// NumRegisters is the size of the register file: 32 general-purpose
// registers starting at RegGeneral0, plus the control/LFO registers below
// it.
const NumRegisters = RegGeneral0 + 32

// DelayAddrMask masks a register's raw value down to the 15-bit delay
// address RMPA reads through ADDR_PTR.
const DelayAddrMask = 0x7FFF

// LoadAddr extracts the delay-memory address ADDR_PTR encodes: the top 15
// bits of its S23 value (fv1_registers.h's RegisterBase::load_addr).
func LoadAddr(regValue int32) int32 {
	return (regValue >> 8) & DelayAddrMask
}
