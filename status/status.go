// Package status implements the 6502 Processor Status (P) register: six
// semantic flags, plus the two fixed bits (B, Unused) that only exist on the
// serialized byte.
//
// https://www.nesdev.org/wiki/Status_flags#Flags
package status

import "nescore/mask"

// Bit offsets within the serialized byte. 7654 3210 = NV1B DIZC.
const (
	carryBit     = 0
	zeroBit      = 1
	interruptBit = 2
	decimalBit   = 3
	breakBit     = 4
	unusedBit    = 5
	overflowBit  = 6
	negativeBit  = 7
)

// P holds the six semantic flags. B and Unused are not stored here: they are
// synthesized on ToByte and discarded on FromByte, per the round-trip law in
// spec §3 ("status -> byte -> status preserves the six semantic flags").
type P struct {
	Carry     bool
	Zero      bool
	Interrupt bool // IRQ disable
	Decimal   bool // observed only; the NES 6502 never acts on it
	Overflow  bool
	Negative  bool
}

// ToByte serializes P into a status byte. brk controls bit 4 (B): PHP and
// BRK push it as 1, an IRQ/NMI push pushes it as 0. Bit 5 (Unused) is always
// 1, per spec §4.2.
func (p P) ToByte(brk bool) byte {
	var b byte
	if p.Carry {
		b |= 1 << carryBit
	}
	if p.Zero {
		b |= 1 << zeroBit
	}
	if p.Interrupt {
		b |= 1 << interruptBit
	}
	if p.Decimal {
		b |= 1 << decimalBit
	}
	if brk {
		b |= 1 << breakBit
	}
	b |= 1 << unusedBit
	if p.Overflow {
		b |= 1 << overflowBit
	}
	if p.Negative {
		b |= 1 << negativeBit
	}
	return b
}

// FromByte deserializes a status byte into P. Bits 4 (B) and 5 (Unused) are
// discarded, matching PLP/RTI semantics in spec §4.2.
func FromByte(b byte) P {
	return P{
		Carry:     mask.IsSet(b, mask.I8-carryBit),
		Zero:      mask.IsSet(b, mask.I8-zeroBit),
		Interrupt: mask.IsSet(b, mask.I8-interruptBit),
		Decimal:   mask.IsSet(b, mask.I8-decimalBit),
		Overflow:  mask.IsSet(b, mask.I8-overflowBit),
		Negative:  mask.IsSet(b, mask.I8-negativeBit),
	}
}

// UpdateZN sets Zero and Negative from a result byte. Depends only on v:
// Zero iff v == 0, Negative iff v's bit 7 is set.
func (p *P) UpdateZN(v byte) {
	p.Zero = v == 0
	p.Negative = v&0x80 != 0
}

// UpdateCompare sets Carry/Zero/Negative as CMP/CPX/CPY do: Carry iff a >= b,
// Zero iff a == b, Negative from the wrapping subtraction a-b (not the
// signed mathematical difference, which may underflow).
func (p *P) UpdateCompare(a byte, b byte) {
	p.Carry = a >= b
	p.Zero = a == b
	p.Negative = (a-b)&0x80 != 0
}

// UpdateCarryZN applies UpdateZN(v) and sets Carry to carryOut directly, as
// used by ADC/SBC and the accumulator/memory shift instructions.
func (p *P) UpdateCarryZN(v byte, carryOut bool) {
	p.UpdateZN(v)
	p.Carry = carryOut
}

// Reset clears all six semantic flags, per spec §4.2.
func (p *P) Reset() {
	*p = P{}
}
