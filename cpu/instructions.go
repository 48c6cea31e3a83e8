package cpu

import "nescore/status"

// execute dispatches to the handler for mnemonic, passing the AddrResult
// already computed by resolve(). It returns wrotePC: true if the handler
// set PC itself (JMP, JSR, RTS, RTI, or a taken branch), in which case
// Tick must not also apply the normal length-based advance.
func (c *CPU) execute(mnemonic string, r AddrResult) (wrotePC bool) {
	switch mnemonic {
	case "ADC":
		c.adc(c.operand(r))
	case "AND":
		c.A &= c.operand(r)
		c.Status.UpdateZN(c.A)
	case "ASL":
		c.shiftLeft(r, false)
	case "BCC":
		return c.branch(r, !c.Status.Carry)
	case "BCS":
		return c.branch(r, c.Status.Carry)
	case "BEQ":
		return c.branch(r, c.Status.Zero)
	case "BIT":
		m := c.operand(r)
		c.Status.Zero = c.A&m == 0
		c.Status.Overflow = m&0x40 != 0
		c.Status.Negative = m&0x80 != 0
	case "BMI":
		return c.branch(r, c.Status.Negative)
	case "BNE":
		return c.branch(r, !c.Status.Zero)
	case "BPL":
		return c.branch(r, !c.Status.Negative)
	case "BVC":
		return c.branch(r, !c.Status.Overflow)
	case "BVS":
		return c.branch(r, c.Status.Overflow)
	case "CLC":
		c.Status.Carry = false
	case "CLD":
		c.Status.Decimal = false
	case "CLI":
		c.Status.Interrupt = false
	case "CLV":
		c.Status.Overflow = false
	case "CMP":
		c.Status.UpdateCompare(c.A, c.operand(r))
	case "CPX":
		c.Status.UpdateCompare(c.X, c.operand(r))
	case "CPY":
		c.Status.UpdateCompare(c.Y, c.operand(r))
	case "DEC":
		v := c.operand(r) - 1
		c.Bus.Write(r.ReadAddress(), v)
		c.Status.UpdateZN(v)
	case "DEX":
		c.X--
		c.Status.UpdateZN(c.X)
	case "DEY":
		c.Y--
		c.Status.UpdateZN(c.Y)
	case "EOR":
		c.A ^= c.operand(r)
		c.Status.UpdateZN(c.A)
	case "INC":
		v := c.operand(r) + 1
		c.Bus.Write(r.ReadAddress(), v)
		c.Status.UpdateZN(v)
	case "INX":
		c.X++
		c.Status.UpdateZN(c.X)
	case "INY":
		c.Y++
		c.Status.UpdateZN(c.Y)
	case "JMP":
		c.PC = r.ReadAddress()
		return true
	case "JSR":
		c.pushU16(c.PC + 1) // return address is the last byte of JSR, per spec §4.4
		c.PC = r.ReadAddress()
		return true
	case "LDA":
		c.A = c.operand(r)
		c.Status.UpdateZN(c.A)
	case "LDX":
		c.X = c.operand(r)
		c.Status.UpdateZN(c.X)
	case "LDY":
		c.Y = c.operand(r)
		c.Status.UpdateZN(c.Y)
	case "LSR":
		c.shiftRight(r, false)
	case "NOP":
		// no-op
	case "ORA":
		c.A |= c.operand(r)
		c.Status.UpdateZN(c.A)
	case "PHA":
		c.push(c.A)
	case "PHP":
		c.push(c.Status.ToByte(true))
	case "PLA":
		c.A = c.pull()
		c.Status.UpdateZN(c.A)
	case "PLP":
		c.Status = status.FromByte(c.pull())
	case "ROL":
		c.shiftLeft(r, true)
	case "ROR":
		c.shiftRight(r, true)
	case "RTI":
		c.Status = status.FromByte(c.pull())
		c.PC = c.pullU16()
		return true
	case "RTS":
		c.PC = c.pullU16() + 1
		return true
	case "SBC":
		c.sbc(c.operand(r))
	case "SEC":
		c.Status.Carry = true
	case "SED":
		c.Status.Decimal = true
	case "SEI":
		c.Status.Interrupt = true
	case "STA":
		c.Bus.Write(r.ReadAddress(), c.A)
	case "STX":
		c.Bus.Write(r.ReadAddress(), c.X)
	case "STY":
		c.Bus.Write(r.ReadAddress(), c.Y)
	case "TAX":
		c.X = c.A
		c.Status.UpdateZN(c.X)
	case "TAY":
		c.Y = c.A
		c.Status.UpdateZN(c.Y)
	case "TSX":
		c.X = c.SP
		c.Status.UpdateZN(c.X)
	case "TXA":
		c.A = c.X
		c.Status.UpdateZN(c.A)
	case "TXS":
		c.SP = c.X
	case "TYA":
		c.A = c.Y
		c.Status.UpdateZN(c.A)
	default:
		panic("cpu: unhandled mnemonic " + mnemonic)
	}
	return false
}

// operand reads the byte an instruction operates on, whether that's the
// Accumulator or a memory location.
func (c *CPU) operand(r AddrResult) byte {
	if r.IsAccumulator() {
		return c.A
	}
	return c.Bus.Read(r.ReadAddress())
}

func (c *CPU) storeOperand(r AddrResult, v byte) {
	if r.IsAccumulator() {
		c.A = v
		return
	}
	c.Bus.Write(r.ReadAddress(), v)
}

// adc implements Add with Carry using the canonical two's-complement
// overflow formula: V is set iff the operands share a sign and the result
// does not. This replaces the source's overflowing_add-based carry-only
// computation, which never set V at all.
func (c *CPU) adc(m byte) {
	carryIn := uint16(0)
	if c.Status.Carry {
		carryIn = 1
	}
	sum := uint16(c.A) + uint16(m) + carryIn
	result := byte(sum)

	overflow := (c.A^result)&(m^result)&0x80 != 0
	c.A = result
	c.Status.UpdateCarryZN(c.A, sum > 0xFF)
	c.Status.Overflow = overflow
}

// sbc implements Subtract with Carry as ADC with the operand's ones'
// complement, per the standard 6502 identity A-M-(1-C) == A+^M+C.
func (c *CPU) sbc(m byte) {
	c.adc(^m)
}

// shiftLeft implements ASL (rotate=false) and ROL (rotate=true). The
// source shifted by 2 instead of 1 for both; corrected here to <<= 1.
func (c *CPU) shiftLeft(r AddrResult, rotate bool) {
	v := c.operand(r)
	carryIn := byte(0)
	if rotate && c.Status.Carry {
		carryIn = 1
	}
	carryOut := v&0x80 != 0
	v = v<<1 | carryIn
	c.storeOperand(r, v)
	c.Status.UpdateCarryZN(v, carryOut)
}

// shiftRight implements LSR (rotate=false) and ROR (rotate=true). The
// source shifted by 2 instead of 1, and aliased ROR to the ROL handler
// entirely; both are corrected here.
func (c *CPU) shiftRight(r AddrResult, rotate bool) {
	v := c.operand(r)
	carryIn := byte(0)
	if rotate && c.Status.Carry {
		carryIn = 0x80
	}
	carryOut := v&0x01 != 0
	v = v>>1 | carryIn
	c.storeOperand(r, v)
	c.Status.UpdateCarryZN(v, carryOut)
}

// branch applies the relative offset if take is true, wrapping at the
// 16-bit boundary, and reports wrotePC so Tick skips the normal advance.
// take=false still returns false so the caller falls through to that
// normal advance, landing PC on the instruction after the branch.
func (c *CPU) branch(r AddrResult, take bool) bool {
	if !take {
		return false
	}
	target := c.PC + 1 + uint16(r.RelativeOffset())
	c.pageCrossed = !samePage(c.PC+1, target)
	c.PC = target
	return true
}
