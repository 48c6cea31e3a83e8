package cpu

import (
	"fmt"
	"strings"
)

// Trace renders the instruction at the current PC in the nestest.log
// style: address, raw opcode bytes, disassembly (with an effective-address
// suffix for indirect/indexed modes), then the register file. It reads
// memory but never advances PC or mutates CPU state, so it is safe to call
// before Tick on the same instruction.
func (c *CPU) Trace() string {
	pc := c.PC
	opcode := c.Bus.Read(pc)
	info := Opcodes[opcode]

	var raw []byte
	var length byte = 1
	if info.Legal {
		length = info.Length
	}
	for i := byte(0); i < length; i++ {
		raw = append(raw, c.Bus.Read(pc+uint16(i)))
	}

	hexBytes := make([]string, 3)
	for i := range hexBytes {
		if i < len(raw) {
			hexBytes[i] = fmt.Sprintf("%02X", raw[i])
		} else {
			hexBytes[i] = "  "
		}
	}

	disasm := "???"
	if info.Legal {
		disasm = c.disassemble(info, pc)
	}

	return fmt.Sprintf(
		"%04X  %s  %-32s A:%02X X:%02X Y:%02X P:%02X SP:%02X",
		pc,
		strings.Join(hexBytes, " "),
		disasm,
		c.A, c.X, c.Y, c.Status.ToByte(false), c.SP,
	)
}

// disassemble formats the mnemonic and operand for the instruction at pc,
// appending the effective address (and, for non-immediate reads, the value
// stored there) for every mode that computes one indirectly.
func (c *CPU) disassemble(info OpcodeInfo, pc uint16) string {
	operandPC := pc + 1

	switch info.Mode {
	case Implicit:
		return info.Mnemonic

	case Accumulator:
		return info.Mnemonic + " A"

	case Relative:
		offset := int8(c.Bus.Read(operandPC))
		target := operandPC + 1 + uint16(offset)
		return fmt.Sprintf("%s $%04X", info.Mnemonic, target)

	case Immediate:
		return fmt.Sprintf("%s #$%02X", info.Mnemonic, c.Bus.Read(operandPC))

	case ZeroPage:
		addr := uint16(c.Bus.Read(operandPC))
		return fmt.Sprintf("%s $%02X = %02X", info.Mnemonic, addr, c.Bus.Read(addr))

	case ZeroPageX:
		base := c.Bus.Read(operandPC)
		addr := uint16(base + c.X)
		return fmt.Sprintf("%s $%02X,X @ %02X = %02X", info.Mnemonic, base, addr, c.Bus.Read(addr))

	case ZeroPageY:
		base := c.Bus.Read(operandPC)
		addr := uint16(base + c.Y)
		return fmt.Sprintf("%s $%02X,Y @ %02X = %02X", info.Mnemonic, base, addr, c.Bus.Read(addr))

	case Absolute:
		addr := c.Bus.ReadU16(operandPC)
		if info.Mnemonic == "JMP" || info.Mnemonic == "JSR" {
			return fmt.Sprintf("%s $%04X", info.Mnemonic, addr)
		}
		return fmt.Sprintf("%s $%04X = %02X", info.Mnemonic, addr, c.Bus.Read(addr))

	case AbsoluteX:
		base := c.Bus.ReadU16(operandPC)
		addr := base + uint16(c.X)
		return fmt.Sprintf("%s $%04X,X @ %04X = %02X", info.Mnemonic, base, addr, c.Bus.Read(addr))

	case AbsoluteY:
		base := c.Bus.ReadU16(operandPC)
		addr := base + uint16(c.Y)
		return fmt.Sprintf("%s $%04X,Y @ %04X = %02X", info.Mnemonic, base, addr, c.Bus.Read(addr))

	case Indirect:
		ptr := c.Bus.ReadU16(operandPC)
		lo := c.Bus.Read(ptr)
		var hi byte
		if ptr&0x00FF == 0x00FF {
			hi = c.Bus.Read(ptr & 0xFF00)
		} else {
			hi = c.Bus.Read(ptr + 1)
		}
		addr := uint16(hi)<<8 | uint16(lo)
		return fmt.Sprintf("%s ($%04X) = %04X", info.Mnemonic, ptr, addr)

	case IndirectX:
		base := c.Bus.Read(operandPC)
		ptr := uint16(base + c.X)
		lo := c.Bus.Read(ptr & 0x00FF)
		hi := c.Bus.Read((ptr + 1) & 0x00FF)
		addr := uint16(hi)<<8 | uint16(lo)
		return fmt.Sprintf("%s ($%02X,X) @ %02X = %04X = %02X", info.Mnemonic, base, ptr&0xFF, addr, c.Bus.Read(addr))

	case IndirectY:
		base := c.Bus.Read(operandPC)
		lo := c.Bus.Read(uint16(base))
		hi := c.Bus.Read(uint16(base+1) & 0x00FF)
		derefBase := uint16(hi)<<8 | uint16(lo)
		addr := derefBase + uint16(c.Y)
		return fmt.Sprintf("%s ($%02X),Y = %04X @ %04X = %02X", info.Mnemonic, base, derefBase, addr, c.Bus.Read(addr))

	default:
		return info.Mnemonic
	}
}
