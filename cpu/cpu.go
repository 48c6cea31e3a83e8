// Package cpu implements the MOS Technology 6502 microprocessor, as used in
// the NES: the fetch/decode/execute loop, the 13 addressing modes, and all
// 56 documented instructions, driven against a nescore/mem Bus.
package cpu

import (
	"fmt"

	"github.com/golang/glog"

	"nescore/mem"
	"nescore/status"
)

const (
	stackPage  = 0x0100
	stackReset = 0xFD

	vectorNMI   = 0xFFFA
	vectorReset = 0xFFFC
	vectorIRQ   = 0xFFFE
)

// CPU is a MOS 6502 core: six registers, a Bus it shares no state with, and
// a small amount of per-tick decode scratch. It owns no memory of its own.
type CPU struct {
	Bus *mem.Bus

	A  byte // Accumulator
	X  byte
	Y  byte
	SP byte // stack pointer; stack lives at stackPage|SP, growing downward
	PC uint16

	Status status.P

	// Halted is set once a BRK has been decoded; Tick refuses to execute
	// further instructions once it is true, until Reset clears it.
	Halted bool

	// pageCrossed is scratch written by resolve() (and by a taken branch)
	// during the current instruction; Tick() logs the page cross at glog
	// V(2). The CPU keeps no cycle count, so no penalty is added anywhere.
	// It is not part of the CPU's architectural state.
	pageCrossed bool
}

// New returns a CPU wired to a fresh RAM-resident Bus (mem.New): the
// PRG-ROM window is plain writable memory, so a caller can poke a program
// and its reset vector directly into it before calling Reset. This is the
// 0x0600-style convention used by hand-assembled test programs.
func New() *CPU {
	return &CPU{Bus: mem.New()}
}

// NewWithROM returns a CPU wired to a cartridge-backed Bus (mem.NewWithROM):
// the PRG-ROM window is read-only and the reset/IRQ/NMI vectors come from
// the ROM image itself. This is the 0x8000-style convention used by real
// cartridges.
func NewWithROM(bus *mem.Bus) *CPU {
	return &CPU{Bus: bus}
}

// Reset puts the CPU into its post-reset state: registers cleared (except
// SP, which lands at stackReset), flags cleared, and PC loaded from the
// reset vector. Per spec, callers using the RAM-resident convention must
// have already written a valid vector at vectorReset before calling Reset.
func (c *CPU) Reset() {
	c.A = 0
	c.X = 0
	c.Y = 0
	c.SP = stackReset
	c.Status.Reset()
	c.Halted = false

	c.PC = c.Bus.ReadU16(vectorReset)
}

// Load writes program directly into RAM starting at addr. It is a
// convenience for the RAM-resident program-load convention: tests can
// Load a short routine at 0x0600, write a reset vector pointing at it, and
// then Reset/Run.
func (c *CPU) Load(program []byte, addr uint16) {
	for i, b := range program {
		c.Bus.Write(addr+uint16(i), b)
	}
}

func (c *CPU) push(b byte) {
	c.Bus.Write(stackPage|uint16(c.SP), b)
	c.SP--
}

func (c *CPU) pull() byte {
	c.SP++
	return c.Bus.Read(stackPage | uint16(c.SP))
}

func (c *CPU) pushU16(v uint16) {
	c.push(byte(v >> 8)) // high byte first
	c.push(byte(v))
}

func (c *CPU) pullU16() uint16 {
	lo := c.pull()
	hi := c.pull()
	return uint16(hi)<<8 | uint16(lo)
}

// Tick executes exactly one instruction: fetch the opcode at PC, resolve
// its addressing mode, dispatch to the matching handler, and advance PC by
// the instruction's length unless the handler wrote PC itself (JMP, JSR,
// RTS, RTI, and taken branches all do). It returns halted=true if the
// decoded opcode was BRK (0x00); per spec, this core does not push an
// interrupt frame on BRK inside the normal run loop — it simply stops.
func (c *CPU) Tick() (halted bool, err error) {
	if c.Halted {
		return true, nil
	}

	opcode := c.Bus.Read(c.PC)
	info := Opcodes[opcode]
	if !info.Legal {
		return false, fmt.Errorf("cpu: illegal opcode %#02x at %#04x", opcode, c.PC)
	}
	c.PC++

	if info.Mnemonic == "BRK" {
		c.Halted = true
		return true, nil
	}

	c.pageCrossed = false
	result := c.resolve(info.Mode)

	wrotePC := c.execute(info.Mnemonic, result)
	if !wrotePC {
		c.PC += uint16(info.Length - 1)
	}

	if c.pageCrossed && pageSensitive(info.Mnemonic) {
		glog.V(2).Infof("cpu: page cross on %s, +1 cycle", info.Mnemonic)
	}

	return false, nil
}

// pageSensitive reports whether mnemonic is one whose page-crossing indexed
// read Tick logs as a +1-cycle case. Branches are excluded here; the branch
// handler only records pageCrossed.
func pageSensitive(mnemonic string) bool {
	switch mnemonic {
	case "ADC", "AND", "CMP", "EOR", "LDA", "LDX", "LDY", "ORA", "SBC":
		return true
	default:
		return false
	}
}

// RunWithCallback repeatedly ticks the CPU, invoking cb before each
// instruction executes, until a BRK halts it, cb returns false, or Tick
// returns an error.
func (c *CPU) RunWithCallback(cb func(*CPU) bool) error {
	for {
		if cb != nil && !cb(c) {
			return nil
		}
		halted, err := c.Tick()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// Run ticks the CPU until BRK halts it or an illegal opcode is hit.
func (c *CPU) Run() error {
	return c.RunWithCallback(nil)
}

// NMI services a non-maskable interrupt: push PC and status (with B
// clear), disable further IRQs, and jump to the NMI vector. Unlike BRK in
// the main run loop, this is a genuine interrupt frame push — NMI cannot
// be masked and must be able to resume the interrupted code via RTI.
func (c *CPU) NMI() {
	c.pushU16(c.PC)
	c.push(c.Status.ToByte(false))
	c.Status.Interrupt = true
	c.PC = c.Bus.ReadU16(vectorNMI)
}

// IRQ services a maskable interrupt, a no-op if Status.Interrupt is set.
func (c *CPU) IRQ() {
	if c.Status.Interrupt {
		return
	}
	c.pushU16(c.PC)
	c.push(c.Status.ToByte(false))
	c.Status.Interrupt = true
	c.PC = c.Bus.ReadU16(vectorIRQ)
}
