// Package mem implements the CPU-side memory bus: address decoding, 2 KiB
// RAM mirroring, and the PRG-ROM read-only window, per spec §3/§4.5.
package mem

import (
	"github.com/golang/glog"

	"nescore/ines"
)

const (
	ramSize    = 0x0800 // 2 KiB, mirrored every 2 KiB up to 0x1FFF
	ramEnd     = 0x1FFF
	ppuStart   = 0x2000
	ppuEnd     = 0x3FFF
	apuStart   = 0x4000
	apuEnd     = 0x7FFF
	prgStart   = 0x8000
	prgWindow  = 0x8000 // 32 KiB window at 0x8000..=0xFFFF
)

// A Bus is the CPU's view of the 16-bit address space. It owns RAM outright,
// and either a read-only reference to cartridge PRG-ROM, or (for the
// RAM-resident program-load convention, see cpu.New) a plain writable buffer
// standing in for the PRG-ROM window so that a reset vector can be poked
// directly into it.
type Bus struct {
	ram [ramSize]byte

	rom    ines.Rom
	hasROM bool

	// backs 0x8000..=0xFFFF when hasROM is false, so small test programs
	// (and their reset vectors) can live entirely in writable memory.
	ramBacked [prgWindow]byte
}

// New returns a Bus with no cartridge attached; the PRG-ROM window is backed
// by plain writable memory. Used by the RAM-resident program-load
// convention (cpu.New), where the reset vector is written directly.
func New() *Bus {
	return &Bus{}
}

// NewWithROM returns a Bus backed by the given cartridge image. The PRG-ROM
// window is read-only; its reset/IRQ/NMI vectors come from the ROM image
// itself.
func NewWithROM(rom ines.Rom) *Bus {
	return &Bus{rom: rom, hasROM: true}
}

// Read returns the byte at addr. Reads are total: every address in the
// 16-bit space yields some byte, even if the underlying region is
// unimplemented (PPU) or unmapped (APU/IO/SRAM).
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr <= ramEnd:
		return b.ram[addr&0x07FF]

	case addr >= ppuStart && addr <= ppuEnd:
		glog.Warningf("mem: read from unsupported PPU register window at %#04x", addr)
		return 0

	case addr >= apuStart && addr <= apuEnd:
		glog.Warningf("mem: read from unsupported APU/IO/SRAM window at %#04x, returning 0", addr)
		return 0

	default: // addr >= prgStart
		return b.readPRG(addr)
	}
}

// Write stores data at addr. Writes are total but may be a no-op: the
// PRG-ROM window silently discards writes (logged, non-fatal), and the
// APU/IO/SRAM window drops writes outright, matching real cartridge/bus
// behavior.
func (b *Bus) Write(addr uint16, data byte) {
	switch {
	case addr <= ramEnd:
		b.ram[addr&0x07FF] = data

	case addr >= ppuStart && addr <= ppuEnd:
		glog.Warningf("mem: write to unsupported PPU register window at %#04x", addr)

	case addr >= apuStart && addr <= apuEnd:
		// dropped silently: no SRAM/APU device is modeled by this core

	default: // addr >= prgStart
		b.writePRG(addr, data)
	}
}

func (b *Bus) readPRG(addr uint16) byte {
	if !b.hasROM {
		return b.ramBacked[addr-prgStart]
	}
	size := len(b.rom.PRGROM)
	if size == 0 {
		return 0
	}
	idx := int(addr-prgStart) % size
	return b.rom.PRGROM[idx]
}

func (b *Bus) writePRG(addr uint16, data byte) {
	if !b.hasROM {
		b.ramBacked[addr-prgStart] = data
		return
	}
	glog.Errorf("mem: ignoring write of %#02x to read-only PRG-ROM at %#04x", data, addr)
}

// ReadU16 reads two consecutive bytes at addr, addr+1 and composes them
// little-endian. Unlike the JMP-indirect hardware bug, this does not wrap at
// a page boundary.
func (b *Bus) ReadU16(addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteU16 writes v little-endian across addr, addr+1.
func (b *Bus) WriteU16(addr uint16, v uint16) {
	b.Write(addr, byte(v))
	b.Write(addr+1, byte(v>>8))
}
