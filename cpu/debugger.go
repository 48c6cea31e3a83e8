package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

// model is the Bubble Tea model backing Debug: a single-step TUI over a
// live CPU, rendering a page table around PC and the register file after
// every step.
type model struct {
	cpu    *CPU
	offset uint16

	prevPC uint16
	err    error
}

// Init loads nothing: the model's program is already resident on the bus
// (Debug loads it); Init only points PC at the load offset.
func (m model) Init() tea.Cmd {
	m.cpu.PC = m.offset
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.cpu.PC
			_, err := m.cpu.Tick()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// renderPage renders 16 contiguous bytes as a line, highlighting the byte
// at the CPU's current PC.
func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		addr := start + i
		b := m.cpu.Bus.Read(addr)
		if addr == m.cpu.PC {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) status() string {
	var flags string
	for _, flag := range []bool{
		m.cpu.Status.Negative,
		m.cpu.Status.Overflow,
		true, // Unused is always 1 on the serialized byte
		false,
		m.cpu.Status.Decimal,
		m.cpu.Status.Interrupt,
		m.cpu.Status.Zero,
		m.cpu.Status.Carry,
	} {
		if flag {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
PC: %04x (was %04x)
 A: %02x
 X: %02x
 Y: %02x
SP: %02x
N V _ B D I Z C
`,
		m.cpu.PC, m.prevPC,
		m.cpu.A, m.cpu.X, m.cpu.Y, m.cpu.SP,
	) + flags
}

func (m model) pageTable() string {
	header := "addr | "
	for b := range 16 {
		header += fmt.Sprintf("  %01x  ", b)
	}

	rows := []string{header}
	base := m.cpu.PC &^ 0x000F
	for i := -2; i <= 2; i++ {
		rows = append(rows, m.renderPage(uint16(int(base)+i*16)))
	}
	return strings.Join(rows, "\n")
}

func (m model) View() string {
	opcode := Opcodes[m.cpu.Bus.Read(m.cpu.PC)]
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(opcode),
	)
}

// Debug loads program into RAM at offset and starts an interactive,
// single-step TUI over the CPU: space/j executes one instruction, q quits.
// It is a development aid, not part of the emulation core.
func (c *CPU) Debug(program []byte, offset uint16) error {
	c.Load(program, offset)
	c.PC = offset

	m, err := tea.NewProgram(model{cpu: c, offset: offset}).Run()
	if err != nil {
		return err
	}
	if result, ok := m.(model); ok && result.err != nil {
		return result.err
	}
	return nil
}
