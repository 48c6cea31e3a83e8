package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToByteFromByteRoundTrip(t *testing.T) {
	p := P{Carry: true, Zero: false, Interrupt: true, Decimal: false, Overflow: true, Negative: true}
	b := p.ToByte(false)
	assert.Equal(t, p, FromByte(b))
}

func TestToByteAlwaysSetsUnusedBit(t *testing.T) {
	b := P{}.ToByte(false)
	assert.Equal(t, byte(1<<unusedBit), b)
}

func TestToByteBRKSetsBreakBit(t *testing.T) {
	pushed := P{}.ToByte(true)
	irqPushed := P{}.ToByte(false)
	assert.True(t, pushed&(1<<breakBit) != 0)
	assert.True(t, irqPushed&(1<<breakBit) == 0)
}

func TestFromByteDiscardsBAndUnused(t *testing.T) {
	all := FromByte(0xFF)
	// only the six semantic flags survive; ToByte resynthesizes B/Unused.
	assert.Equal(t, P{Carry: true, Zero: true, Interrupt: true, Decimal: true, Overflow: true, Negative: true}, all)
}

func TestUpdateZN(t *testing.T) {
	var p P
	p.UpdateZN(0)
	assert.True(t, p.Zero)
	assert.False(t, p.Negative)

	p.UpdateZN(0x80)
	assert.False(t, p.Zero)
	assert.True(t, p.Negative)

	p.UpdateZN(0x01)
	assert.False(t, p.Zero)
	assert.False(t, p.Negative)
}

func TestUpdateCompareWraps(t *testing.T) {
	var p P
	p.UpdateCompare(1, 5) // a < b: must not panic or overflow-trap
	assert.False(t, p.Carry)
	assert.False(t, p.Zero)
	assert.True(t, p.Negative) // (1-5)&0x80 wraps to a negative-looking byte

	p.UpdateCompare(5, 5)
	assert.True(t, p.Carry)
	assert.True(t, p.Zero)
	assert.False(t, p.Negative)

	p.UpdateCompare(10, 3)
	assert.True(t, p.Carry)
	assert.False(t, p.Zero)
	assert.False(t, p.Negative)
}

func TestUpdateCarryZN(t *testing.T) {
	var p P
	p.UpdateCarryZN(0x00, true)
	assert.True(t, p.Zero)
	assert.True(t, p.Carry)
}

func TestReset(t *testing.T) {
	p := P{Carry: true, Zero: true, Interrupt: true, Decimal: true, Overflow: true, Negative: true}
	p.Reset()
	assert.Equal(t, P{}, p)
}
