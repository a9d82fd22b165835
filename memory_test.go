package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordReadWriteRoundTrips(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	m.WriteWord(heapBase, 0xCAFEBABE)
	assert.Equal(uint32(0xCAFEBABE), m.ReadWord(heapBase))
}

func TestSbrkIsMonotonic(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	first := m.Sbrk(0)
	assert.Equal(uint32(heapBase), first)

	grown := m.Sbrk(256)
	assert.Equal(first, grown)
	assert.Equal(first+256, m.Sbrk(0))
}

func TestLoadTextMarksRangeForStoreFault(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	m.LoadText(make([]byte, 16))
	assert.True(m.IsTextRange(textBase, 4))
	assert.False(m.IsTextRange(textBase+16, 4))
}

func TestMapIOInterceptsReadsAndWrites(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	var got byte
	m.MapIO(0xFF000000, 0xFF0000FF,
		func(addr uint32) byte { return 0x42 },
		func(addr uint32, v byte) { got = v })

	assert.Equal(byte(0x42), m.ReadByte(0xFF000010))
	m.WriteByte(0xFF000010, 7)
	assert.Equal(byte(7), got)
}

func TestIsBackedCoversText(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	m.LoadText(make([]byte, 8))
	assert.True(m.IsBacked(textBase))
	assert.True(m.IsBacked(textBase+7))
	assert.False(m.IsBacked(textBase+8))
}

func TestIsBackedCoversData(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	m.LoadData(make([]byte, 4))
	assert.True(m.IsBacked(dataBase))
	assert.False(m.IsBacked(dataBase + 4))
}

func TestIsBackedCoversGrownHeap(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	assert.False(m.IsBacked(heapBase))
	m.Sbrk(64)
	assert.True(m.IsBacked(heapBase))
	assert.False(m.IsBacked(heapBase + 64))
}

func TestIsBackedCoversStackWindowAndMMIO(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	assert.True(m.IsBacked(stackTop))
	assert.True(m.IsBacked(stackLimit))
	assert.False(m.IsBacked(stackLimit - 4))

	m.MapIO(mmioStart, mmioStart+0xFF, func(uint32) byte { return 0 }, nil)
	assert.True(m.IsBacked(mmioStart))
}

func TestIsBackedRejectsUnmappedAddress(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	assert.False(m.IsBacked(mmioEnd))
}

func TestReadCStringStopsAtNUL(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	for i, b := range []byte("hi\x00junk") {
		m.WriteByte(heapBase+uint32(i), b)
	}
	assert.Equal("hi", m.ReadCString(heapBase))
}
