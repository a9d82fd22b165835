package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntRegsX0HardwiredZero(t *testing.T) {
	assert := assert.New(t)

	var r IntRegs
	r.Set(0, 123)
	assert.Equal(int32(0), r.Get(0))

	r.Set(5, 123)
	assert.Equal(int32(123), r.Get(5))
}

func TestCSRMisaIsReadOnly(t *testing.T) {
	assert := assert.New(t)

	c := NewCSRFile()
	before, ok := c.Read(csrMisa, NewSimClock())
	assert.True(ok)
	assert.True(c.Write(csrMisa, 0))
	after, _ := c.Read(csrMisa, NewSimClock())
	assert.Equal(before, after)
}

func TestCSRUnknownIndexNotOK(t *testing.T) {
	assert := assert.New(t)

	c := NewCSRFile()
	_, ok := c.Read(9999, NewSimClock())
	assert.False(ok)
	assert.False(c.Write(9999, 1))
}

func TestCSRTrapDelegationRequiresStatusAndUtvec(t *testing.T) {
	assert := assert.New(t)

	c := NewCSRFile()
	assert.False(c.TrapDelegationEnabled())

	c.Write(csrUstatus, 1)
	assert.False(c.TrapDelegationEnabled(), "utvec still zero")

	c.Write(csrUtvec, textBase)
	assert.True(c.TrapDelegationEnabled())
}

func TestCSRUepcRoundTrips(t *testing.T) {
	assert := assert.New(t)

	c := NewCSRFile()
	assert.True(c.Write(csrUepc, 0xABCD0000))
	v, ok := c.Read(csrUepc, NewSimClock())
	assert.True(ok)
	assert.Equal(uint32(0xABCD0000), v)
}
