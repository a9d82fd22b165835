// clock.go - the single time source shared by the `time`/`timeh` CSRs and
// the Time ecall (a7=30), so both report the same value by construction
// (an Open Question SPEC_FULL.md resolves by choosing milliseconds since
// the Unix epoch rather than since process start).

package main

import "time"

type SimClock struct{}

func NewSimClock() *SimClock { return &SimClock{} }

func (c *SimClock) MillisSinceEpoch() int64 {
	return time.Now().UnixMilli()
}
