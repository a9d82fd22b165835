// regnames.go - integer/float register name tables and CSR name table (C2
// operand parsing, C7 register file naming). Grounded on
// original_source/src/parser/register_names.rs, translated to RV32IMF's
// standard ABI names (the Rust source predates the f-register ABI aliases
// this simulator also accepts).

package main

import "strconv"

var intRegNames = buildIntRegNames()

func buildIntRegNames() map[string]int {
	m := make(map[string]int, 64)
	for i := 0; i < 32; i++ {
		m[xName(i)] = i
	}
	abi := []string{
		"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
		"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
		"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
		"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
	}
	for i, name := range abi {
		m[name] = i
	}
	m["fp"] = 8 // alias for s0
	return m
}

func xName(i int) string {
	return "x" + strconv.Itoa(i)
}

var floatRegNames = buildFloatRegNames()

func buildFloatRegNames() map[string]int {
	m := make(map[string]int, 64)
	for i := 0; i < 32; i++ {
		m["f"+strconv.Itoa(i)] = i
	}
	abi := []string{
		"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
		"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
		"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
		"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
	}
	for i, name := range abi {
		m[name] = i
	}
	return m
}

// CSR indices, matching the layout original_source/src/parser/register_names.rs
// uses (time=0, misa=1, uepc=2, ustatus=3, utvec=4, ucause=5, ...).
const (
	csrTime = iota
	csrMisa
	csrUepc
	csrUstatus
	csrUtvec
	csrUcause
	csrUscratch
	csrUtval
	csrTimeh
	csrCount
)

var csrNames = map[string]int{
	"time":     csrTime,
	"misa":     csrMisa,
	"uepc":     csrUepc,
	"ustatus":  csrUstatus,
	"utvec":    csrUtvec,
	"ucause":   csrUcause,
	"uscratch": csrUscratch,
	"utval":    csrUtval,
	"timeh":    csrTimeh,
}

func lookupIntReg(name string) (int, bool) {
	i, ok := intRegNames[name]
	return i, ok
}

func lookupFloatReg(name string) (int, bool) {
	i, ok := floatRegNames[name]
	return i, ok
}

func lookupCSR(name string) (int, bool) {
	i, ok := csrNames[name]
	return i, ok
}
