// main.go - CLI entry point: parses flags and fpgrars.toml, assembles the
// given source file, and either dumps its IR (--print-instructions) or
// runs it to completion, propagating the guest program's exit code.
//
// Grounded on the teacher's main.go for its flag.NewFlagSet/Usage shape
// and "load config, then wire subsystems, then run" structure; the
// mode-selection flags (-ie32/-m68k/-m6502/-psg) and multi-CPU wiring are
// gone since this simulator only ever runs one ISA.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
)

const version = "fpgrars 0.1.0"

func main() {
	cfg, err := LoadConfig("fpgrars.toml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "fpgrars.toml: %v\n", err)
		os.Exit(1)
	}

	var (
		noVideo           bool
		width             int
		height            int
		scale             int
		port              int
		printInstructions bool
		printState        bool
		showVersion       bool
		rawKeyboard       bool
	)

	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&noVideo, "no-video", cfg.NoVideo, "disable the display")
	fs.IntVar(&width, "w", cfg.Width, "framebuffer width")
	fs.IntVar(&width, "width", cfg.Width, "framebuffer width")
	fs.IntVar(&height, "h", cfg.Height, "framebuffer height")
	fs.IntVar(&height, "height", cfg.Height, "framebuffer height")
	fs.IntVar(&scale, "s", cfg.Scale, "integer display scale factor")
	fs.IntVar(&scale, "scale", cfg.Scale, "integer display scale factor")
	fs.IntVar(&port, "p", cfg.Port, "MIDI output port index")
	fs.IntVar(&port, "port", cfg.Port, "MIDI output port index")
	fs.BoolVar(&printInstructions, "print-instructions", cfg.PrintInstructions, "dump assembled IR and exit")
	fs.BoolVar(&printState, "print-state", cfg.PrintState, "dump registers and memory summary on exit")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.BoolVar(&rawKeyboard, "raw-keyboard", cfg.RawKeyboard, "under --no-video, put stdin in raw mode and feed it to the keyboard MMIO registers instead of leaving stdin for the console ReadInt/ReadFloat ecalls")

	fs.Usage = func() {
		fs.SetOutput(os.Stdout)
		fmt.Println("Usage: fpgrars [OPTIONS] [FILE]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			fs.Usage()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	entry := fs.Arg(0)
	if entry == "" {
		entry = cfg.File
	}
	if entry == "" {
		fmt.Fprintln(os.Stderr, "error: no entry file given (pass one, or set `file` in fpgrars.toml)")
		os.Exit(1)
	}

	prog, labels, data, entryPC, asmErrs := assemble(entry)
	if len(asmErrs) > 0 {
		for _, e := range asmErrs {
			color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "error: ")
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}

	if printInstructions {
		dumpInstructions(prog)
		os.Exit(0)
	}

	var midiBackend MIDIBackend
	if mb, err := OpenMIDI(port); err == nil {
		midiBackend = mb
	} else if fb, ferr := NewMIDIFallback(); ferr == nil {
		midiBackend = fb
	}

	m := NewMachine(prog, labels, data, entryPC, width, height, os.Stdin, os.Stdout, os.Stderr, filepath.Dir(entry), midiBackend)
	m.DebugState = printState

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		m.RequestCancel()
	}()

	var exitCode int32
	var fatal error

	if noVideo {
		if rawKeyboard {
			th := NewTerminalHost(m.Display)
			th.Start()
			defer th.Stop()
		}
		exitCode, fatal = m.Run()
	} else {
		done := make(chan struct{})
		go func() {
			exitCode, fatal = m.Run()
			close(done)
		}()
		go func() {
			<-done
			// RunDisplay's event loop does not return when the program
			// ends, so the run's outcome is reported and the process exits
			// from here.
			if fatal != nil {
				color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "fatal: ")
				fmt.Fprintln(os.Stderr, fatal.Error())
				os.Exit(1)
			}
			if printState {
				dumpState(m)
			}
			os.Exit(int(uint8(exitCode)))
		}()
		if err := RunDisplay(m.Display, width, height, scale); err != nil {
			fmt.Fprintf(os.Stderr, "display error: %v\n", err)
		}
		<-done
	}

	if midiBackend != nil {
		midiBackend.Close()
	}

	if fatal != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "fatal: ")
		fmt.Fprintln(os.Stderr, fatal.Error())
		os.Exit(1)
	}

	if printState {
		dumpState(m)
	}

	os.Exit(int(uint8(exitCode)))
}

// assemble runs the full C1-C4 pipeline over the entry file and returns a
// linked program ready for the executor, or assembly errors if any stage
// failed.
func assemble(entry string) ([]Instruction, map[string]LabelEntry, []byte, int, []*AssembleError) {
	toks, errs := Preprocess(entry)
	if len(errs) > 0 {
		return nil, nil, nil, 0, errs
	}
	parsed, perrs := Parse(toks)
	if len(perrs) > 0 {
		return nil, nil, nil, 0, perrs
	}
	prog, mapping, lerrs := Link(parsed)
	if len(lerrs) > 0 {
		return nil, nil, nil, 0, lerrs
	}
	entryPC := 0
	if e, ok := parsed.Labels[parsed.EntryLabel]; ok {
		entryPC = mapping[e.InstrIdx]
	}
	return prog, parsed.Labels, parsed.Data, entryPC, nil
}

func dumpInstructions(prog []Instruction) {
	for i, in := range prog {
		fmt.Printf("%06x: op=%-10v rd=%-2d rs1=%-2d rs2=%-2d imm=%-8d csr=%-2d target=%d\n",
			textBase+uint32(i)*4, in.Op, in.Rd, in.Rs1, in.Rs2, in.Imm, in.CSR, in.Target)
	}
}

func dumpState(m *Machine) {
	fmt.Println("--- registers ---")
	for i := 0; i < 32; i++ {
		fmt.Printf("x%-2d=%-12d", i, m.Int.Get(i))
		if i%4 == 3 {
			fmt.Println()
		}
	}
	fmt.Printf("pc=0x%08x\n", m.pcAddr())
}
