// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/BurntSushi/toml"
	"golang.org/x/term"

	"github.com/mc680x/trainer/cpu"
	"github.com/mc680x/trainer/emulator"
)

// boardConfig is the TOML board description: what ROM images to load
// where, and whether to start with tracing on.
type boardConfig struct {
	Trace bool       `toml:"trace"`
	Rom   []romImage `toml:"rom"`
}

type romImage struct {
	Base int64  `toml:"base"`
	File string `toml:"file"`
}

func main() {
	var compile string
	var board string
	var input string
	var output string
	var steps int
	var trace bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble and load")
	flag.StringVar(&board, "f", "", "board .toml describing ROM images")
	flag.StringVar(&input, "i", "-", "serial input")
	flag.StringVar(&output, "o", "-", "serial output")
	flag.IntVar(&steps, "n", 0, "stop after N steps (0 = run until interrupted)")
	flag.BoolVar(&trace, "t", false, "trace each step to stderr")
	flag.BoolVar(&verbose, "v", false, "verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: unknown arguments: %v", os.Args[0], flag.Args())
	}

	t := emulator.NewTrainer()
	t.Verbose = verbose

	if len(board) != 0 {
		var cfg boardConfig
		if _, err := toml.DecodeFile(board, &cfg); err != nil {
			log.Fatalf("%v: %v", board, err)
		}
		for _, rom := range cfg.Rom {
			if rom.Base < 0 || rom.Base > 0xFFFF {
				log.Fatalf("%v: base 0x%X out of range", rom.File, rom.Base)
			}
			data, err := os.ReadFile(rom.File)
			if err != nil {
				log.Fatalf("%v: %v", rom.File, err)
			}
			err = t.Load(cpu.Image{Base: uint16(rom.Base), Data: data})
			if err != nil {
				log.Fatalf("%v: %v", rom.File, err)
			}
		}
		trace = trace || cfg.Trace
	}

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range t.Defines() {
			asm.Predefine(key, value)
		}

		prog, err := asm.Parse(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		if err = t.LoadProgram(prog); err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if input == "-" {
		t.Serial.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		t.Serial.Input = inf
	}

	if output == "-" {
		t.Serial.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		t.Serial.Output = ouf
	}

	if trace {
		t.Cpu.Trace = true
		t.Cpu.TraceOut = os.Stderr
	}

	// The serial console wants the host terminal in raw mode so
	// keystrokes reach the emulated UART unbuffered.
	fd := int(os.Stdin.Fd())
	if input == "-" && term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			log.Fatalf("raw mode: %v", err)
		}
		defer term.Restore(fd, oldState)
	}

	t.Reset()

	if steps > 0 {
		for range steps {
			t.Tick()
		}
		return
	}

	stop := make(chan struct{})
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		close(stop)
	}()

	t.Run(stop)
}
