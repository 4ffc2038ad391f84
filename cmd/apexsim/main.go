// Command apexsim runs the APEX five-stage pipeline simulator against a
// text program listing, either tracing every cycle (display mode) or
// running silently to completion (simulate mode).
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/binghamton-arch/apexsim/internal/asm"
	"github.com/binghamton-arch/apexsim/internal/pipeline"
	"github.com/binghamton-arch/apexsim/internal/state"
	"github.com/binghamton-arch/apexsim/internal/trace"
)

var verbose = flag.Bool("v", false, "print the parsed program listing before running")

func main() {
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Usage: apexsim [-v] <input_file> {display|simulate} <cycles>")
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0), flag.Arg(1), flag.Arg(2)))
}

// run is split out from main so the exit-code plumbing stays in one
// place; main.go in original_source/main.c does the same argc/argv
// dispatch inline, but Go's os.Exit skips deferred cleanup, so only
// main calls it directly.
func run(inputFile, mode, cyclesArg string) int {
	if mode != "display" && mode != "simulate" {
		fmt.Fprintf(os.Stderr, "unknown mode %q: expected display or simulate\n", mode)
		return 1
	}

	var maxCycles uint64
	if _, err := fmt.Sscanf(cyclesArg, "%d", &maxCycles); err != nil {
		fmt.Fprintf(os.Stderr, "bad cycle count %q: %v\n", cyclesArg, err)
		return 1
	}

	f, err := os.Open(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening %s: %v\n", inputFile, err)
		return 1
	}
	defer f.Close()

	prog, err := asm.Load(f)
	if err != nil {
		var perr *asm.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(os.Stderr, "parse error: %v\n", perr)
		} else {
			fmt.Fprintf(os.Stderr, "loading %s: %v\n", inputFile, err)
		}
		return 1
	}

	if *verbose {
		fmt.Fprint(os.Stdout, prog.Listing())
	}

	mem := state.NewMemory()
	cpu := pipeline.New(prog.Code, mem)

	code := runSimulation(cpu, mode, maxCycles)

	trace.WriteRegisterFile(os.Stdout, cpu.RegFile())
	trace.WriteDataMemory(os.Stdout, mem)
	trace.WriteStats(os.Stdout, cpu.Stats())

	return code
}

// runSimulation drives the pipeline and recovers a pipeline.FaultError
// the way the CLI boundary contract requires: report the faulting PC,
// still print whatever partial state exists, exit 1.
func runSimulation(cpu *pipeline.CPU, mode string, maxCycles uint64) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			var ferr *pipeline.FaultError
			if errors.As(asError(r), &ferr) {
				fmt.Fprintf(os.Stderr, "%v\n", ferr)
				exitCode = 1
				return
			}
			panic(r)
		}
	}()

	var onCycle func(*pipeline.CPU, uint64)
	if mode == "display" {
		onCycle = func(cpu *pipeline.CPU, cycle uint64) {
			trace.WriteCycle(os.Stdout, cycle, cpu)
		}
	}

	cpu.Run(maxCycles, onCycle)
	return 0
}

// asError normalizes a recovered panic value to an error so errors.As
// can match it against *pipeline.FaultError.
func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
