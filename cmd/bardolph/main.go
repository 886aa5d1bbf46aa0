// Command bardolph compiles and runs a lamp-control script: against real
// hardware reached over the network by default, or an in-memory fake lamp
// set for dry runs and demos.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/EmonFan/bardolph/internal/clock"
	"github.com/EmonFan/bardolph/internal/lampset"
	"github.com/EmonFan/bardolph/internal/netlamp"
	"github.com/EmonFan/bardolph/internal/reader"
	"github.com/EmonFan/bardolph/internal/runner"
	"github.com/EmonFan/bardolph/internal/settings"
	"github.com/EmonFan/bardolph/internal/translog"
	"github.com/EmonFan/bardolph/internal/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("bardolph", flag.ContinueOnError)
	unoptimized := fs.Bool("unoptimized", false, "skip the peephole optimizer, running the compiler's raw output")
	settingsPath := fs.String("settings", "", "path to a YAML settings file (built-in defaults if omitted)")
	fake := fs.Bool("fake", false, "run against an in-memory fake lamp set instead of the network")
	server := fs.String("server", "", "netlamp server address (host:port); required unless --fake")
	list := fs.Bool("list", false, "print the compiled instruction listing instead of running it")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <script>\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	cfg := settings.Defaults()
	if *settingsPath != "" {
		loaded, err := settings.Load(*settingsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bardolph: loading settings: %s\n", err)
			return 1
		}
		cfg = loaded
	}

	if *list {
		return listInstructions(path, !*unoptimized)
	}

	lamps, closeLamps, err := buildLampSet(cfg, *fake, *server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bardolph: %s\n", err)
		return 1
	}
	defer closeLamps()

	env := vm.Env{
		Lamps:  lamps,
		Clock:  clock.New(),
		Pause:  reader.NewStdin(),
		Logger: translog.Default(),
	}

	res := runner.Run(context.Background(), path, runner.Options{Env: env, Optimize: !*unoptimized})
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "bardolph[%s]: %s\n", res.RunID, res.Err)
		return 1
	}
	return 0
}

// buildLampSet selects an in-memory fake set (from --fake or the settings
// file's use_fakes) or dials a netlamp server, discovering once before
// handing the set back so the script's first command already sees lamps.
func buildLampSet(cfg *settings.Store, fake bool, server string) (lampset.Set, func(), error) {
	if fake || cfg.UseFakes {
		set := lampset.NewFakeSet(
			lampset.NewFakeLamp("living room"),
			lampset.NewFakeLamp("kitchen"),
		)
		return set, func() {}, nil
	}
	if server == "" {
		return nil, nil, fmt.Errorf("--server is required unless --fake is set")
	}
	client, err := netlamp.Dial(server)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", server, err)
	}
	client.Discover()
	return client, func() { client.Close() }, nil
}

// listInstructions prints the compiled program one instruction per line, a
// quick way to sanity-check codegen without touching real lamps.
func listInstructions(path string, optimize bool) int {
	gen, err := runner.Load(path, optimize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bardolph: %s\n", err)
		return 1
	}
	prog := gen.Program()
	for i, ins := range prog.Code {
		fmt.Printf("%4d  %s\n", i, describeInstruction(ins))
	}
	fmt.Printf("%s instructions, %s routines\n",
		humanize.Comma(int64(len(prog.Code))), humanize.Comma(int64(len(prog.Routines))))
	return 0
}

func describeInstruction(ins vm.Instruction) string {
	s := ins.Op.String()
	if ins.Dest != (vm.Target{}) {
		s += " " + describeTarget(ins.Dest)
	}
	if ins.Src != (vm.Target{}) {
		s += " <- " + describeTarget(ins.Src)
	}
	if ins.HasImm || ins.Op == vm.MOVEQ || ins.Op == vm.PUSHQ || ins.Op == vm.CONSTANT {
		s += " = " + ins.Imm.String()
	}
	if ins.Op == vm.JUMP || ins.Op == vm.JSR || ins.Op == vm.LOOP || ins.Op == vm.END_LOOP {
		s += fmt.Sprintf(" @%d", ins.Addr)
	}
	return s
}

func describeTarget(t vm.Target) string {
	if t.IsReg {
		return t.Reg.String()
	}
	return t.Name
}
