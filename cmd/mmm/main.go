// mmm CLI - runs, packs and snapshots programs for the volatile VM
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/mmm/container"
	"github.com/chazu/mmm/host"
	"github.com/chazu/mmm/manifest"
	"github.com/chazu/mmm/vm"
	"github.com/chazu/mmm/vm/dump"
)

var log = commonlog.GetLogger("mmm.cli")

func main() {
	rate := flag.Float64("rate", 0, "Volatility rate in [0, 1] (default from mmm.toml, else 0)")
	seed := flag.Uint("seed", uint(vm.DefaultSeed), "Volatility seed (default from mmm.toml, else 42)")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	packOut := flag.String("pack", "", "Encrypt the program into a special file at this path instead of running it")
	effects := flag.String("effects", "", "Comma-separated side-effect tags in hex for -pack (e.g. 01,05,ff)")
	corePath := flag.String("core", "", "Write a CBOR snapshot of the VM after the run")
	restorePath := flag.String("restore", "", "Restore memory and registers from a snapshot before running")
	configPath := flag.String("config", "", "Explicit mmm.toml (default: search upward from the program)")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mmm [options] file.mmm\n       mmm [options] -i\n\n")
		fmt.Fprintf(os.Stderr, "Runs a plain or special .mmm program on the volatile VM.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mmm hello.mmm                          # Run a program\n")
		fmt.Fprintf(os.Stderr, "  mmm -rate 0.01 -seed 7 hello.mmm       # Run with corruption\n")
		fmt.Fprintf(os.Stderr, "  mmm -pack evil.mmm -effects 01,05 hello.mmm  # Write a special file\n")
		fmt.Fprintf(os.Stderr, "  mmm -core run.cbor hello.mmm           # Snapshot the VM afterwards\n")
		fmt.Fprintf(os.Stderr, "  mmm -i                                 # Start REPL\n")
	}
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	program, err := programArg(flag.Args(), *interactive, *packOut != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath, program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verbosity := cfg.Log.Verbosity
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, logPath(cfg))

	if set["rate"] && (*rate < 0 || *rate > 1) {
		fmt.Fprintf(os.Stderr, "Error: -rate %v outside [0, 1]\n", *rate)
		os.Exit(2)
	}
	if set["seed"] && uint64(*seed) > uint64(^uint32(0)) {
		fmt.Fprintf(os.Stderr, "Error: -seed %d does not fit in 32 bits\n", *seed)
		os.Exit(2)
	}

	h := host.NewOS()
	h.FlashDuration = cfg.FlashDuration()
	h.ToneDuration = cfg.ToneDuration()

	if *packOut != "" {
		rec, err := packRecord(cfg, program, *effects, set["effects"])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if set["rate"] {
			rec.VolatilityRate = *rate
		}
		if set["seed"] {
			rec.VolatilitySeed = uint32(*seed)
		}
		if err := container.Create(*packOut, rec, h); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote %s (rate=%g seed=%d effects=%v)\n", *packOut, rec.VolatilityRate, rec.VolatilitySeed, rec.SideEffects)
		}
		return
	}

	vmRate := cfg.VM.VolatilityRate
	if set["rate"] {
		vmRate = *rate
	}
	vmSeed := cfg.Seed()
	if set["seed"] {
		vmSeed = uint32(*seed)
	}
	vmInst := vm.New(vmRate, vmSeed, vm.WithHost(h))

	if *restorePath != "" {
		snap, err := dump.ReadFile(*restorePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := vmInst.Restore(snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// Keep the restored memory but start the program from the top.
		vmInst.Rewind()
	}

	if *interactive {
		if err := runREPL(vmInst, h); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		vmInst.LoadAndRun(program)
	}

	if *corePath != "" {
		if err := dump.WriteFile(*corePath, vmInst.Snapshot()); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		log.Infof("wrote snapshot %s", *corePath)
	}
}

// programArg picks the program path out of the positional arguments.
// The REPL starts from an empty program, so it takes none; every other
// mode needs exactly one.
func programArg(args []string, interactive, pack bool) (string, error) {
	switch {
	case interactive && pack:
		return "", errors.New("-i and -pack cannot be combined")
	case interactive && len(args) > 0:
		return "", fmt.Errorf("-i starts an empty program; got %q", args[0])
	case interactive:
		return "", nil
	case len(args) != 1:
		return "", errors.New("expected exactly one program file")
	}
	return args[0], nil
}

// loadConfig reads the explicit config file, or searches upward from the
// program's directory, falling back to defaults.
func loadConfig(explicit, program string) (*manifest.Manifest, error) {
	if explicit != "" {
		return manifest.LoadFile(explicit)
	}
	start := "."
	if program != "" {
		start = filepath.Dir(program)
	}
	cfg, err := manifest.FindAndLoad(start)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return manifest.Default(), nil
	}
	return cfg, nil
}

func logPath(cfg *manifest.Manifest) *string {
	if cfg.Log.File == "" {
		return nil
	}
	path := cfg.Log.File
	if !filepath.IsAbs(path) && cfg.Dir != "" {
		path = filepath.Join(cfg.Dir, path)
	}
	return &path
}

// packRecord builds the record written by -pack from the program source
// and the [pack] section, with -effects replacing the configured tags.
func packRecord(cfg *manifest.Manifest, program, effects string, effectsSet bool) (*container.Record, error) {
	src, err := os.ReadFile(program)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", program, err)
	}

	rec := &container.Record{
		Code:           strings.ToValidUTF8(string(src), ""),
		VolatilityRate: cfg.Pack.VolatilityRate,
		VolatilitySeed: cfg.Pack.VolatilitySeed,
	}

	if effectsSet {
		rec.SideEffects, err = parseEffects(effects)
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	for _, tag := range cfg.Pack.SideEffects {
		e, ok := container.ParseSideEffect(byte(tag))
		if !ok {
			return nil, fmt.Errorf("pack.side-effects: unknown tag 0x%02x", tag)
		}
		rec.SideEffects = append(rec.SideEffects, e)
	}
	return rec, nil
}
