// Command basicrun executes compiled BASIC programs against the runtime
// core and inspects their state machines.
//
// Usage:
//
//	basicrun -wasm program.wasm [-func main] [-machines defs.yaml]
//	basicrun -wasm program.wasm -list
//	basicrun -machines defs.yaml -i   (interactive machine inspector)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"golang.org/x/term"

	basicruntime "github.com/minibasic/basic-runtime"
	"github.com/minibasic/basic-runtime/host"
	"github.com/minibasic/basic-runtime/machinefile"
	"github.com/minibasic/basic-runtime/runtime"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to compiled program (wasm)")
		funcName    = flag.String("func", "main", "Entry function to call")
		machines    = flag.String("machines", "", "YAML machine definitions to preload")
		list        = flag.Bool("list", false, "List exported functions and exit")
		interactive = flag.Bool("i", false, "Interactive machine inspector TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if *wasmFile == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: basicrun -wasm <program.wasm> [-func name] [-machines defs.yaml]")
		fmt.Fprintln(os.Stderr, "       basicrun -wasm <program.wasm> -list")
		fmt.Fprintln(os.Stderr, "       basicrun -machines <defs.yaml> -i")
		os.Exit(1)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *interactive {
		if *machines == "" {
			fmt.Fprintln(os.Stderr, "Error: -i requires -machines")
			os.Exit(1)
		}
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*machines, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *funcName, *machines, *list, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

func run(wasmFile, funcName, machines string, listOnly bool, logger *zap.Logger) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	wz := wazero.NewRuntime(ctx)
	defer wz.Close(ctx)

	compiled, err := wz.CompileModule(ctx, data)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if listOnly {
		names := make([]string, 0, len(compiled.ExportedFunctions()))
		for name := range compiled.ExportedFunctions() {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("Program: %s\n", wasmFile)
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	// Fatal runtime conditions panic out of host functions; wazero turns
	// them into errors on the guest call below.
	rt := runtime.New(
		runtime.WithLogger(logger),
		runtime.WithTrap(basicruntime.PanicTrap),
	)
	defer rt.Close()

	if machines != "" {
		defs, err := machinefile.ParseFile(machines)
		if err != nil {
			return err
		}
		if _, err := defs.Register(rt.Machines); err != nil {
			return err
		}
		logger.Info("machines preloaded", zap.Int("count", len(defs.Machines)))
	}

	if _, err := host.Instantiate(ctx, wz, host.Config{
		Runtime: rt,
		Stdout:  os.Stdout,
		Logger:  logger.Named("host"),
	}); err != nil {
		return fmt.Errorf("host module: %w", err)
	}

	mod, err := wz.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("program"))
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer mod.Close(ctx)

	entry := mod.ExportedFunction(funcName)
	if entry == nil {
		return fmt.Errorf("program does not export %q", funcName)
	}
	if _, err := entry.Call(ctx); err != nil {
		return fmt.Errorf("program trapped: %w", err)
	}
	return nil
}
