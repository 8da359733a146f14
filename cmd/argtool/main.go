package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/ipc"
	"github.com/wippyai/hostbridge/vm"
)

func main() {
	var (
		adds  addList
		msgID msgFlag
	)
	flag.Var(&adds, "add", "Argument to append as type:value (repeatable)")
	flag.Var(&msgID, "msg", "Message id written with the arguments (0 to 4294967295)")
	var (
		outFile     = flag.String("o", "", "Write the encoded argument list to file")
		inFile      = flag.String("in", "", "Decode and list an encoded argument list")
		configFile  = flag.String("config", "", "YAML config (charset, heap, linear_pages, log_level)")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if len(adds) == 0 && *inFile == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: argtool -add int32:42 -add string:hello [-o args.bin]")
		fmt.Fprintln(os.Stderr, "       argtool -in args.bin")
		fmt.Fprintln(os.Stderr, "       argtool -i [-o args.bin]  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.LogLevel = "debug"
		if err := setupLogging(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg, *outFile, uint32(msgID)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, adds, *inFile, *outFile, uint32(msgID)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*bridge.Config, error) {
	if path == "" {
		return bridge.DefaultConfig(), nil
	}
	return bridge.LoadConfig(path)
}

func setupLogging(cfg *bridge.Config) error {
	l, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	bridge.SetLogger(l)
	vm.SetLogger(l)
	return nil
}

func run(cfg *bridge.Config, adds []string, inFile, outFile string, msg uint32) error {
	ctx := context.Background()

	m := vm.NewMachine()
	defer m.Close()

	conv, err := bridge.NewConverter(ctx, m, cfg)
	if err != nil {
		return fmt.Errorf("converter: %w", err)
	}
	defer conv.Close()

	if inFile != "" {
		data, err := os.ReadFile(inFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		args, err := ipc.Decode(data)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		fmt.Printf("Message: %d\n", args.Msg())
		fmt.Printf("Arguments: %d\n", args.Count())
		return printArgs(conv, args)
	}

	ser := ipc.NewMsgpackSerializer()
	ser.SetMsg(msg)
	for _, a := range adds {
		if err := appendArg(conv, ser, a); err != nil {
			return fmt.Errorf("-add %s: %w", a, err)
		}
	}
	buf, err := ser.Finish()
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}

	if m.OutstandingBorrows() != 0 {
		bridge.Logger().Warn("borrows left after encoding", zap.Int("count", m.OutstandingBorrows()))
	}

	if outFile == "" {
		fmt.Printf("%x\n", buf.Bytes())
		return nil
	}
	if err := os.WriteFile(outFile, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	fmt.Printf("Wrote %d arguments (%d bytes) to %s\n", len(adds), buf.Len(), outFile)
	return nil
}

func printArgs(conv *bridge.Converter, args ipc.Arguments) error {
	lines, err := describeArgs(conv, args)
	for _, l := range lines {
		fmt.Println(l)
	}
	return err
}
