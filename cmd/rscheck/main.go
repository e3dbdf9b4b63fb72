// rscheck validates, formats and dumps render-state (.rs) files.
//
// Usage:
//
//	rscheck [flags] file.rs...
//
// Exit codes:
//   - 0: every file is valid
//   - 1: at least one file failed to load, parse or be rewritten
//   - 2: usage error
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	oxylog "github.com/Carmen-Shannon/oxy-renderstate/engine/log"
	"github.com/Carmen-Shannon/oxy-renderstate/engine/loader"
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

type options struct {
	lenient  bool
	dump     string
	format   bool
	write    bool
	watch    bool
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command. ctx bounds the -watch loop.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("rscheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.lenient, "lenient", false, "skip unknown keys with a warning instead of failing")
	fs.StringVar(&opts.dump, "dump", "", "print the parsed config as yaml or json")
	fs.BoolVar(&opts.format, "fmt", false, "print the canonical form of each file")
	fs.BoolVar(&opts.write, "w", false, "with -fmt, rewrite files in place instead of printing")
	fs.BoolVar(&opts.watch, "watch", false, "after checking, keep watching the files and report reloads until interrupted")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: rscheck [flags] file.rs...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	files := fs.Args()
	switch {
	case len(files) == 0:
		fmt.Fprintln(stderr, "Error: at least one file is required")
		fs.Usage()
		return exitUsage
	case opts.dump != "" && opts.dump != "yaml" && opts.dump != "json":
		fmt.Fprintf(stderr, "Error: -dump must be yaml or json, got %q\n", opts.dump)
		return exitUsage
	case opts.write && !opts.format:
		fmt.Fprintln(stderr, "Error: -w requires -fmt")
		return exitUsage
	}

	oxylog.Configure(oxylog.Config{Level: opts.logLevel, Output: stderr, Service: "rscheck"})

	strictness := renderstate.Strict
	if opts.lenient {
		strictness = renderstate.Lenient
	}
	l := loader.NewLoader(loader.BackendTypeRenderState,
		loader.WithStrictness(strictness),
		loader.WithLogger(oxylog.WithComponent("rscheck")),
	)
	defer l.Close()

	status := exitOK
	for _, file := range files {
		cfg, err := l.Load(file)
		if err != nil {
			reportError(stderr, file, err)
			status = exitInvalid
			continue
		}
		if err := emit(stdout, file, cfg, opts); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", file, err)
			status = exitInvalid
		}
	}

	if opts.watch {
		if err := watch(ctx, l, files, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitInvalid
		}
	}
	return status
}

// emit prints or rewrites one successfully parsed file according to opts.
func emit(stdout io.Writer, file string, cfg renderstate.ShaderStateConfig, opts options) error {
	switch {
	case opts.format && opts.write:
		return rewrite(file, renderstate.Marshal(cfg))
	case opts.format:
		return renderstate.Write(stdout, cfg)
	case opts.dump == "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case opts.dump == "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		_, err := fmt.Fprintf(stdout, "ok %s\n", file)
		return err
	}
}

// rewrite atomically replaces file with data unless it already holds exactly that.
func rewrite(file string, data []byte) error {
	current, err := os.ReadFile(file)
	if err == nil && string(current) == string(data) {
		return nil
	}

	pendingFile, err := renameio.NewPendingFile(file)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		_ = pendingFile.Cleanup()
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write canonical form: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace: %w", err)
	}
	return nil
}

// reportError prints a diagnostic, with the offending source line when the error locates one.
func reportError(stderr io.Writer, file string, err error) {
	var perr *renderstate.ParseError
	if errors.As(err, &perr) && perr.Line > 0 {
		if src, readErr := os.ReadFile(file); readErr == nil {
			fmt.Fprint(stderr, perr.FormatWithContext(src))
			return
		}
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
}

func watch(ctx context.Context, l loader.Loader, files []string, stdout io.Writer) error {
	w := loader.NewWatcher(l, files, loader.WithWatcherLogger(oxylog.WithComponent("rscheck")))
	reloads := make(chan loader.Reload, 16)
	w.Subscribe(reloads)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-reloads:
			fmt.Fprintf(stdout, "reloaded %s (%d samplers)\n", r.Path, len(r.Config.Samplers))
		}
	}
}
