package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/binspect/autodis/batch"
	"github.com/binspect/autodis/command"
	"github.com/binspect/autodis/loader"
	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
	"github.com/binspect/autodis/session"
)

func main() {
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("autodis", flag.ExitOnError)
	triple := fs.String("triple", "", "target triple to disassemble for (arch-vendor-os[-env])")
	archName := fs.String("arch", "", "target arch to disassemble for, overrides the triple's arch")
	mattrs := fs.String("mattr", "", "comma-separated target attributes (e.g. thumb,be)")
	interactive := fs.Bool("i", false, "interactive command loop instead of batch mode")
	verbose := fs.Bool("v", false, "verbose diagnostics")
	outfile := fs.String("o", "", "redirect diagnostics to file (default stderr)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [input file]\n\n"+
			"Input defaults to '-' (stdin). Options:\n", argv[0])
		fs.PrintDefaults()
	}
	fs.Parse(argv[1:])

	input := loader.StdinPath
	if args := fs.Args(); len(args) > 0 {
		input = args[0]
	}

	cfg := &models.Config{
		Triple:      *triple,
		Arch:        *archName,
		Input:       input,
		Interactive: *interactive,
		Verbose:     *verbose,
		Output:      os.Stderr,
	}
	if *mattrs != "" {
		cfg.Attrs = strings.Split(*mattrs, ",")
	}
	if *outfile != "" {
		out, err := os.OpenFile(*outfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		defer out.Close()
		cfg.Output = out
	}
	logflags.Setup(cfg.Verbose, cfg.Output)

	env := &command.Env{
		Config: cfg,
		Out:    os.Stdout,
		Err:    cfg.Output,
	}
	cmds := command.New(env)

	// Interactive mode: an input argument preloads, then the loop
	// takes over. Batch mode: load is fatal if it fails.
	if cfg.Interactive {
		if input != loader.StdinPath {
			if err := cmds.Load(input); err != nil {
				logflags.CommandLogger().Error(err)
			}
		}
		if err := cmds.Interact(); err != nil {
			if e, ok := err.(models.ExitStatus); ok {
				return int(e)
			}
			logflags.CommandLogger().Error(err)
			return 1
		}
		return 0
	}

	s, err := session.Load(cfg, input)
	if err != nil {
		logflags.SessionLogger().Errorf("could not open the file '%s': %v", input, err)
		return 1
	}
	defer s.Close()
	env.Session = s

	collector := &batch.Collector{Session: s, Out: os.Stdout}
	if err := collector.Run(); err != nil {
		logflags.BatchLogger().Error(err)
		return 1
	}
	return 0
}
