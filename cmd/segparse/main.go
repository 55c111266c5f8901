package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/revelaction/segparse/config"
	"github.com/revelaction/segparse/storage"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	if err := run(os.Args[1:], ui); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "segparse: %v\n", err)
}

// run parses the global flags and runs the command.
func run(args []string, ui UI) error {
	global, cmd, cmdArgs, err := parseMainArgs(args, ui)
	if err != nil {
		return err
	}

	// commands that need no configuration
	switch cmd {
	case "help":
		return helpCommand(cmdArgs, ui)
	case "version":
		return versionCommand(ui)
	case "bash":
		return bashCommand(ui)
	case "complete":
		return completeCommand(cmdArgs, ui)
	}

	app := &App{configPath: global.ConfigPath, ui: ui}
	defer app.Close()

	err = app.runCommand(cmd, cmdArgs)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// App holds what the commands share: configuration, logger and the lazily
// opened doc repository.
type App struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	ui         UI

	repo      storage.DocRepository
	closeRepo func() error
}

// load reads the configuration and builds the logger. It is called after
// the command arguments are parsed so that -help works without a valid
// configuration.
func (a *App) load() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *App) Close() {
	if a.logger != nil {
		defer func() { _ = a.logger.Sync() }()
	}
	if a.closeRepo != nil {
		if err := a.closeRepo(); err != nil {
			a.logger.Warn("closing storage", zap.Error(err))
		}
	}
}

func (a *App) runCommand(cmd string, args []string) error {
	switch cmd {
	case "parse":
		opts, files, err := parseParseArgs(args, a.ui)
		if err != nil {
			return err
		}
		if err := a.load(); err != nil {
			return err
		}
		return a.parseCommand(opts, files)

	case "doc":
		opts, arg, err := parseDocArgs(args, a.ui)
		if err != nil {
			return err
		}
		if err := a.load(); err != nil {
			return err
		}
		return a.docCommand(opts, arg)

	case "sentence":
		opts, docId, sentId, err := parseSentenceArgs(args, a.ui)
		if err != nil {
			return err
		}
		if err := a.load(); err != nil {
			return err
		}
		return a.sentenceCommand(opts, docId, sentId)

	case "stat":
		opts, docIds, err := parseStatArgs(args, a.ui)
		if err != nil {
			return err
		}
		if err := a.load(); err != nil {
			return err
		}
		return a.statCommand(opts, docIds)

	case "find":
		opts, exprArgs, err := parseFindArgs(args, a.ui)
		if err != nil {
			return err
		}
		if err := a.load(); err != nil {
			return err
		}
		return a.findCommand(opts, exprArgs)

	case "export":
		opts, docId, err := parseExportArgs(args, a.ui)
		if err != nil {
			return err
		}
		if err := a.load(); err != nil {
			return err
		}
		return a.exportCommand(opts, docId)

	case "labels":
		opts, pattern, err := parseLabelsArgs(args, a.ui)
		if err != nil {
			return err
		}
		if err := a.load(); err != nil {
			return err
		}
		return a.labelsCommand(opts, pattern)

	case "repl":
		opts, err := parseReplArgs(args, a.ui)
		if err != nil {
			return err
		}
		if err := a.load(); err != nil {
			return err
		}
		return a.replCommand(opts)
	}

	return fmt.Errorf("unknown command: %s", cmd)
}

func helpCommand(args []string, ui UI) error {
	if len(args) > 0 {
		return run([]string{args[0], "--help"}, ui)
	}
	fs := flag.NewFlagSet("segparse", flag.ContinueOnError)
	fs.SetOutput(ui.Out)
	setupUsage(fs)
	fs.Usage()
	return nil
}
