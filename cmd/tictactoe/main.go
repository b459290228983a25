// Command tictactoe plays a game against the minimax engine on the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jaminalder/tictactoe-ai/internal/cli"
	"github.com/jaminalder/tictactoe-ai/internal/config"
	"github.com/jaminalder/tictactoe-ai/internal/engine"
	"github.com/jaminalder/tictactoe-ai/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	aiFirst  bool
	logLevel string
}

// parseFlags layers command-line flags over the loaded configuration.
func parseFlags(cfg *config.Config, args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("tictactoe", flag.ContinueOnError)
	fs.BoolVar(&opts.aiFirst, "ai-first", cfg.Game.AIFirst, "let the AI make the first move")
	fs.StringVar(&opts.logLevel, "log-level", cfg.Log.Level, "log level written to stderr")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	opts, err := parseFlags(cfg, os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	logging.Init(logging.Config{Level: opts.logLevel, Format: "console", Output: os.Stderr})

	first := engine.Human
	if opts.aiFirst {
		first = engine.AI
	}
	if _, err := cli.NewPlayer(os.Stdin, os.Stdout).Run(first); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			fmt.Println("\nGoodbye!")
			return nil
		}
		return err
	}
	return nil
}
