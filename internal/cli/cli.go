// Package cli holds the argument handling and run setup shared by the
// commands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/srdcrawl/internal/config"
	"github.com/cory-johannsen/srdcrawl/internal/observability"
)

// ErrUsage is returned by Parse when the arguments call for the usage text.
var ErrUsage = errors.New("usage requested")

// Command describes a command line: its flags and the names of its
// positional arguments.
type Command struct {
	Name       string
	Positional []string
	Flags      *flag.FlagSet
}

// NewCommand creates a Command with an empty flag set.
func NewCommand(name string, positional ...string) *Command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return &Command{Name: name, Positional: positional, Flags: fs}
}

// Parse parses args and returns the positional arguments.
//
// Postcondition: returns an error wrapping ErrUsage when a flag is invalid,
// -h or -help is given, the positional count is wrong, or any positional
// argument reads "help" once dashes are removed.
func (c *Command) Parse(args []string) ([]string, error) {
	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, ErrUsage
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	pos := c.Flags.Args()
	for _, arg := range pos {
		if strings.ToLower(strings.TrimSpace(strings.ReplaceAll(arg, "-", ""))) == "help" {
			return nil, ErrUsage
		}
	}
	if len(pos) != len(c.Positional) {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", ErrUsage, len(c.Positional), len(pos))
	}
	return pos, nil
}

// Usage writes the usage line and flag defaults to w.
func (c *Command) Usage(w io.Writer) {
	var b strings.Builder
	fmt.Fprintf(&b, "USAGE: %s", c.Name)
	hasFlags := false
	c.Flags.VisitAll(func(*flag.Flag) { hasFlags = true })
	if hasFlags {
		b.WriteString(" [flags]")
	}
	for _, p := range c.Positional {
		fmt.Fprintf(&b, " <%s>", p)
	}
	fmt.Fprintln(w, b.String())

	if hasFlags {
		c.Flags.SetOutput(w)
		c.Flags.PrintDefaults()
		c.Flags.SetOutput(io.Discard)
	}
}

// Run parses args and, on a usage error, writes the error and usage text to
// stderr and returns exit status 1. Otherwise it calls fn with the
// positional arguments and maps a non-nil error to status 1.
func (c *Command) Run(args []string, stderr io.Writer, fn func(positional []string) error) int {
	pos, err := c.Parse(args)
	if err != nil {
		if err != ErrUsage {
			fmt.Fprintln(stderr, err)
		}
		c.Usage(stderr)
		return 1
	}
	if err := fn(pos); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// Setup loads configuration and builds the run logger, tagged with the
// command name and a fresh run ID.
//
// Postcondition: returns a valid Config, a logger, and the run ID, or an
// error.
func Setup(command, configPath string) (config.Config, *zap.Logger, uuid.UUID, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, uuid.Nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return config.Config{}, nil, uuid.Nil, fmt.Errorf("initializing logger: %w", err)
	}
	runID := uuid.New()
	return cfg, observability.ForRun(logger, command, runID), runID, nil
}
