package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/streamfilter/internal/exit"
)

var (
	ErrNoArguments  = errors.New("no arguments provided")
	ErrNoInputs     = errors.New("no input files specified (use - for stdin)")
	ErrMissingQuery = errors.New("filter kind requires an expression: pass -pointer, -jsonpath, or -pipeline")
	ErrConflicting  = errors.New("only one of -pointer, -jsonpath, -pipeline may be given")
)

// Inclusion mirrors tokenfilter.Inclusion without importing the core
// package, so flag parsing has no dependency on the filtering engine.
type Inclusion string

const (
	OnlyIncludeAll    Inclusion = "only"
	IncludeAllAndPath Inclusion = "path"
	IncludeNonNull    Inclusion = "nonnull"
)

// Config represents the complete configuration for the streamfilter CLI.
type Config struct {
	Inputs []string // "-" means stdin; multiple inputs imply batch mode

	Pointer  string // JSON-pointer-shaped filter expression, e.g. "/store/book/*"
	JSONPath string // RFC 9535 JSONPath expression, e.g. "$.store.book[*].author"
	Pipeline string // path to a YAML pipeline file (internal/pipeline.Config)

	Inclusion Inclusion
	Multi     bool // allow multiple matches instead of stopping at the first
	Debug     bool
	RateLimit float64 // input files started per second (0 = unlimited); tokens within an input are not paced
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInputs
	}

	given := 0
	for _, v := range []string{c.Pointer, c.JSONPath, c.Pipeline} {
		if v != "" {
			given++
		}
	}
	if given == 0 {
		return ErrMissingQuery
	}
	if given > 1 {
		return ErrConflicting
	}

	for _, f := range c.Inputs {
		if f == "-" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("input file %s not found: %w", f, err)
		}
	}

	if c.Pipeline != "" {
		if _, err := os.Stat(c.Pipeline); err != nil {
			return fmt.Errorf("pipeline file %s not found: %w", c.Pipeline, err)
		}
	}

	switch c.Inclusion {
	case OnlyIncludeAll, IncludeAllAndPath, IncludeNonNull:
	default:
		return fmt.Errorf("invalid -inclusion %q: want one of only, path, nonnull", c.Inclusion)
	}

	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		pointer   = fs.String("pointer", "", "JSON-pointer-shaped filter expression, e.g. /store/book/*")
		jsonpath  = fs.String("jsonpath", "", "JSONPath filter expression, e.g. $.store.book[*].author")
		pipeline  = fs.String("pipeline", "", "path to a YAML pipeline file describing named filters")
		inclusion = fs.String("inclusion", string(OnlyIncludeAll), "inclusion mode: only, path, nonnull")
		multi     = fs.Bool("multi", false, "allow multiple matches instead of stopping at the first")
		debug     = fs.Bool("debug", false, "enable debug logging")
		rateLimit = fs.Float64("rate-limit", 0, "input files started per second in batch mode (0 for unlimited)")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	cfg := &Config{
		Inputs:    inputs,
		Pointer:   *pointer,
		JSONPath:  *jsonpath,
		Pipeline:  *pipeline,
		Inclusion: Inclusion(strings.ToLower(*inclusion)),
		Multi:     *multi,
		Debug:     *debug,
		RateLimit: *rateLimit,
	}

	if err := cfg.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return cfg, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `streamfilter - stream a subset of a JSON token sequence

Usage: streamfilter [options] <file1> [file2] ...

Options:
  -pointer EXPR        JSON-pointer-shaped filter, e.g. /store/book/*
  -jsonpath EXPR        JSONPath filter, e.g. $.store.book[*].author
  -pipeline FILE        YAML file describing an ordered list of named filters
  -inclusion MODE       only, path, or nonnull (default: only)
  -multi                allow multiple matches instead of stopping at the first
  -rate-limit N         input files started per second in batch mode (0 for unlimited)
  -debug                enable debug logging
  -h, --help            show this help message

Examples:
  streamfilter -pointer /store/book/0 catalog.json
  streamfilter -jsonpath '$.store.book[*].price' -inclusion path catalog.json
  streamfilter -pipeline filters.yaml a.json b.json c.json`
}
