// Command streamfilter reads one or more JSON documents and writes back
// only the portions selected by a JSON Pointer, a JSONPath expression,
// or a multi-stage YAML pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/jacoelho/streamfilter/internal/config"
	"github.com/jacoelho/streamfilter/internal/emit"
	"github.com/jacoelho/streamfilter/internal/exit"
	"github.com/jacoelho/streamfilter/internal/jsonsource"
	"github.com/jacoelho/streamfilter/internal/pathfilter"
	"github.com/jacoelho/streamfilter/internal/pipeline"
	"github.com/jacoelho/streamfilter/internal/ratelimit"
	"github.com/jacoelho/streamfilter/internal/tokenfilter"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, exitResult := config.Parse(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	log := logrus.New()
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Pipeline != "" {
		return runPipeline(ctx, cfg, entry)
	}
	return runSingle(ctx, cfg, entry)
}

func runPipeline(ctx context.Context, cfg *config.Config, log *logrus.Entry) int {
	f, err := os.Open(cfg.Pipeline)
	if err != nil {
		exit.Errorf("Error: %v\n", err).Print()
		return 1
	}
	defer f.Close()

	pcfg, err := pipeline.Load(f)
	if err != nil {
		exit.Errorf("Error: %v\n", err).Print()
		return 1
	}

	limiter := ratelimit.New(cfg.RateLimit)
	runner := pipeline.NewRunner(pcfg, limiter, log)

	if err := runner.Run(ctx, cfg.Inputs, os.Stdout); err != nil {
		exit.Errorf("Error: %v\n", err).Print()
		return 1
	}
	return 0
}

func runSingle(ctx context.Context, cfg *config.Config, log *logrus.Entry) int {
	filter, err := buildFilter(cfg)
	if err != nil {
		exit.Errorf("Error: %v\n", err).Print()
		return 1
	}

	limiter := ratelimit.New(cfg.RateLimit)

	for _, path := range cfg.Inputs {
		if err := limiter.Wait(ctx); err != nil {
			exit.Errorf("Error: %v\n", err).Print()
			return 1
		}
		if err := filterOne(path, filter, inclusion(cfg.Inclusion), cfg.Multi, os.Stdout); err != nil {
			log.WithField("input", path).WithError(err).Error("filter failed")
			exit.Errorf("Error: %s: %v\n", path, err).Print()
			return 1
		}
	}
	return 0
}

func buildFilter(cfg *config.Config) (tokenfilter.Filter, error) {
	switch {
	case cfg.Pointer != "":
		return pathfilter.NewPointer(cfg.Pointer)
	case cfg.JSONPath != "":
		return pathfilter.CompileJSONPath(cfg.JSONPath)
	default:
		return nil, fmt.Errorf("no filter expression given")
	}
}

func inclusion(mode config.Inclusion) tokenfilter.Inclusion {
	switch mode {
	case config.IncludeAllAndPath:
		return tokenfilter.IncludeAllAndPath
	case config.IncludeNonNull:
		return tokenfilter.IncludeNonNull
	default:
		return tokenfilter.OnlyIncludeAll
	}
}

func filterOne(path string, filter tokenfilter.Filter, inc tokenfilter.Inclusion, multi bool, stdout *os.File) error {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
	}

	src := jsonsource.New(f)
	cur := tokenfilter.NewCursor(src, filter, inc, multi)
	w := emit.New(stdout)

	for {
		t, err := cur.NextToken()
		if err != nil {
			return err
		}
		if t == tokenfilter.NoToken {
			break
		}
		if err := w.WriteToken(t, cur.CurrentName(), cur); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := stdout.Write([]byte("\n"))
	return err
}
