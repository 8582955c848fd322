// Package pipeline runs a document through one or more named filter
// stages described by a YAML configuration file, wiring rate limiting,
// structured logging, and a per-run correlation id around the work.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jacoelho/streamfilter/internal/emit"
	"github.com/jacoelho/streamfilter/internal/jsonsource"
	"github.com/jacoelho/streamfilter/internal/pathfilter"
	"github.com/jacoelho/streamfilter/internal/ratelimit"
	"github.com/jacoelho/streamfilter/internal/tokenfilter"
)

// ErrEmptyPipeline reports a pipeline config with no stages.
var ErrEmptyPipeline = errors.New("pipeline: no stages defined")

// StageConfig describes a single filtering pass over the input.
type StageConfig struct {
	Name      string `yaml:"name"`
	Pointer   string `yaml:"pointer,omitempty"`
	JSONPath  string `yaml:"jsonpath,omitempty"`
	Inclusion string `yaml:"inclusion,omitempty"`
	Multi     bool   `yaml:"multi,omitempty"`
}

// Config is the top-level pipeline document.
type Config struct {
	Stages []StageConfig `yaml:"stages"`
}

// Load parses a pipeline YAML document.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pipeline: parse config: %w", err)
	}
	if len(cfg.Stages) == 0 {
		return nil, ErrEmptyPipeline
	}
	for i := range cfg.Stages {
		if err := cfg.Stages[i].validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (s StageConfig) validate() error {
	if s.Pointer != "" && s.JSONPath != "" {
		return fmt.Errorf("pipeline: stage %q: only one of pointer or jsonpath may be given", s.Name)
	}
	if s.Pointer == "" && s.JSONPath == "" {
		return fmt.Errorf("pipeline: stage %q: pointer or jsonpath is required", s.Name)
	}
	switch s.Inclusion {
	case "", "path", "only", "nonnull":
	default:
		return fmt.Errorf("pipeline: stage %q: unknown inclusion %q", s.Name, s.Inclusion)
	}
	return nil
}

func (s StageConfig) buildFilter() (tokenfilter.Filter, error) {
	if s.Pointer != "" {
		return pathfilter.NewPointer(s.Pointer)
	}
	return pathfilter.CompileJSONPath(s.JSONPath)
}

func (s StageConfig) inclusion() tokenfilter.Inclusion {
	switch s.Inclusion {
	case "path":
		return tokenfilter.IncludeAllAndPath
	case "nonnull":
		return tokenfilter.IncludeNonNull
	default:
		return tokenfilter.OnlyIncludeAll
	}
}

// Runner executes a Config's stages against a batch of input files.
type Runner struct {
	cfg     *Config
	limiter *ratelimit.Limiter
	log     *logrus.Entry
}

// NewRunner builds a Runner. A nil limiter disables rate limiting; a nil
// log falls back to logrus's standard logger.
func NewRunner(cfg *Config, limiter *ratelimit.Limiter, log *logrus.Entry) *Runner {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{cfg: cfg, limiter: limiter, log: log}
}

// Run filters each of inputs through every configured stage in turn,
// writing each stage's output as one JSON document to out.
func (r *Runner) Run(ctx context.Context, inputs []string, out io.Writer) error {
	runID := uuid.NewString()
	log := r.log.WithField("run_id", runID)

	for _, path := range inputs {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("pipeline: rate limit wait: %w", err)
			}
		}
		inputLog := log.WithField("input", path)
		inputLog.Info("processing input")
		if err := r.runInput(path, out); err != nil {
			inputLog.WithError(err).Error("stage failed")
			return err
		}
	}
	return nil
}

func (r *Runner) runInput(path string, out io.Writer) error {
	for _, stage := range r.cfg.Stages {
		if err := r.runStage(stage, path, out); err != nil {
			return fmt.Errorf("pipeline: stage %q on %s: %w", stage.Name, path, err)
		}
	}
	return nil
}

func (r *Runner) runStage(stage StageConfig, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	filter, err := stage.buildFilter()
	if err != nil {
		return err
	}

	src := jsonsource.New(f)
	cur := tokenfilter.NewCursor(src, filter, stage.inclusion(), stage.Multi)
	w := emit.New(out)

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
	_, err = out.Write([]byte("\n"))
	return err
}
