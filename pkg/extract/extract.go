// Package extract unpacks legacy CBR archives through an ordered list of
// external tools, stopping at the first one that succeeds.
package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds each tool invocation.
	DefaultTimeout = 2 * time.Minute

	listTimeout = 15 * time.Second
)

// RunFunc executes a command and returns its combined output. Tests inject
// their own runner.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Strategy is one external tool invocation. Strategies are tried in order
// with a uniform success/failure/timeout contract.
type Strategy struct {
	Name string
	Args func(archive string, dest string) []string
}

// DefaultStrategies returns the tool order used for CBR extraction.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "7z",
			Args: func(archive, dest string) []string {
				return []string{"7z", "x", archive, "-o" + dest, "-y"}
			},
		},
		{
			Name: "unrar",
			Args: func(archive, dest string) []string {
				return []string{"unrar", "x", archive, dest}
			},
		},
		{
			Name: "rar",
			Args: func(archive, dest string) []string {
				return []string{"rar", "x", archive, dest}
			},
		},
	}
}

type Extractor struct {
	strategies []Strategy
	timeout    time.Duration
	run        RunFunc
	log        *logrus.Entry
}

func New(timeout time.Duration, log *logrus.Entry) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Extractor{
		strategies: DefaultStrategies(),
		timeout:    timeout,
		run:        runCommand,
		log:        log,
	}
}

// WithStrategies overrides the tool order (tests).
func (e *Extractor) WithStrategies(strategies []Strategy) *Extractor {
	e.strategies = strategies
	return e
}

// WithRunner overrides command execution (tests).
func (e *Extractor) WithRunner(run RunFunc) *Extractor {
	e.run = run
	return e
}

// Extract unpacks the archive into dest, returning the name of the strategy
// that succeeded. When every strategy fails, the returned error names each
// attempt.
func (e *Extractor) Extract(ctx context.Context, archive string, dest string) (string, error) {
	var attempts []string

	for _, s := range e.strategies {
		args := s.Args(archive, dest)

		toolCtx, cancel := context.WithTimeout(ctx, e.timeout)
		output, err := e.run(toolCtx, args[0], args[1:]...)
		cancel()

		if err == nil {
			e.log.Debugf("Extracted %s with %s", archive, s.Name)
			return s.Name, nil
		}

		e.log.Debugf("Extraction with %s failed: %v", s.Name, err)
		attempts = append(attempts, fmt.Sprintf("%s: %v: %s", s.Name, err, strings.TrimSpace(string(output))))
	}

	return "", errors.Errorf("all extraction tools failed: %s", strings.Join(attempts, "; "))
}

// ListOutput returns the archive listing from 7z, used to inspect legacy
// archive entry names without extracting.
func (e *Extractor) ListOutput(ctx context.Context, archive string) (string, error) {
	listCtx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	output, err := e.run(listCtx, "7z", "l", archive)
	if err != nil {
		return "", errors.Wrapf(err, "list archive: %s", archive)
	}

	return string(output), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
