// Package main provides the msnet CLI: mixture-of-experts classification
// with a router model and a directory of expert models.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/born-ml/msnet/internal/config"
	"github.com/born-ml/msnet/internal/input"
	"github.com/born-ml/msnet/internal/logger"
	"github.com/born-ml/msnet/internal/metrics"
	"github.com/born-ml/msnet/internal/moe"
	"github.com/born-ml/msnet/internal/pipeline"
	"github.com/born-ml/msnet/internal/session"
)

const version = "v0.1.0"

const usage = `msnet - mixture-of-experts image classification

Usage:
  msnet predict -config FILE [-detail] INPUT...
  msnet experts -config FILE
  msnet version

Inputs are .bin/.raw (little-endian float32), .csv/.txt or .json files
holding one CHW image each.
`

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "msnet %s\n", version)
		return 0
	case "predict":
		err = runPredict(args[1:], stdout, stderr)
	case "experts":
		err = runExperts(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fmt.Fprintf(stderr, "msnet: %v\n", err)
		return 1
	}
}

// loadConfig parses the common flags and the config file.
func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	path := fs.String("config", "", "Path to the config file (TOML, YAML or JSON)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	return config.Load(*path)
}

func runPredict(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	detail := fs.Bool("detail", false, "Print router candidates and the selected expert")

	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "predict: no input files")
		return errUsage
	}

	log, err := logger.New(cfg.LogLevel, stderr, true)
	if err != nil {
		return err
	}
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...any) {
		log.Debug().Msgf(format, a...)
	}))
	if err != nil {
		log.Warn().Err(err).Msg("could not set GOMAXPROCS")
	}
	defer undo()

	stats, err := metrics.NewClient(cfg.StatsdAddr, []string{"service:msnet"})
	if err != nil {
		return err
	}
	defer stats.Close()

	p, err := pipeline.Build(cfg,
		pipeline.WithLogger(log),
		pipeline.WithObserver(logger.NewObserver(log)),
		pipeline.WithObserver(metrics.NewObserver(stats)),
	)
	if err != nil {
		return err
	}
	defer p.Close()

	failed := 0
	for _, path := range fs.Args() {
		if err := predictFile(p.Dispatcher, path, *detail, stdout); err != nil {
			log.Error().Err(err).Str("input", path).Msg("prediction failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d predictions failed", failed, fs.NArg())
	}
	return nil
}

func predictFile(d *moe.Dispatcher, path string, detail bool, out io.Writer) error {
	pixels, err := input.ReadFile(path)
	if err != nil {
		return err
	}

	res, err := d.PredictDetailed(pixels)
	if err != nil {
		return err
	}

	if !detail {
		fmt.Fprintf(out, "%s\t%d\n", path, res.Class)
		return nil
	}

	expert := res.Expert
	switch {
	case res.Fallback:
		expert = "(fallback)"
	case expert == "":
		expert = "-"
	}
	fmt.Fprintf(out, "%s\t%d\ttop=%v\tscores=%v\texpert=%s\n", path, res.Class, res.TopIndices, res.TopScores, expert)
	return nil
}

func runExperts(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("experts", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, stderr, true)
	if err != nil {
		return err
	}

	paths, err := session.ListModels(cfg.ExpertModelDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w in %s", moe.ErrNoExperts, cfg.ExpertModelDir)
	}

	keys := make([]string, len(paths))
	for i, path := range paths {
		keys[i] = session.ExpertKey(path)
	}
	classMap := moe.NewExpertClassMap(keys, logger.NewObserver(log))
	for _, key := range classMap.Keys() {
		ids, _ := classMap.Classes(key)
		fmt.Fprintf(stdout, "%s\t%s\n", key, formatIDs(ids))
	}
	return nil
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
