package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alnah/go-cv2pdf"
	"github.com/alnah/go-cv2pdf/internal/config"
	"github.com/alnah/go-cv2pdf/internal/fileutil"
	"github.com/alnah/go-cv2pdf/internal/hints"
	"github.com/alnah/go-cv2pdf/internal/logging"
)

// runConvert parses flags, converts one table and reports the outcome.
func runConvert(args []string, env *Environment) int {
	f, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return report(usageError(err), env, "", false)
	}
	if len(positional) > 2 {
		return report(usageError(fmt.Errorf("too many arguments: %v", positional[2:])), env, "", false)
	}

	cfg, err := loadConfig(f.common.config, env)
	if err != nil {
		return report(err, env, f.common.config, f.common.verbose)
	}
	mergeRendererFlags(&f.renderer, cfg)
	if err := cfg.Validate(); err != nil {
		return report(err, env, f.common.config, f.common.verbose)
	}

	src, dst := cfg.Input.DefaultPath, cfg.Output.DefaultPath
	if len(positional) > 0 {
		src = positional[0]
	}
	if len(positional) > 1 {
		dst = positional[1]
	}

	if !fileutil.FileExists(src) {
		fmt.Fprintf(env.Stderr, "error: file %s does not exist%s\n", src, hints.ForMissingSource(config.DefaultInputPath))
		fmt.Fprintln(env.Stderr)
		printConvertUsage(env.Stderr)
		return ExitGeneral
	}

	ctx, stop := env.NotifyContext(context.Background())
	defer stop()

	res, err := convertFile(ctx, cfg, &f.common, env, src, dst)
	if err != nil {
		return report(fmt.Errorf("generating CV: %w", err), env, f.common.config, f.common.verbose)
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s (%d page(s))\n", dst, res.Pages)
	}
	if res.Overflowed > 0 && !f.common.quiet {
		fmt.Fprintf(env.Stderr, "warning: %d block(s) did not fit their column and may be clipped\n", res.Overflowed)
	}
	return ExitSuccess
}

// convertFile builds a converter from cfg and runs a single conversion.
// Verbose mode logs stage timings to stderr.
func convertFile(ctx context.Context, cfg *config.Config, common *commonFlags, env *Environment, src, dst string) (*cv2pdf.Result, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if common.verbose {
		if log, err = logging.New("debug", cfg.Log.Format, env.Stderr); err != nil {
			return nil, err
		}
		defer func() { _ = log.Sync() }()
	}

	conv, err := cv2pdf.NewConverter(
		cv2pdf.WithBackend(cfg.Renderer.Backend),
		cv2pdf.WithTimeout(timeout),
		cv2pdf.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conv.Close() }()

	return conv.ConvertFile(ctx, src, dst)
}
