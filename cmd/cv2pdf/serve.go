package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alnah/go-cv2pdf"
	"github.com/alnah/go-cv2pdf/internal/logging"
	"github.com/alnah/go-cv2pdf/internal/server"
	"github.com/alnah/go-cv2pdf/internal/store"
)

// runServe starts the HTTP service and blocks until a signal stops it.
func runServe(args []string, env *Environment) int {
	f, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return report(usageError(err), env, "", false)
	}
	if len(positional) > 0 {
		return report(usageError(fmt.Errorf("unexpected arguments: %v", positional)), env, "", false)
	}

	cfg, err := loadConfig(f.common.config, env)
	if err != nil {
		return report(err, env, f.common.config, f.common.verbose)
	}
	mergeServeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return report(err, env, f.common.config, f.common.verbose)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, env.Stderr)
	if err != nil {
		return report(usageError(err), env, f.common.config, false)
	}
	defer func() { _ = log.Sync() }()

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return report(err, env, f.common.config, false)
	}

	st, err := store.NewFileStore(cfg.Server.StorageDir)
	if err != nil {
		return report(err, env, f.common.config, false)
	}

	pool := cv2pdf.NewConverterPool(cv2pdf.ResolvePoolSize(cfg.Server.Workers),
		cv2pdf.WithBackend(cfg.Renderer.Backend),
		cv2pdf.WithTimeout(timeout),
		cv2pdf.WithLogger(log),
	)
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			log.Warn("closing converters", zap.Error(cerr))
		}
	}()

	srv := server.New(&server.PoolConverter{Pool: pool}, st, log, server.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		PublicURL:      cfg.Server.PublicURL,
	})

	ctx, stop := env.NotifyContext(context.Background())
	defer stop()

	log.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("backend", cfg.Renderer.Backend),
		zap.Int("workers", pool.Size()),
		zap.String("storage_dir", st.Dir()),
	)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		log.Error("server stopped", zap.Error(err))
		return ExitGeneral
	}
	log.Info("server stopped")
	return ExitSuccess
}
