package main

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-cv2pdf/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// rendererFlags select and tune the PDF backend.
type rendererFlags struct {
	backend string
	timeout string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	renderer rendererFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common     commonFlags
	renderer   rendererFlags
	addr       string
	storageDir string
	publicURL  string
	workers    int
	logLevel   string
	logFormat  string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addRendererFlags adds backend flags to a FlagSet.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVarP(&f.backend, "backend", "b", "", "PDF backend: native, chrome")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "chrome page-load timeout (e.g., 30s, 2m)")
}

// newFlagSet returns a FlagSet that reports errors to the caller instead
// of exiting, with usage printed to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newFlagSet("convert", stderr, printConvertUsage)
	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)
	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default "+config.DefaultAddr+")")
	fs.StringVar(&f.storageDir, "storage-dir", "", "directory for generated PDFs")
	fs.StringVar(&f.publicURL, "public-url", "", "base URL of download links")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel converters (0 = auto)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses the config command flags.
func parseConfigFlags(args []string, stderr io.Writer) (*commonFlags, []string, error) {
	f := &commonFlags{}
	fs := newFlagSet("config", stderr, printConfigUsage)
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// mergeRendererFlags applies set renderer flags over cfg (flags win).
func mergeRendererFlags(f *rendererFlags, cfg *config.Config) {
	setIf(&cfg.Renderer.Backend, f.backend)
	setIf(&cfg.Renderer.Timeout, f.timeout)
}

// mergeServeFlags applies set serve flags over cfg (flags win).
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	mergeRendererFlags(&f.renderer, cfg)
	setIf(&cfg.Server.Addr, f.addr)
	setIf(&cfg.Server.StorageDir, f.storageDir)
	setIf(&cfg.Server.PublicURL, f.publicURL)
	setIf(&cfg.Log.Level, f.logLevel)
	setIf(&cfg.Log.Format, f.logFormat)
	if f.workers != 0 {
		cfg.Server.Workers = f.workers
	}
	if f.common.verbose {
		cfg.Log.Level = "debug"
	}
}

// hasVerboseFlag reports whether -v or --verbose appears before any "--".
// Used before flag parsing to configure startup logging.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}
