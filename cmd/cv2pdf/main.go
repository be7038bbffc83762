package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-cv2pdf"
	"github.com/alnah/go-cv2pdf/internal/config"
	"github.com/alnah/go-cv2pdf/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Command names.
const (
	cmdConvert = "convert"
	cmdServe   = "serve"
	cmdConfig  = "config"
	cmdVersion = "version"
	cmdHelp    = "help"
)

func main() {
	// Configure GOMAXPROCS for containers. Error ignored: maxprocs.Set only
	// fails if GOMAXPROCS env is invalid, in which case runtime defaults apply.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// isCommand reports whether s names a subcommand.
func isCommand(s string) bool {
	switch s {
	case cmdConvert, cmdServe, cmdConfig, cmdVersion, cmdHelp:
		return true
	}
	return false
}

// runMain dispatches to a command and returns the process exit code.
// Without a command name, arguments are handed to convert.
func runMain(args []string, env *Environment) int {
	cmd, rest := cmdConvert, args[1:]
	switch {
	case len(rest) > 0 && isCommand(rest[0]):
		cmd, rest = rest[0], rest[1:]
	case len(rest) > 0 && (rest[0] == "-h" || rest[0] == "--help"):
		return runHelp(nil, env)
	}

	switch cmd {
	case cmdVersion:
		fmt.Fprintf(env.Stdout, "go-cv2pdf %s\n", Version)
		return ExitSuccess
	case cmdHelp:
		return runHelp(rest, env)
	case cmdServe:
		return runServe(rest, env)
	case cmdConfig:
		return runConfig(rest, env)
	default:
		return runConvert(rest, env)
	}
}

// report prints err with any matching hint and returns its exit code.
// Verbose mode adds the position of table format errors, or the chain of
// wrapped causes for any other failure.
func report(err error, env *Environment, configName string, verbose bool) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, configName))

	if verbose {
		var fe *cv2pdf.FormatError
		if errors.As(err, &fe) {
			fmt.Fprintf(env.Stderr, "  line: %d\n  column: %s\n  value: %q\n", fe.Line, fe.Column, fe.Value)
		} else {
			printCauses(env.Stderr, err, 1)
		}
	}
	return exitCodeFor(err)
}

// printCauses writes each error wrapped by err on its own line, indented
// by depth. Errors joined with several %w verbs are all visited.
func printCauses(w io.Writer, err error, depth int) {
	var causes []error
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		if c := u.Unwrap(); c != nil {
			causes = []error{c}
		}
	case interface{ Unwrap() []error }:
		causes = u.Unwrap()
	}
	for _, c := range causes {
		fmt.Fprintf(w, "%scaused by: %v\n", strings.Repeat("  ", depth), c)
		printCauses(w, c, depth+1)
	}
}

// loadConfig builds the configuration: defaults, then the config file
// (flag, else CV2PDF_CONFIG), then CV2PDF_* variables.
func loadConfig(flagConfig string, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr, env.Environ())
	ec := loadEnvConfig(env.Getenv)

	name := flagConfig
	if name == "" {
		name = ec.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if err := applyEnvConfig(ec, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// usageError wraps a flag or argument mistake so it maps to ExitUsage.
func usageError(err error) error {
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// hintFor returns an actionable hint for known failures, or "".
func hintFor(err error, configName string) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		if configName == "" || strings.ContainsAny(configName, "/\\") {
			return hints.ForConfigNotFound(nil)
		}
		return hints.ForConfigNotFound(config.SearchPaths(configName))
	case errors.Is(err, cv2pdf.ErrUnknownBackend):
		return hints.ForBackend(cv2pdf.Backends())
	case errors.Is(err, cv2pdf.ErrFormat):
		return hints.ForTableFormat()
	case errors.Is(err, cv2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, cv2pdf.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, cv2pdf.ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
