package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) int {
	f, positional, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return report(usageError(err), env, "", false)
	}
	if len(positional) > 0 {
		return report(usageError(fmt.Errorf("unexpected arguments: %v", positional)), env, "", false)
	}

	cfg, err := loadConfig(f.config, env)
	if err != nil {
		return report(err, env, f.config, false)
	}
	if err := cfg.Validate(); err != nil {
		return report(err, env, f.config, false)
	}

	out, err := cfg.YAML()
	if err != nil {
		return report(err, env, f.config, false)
	}
	_, _ = env.Stdout.Write(out)
	return ExitSuccess
}
