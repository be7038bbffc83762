package main

import (
	"fmt"
	"io"

	"github.com/alnah/go-cv2pdf/internal/config"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cv2pdf [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Generate a PDF résumé from a CSV table (default)")
	fmt.Fprintln(w, "  serve      Run the HTTP generation service")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'cv2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cv2pdf [convert] [source.csv] [dest.pdf] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a two-column PDF résumé from a CSV table.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintf(w, "  source.csv    Input table (default %s)\n", config.DefaultInputPath)
	fmt.Fprintf(w, "  dest.pdf      Output PDF (default %s)\n", config.DefaultOutputPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input table header: section,subsection,type,content,order")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -b, --backend <s>         PDF backend: native, chrome")
	fmt.Fprintln(w, "  -t, --timeout <d>         Chrome page-load timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cv2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP service: POST /generate-cv, GET /download-cv/{cv_id},")
	fmt.Fprintln(w, "GET /health and GET /openapi.json. Stops gracefully on SIGINT/SIGTERM.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintf(w, "  -a, --addr <addr>         Listen address (default %s)\n", config.DefaultAddr)
	fmt.Fprintln(w, "      --storage-dir <path>  Directory for generated PDFs")
	fmt.Fprintln(w, "      --public-url <url>    Base URL of download links")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel converters (0 = auto)")
	fmt.Fprintln(w, "  -b, --backend <s>         PDF backend: native, chrome")
	fmt.Fprintln(w, "  -t, --timeout <d>         Chrome page-load timeout")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Log format: console, json")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -v, --verbose             Same as --log-level debug")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cv2pdf config [-c name]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after merging the config file and CV2PDF_* variables.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case cmdConvert:
		printConvertUsage(env.Stdout)
	case cmdServe:
		printServeUsage(env.Stdout)
	case cmdConfig:
		printConfigUsage(env.Stdout)
	case cmdVersion:
		fmt.Fprintln(env.Stdout, "Usage: cv2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(env.Stdout, "Usage: cv2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
