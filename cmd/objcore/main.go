package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jython/jython-sub004/pkg/config"
	"github.com/jython/jython-sub004/pkg/diag"
	"github.com/jython/jython-sub004/pkg/interpreter"
)

const cliToolVersion = "objcore 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	configPath, remaining, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	diag.Configure(cfg.Logging, os.Stderr)
	interp := interpreter.New(cfg, loadHostClass)

	switch remaining[0] {
	case "demo":
		return runDemo(interp, os.Stdout)
	case "repl":
		return runRepl(interp)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", remaining[0])
		printUsage()
		return 1
	}
}

func parseGlobalFlags(args []string) (string, []string, error) {
	var configPath string
	for len(args) > 0 {
		arg := args[0]
		switch {
		case arg == "--config" || arg == "-c":
			if len(args) < 2 {
				return "", nil, fmt.Errorf("%s requires a path", arg)
			}
			configPath = args[1]
			args = args[2:]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
			args = args[1:]
		default:
			return configPath, args, nil
		}
	}
	return configPath, args, nil
}
