package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasFlag(os.Args[1:], "-v", "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, env)
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
// A first argument that looks like a markdown file or is not a known command
// runs convert.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch {
	case isCommand(cmd, "convert"):
		return runConvertCmd(ctx, rest, env)
	case isCommand(cmd, "doctor"):
		return runDoctorCmd(rest, env)
	case isCommand(cmd, "version", "--version"):
		fmt.Fprintf(env.Stdout, "md2docx %s\n", Version)
		return ExitSuccess
	case isCommand(cmd, "help", "-h", "--help"):
		return runHelp(rest, env)
	case looksLikeMarkdown(cmd) || strings.HasPrefix(cmd, "-"):
		return runConvertCmd(ctx, args[1:], env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

func isCommand(arg string, names ...string) bool {
	for _, n := range names {
		if arg == n {
			return true
		}
	}
	return false
}

func looksLikeMarkdown(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// hasFlag reports whether any of names appears before a "--" terminator.
func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if isCommand(a, names...) {
			return true
		}
	}
	return false
}
