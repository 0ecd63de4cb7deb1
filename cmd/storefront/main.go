// Package main provides the storefront command line: browse the marketplace,
// keep a cart, check out and follow orders from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/TheRipper284/frontend/internal/infrastructure/config"
)

// Version information (populated at build time)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// globalFlags are the flags accepted before the command name.
type globalFlags struct {
	configPath  string
	verbose     bool
	output      string
	yes         bool
	showVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code: 0 on
// success, 1 when the command failed, 2 on bad usage.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var g globalFlags
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.configPath, "config", "", "Path to a storefront.toml configuration file")
	fs.StringVar(&g.configPath, "c", "", "Path to a configuration file (shorthand)")
	fs.BoolVar(&g.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&g.verbose, "v", false, "Enable debug logging (shorthand)")
	fs.StringVar(&g.output, "output", formatTable, "Output format: table, json or yaml")
	fs.BoolVar(&g.yes, "yes", false, "Answer yes to every confirmation prompt")
	fs.BoolVar(&g.yes, "y", false, "Answer yes to every confirmation prompt (shorthand)")
	fs.BoolVar(&g.showVersion, "version", false, "Show version information")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if g.showVersion {
		printVersion(stdout)
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", rest[0])
		printUsage(stderr)
		return 2
	}
	if !validFormat(g.output) {
		fmt.Fprintf(stderr, "Error: unknown output format %q (want table, json or yaml)\n", g.output)
		return 2
	}

	cfg, err := config.LoadFile(g.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	a, err := newApp(ctx, cfg, g, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.close()

	// Every command starts from a verified session.
	a.auth.CheckAuth(ctx)

	err = cmd.run(ctx, a, rest[1:])
	if err == nil {
		return 0
	}
	a.logger.Debug("Command failed", zap.String("command", cmd.name), zap.Error(err))

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Error: %s\nUsage: storefront %s\n", ue.msg, ue.usage)
		return 2
	}
	var ce *commandError
	if errors.As(err, &ce) {
		fmt.Fprintf(stderr, "Error: %v\n", ce.err)
	}
	// Anything else was already reported through the notifier.
	return 1
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "storefront version %s\n", version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Storefront - marketplace client

USAGE:
    storefront [global options] <command> [command options] [arguments]

GLOBAL OPTIONS:
    -config, -c <path>    Path to storefront.toml (default: ./storefront.toml, ~/.config/storefront)
    -output <format>      Output format: table, json or yaml (default: table)
    -yes, -y              Answer yes to confirmation prompts
    -verbose, -v          Enable debug logging
    -version              Show version information

COMMANDS:
`)
	for _, c := range commandTable() {
		fmt.Fprintf(w, "    %-18s %s\n", c.name, c.summary)
	}
	fmt.Fprint(w, `
ENVIRONMENT:
    STOREFRONT_API_URL    API base URL (NEXT_PUBLIC_API_URL is also read)
    STOREFRONT_PASSWORD   Password for login when -password is omitted
    STOREFRONT_*          Any configuration key, e.g. STOREFRONT_STORAGE_DRIVER=sqlite

EXAMPLES:
    storefront login -email ana@example.com
    storefront products -search lámpara -sort price_asc
    storefront cart add -qty 2 12
    storefront checkout -address "Av. Juárez 10, CDMX" -method card -card 4242424242424242 -expiry 12/28 -cvv 123 -name "ANA LOPEZ"
    storefront -output json orders
`)
}
