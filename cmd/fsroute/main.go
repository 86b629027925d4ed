package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd(os.Stdout, os.Stderr, os.Getenv)

	if err := rootCmd.Execute(); err != nil {
		if err != errSilent {
			errors.Fprint(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// errSilent ends a command with exit status 1 after it has already
// reported the problem itself.
var errSilent = fmt.Errorf("fsroute: failed")

// cli carries state shared by every subcommand.
type cli struct {
	out    io.Writer
	errOut io.Writer
	getenv func(string) string

	configDir string
	verbose   bool
	noColor   bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(out, errOut io.Writer, getenv func(string) string) *cobra.Command {
	c := &cli{out: out, errOut: errOut, getenv: getenv}

	rootCmd := &cobra.Command{
		Use:   "fsroute",
		Short: "File-system routes for Go HTTP servers",
		Long: `fsroute turns a directory tree into a route table.

Folders become path segments:

  blog/[slug]/page.go        /blog/[slug]       one component
  files/[...path]/page.go    /files/[...path]   one or more components
  docs/[[...slug]]/page.go   /docs/[[...slug]]  zero or more components
  (marketing)/about/page.go  /about             groups add no segment

Static segments beat dynamic ones, which beat catch-alls, at every
position of the path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configDir, "config", "c", ".", "Directory containing fsroute.json")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		routesCmd(c),
		matchCmd(c),
		genCmd(c),
		serveCmd(c),
		versionCmd(c),
	)

	return rootCmd
}

// setup loads configuration and the logger before any subcommand runs.
func (c *cli) setup() error {
	if c.getenv("NO_COLOR") != "" {
		c.noColor = true
	}
	if c.noColor {
		errors.DisableColors()
	}

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))

	cfg, err := config.LoadOrDefault(c.configDir)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(c.getenv); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	c.logger.Debug("configuration loaded",
		"path", cfg.Path(),
		"routes", cfg.RoutesPath(),
		"emptyCatchAll", cfg.EmptyCatchAll,
	)
	return nil
}

// success prints a success message.
func (c *cli) success(format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", c.paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func (c *cli) info(format string, args ...any) {
	fmt.Fprintf(c.out, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func (c *cli) warn(format string, args ...any) {
	fmt.Fprintf(c.errOut, "%s %s\n", c.paint("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func (c *cli) errorMsg(format string, args ...any) {
	fmt.Fprintf(c.errOut, "%s %s\n", c.paint("\033[31m", "✗"), fmt.Sprintf(format, args...))
}

func (c *cli) paint(code, text string) string {
	if c.noColor {
		return text
	}
	return code + text + "\033[0m"
}
