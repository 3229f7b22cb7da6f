// Command forge-mvn runs Maven build steps outside of Maven: resolving the
// highest remote version of an artifact and writing a dependency manifest.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/input-output-hk/catalyst-forge-libs/maven/config"
	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
)

const usage = `usage: forge-mvn [global flags] <command> [flags]

commands:
  remote-version        print the highest version of an artifact in a remote repository
  dependency-manifest   write the local-repository-relative paths of resolved dependencies

global flags:
`

type globalOptions struct {
	configFile      string
	localRepository string
	logLevel        string
	logFormat       string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var g globalOptions
	fset := flag.NewFlagSet("forge-mvn", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&g.configFile, "config", "", "configuration file (CUE)")
	fset.StringVar(&g.localRepository, "local-repository", "", "Maven local repository")
	fset.StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fset.StringVar(&g.logFormat, "log-format", "text", "log format: text or json")
	fset.Usage = func() {
		fmt.Fprint(stderr, usage)
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		return 2
	}

	logger, err := newLogger(stderr, g.logLevel, g.logFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	rest := fset.Args()
	if len(rest) == 0 {
		fset.Usage()
		return 2
	}

	cfg, err := config.NewLoader(config.WithLogger(logger)).Load(ctx, g.configFile)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if g.localRepository != "" {
		cfg.LocalRepository = g.localRepository
	}

	switch rest[0] {
	case "remote-version":
		err = runRemoteVersion(ctx, cfg, logger, rest[1:], stdout, stderr)
	case "dependency-manifest":
		err = runDependencyManifest(ctx, cfg, logger, rest[1:], stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		fset.Usage()
		return 2
	}

	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, errUsage):
		return 2
	default:
		logger.ErrorContext(ctx, rest[0]+" failed", "error", err, "code", string(errors.GetCode(err)))
		return 1
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// errUsage marks a command line parsing failure. The flag package has
// already reported it.
var errUsage = stderrors.New("invalid usage")
