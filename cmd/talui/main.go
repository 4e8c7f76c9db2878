package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pthm/talui/lib/config"
	"github.com/pthm/talui/lib/hclconfig"
	"github.com/pthm/talui/lib/settings"
)

const version = "0.1.0"

// defaultConfig is read when --config is not given. It may be missing.
const defaultConfig = "talui.yaml"

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command. Output goes to out, logs to logW.
func run(out, logW io.Writer, args []string) error {
	if len(args) == 0 {
		printUsage(out)
		return errUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "check":
		return runCheck(out, logW, args)
	case "doc":
		return runDoc(out, logW, args)
	case "generate":
		return runGenerate(out, logW, args)
	case "layers":
		return runLayers(out, logW, args)
	case "forget":
		return runForget(out, logW, args)
	case "decode":
		return runDecode(out, logW, args)
	case "version":
		fmt.Fprintf(out, "talui version %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		fmt.Fprintf(out, "unknown command: %s\n", cmd)
		printUsage(out)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `talui - layered window applications for Go

Usage:
  talui <command> [options] [paths]

Commands:
  check [paths]         Load, compile and initialise the app definition
  doc [paths]           Print an outline of the app graph
  generate [paths]      Generate typed bind structs for the model layers
  layers                List the layers kept in the store
  forget <layer>        Delete a layer from the store
  decode <token>        Print the values carried by a layer token
  version               Print version
  help                  Show this help

Paths are .hcl files or directories searched for them. Without paths the
search_paths of the settings file are used.

Options for every command:
  -config file          Settings file (default talui.yaml)

Options for generate:
  -o file               Output file (default stdout)
  -pkg name             Package name (default binds)
  -dry-run              Show what would be generated without writing

Options for decode:
  -sensitive            The token is encrypted rather than signed

Examples:
  talui check ./app
  talui doc ./app/shop.hcl
  talui generate -o binds/binds.go -pkg binds ./app`)
}

// env is what every command starts from.
type env struct {
	settings *settings.Settings
	logger   *slog.Logger
	flags    *flag.FlagSet
}

// newEnv parses the flags of a command, reads the settings file and builds
// the logger. define registers command-specific flags.
func newEnv(name string, out, logW io.Writer, args []string, define func(fs *flag.FlagSet)) (*env, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	cfgPath := fs.String("config", defaultConfig, "settings file")
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}

	s, err := settings.Load(*cfgPath)
	if err != nil {
		return nil, err
	}
	return &env{settings: s, logger: s.Logger(logW), flags: fs}, nil
}

// loadApp loads and compiles the definitions under the command's paths.
// Controllers and resolvers are bound to placeholders: the definition is
// checked, nothing is performed.
func (e *env) loadApp() (*config.AppConfig, error) {
	paths := e.flags.Args()
	if len(paths) == 0 {
		paths = e.settings.SearchPaths
	}
	e.logger.Debug("loading definitions", "paths", paths)

	def, err := hclconfig.NewLoader(hclconfig.WithLogger(e.logger)).Load(paths...)
	if err != nil {
		return nil, err
	}
	opts := append(placeholders(def), config.WithLogger(e.logger))
	app, err := config.NewCompiler(opts...).Compile(def)
	if err != nil {
		return nil, err
	}
	return app, nil
}
