// najuexport converts YAML scene files into NajuEngine .mesh and .armature
// documents.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/naju-export/internal/config"
	"github.com/Faultbox/naju-export/internal/logger"
)

var errUsage = errors.New("usage")

func main() {
	// Global flags come before the command
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(flag.Args(), cfg, os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			logger.Error("command failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

// run dispatches one command. Output meant for the user goes to out.
func run(args []string, cfg *config.Config, out io.Writer) error {
	if len(args) < 1 {
		printUsage(os.Stderr)
		return errUsage
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "export", "x":
		return cmdExport(args, cfg, out)
	case "watch":
		return cmdWatch(args, cfg, out)
	case "animate":
		return cmdAnimate(args, cfg, out)
	case "frames":
		return cmdFrames(args, cfg, out)
	case "inspect", "info":
		return cmdInspect(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `najuexport - NajuEngine mesh/armature exporter

Usage:
  najuexport [flags] <command> [options]

Commands:
  export <scene.yaml> <name>            Write <name>.mesh / <name>.armature
  watch <scene.yaml> <name>             Export, then export again on every save
  animate [-object name] <scene.yaml> [out.yaml]
                                        Bake one pose-library animation into keyframes
  frames <scene.yaml>                   List animations and frames per armature
  inspect <scene.yaml>                  Summarize scene objects

Flags:
  -config <file>     Config file, YAML or TOML (default: ./naju-export.yaml, then user config dir)
  -output <dir>      Output directory
  -animation <re>    Animation filter for animate
  -log-file <file>   Also write JSON logs to file
  -debug             Enable debug logging

Examples:
  najuexport export hero.yaml hero
  najuexport -output build/models export hero.yaml hero.blend
  najuexport -animation walk animate hero.yaml hero-baked.yaml`)
}

func usageError(w io.Writer, usage string) error {
	fmt.Fprintln(w, "Usage: najuexport "+usage)
	return errUsage
}
