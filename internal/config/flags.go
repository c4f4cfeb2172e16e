package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagOutput    = flag.String("output", "", "Output directory")
	flagAnimation = flag.String("animation", "", "Animation filter for animate")
	flagLogFile   = flag.String("log-file", "", "Write logs to file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOutput != "" {
		cfg.Export.OutputDir = *flagOutput
	}
	if *flagAnimation != "" {
		cfg.Animation.Target = *flagAnimation
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
