package server

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds everything the server needs to start: the one mandatory
// positional tick interval, plus the ambient-stack flags that all carry
// defaults preserving the single-argument contract.
type Config struct {
	TickMillis  int64
	Listen      string
	RolesPath   string
	SavePath    string
	MaxSessions int
	LogLevel    string
}

// fileConfig mirrors Config's flag-settable fields for TOML decoding;
// TickMillis is deliberately absent, since the positional argument is
// always required on the command line.
type fileConfig struct {
	Listen      *string `toml:"listen"`
	RolesPath   *string `toml:"roles"`
	SavePath    *string `toml:"save"`
	MaxSessions *int    `toml:"max_sessions"`
	LogLevel    *string `toml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Listen:      ":4040",
		RolesPath:   "roles.txt",
		SavePath:    "doc.md",
		MaxSessions: 100,
		LogLevel:    "info",
	}
}

// ParseArgs builds a Config from argv (excluding the program name),
// applying defaults, then an optional --config TOML file, then explicit
// flags, in that precedence order (flags win).
func ParseArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet("collabmd-server", flag.ContinueOnError)
	listen := fs.String("listen", "", "TCP listen address")
	roles := fs.String("roles", "", "path to the roles file")
	save := fs.String("save", "", "path to the document save file")
	maxSessions := fs.Int("max-sessions", 0, "maximum concurrent sessions")
	logLevel := fs.String("log-level", "", "minimum log level")
	configPath := fs.String("config", "", "optional TOML config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()

	if *configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(*configPath, &fc); err != nil {
			return Config{}, fmt.Errorf("server: reading config file: %w", err)
		}
		applyFileConfig(&cfg, fc)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listen
		case "roles":
			cfg.RolesPath = *roles
		case "save":
			cfg.SavePath = *save
		case "max-sessions":
			cfg.MaxSessions = *maxSessions
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	rest := fs.Args()
	if len(rest) != 1 {
		return Config{}, fmt.Errorf("server: expected exactly one positional argument (tick interval in ms), got %d", len(rest))
	}
	ms, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil || ms <= 0 {
		return Config{}, fmt.Errorf("server: tick interval must be a positive integer, got %q", rest[0])
	}
	cfg.TickMillis = ms

	return cfg, nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Listen != nil {
		cfg.Listen = *fc.Listen
	}
	if fc.RolesPath != nil {
		cfg.RolesPath = *fc.RolesPath
	}
	if fc.SavePath != nil {
		cfg.SavePath = *fc.SavePath
	}
	if fc.MaxSessions != nil {
		cfg.MaxSessions = *fc.MaxSessions
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
}

// Usage writes a short usage message to w, matching the single required
// positional argument plus optional flags.
func Usage(w *os.File, progName string) {
	fmt.Fprintf(w, "usage: %s [flags] <tick-interval-ms>\n", progName)
}
