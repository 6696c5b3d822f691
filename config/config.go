/*
Package config loads server configuration from flags and the environment.

PURPOSE:
  One place that decides every runtime setting. Values come from, in
  increasing precedence:
  1. Built-in defaults
  2. Environment variables (a .env file in the working directory is
     loaded first if present; real environment variables win over it)
  3. Command-line flags

SETTINGS:
  Flag             Env                 Default
  -port            PDA_PORT            8080
  -db              PDA_DB              pda.db (":memory:" for in-memory)
  -tariff          PDA_DEFAULT_TARIFF  standard
  -tariff-dir      PDA_TARIFF_DIR      (none)
  -tariff-reload   PDA_TARIFF_RELOAD   0 (load the directory once)
  -log-level       PDA_LOG_LEVEL       info
  -log-format      PDA_LOG_FORMAT      text
  -log-output      PDA_LOG_OUTPUT      stdout
  -log-file        PDA_LOG_FILE        logs/pda.log
  -cors-origins    PDA_CORS_ORIGINS    http://localhost:5173,http://localhost:8080

SEE ALSO:
  - cmd/server/main.go: Uses Load
  - logging/logger.go: Consumes the Log section
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/pda-engine/logging"
	"github.com/warp/pda-engine/ports"
)

// Config is the complete server configuration.
type Config struct {
	Port          int
	DBPath        string
	DefaultTariff string
	TariffDir     string
	// ReloadInterval re-reads TariffDir periodically; 0 loads it once.
	ReloadInterval time.Duration
	CORSOrigins    []string
	Log            logging.Config
}

// Load reads the .env file (if any), the environment and then args
// (typically os.Args[1:]).
func Load(args []string) (Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()
	return Parse(args)
}

// Parse builds the configuration from the current environment and args
// without touching any .env file.
func Parse(args []string) (Config, error) {
	logDefaults := logging.DefaultConfig()

	fs := flag.NewFlagSet("pda-server", flag.ContinueOnError)
	port := fs.Int("port", GetIntEnv("PDA_PORT", 8080), "HTTP server port")
	db := fs.String("db", GetEnv("PDA_DB", "pda.db"), "SQLite database path")
	tariff := fs.String("tariff", GetEnv("PDA_DEFAULT_TARIFF", ports.ProfileStandard), "Tariff profile used when a request names none")
	tariffDir := fs.String("tariff-dir", GetEnv("PDA_TARIFF_DIR", ""), "Directory of JSON/YAML tariff documents to load at startup")
	reload := fs.Duration("tariff-reload", GetDurationEnv("PDA_TARIFF_RELOAD", 0), "Interval for re-reading the tariff directory (0 disables)")
	logLevel := fs.String("log-level", GetEnv("PDA_LOG_LEVEL", logDefaults.Level), "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", GetEnv("PDA_LOG_FORMAT", logDefaults.Format), "Log format (text, json)")
	logOutput := fs.String("log-output", GetEnv("PDA_LOG_OUTPUT", logDefaults.Output), "Log output (stdout, file, both)")
	logFile := fs.String("log-file", GetEnv("PDA_LOG_FILE", logDefaults.FilePath), "Log file path for file output")
	origins := fs.String("cors-origins", GetEnv("PDA_CORS_ORIGINS", "http://localhost:5173,http://localhost:8080"), "Comma-separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *port <= 0 || *port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", *port)
	}
	if *reload < 0 {
		return Config{}, fmt.Errorf("invalid tariff reload interval %s", *reload)
	}

	logCfg := logDefaults
	logCfg.Level = *logLevel
	logCfg.Format = *logFormat
	logCfg.Output = *logOutput
	logCfg.FilePath = *logFile

	return Config{
		Port:           *port,
		DBPath:         *db,
		DefaultTariff:  *tariff,
		TariffDir:      *tariffDir,
		ReloadInterval: *reload,
		CORSOrigins:    splitList(*origins),
		Log:            logCfg,
	}, nil
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable ("5m") or a
// default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
