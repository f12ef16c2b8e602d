package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/haulstat/fleet-dashboard/internal/fleet"
	"github.com/haulstat/fleet-dashboard/internal/report"
)

const (
	// Mode constants
	ModeImport = "import"
	ModeWatch  = "watch"
	ModeStdio  = "stdio"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB
	DefaultPageWarn    = 10
)

// Config holds all configuration for the fleet dashboard. It is loaded
// once at startup and passed by reference into the components that need
// it; nothing reads configuration through ambient globals.
type Config struct {
	// Execution mode: one-shot import, directory watch, or stdio tools.
	Mode string

	// Import mode input
	InputPath string

	// Watch mode directory
	ReportsDirectory string

	// Decimal-separator convention of imported reports
	NumericFormat string

	// Optional Excel export target (import mode)
	XLSXPath string

	// Status band thresholds in tonnes
	UnderBelow    float64
	OverloadAbove float64

	// Application configuration
	Version           string
	AppName           string
	LogLevel          string
	MaxFileSize       int64
	PageWarnThreshold int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:              ModeImport,
		InputPath:         "",
		ReportsDirectory:  currentDir,
		NumericFormat:     string(report.FormatDotDecimal),
		XLSXPath:          "",
		UnderBelow:        fleet.DefaultUnderBelow,
		OverloadAbove:     fleet.DefaultOverloadAbove,
		Version:           "1.0.0",
		AppName:           "fleet-dashboard",
		LogLevel:          DefaultLogLevel,
		MaxFileSize:       DefaultMaxFileSize,
		PageWarnThreshold: DefaultPageWarn,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.ReportsDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.ReportsDirectory); err == nil {
			cfg.ReportsDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("FLEET")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("input", cfg.InputPath)
	viper.SetDefault("dir", cfg.ReportsDirectory)
	viper.SetDefault("format", cfg.NumericFormat)
	viper.SetDefault("xlsx", cfg.XLSXPath)
	viper.SetDefault("under", cfg.UnderBelow)
	viper.SetDefault("overload", cfg.OverloadAbove)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("pagewarn", cfg.PageWarnThreshold)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Execution mode: 'import' one report, 'watch' a directory, or 'stdio' tool server")
	pflag.String("input", cfg.InputPath, "Path to the PDF payload report (import mode)")
	pflag.String("dir", cfg.ReportsDirectory, "Directory of PDF reports (watch mode)")
	pflag.String("format", cfg.NumericFormat, "Numeric format of the report: 'comma' (European) or 'dot' (US)")
	pflag.String("xlsx", cfg.XLSXPath, "Write an Excel export to this path after import")
	pflag.Float64("under", cfg.UnderBelow, "Payloads below this value classify as under-loaded")
	pflag.Float64("overload", cfg.OverloadAbove, "Payloads above this value classify as overloaded")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum report file size in bytes")
	pflag.Int("pagewarn", cfg.PageWarnThreshold, "Warn when a report exceeds this many pages")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("input", pflag.Lookup("input"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("format", pflag.Lookup("format"))
	_ = viper.BindPFlag("xlsx", pflag.Lookup("xlsx"))
	_ = viper.BindPFlag("under", pflag.Lookup("under"))
	_ = viper.BindPFlag("overload", pflag.Lookup("overload"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("pagewarn", pflag.Lookup("pagewarn"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nFleet Payload Dashboard - import, classify and summarize fleet payload reports\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input=shift.pdf                        # import one report\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input=shift.pdf --format=comma         # European decimal format\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input=shift.pdf --xlsx=fleet.xlsx      # import and export to Excel\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=watch --dir=/srv/reports          # auto-import new reports\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio                             # expose dashboard tools over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FLEET_MODE         Execution mode\n")
		fmt.Fprintf(os.Stderr, "  FLEET_INPUT        Report path\n")
		fmt.Fprintf(os.Stderr, "  FLEET_DIR          Reports directory\n")
		fmt.Fprintf(os.Stderr, "  FLEET_FORMAT       Numeric format\n")
		fmt.Fprintf(os.Stderr, "  FLEET_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  FLEET_MAXFILESIZE  Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.InputPath = viper.GetString("input")
	cfg.ReportsDirectory = viper.GetString("dir")
	cfg.NumericFormat = viper.GetString("format")
	cfg.XLSXPath = viper.GetString("xlsx")
	cfg.UnderBelow = viper.GetFloat64("under")
	cfg.OverloadAbove = viper.GetFloat64("overload")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.PageWarnThreshold = viper.GetInt("pagewarn")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeImport, ModeWatch, ModeStdio:
	default:
		return errors.New("mode must be one of 'import', 'watch' or 'stdio'")
	}

	if c.Mode == ModeImport && c.InputPath == "" {
		return errors.New("import mode requires --input")
	}

	if c.Mode == ModeWatch {
		if c.ReportsDirectory == "" {
			return errors.New("watch mode requires a reports directory")
		}
		info, err := os.Stat(c.ReportsDirectory)
		if err != nil {
			return fmt.Errorf("cannot access reports directory %s: %w", c.ReportsDirectory, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("reports path is not a directory: %s", c.ReportsDirectory)
		}
	}

	if _, ok := report.ParseNumericFormat(c.NumericFormat); !ok {
		return fmt.Errorf("invalid numeric format: %s (must be 'comma' or 'dot')", c.NumericFormat)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.UnderBelow >= c.OverloadAbove {
		return fmt.Errorf("under threshold %g must be below overload threshold %g",
			c.UnderBelow, c.OverloadAbove)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Format returns the parsed numeric format. Validate must have passed.
func (c *Config) Format() report.NumericFormat {
	f, _ := report.ParseNumericFormat(c.NumericFormat)
	return f
}

// Rules builds the immutable rule set injected into the fleet components
func (c *Config) Rules() fleet.Rules {
	rules := fleet.DefaultRules()
	rules.UnderBelow = c.UnderBelow
	rules.OverloadAbove = c.OverloadAbove
	return rules
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsStdioMode returns true if the dashboard runs as a stdio tool server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Input: %s, Dir: %s, Format: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.InputPath, c.ReportsDirectory, c.NumericFormat, c.LogLevel, c.MaxFileSize)
}
