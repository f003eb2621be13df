package logging

import (
	"os"
	"strings"

	"github.com/Station-Manager/errors"
	units "github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PKGLOG_DEBUGLEVEL=5.
const EnvPrefix = "PKGLOG"

// DotEnvPaths are tried in order; the first readable file is loaded.
var DotEnvPaths = []string{
	".env",
	"./configs/.env",
}

// Config carries the logging settings of the package-management client.
type Config struct {
	// DebugLevel is the verbosity dial (0-10) gating standard output.
	DebugLevel int `mapstructure:"debuglevel" validate:"dial"`
	// ErrorLevel is the error dial (0-10) gating standard error.
	ErrorLevel int    `mapstructure:"errorlevel" validate:"dial"`
	LogDir     string `mapstructure:"logdir" validate:"required"`
	// LogSize is the rotation threshold in bytes; 0 disables rotation.
	LogSize int64 `mapstructure:"-" validate:"gte=0"`
	// LogRotate is the number of numbered backups kept.
	LogRotate int `mapstructure:"log_rotate" validate:"gte=0"`

	LogFile         string `mapstructure:"logfile" validate:"omitempty,excludesall=/"`
	TransferLogFile string `mapstructure:"transfer_logfile" validate:"omitempty,excludesall=/"`
	NativeLogFile   string `mapstructure:"native_logfile" validate:"omitempty,excludesall=/"`

	// LockDir holds the rotation lock file; empty means LogDir.
	LockDir string `mapstructure:"lockdir"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		DebugLevel: 2,
		ErrorLevel: 3,
		LogDir:     "/var/log",
		LogSize:    1 << 20,
		LogRotate:  4,
	}
}

// LoadConfig reads path (any format viper understands; empty for defaults only),
// then applies PKGLOG_* environment overrides. The result is validated.
func LoadConfig(path string) (*Config, error) {
	const op errors.Op = "logging.LoadConfig"
	loadDotEnvFile()

	v := viper.New()
	setDefaults(v)
	if path != emptyString {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New(op).Err(err).Msg("error reading config file " + path)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New(op).Err(err).Msg("unable to decode config into struct")
	}

	size, err := units.RAMInBytes(v.GetString("log_size"))
	if err != nil {
		return nil, errors.New(op).Err(err).Msg("invalid log_size")
	}
	cfg.LogSize = size

	if err = validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("debuglevel", d.DebugLevel)
	v.SetDefault("errorlevel", d.ErrorLevel)
	v.SetDefault("logdir", d.LogDir)
	v.SetDefault("log_size", "1M")
	v.SetDefault("log_rotate", d.LogRotate)
	v.SetDefault("logfile", emptyString)
	v.SetDefault("transfer_logfile", emptyString)
	v.SetDefault("native_logfile", emptyString)
	v.SetDefault("lockdir", emptyString)
}

// loadDotEnvFile loads the first .env found. A missing file is not an error;
// variables already set in the environment win.
func loadDotEnvFile() {
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

// fileNames returns the configured file names with defaults filled in.
func (c *Config) fileNames() fileNames {
	names := defaultFileNames()
	if c.LogFile != emptyString {
		names.local = c.LogFile
	}
	if c.TransferLogFile != emptyString {
		names.transfer = c.TransferLogFile
	}
	if c.NativeLogFile != emptyString {
		names.native = c.NativeLogFile
	}
	return names
}

type fileNames struct {
	local    string
	transfer string
	native   string
}

func defaultFileNames() fileNames {
	return fileNames{
		local:    DefaultLogFile,
		transfer: DefaultTransferLogFile,
		native:   DefaultNativeLogFile,
	}
}
