package config

import (
	"io"
	"log/slog"
	"strings"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix - Prefix of environment variables overriding configuration keys, e.g. LINHASH_FILE_BLOCK_SIZE
const EnvPrefix = "LINHASH"

// FileConfig - Hash file parameters
type FileConfig struct {
	Name              string
	BlockSize         int
	OverflowBlockSize int
}

// RecordConfig - Key/value record layout
type RecordConfig struct {
	KeyLength   int
	ValueLength int
}

// LogConfig - Logger settings, Level is one of debug, info, warn, error and Format is text or json
type LogConfig struct {
	Level  string
	Format string
}

// Config - Complete configuration of the hashfile command
type Config struct {
	File   FileConfig
	Record RecordConfig
	Log    LogConfig
}

// setDefaults - Registers the default value of every key
func setDefaults(v *viper.Viper) {
	v.SetDefault("file.name", "hashfile")
	v.SetDefault("file.block_size", 512)
	v.SetDefault("file.overflow_block_size", 256)
	v.SetDefault("record.key_length", 10)
	v.SetDefault("record.value_length", 64)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// loadConfig - Reads every key into a Config
func loadConfig(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.File.Name = v.GetString("file.name")
	cfg.File.BlockSize = v.GetInt("file.block_size")
	cfg.File.OverflowBlockSize = v.GetInt("file.overflow_block_size")

	cfg.Record.KeyLength = v.GetInt("record.key_length")
	cfg.Record.ValueLength = v.GetInt("record.value_length")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	return cfg
}

// Load - Returns the configuration from defaults, the optional configuration file at configPath (YAML, JSON or TOML
// judged by extension) and LINHASH_* environment variables, later sources overriding earlier ones.
//   - configPath is the path of a configuration file, empty for defaults and environment only
func Load(configPath string) (cfg *Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		err = v.ReadInConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s failed", configPath)
		}
	}

	cfg = loadConfig(v)
	err = cfg.Validate()
	if err != nil {
		cfg = nil
	}

	return
}

// Validate - Checks values that can be judged without opening any file
func (C *Config) Validate() error {
	if C.File.Name == "" {
		return hferr.NewConfigError("file.name can not be empty")
	}
	if C.Record.KeyLength <= 0 {
		return hferr.NewConfigError("record.key_length must be a positive value, got %d", C.Record.KeyLength)
	}
	if C.Record.ValueLength < 0 {
		return hferr.NewConfigError("record.value_length can not be negative, got %d", C.Record.ValueLength)
	}
	if _, err := parseLevel(C.Log.Level); err != nil {
		return err
	}
	if C.Log.Format != "text" && C.Log.Format != "json" {
		return hferr.NewConfigError("log.format must be text or json, got %q", C.Log.Format)
	}

	return nil
}

// Logger - Returns a structured logger writing to w according to the log settings
func (C *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(C.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if C.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (level slog.Level, err error) {
	err = level.UnmarshalText([]byte(s))
	if err != nil {
		err = hferr.NewConfigError("log.level %q is not one of debug, info, warn, error", s)
	}

	return
}
