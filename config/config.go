package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	joyhttp "github.com/KinkiKnights/res25-joy/http"
)

// Config is the root configuration struct for the transfer server. It is
// constructed once at startup and read-only afterwards; all workers share
// the same instance.
type Config struct {
	Server   ServerConfig       `mapstructure:"server"`
	Transfer TransferConfig     `mapstructure:"transfer"`
	CORS     joyhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig          `mapstructure:"log"`
}

// ServerConfig holds listener configuration.
type ServerConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Root           string `mapstructure:"root" validate:"required"`
	MaxConnections int    `mapstructure:"max_connections" validate:"min=1"`
	Timeout        int    `mapstructure:"timeout" validate:"min=1"` // seconds, per blocking socket operation
}

// TransferConfig holds the chunked-transfer limits.
type TransferConfig struct {
	ChunkSize          int   `mapstructure:"chunk_size" validate:"min=1"`
	MaxUploadSize      int64 `mapstructure:"max_upload_size" validate:"min=1"`
	LargeFileThreshold int64 `mapstructure:"large_file_threshold" validate:"min=1"`
	// EnableResume is accepted for compatibility with existing config
	// files but has no protocol behind it; uploads always start from
	// byte zero.
	EnableResume bool `mapstructure:"enable_resume"`
	EnableGzip   bool `mapstructure:"enable_gzip"`
	GzipLevel    int  `mapstructure:"gzip_level" validate:"min=0,max=9"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"host":            "server.host",
	"port":            "server.port",
	"root":            "server.root",
	"max-connections": "server.max_connections",
	"timeout":         "server.timeout",
	"chunk-size":      "transfer.chunk_size",
	"max-upload-size": "transfer.max_upload_size",
	"log-file":        "log.file",
	"log-level":       "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.root", ".")
	v.SetDefault("server.max_connections", 100)
	v.SetDefault("server.timeout", 300) // seconds

	v.SetDefault("transfer.chunk_size", 1<<20)           // 1 MiB
	v.SetDefault("transfer.max_upload_size", 50<<20)     // 50 MiB
	v.SetDefault("transfer.large_file_threshold", 5<<20) // 5 MiB, logging granularity only
	v.SetDefault("transfer.enable_resume", true)
	v.SetDefault("transfer.enable_gzip", true)
	v.SetDefault("transfer.gzip_level", 6)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS", "PUT", "DELETE"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Content-Length", "Range"})
	v.SetDefault("cors.exposed_headers", []string{"Content-Length", "Content-Range"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "server.log")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("RES25")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
