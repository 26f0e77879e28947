package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/files"
	"github.com/faizmokh/knos/internal/logger"
)

// EnvPrefix marks environment variables read as configuration. A double
// underscore separates nested keys: KNOS_LOG__LEVEL sets log.level.
const EnvPrefix = "KNOS_"

// Config is the merged configuration. Relative paths are resolved against the
// knos home directory by files.Manager.
type Config struct {
	CardsDir     string       `koanf:"cards_dir" validate:"required"`
	ScheduleFile string       `koanf:"schedule_file" validate:"required"`
	HistoryFile  string       `koanf:"history_file" validate:"required"`
	IndexFile    string       `koanf:"index_file" validate:"required"`
	Log          LogConfig    `koanf:"log"`
	Parser       ParserConfig `koanf:"parser"`
	Drill        DrillConfig  `koanf:"drill"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
	File   string `koanf:"file"`
}

type ParserConfig struct {
	ExclusionMarker string `koanf:"exclusion_marker" validate:"required"`
	ExclusionWindow int    `koanf:"exclusion_window" validate:"min=1"`
	SlotsTag        string `koanf:"slots_tag" validate:"required"`
	SlotDelimiter   string `koanf:"slot_delimiter" validate:"required"`
	MaxBlockLines   int    `koanf:"max_block_lines" validate:"min=1"`
}

type DrillConfig struct {
	// Limit caps the number of blocks per session. Zero means no cap.
	Limit int `koanf:"limit" validate:"min=0"`
}

// FlagKeys maps command-line flag names onto configuration keys. Flags not
// listed here never reach the configuration.
var FlagKeys = map[string]string{
	"cards-dir":     "cards_dir",
	"schedule-file": "schedule_file",
	"history-file":  "history_file",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"limit":         "drill.limit",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CardsDir:     "cards",
		ScheduleFile: "schedule.json",
		HistoryFile:  "history.jsonl",
		IndexFile:    "history.db",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File:   "knos.log",
		},
		Parser: ParserConfig{
			ExclusionMarker: card.DefaultExclusionMarker,
			ExclusionWindow: card.DefaultExclusionWindow,
			SlotsTag:        card.DefaultSlotsTag,
			SlotDelimiter:   card.DefaultSlotDelimiter,
			MaxBlockLines:   card.DefaultMaxBlockLines,
		},
	}
}

// Load layers the defaults, the YAML file at path (if present), KNOS_*
// environment variables and changed flags, in that order, then validates the
// result. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envKey(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", "."), value
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and required fields.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ParserOptions converts the parser section for card.NewParser.
func (c Config) ParserOptions() card.Options {
	return card.Options{
		ExclusionMarker: c.Parser.ExclusionMarker,
		ExclusionWindow: c.Parser.ExclusionWindow,
		SlotsTag:        c.Parser.SlotsTag,
		SlotDelimiter:   c.Parser.SlotDelimiter,
		MaxBlockLines:   c.Parser.MaxBlockLines,
	}
}

// ManagerOptions converts the path settings for files.NewManager.
func (c Config) ManagerOptions() []files.Option {
	return []files.Option{
		files.WithCardsDir(c.CardsDir),
		files.WithScheduleFile(c.ScheduleFile),
		files.WithHistoryFile(c.HistoryFile),
		files.WithIndexFile(c.IndexFile),
		files.WithLogFile(c.Log.File),
	}
}

// LoggerOptions converts the log section; file is the resolved log path.
func (c Config) LoggerOptions(file string) logger.Options {
	return logger.Options{Level: c.Log.Level, Format: c.Log.Format, File: file}
}
