package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const DefaultEnvFile = ".env"

type Config struct {
	Addr    string
	Backend string

	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string

	GiftCardTable  string
	PromoCodeTable string

	PersistDir string
	PageSize   int
	ReusePort  bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. Variables missing from the
// process environment are looked up in envFile, if it exists.
func Load(envFile string) (Config, error) {
	fileEnv, err := godotenv.Read(envFile)
	if errors.Is(err, fs.ErrNotExist) {
		fileEnv = map[string]string{}
	} else if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
	}

	getEnv := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		if v := fileEnv[key]; v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Addr:            getEnv("PROMOTIONS_ADDR", ":8080"),
		Backend:         getEnv("PROMOTIONS_BACKEND", "dynamodb"),
		Region:          getEnv("AWS_REGION", "us-east-1"),
		Endpoint:        getEnv("DYNAMODB_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		GiftCardTable:   getEnv("GIFT_CARD_TABLE", "GiftCardTable"),
		PromoCodeTable:  getEnv("PROMO_CODE_TABLE", "PromoCodeTable"),
		PersistDir:      getEnv("PROMOTIONS_PERSIST_DIR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}

	cfg.PageSize, err = strconv.Atoi(getEnv("PROMOTIONS_PAGE_SIZE", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("PROMOTIONS_PAGE_SIZE: %w", err)
	}
	cfg.ReusePort, err = strconv.ParseBool(getEnv("PROMOTIONS_REUSE_PORT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("PROMOTIONS_REUSE_PORT: %w", err)
	}
	return cfg, nil
}

// NewLogger builds a logger writing to w. format is "text" or "json".
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	options := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, options)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
