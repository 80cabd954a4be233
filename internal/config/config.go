package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

var ErrValidation = errors.New("invalid config")

const (
	defaultBaseURL    = "http://localhost:5000"
	defaultDifficulty = "medium"
	defaultLogLevel   = "info"
)

// Config хранит настройки клиента квиза.
type Config struct {
	BaseURL    string // адрес сервиса квизов
	Username   string
	Password   string
	CategoryID int    // 0 — квиз уже запущен на сервере
	Difficulty string // easy, medium или hard
	DSN        string // пустой DSN — журнал в памяти
	LogLevel   slog.Level
	History    int  // >0 — показать последние попытки и выйти, нужен DSN
	CSV        bool // историю выводить в CSV
	Categories int  // >0 — показать категории вида спорта и выйти
}

// Load читает .env, переменные окружения и флаги из args.
// Флаги имеют приоритет над окружением.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	category, err := envInt("QUIZ_CATEGORY_ID")
	if err != nil {
		return nil, err
	}

	flags := pflag.NewFlagSet("quizclient", pflag.ContinueOnError)

	baseURL := flags.String("base-url", envOr("QUIZ_BASE_URL", defaultBaseURL), "address of the quiz service")
	username := flags.String("username", os.Getenv("QUIZ_USERNAME"), "username to log in with")
	password := flags.String("password", os.Getenv("QUIZ_PASSWORD"), "password to log in with")
	categoryID := flags.Int("category", category, "category id of the quiz to start")
	difficulty := flags.String("difficulty", envOr("QUIZ_DIFFICULTY", defaultDifficulty), "difficulty: easy, medium or hard")
	dsn := flags.String("dsn", os.Getenv("QUIZ_DSN"), "postgres dsn of the attempt journal")
	logLevel := flags.String("log-level", envOr("QUIZ_LOG_LEVEL", defaultLogLevel), "log level: debug, info, warn or error")
	history := flags.Int("history", 0, "print the latest attempts from the --dsn journal and exit")
	categories := flags.Int("categories", 0, "print the categories of the sport id and exit")
	asCSV := flags.Bool("csv", false, "print the history as CSV")

	if err = flags.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:    *baseURL,
		Username:   *username,
		Password:   *password,
		CategoryID: *categoryID,
		Difficulty: *difficulty,
		DSN:        *dsn,
		History:    *history,
		CSV:        *asCSV,
		Categories: *categories,
	}

	if err = cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		return nil, fmt.Errorf("%w, unknown log level %q", ErrValidation, *logLevel)
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w, base url must be absolute: %q", ErrValidation, c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w, unsupported scheme %q", ErrValidation, u.Scheme)
	}

	switch c.Difficulty {
	case "easy", "medium", "hard":
	default:
		return fmt.Errorf("%w, unknown difficulty %q", ErrValidation, c.Difficulty)
	}

	if c.CategoryID < 0 {
		return fmt.Errorf("%w, category id must not be negative", ErrValidation)
	}
	if c.History < 0 {
		return fmt.Errorf("%w, history limit must not be negative", ErrValidation)
	}
	// журнал в памяти пуст в каждом новом процессе
	if c.History > 0 && c.DSN == "" {
		return fmt.Errorf("%w, history needs a journal dsn", ErrValidation)
	}
	if c.Categories < 0 {
		return fmt.Errorf("%w, sport id must not be negative", ErrValidation)
	}
	if c.Password != "" && c.Username == "" {
		return fmt.Errorf("%w, password given without username", ErrValidation)
	}

	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w, %s is not a number: %q", ErrValidation, key, v)
	}

	return n, nil
}
