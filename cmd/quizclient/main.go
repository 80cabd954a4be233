package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/letsssgooo/cricketQuiz/internal/client"
	"github.com/letsssgooo/cricketQuiz/internal/config"
	"github.com/letsssgooo/cricketQuiz/internal/lib/slogcustom"
	"github.com/letsssgooo/cricketQuiz/internal/quiz"
	"github.com/letsssgooo/cricketQuiz/internal/storage"
	"github.com/letsssgooo/cricketQuiz/internal/storage/postgres"
	"github.com/letsssgooo/cricketQuiz/internal/terminal"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := setupLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("quiz client stopped", "err", err)
		stop()
		os.Exit(1)
	}
}

// run проходит квиз, читая ответы из in и выводя вопросы в out.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, opts ...quiz.Option) error {
	store, closeStore, err := setupStorage(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.History > 0 {
		return printHistory(ctx, out, store, cfg.History, cfg.CSV)
	}

	slog.Info("starting quiz client...", "base_url", cfg.BaseURL)

	quizClient, err := client.NewHTTPClient(cfg.BaseURL)
	if err != nil {
		return err
	}

	if cfg.Username != "" {
		if err = quizClient.Login(ctx, cfg.Username, cfg.Password); err != nil {
			return fmt.Errorf("failed to log in as %s: %w", cfg.Username, err)
		}
		slog.Info("logged in", "username", cfg.Username)
	}

	if cfg.Categories > 0 {
		return printCategories(ctx, out, quizClient, cfg.Categories)
	}

	if cfg.CategoryID > 0 {
		started, err := quizClient.StartQuiz(ctx, cfg.CategoryID, cfg.Difficulty)
		if err != nil {
			return fmt.Errorf("failed to start quiz: %w", err)
		}
		slog.Info("quiz started", "quiz", started.QuizID, "category", cfg.CategoryID, "difficulty", cfg.Difficulty)
	}

	term := terminal.New(out)
	ctrl := quiz.NewController(quizClient, term, append([]quiz.Option{quiz.WithRecorder(store)}, opts...)...)

	go func() {
		if err := term.ReadInput(ctx, in, ctrl); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("stopped reading input", "err", err)
		}
	}()

	return ctrl.Run(ctx)
}

// setupStorage выбирает журнал попыток: PostgreSQL, если задан dsn, иначе память.
func setupStorage(ctx context.Context, dsn string) (storage.Storage, func(), error) {
	if dsn == "" {
		return storage.NewMemoryStorage(), func() {}, nil
	}

	pg, err := postgres.NewStorage(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to attempt journal: %w", err)
	}

	if err = pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("failed to migrate attempt journal: %w", err)
	}

	return pg, pg.Close, nil
}

func printHistory(ctx context.Context, out io.Writer, store storage.Storage, limit int, asCSV bool) error {
	attempts, err := store.ListAttempts(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}

	if asCSV {
		data, err := storage.ExportCSV(attempts)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	if len(attempts) == 0 {
		fmt.Fprintln(out, "No attempts yet.")
		return nil
	}

	for _, a := range attempts {
		fmt.Fprintf(
			out,
			"%s  %2d/%d  %4ds  %s\n",
			a.FinishedAt.Local().Format("2006-01-02 15:04"),
			a.Score,
			a.Total,
			a.TotalTime,
			a.Redirect,
		)
	}

	summary := storage.Summarize(attempts)
	fmt.Fprintf(
		out,
		"\nAttempts: %d  Average: %.1f  Best: %d  Time played: %ds\n",
		summary.Attempts,
		summary.AverageScore,
		summary.BestScore,
		summary.TotalTime,
	)

	return nil
}

// printCategories выводит категории вида спорта sportID, по одной в строке.
func printCategories(ctx context.Context, out io.Writer, quizClient client.Client, sportID int) error {
	categories, err := quizClient.Categories(ctx, sportID)
	if err != nil {
		return fmt.Errorf("failed to list categories of sport %d: %w", sportID, err)
	}

	if len(categories) == 0 {
		fmt.Fprintf(out, "No categories for sport %d.\n", sportID)
		return nil
	}

	for _, c := range categories {
		fmt.Fprintf(out, "%4d  %s\n", c.ID, c.Name)
	}

	return nil
}

func setupLogger(level slog.Level) *slog.Logger {
	return slog.New(slogcustom.NewCustomHandler(os.Stderr, level))
}
