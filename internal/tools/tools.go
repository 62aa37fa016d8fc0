// Package tools assembles the built-in tool sets into a registry.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/wagiedev/wstools-go/internal/config"
	"github.com/wagiedev/wstools-go/internal/tool"
	"github.com/wagiedev/wstools-go/internal/tools/demo"
	"github.com/wagiedev/wstools-go/internal/tools/rag"
	"github.com/wagiedev/wstools-go/internal/tools/sqlquery"
	"github.com/wagiedev/wstools-go/internal/tools/text"
	"github.com/wagiedev/wstools-go/internal/vector"
)

// Sets names every built-in tool set.
var Sets = []string{"demo", "text", "vector", "rag", "url", "sql"}

// Deps are the collaborators the tool sets call into. Nil fields fall
// back to offline defaults where one exists.
type Deps struct {
	Weather *demo.WeatherClient
	Vectors *vector.Store
	SQL     sqlquery.Executor
}

// Register adds the named tool sets to reg in order.
func Register(reg *tool.Registry, sets []string, deps Deps) error {
	for _, set := range sets {
		var err error

		switch set {
		case "demo":
			err = demo.Register(reg, deps.Weather)
		case "text":
			err = text.Register(reg)
		case "vector", "rag", "url":
			if deps.Vectors == nil {
				return fmt.Errorf("tool set %s needs a vector store", set)
			}

			switch set {
			case "vector":
				err = rag.RegisterVector(reg, deps.Vectors)
			case "rag":
				err = rag.RegisterRetrieve(reg, deps.Vectors)
			default:
				err = rag.RegisterURL(reg, deps.Vectors)
			}
		case "sql":
			exec := deps.SQL
			if exec == nil {
				exec = sqlquery.EchoExecutor{}
			}

			err = sqlquery.Register(reg, exec)
		default:
			return fmt.Errorf("unknown tool set %q (known: %v)", set, Sets)
		}

		if err != nil {
			return fmt.Errorf("register tool set %s: %w", set, err)
		}
	}

	return nil
}

// Build creates the registry described by cfg, connecting the backends it
// names. The returned close function releases them.
func Build(ctx context.Context, log *slog.Logger, cfg *config.File) (*tool.Registry, func() error, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var closers []func() error

	closeAll := func() error {
		var errs []error
		for _, c := range slices.Backward(closers) {
			errs = append(errs, c())
		}

		return errors.Join(errs...)
	}

	deps := Deps{
		Weather: demo.NewWeatherClient(log, cfg.Weather.BaseURL, cfg.Weather.Timeout),
	}

	if needsVectors(cfg.Tools.Sets) {
		store, closeStore, err := buildStore(ctx, log, cfg.RAG)
		if err != nil {
			return nil, nil, err
		}

		closers = append(closers, closeStore)
		deps.Vectors = store
	}

	if cfg.SQL.DSN != "" && slices.Contains(cfg.Tools.Sets, "sql") {
		exec, err := sqlquery.NewPostgresExecutor(ctx, log, cfg.SQL.DSN)
		if err != nil {
			_ = closeAll()

			return nil, nil, err
		}

		deps.SQL = exec
	}

	reg := tool.NewRegistry()
	if err := Register(reg, cfg.Tools.Sets, deps); err != nil {
		_ = closeAll()

		return nil, nil, err
	}

	log.Info("Registered tools", "sets", cfg.Tools.Sets, "count", reg.Len())

	return reg, closeAll, nil
}

func needsVectors(sets []string) bool {
	return slices.ContainsFunc(sets, func(s string) bool {
		return s == "vector" || s == "rag" || s == "url"
	})
}

// buildStore opens the vector store, loads persisted documents and seeds
// the url store.
func buildStore(ctx context.Context, log *slog.Logger, cfg config.RAGFile) (*vector.Store, func() error, error) {
	opts := vector.Options{Logger: log}
	closeStore := func() error { return nil }

	if cfg.RedisAddr != "" {
		backend, err := vector.NewRedisBackend(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}

		opts.Backend = backend
		closeStore = backend.Close
	}

	store := vector.NewStore(opts)

	if err := store.Load(ctx); err != nil {
		_ = closeStore()

		return nil, nil, err
	}

	records := vector.BuiltinSeed()

	if cfg.SeedFile != "" {
		loaded, err := vector.LoadSeed(cfg.SeedFile)
		if err != nil {
			_ = closeStore()

			return nil, nil, err
		}

		records = loaded
	}

	if err := store.Seed(ctx, rag.StoreURL, vector.Documents(records)); err != nil {
		_ = closeStore()

		return nil, nil, err
	}

	return store, closeStore, nil
}
