package sqlquery

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresExecutor runs statements against PostgreSQL, one connection per
// statement.
type PostgresExecutor struct {
	log *slog.Logger
	dsn string
}

var _ Executor = (*PostgresExecutor)(nil)

// NewPostgresExecutor checks that dsn is reachable.
func NewPostgresExecutor(ctx context.Context, log *slog.Logger, dsn string) (*PostgresExecutor, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &PostgresExecutor{log: log.With("component", "sql"), dsn: dsn}

	conn, err := e.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return e, nil
}

func (e *PostgresExecutor) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, e.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return conn, nil
}

// Query implements Executor. The result is {"columns": [...], "rows": [...],
// "row_count": n} with one object per row.
func (e *PostgresExecutor) Query(ctx context.Context, sql string) (any, error) {
	conn, err := e.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := make([]map[string]any, 0)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row := make(map[string]any, len(values))
		for i, v := range values {
			row[columns[i]] = jsonValue(v)
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	e.log.Debug("Query completed", "rows", len(result))

	return map[string]any{
		"columns":   columns,
		"rows":      result,
		"row_count": len(result),
	}, nil
}

// jsonValue converts driver values that do not encode usefully.
func jsonValue(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	case []byte:
		return string(t)
	default:
		return v
	}
}
