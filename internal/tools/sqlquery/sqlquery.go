// Package sqlquery registers the sql_query tool.
package sqlquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/wagiedev/wstools-go/internal/tool"
)

// Executor runs one SQL statement and returns a JSON-encodable result.
type Executor interface {
	Query(ctx context.Context, sql string) (any, error)
}

// EchoExecutor answers without touching a database.
type EchoExecutor struct{}

// Query implements Executor.
func (EchoExecutor) Query(_ context.Context, sql string) (any, error) {
	return map[string]any{"result": "执行结果 for SQL: " + sql}, nil
}

// Register adds sql_query to reg.
func Register(reg *tool.Registry, exec Executor) error {
	return reg.RegisterFunc("sql_query", "Runs a SQL statement",
		[]tool.Param{tool.Required("sql", tool.TypeString).Describe("The statement to run")},
		func(ctx context.Context, args tool.Args) (any, error) {
			sql := strings.TrimSpace(args.String("sql"))
			if sql == "" {
				return nil, fmt.Errorf("sql is empty")
			}

			return exec.Query(ctx, sql)
		},
	)
}
