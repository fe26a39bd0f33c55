package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/hikarile/ToyoAgent/config"
	"github.com/hikarile/ToyoAgent/internal/models"
	"github.com/hikarile/ToyoAgent/internal/salesdb"
	"github.com/hikarile/ToyoAgent/internal/sqlgen"
)

// RunSQLToolName is the registered name of the NL-to-SQL tool.
const RunSQLToolName = "run_sql"

// NewRunSQLTool creates the sales-database tool. Each call introspects the
// live schema, generates one SELECT statement, validates it against the
// catalog and executes it read-only. Guard and execution failures are
// returned as tool output text so the model can reason about them; they are
// not raised.
func NewRunSQLTool(cfg *config.Config, generator *sqlgen.Generator, logger *zap.Logger) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: RunSQLToolName,
			Desc: "Run a SQL query on the sales database. " +
				"Use this tool for questions about sales, time periods, countries or regions, models, powertrains and aggregations.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"question": {
					Type:     "string",
					Desc:     "The user's question",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.RunSQLInput) (*models.SQLResult, error) {
			db, err := salesdb.OpenReadOnly(cfg.SalesDB)
			if err != nil {
				return nil, err
			}
			defer db.Close()

			dbSchema, err := salesdb.Introspect(ctx, db)
			if err != nil {
				return nil, err
			}

			query, err := generator.Generate(ctx, dbSchema.Description, input.Question)
			if err != nil {
				return nil, err
			}

			if err := sqlgen.Validate(query, dbSchema.Identifiers); err != nil {
				logger.Warn("generated SQL rejected", zap.String("query", query), zap.Error(err))
				return &models.SQLResult{
					Query: query,
					Error: fmt.Sprintf("Error executing SQL: %v", err),
				}, nil
			}

			columns, rows, err := salesdb.QueryRows(ctx, db, query)
			if err != nil {
				logger.Warn("SQL execution failed", zap.String("query", query), zap.Error(err))
				return &models.SQLResult{
					Query: query,
					Error: fmt.Sprintf("Error executing SQL: %v", err),
				}, nil
			}

			logger.Info("run_sql tool invoked", zap.String("query", query), zap.Int("rows", len(rows)))

			return &models.SQLResult{
				Query:   query,
				Columns: columns,
				Rows:    rows,
			}, nil
		},
	)
}
