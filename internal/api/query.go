package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/internal/triage"
	"github.com/JaimeStill/greenhouse/pkg/handlers"
	"github.com/JaimeStill/greenhouse/pkg/repository"
	"github.com/JaimeStill/greenhouse/pkg/routes"
)

var errEmptyQuery = errors.New("query must not be empty")

// QueryRequest is a SQL statement to run against a database connector.
// Connector defaults to the ticket database.
type QueryRequest struct {
	Connector string `json:"connector"`
	Query     string `json:"query"`
}

// Field describes one result column.
type Field struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// QueryResult holds at most the configured number of rows.
type QueryResult struct {
	Rows      []map[string]any `json:"rows"`
	Fields    []Field          `json:"fields"`
	Truncated bool             `json:"truncated,omitempty"`
}

// QueryHandler runs statements inside read-only transactions.
type QueryHandler struct {
	rt      *runtime.Runtime
	limit   int
	maxBody int64
	logger  *slog.Logger
}

// NewQueryHandler creates a QueryHandler returning at most limit rows.
func NewQueryHandler(rt *runtime.Runtime, limit int, maxBody int64, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		rt:      rt,
		limit:   limit,
		maxBody: maxBody,
		logger:  logger.With("handler", "query"),
	}
}

// Routes returns the query route group.
func (h *QueryHandler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/query",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Summary: "run a read-only SQL query", Handler: h.Query},
		},
	}
}

// Query executes the request body's statement.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[QueryRequest](r, w, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errEmptyQuery)
		return
	}
	if req.Connector == "" {
		req.Connector = triage.ConnectorDatabase
	}

	db, err := h.rt.Database(req.Connector)
	if err != nil {
		handlers.RespondError(w, h.logger, steps.MapHTTPStatus(err), err)
		return
	}

	result, err := Run(r.Context(), db.Connection(), req.Query, h.limit)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, repository.ErrReadOnly) {
			status = http.StatusForbidden
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Run executes query in a read-only transaction and collects up to limit
// rows. Byte columns are returned as strings.
func Run(ctx context.Context, db *sql.DB, query string, limit int) (QueryResult, error) {
	return repository.WithReadOnlyTx(ctx, db, func(tx *sql.Tx) (QueryResult, error) {
		rows, err := tx.QueryContext(ctx, query)
		if err != nil {
			return QueryResult{}, repository.MapError(err, err, err)
		}
		defer rows.Close()

		types, err := rows.ColumnTypes()
		if err != nil {
			return QueryResult{}, fmt.Errorf("column types: %w", err)
		}

		result := QueryResult{
			Rows:   []map[string]any{},
			Fields: make([]Field, len(types)),
		}
		for i, t := range types {
			result.Fields[i] = Field{Name: t.Name(), DataType: strings.ToLower(t.DatabaseTypeName())}
		}

		for rows.Next() {
			if limit > 0 && len(result.Rows) == limit {
				result.Truncated = true
				break
			}

			values := make([]any, len(types))
			ptrs := make([]any, len(types))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return QueryResult{}, fmt.Errorf("scan row: %w", err)
			}

			row := make(map[string]any, len(types))
			for i, f := range result.Fields {
				if b, ok := values[i].([]byte); ok {
					row[f.Name] = string(b)
				} else {
					row[f.Name] = values[i]
				}
			}
			result.Rows = append(result.Rows, row)
		}
		if err := rows.Err(); err != nil {
			return QueryResult{}, repository.MapError(err, err, err)
		}

		return result, nil
	})
}
