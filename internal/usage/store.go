package usage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists records in the llm_usage table.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Record(ctx context.Context, r Record) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO llm_usage (provider, model, endpoint, input_tokens, output_tokens, total_tokens, cost_usd, latency_ms, success)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.Provider, r.Model, r.Endpoint, r.InputTokens, r.OutputTokens, r.TotalTokens, r.CostUSD, r.LatencyMs, r.Success,
	)
	if err != nil {
		return fmt.Errorf("insert llm usage: %w", err)
	}
	return nil
}

func (s *Store) Summarize(ctx context.Context, w Window) ([]Summary, error) {
	query := `SELECT provider, model, COUNT(*),
	                 COUNT(*) FILTER (WHERE NOT success),
	                 COALESCE(SUM(input_tokens), 0),
	                 COALESCE(SUM(output_tokens), 0),
	                 COALESCE(SUM(total_tokens), 0),
	                 COALESCE(SUM(cost_usd), 0)
	          FROM llm_usage WHERE 1=1`
	var args []any
	argIdx := 1

	if !w.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, w.Since)
		argIdx++
	}
	if !w.Until.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, w.Until)
	}
	query += " GROUP BY provider, model ORDER BY 8 DESC, provider, model"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var us Summary
		if err := rows.Scan(&us.Provider, &us.Model, &us.Calls, &us.Failures,
			&us.InputTokens, &us.OutputTokens, &us.TotalTokens, &us.CostUSD); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, us)
	}
	return summaries, rows.Err()
}
