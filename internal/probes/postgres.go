package probes

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
)

// PostgresProbe runs parameterized queries against one logical database.
// The harness holds two instances: the event domain and the order domain.
type PostgresProbe struct {
	url string
}

func NewPostgresProbe(url string) *PostgresProbe {
	return &PostgresProbe{url: url}
}

func (p *PostgresProbe) Query(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error) {
	conn, err := pgx.Connect(ctx, p.url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	defer conn.Close(context.Background())

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query failed: %s", sql)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []map[string]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read row for: %s", sql)
		}
		row := make(map[string]interface{}, len(values))
		for i, field := range fields {
			row[string(field.Name)] = values[i]
		}
		result = append(result, row)
	}
	return result, errors.Wrapf(rows.Err(), "row iteration failed for: %s", sql)
}
