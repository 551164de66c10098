// Package probes contains read-only verification adapters against the
// ticketing platform's backing stores. Every probe opens a connection, runs a
// single query and releases the connection on all exit paths: the lifecycle
// protocol issues hundreds of polling reads per run and must not leak.
package probes

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Relational reads durable command-side state.
type Relational interface {
	Query(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error)
}

// Document reads the query-side denormalized projection.
type Document interface {
	Find(ctx context.Context, database, collection string, filter bson.M) ([]bson.M, error)
}

// KeyValue reads ephemeral lock state.
type KeyValue interface {
	KeyExists(ctx context.Context, key string) (bool, error)
}
