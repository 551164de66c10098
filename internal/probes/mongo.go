package probes

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProbe reads projection documents. A client is dialed per call and
// disconnected unconditionally.
type MongoProbe struct {
	url string
}

func NewMongoProbe(url string) *MongoProbe {
	return &MongoProbe{url: url}
}

func (p *MongoProbe) Find(ctx context.Context, database, collection string, filter bson.M) ([]bson.M, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(p.url))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongodb")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	cursor, err := client.Database(database).Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "find failed on %s.%s", database, collection)
	}

	var documents []bson.M
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, errors.Wrapf(err, "failed to decode documents from %s.%s", database, collection)
	}
	return documents, nil
}
