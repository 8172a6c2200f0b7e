package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const queryTimeout = 10 * time.Second

// ErrConflict reports that a compare-and-set write matched no document
// because the stored state moved on since it was read.
var ErrConflict = errors.New("document changed concurrently")

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// parseID converts a hex id. Malformed ids cannot exist, so they are NotFound.
func parseID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id)
	}
	return oid, nil
}

func notFound(kind string, id primitive.ObjectID, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id.Hex())
	}
	return fmt.Errorf("failed to load %s: %w", kind, err)
}

func scoped(companyID, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "company_id": companyID}
}

func dateRange(field string, filter bson.M, from, to string) {
	cond := bson.M{}
	if from != "" {
		cond["$gte"] = from
	}
	if to != "" {
		cond["$lte"] = to
	}
	if len(cond) > 0 {
		filter[field] = cond
	}
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
