package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FoodLogRepository struct {
	col *mongo.Collection
}

func NewFoodLogRepository(db *mongo.Database) *FoodLogRepository {
	return &FoodLogRepository{col: db.Collection("food_logs")}
}

// FindByMembers returns the food logs of the given members, newest first.
// The portal API keys food logs on memberId and filters on createdAt, so
// this query mirrors it. Ids that parse as ObjectIds are queried as such,
// anything else is used verbatim.
func (r *FoodLogRepository) FindByMembers(ctx context.Context, memberIDs []string, start, end *time.Time) ([]bson.M, error) {
	ids := make([]interface{}, 0, len(memberIDs))
	for _, id := range memberIDs {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			ids = append(ids, oid)
		} else {
			ids = append(ids, id)
		}
	}

	filter := bson.M{"memberId": bson.M{"$in": ids}}
	if start != nil || end != nil {
		dateFilter := bson.M{}
		if start != nil {
			dateFilter["$gte"] = *start
		}
		if end != nil {
			dateFilter["$lte"] = *end
		}
		filter["createdAt"] = dateFilter
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CountAll returns the total number of food logs in the collection.
func (r *FoodLogRepository) CountAll(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// CountValid counts food logs whose images field is a non-empty array.
// Logs without images are not renderable and treated as invalid.
func (r *FoodLogRepository) CountValid(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"images": bson.M{"$exists": true, "$ne": nil}}}},
		{{Key: "$addFields", Value: bson.M{
			"has_images": bson.M{
				"$cond": bson.M{
					"if":   bson.M{"$isArray": "$images"},
					"then": bson.M{"$gt": bson.A{bson.M{"$size": "$images"}, 0}},
					"else": false,
				},
			},
		}}},
		{{Key: "$match", Value: bson.M{"has_images": true}}},
		{{Key: "$count", Value: "total"}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}
