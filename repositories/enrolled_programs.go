package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chengyao-ihealth/ai-tools/internal/logger"
)

type EnrolledProgramRepository struct {
	col *mongo.Collection
}

func NewEnrolledProgramRepository(db *mongo.Database) *EnrolledProgramRepository {
	return &EnrolledProgramRepository{col: db.Collection("uc_enrolled_programs")}
}

// PatientIDs collects the distinct patient ids of all enrolled programs.
// The collection has carried the id under different field names over time,
// so patient_id, _id and memberId are tried in that order and the first
// field that yields anything wins. limit <= 0 means no limit.
func (r *EnrolledProgramRepository) PatientIDs(ctx context.Context, limit int) ([]string, error) {
	for _, field := range []string{"patient_id", "_id", "memberId"} {
		ids, err := r.distinctIDs(ctx, field, limit)
		if err != nil {
			logger.WarnWithFields("enrolled-programs id lookup failed", logger.Fields{"field": field, "error": err.Error()})
			continue
		}
		if len(ids) > 0 {
			logger.InfoWithFields("enrolled patients found", logger.Fields{"field": field, "count": len(ids)})
			return ids, nil
		}
	}
	return nil, nil
}

func (r *EnrolledProgramRepository) distinctIDs(ctx context.Context, field string, limit int) ([]string, error) {
	pipeline := mongo.Pipeline{}
	if field != "_id" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{field: bson.M{"$exists": true, "$ne": nil}}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{"_id": "$" + field}}})
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	var ids []string
	for _, d := range docs {
		switch v := d["_id"].(type) {
		case nil:
		case primitive.ObjectID:
			ids = append(ids, v.Hex())
		case string:
			if v != "" {
				ids = append(ids, v)
			}
		default:
			ids = append(ids, fmt.Sprint(v))
		}
	}
	return ids, nil
}
