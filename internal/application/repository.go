package application

import (
	"context"
	"errors"
	"time"

	"CareerConnect/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicate = errors.New("application already exists for this job and student")

type ApplicationRepository struct {
	collection *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{collection: db.Collection("applications")}
}

// EnsureIndexes creates the (job, student) unique index, which is what actually enforces one
// application per pair when two submissions race.
func (r *ApplicationRepository) EnsureIndexes(ctx context.Context) error {
	return config.EnsureIndexes(ctx, r.collection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		mongo.IndexModel{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "applied_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "applied_at", Value: -1}}},
	)
}

func (r *ApplicationRepository) CreateApplication(ctx context.Context, app *Application) error {
	_, err := r.collection.InsertOne(ctx, app)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *ApplicationRepository) Exists(ctx context.Context, jobID, studentID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"job_id": jobID, "student_id": studentID},
		options.Count().SetLimit(1),
	)
	return n > 0, err
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Application, error) {
	var app Application
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*Application, error) {
	return r.find(ctx, bson.M{"student_id": studentID})
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID primitive.ObjectID) ([]*Application, error) {
	return r.find(ctx, bson.M{"job_id": jobID})
}

func (r *ApplicationRepository) find(ctx context.Context, filter bson.M) ([]*Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "applied_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	apps := []*Application{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// TransitionStatus moves the application from one status to another as a single compare-and-set.
// It returns nil when the application is no longer in the from state.
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string, at time.Time) (*Application, error) {
	var app Application
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&app)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countByStatus(ctx, nil)
}

func (r *ApplicationRepository) CountByStatusForStudent(ctx context.Context, studentID primitive.ObjectID) (map[string]int64, error) {
	return r.countByStatus(ctx, bson.M{"student_id": studentID})
}

func (r *ApplicationRepository) CountByStatusForJobs(ctx context.Context, jobIDs []primitive.ObjectID) (map[string]int64, error) {
	if len(jobIDs) == 0 {
		return map[string]int64{}, nil
	}
	return r.countByStatus(ctx, bson.M{"job_id": bson.M{"$in": jobIDs}})
}

func (r *ApplicationRepository) countByStatus(ctx context.Context, match bson.M) (map[string]int64, error) {
	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$status"},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}})
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
