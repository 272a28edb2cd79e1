package job

import (
	"context"
	"regexp"
	"time"

	"CareerConnect/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type JobRepository struct {
	collection *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{collection: db.Collection("jobs")}
}

func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	return config.EnsureIndexes(ctx, r.collection,
		mongo.IndexModel{Keys: bson.D{{Key: "recruiter_id", Value: 1}, {Key: "created_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	)
}

func (r *JobRepository) CreateJob(ctx context.Context, job *Job) error {
	_, err := r.collection.InsertOne(ctx, job)
	return err
}

func (r *JobRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Job, error) {
	var job Job
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Job, error) {
	if len(ids) == 0 {
		return []*Job{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ReplaceJob overwrites the stored document, keeping the applicant counter untouched.
func (r *JobRepository) ReplaceJob(ctx context.Context, job *Job) error {
	set := bson.M{
		"title":        job.Title,
		"company":      job.Company,
		"location":     job.Location,
		"category":     job.Category,
		"type":         job.Type,
		"salary_min":   job.SalaryMin,
		"salary_max":   job.SalaryMax,
		"description":  job.Description,
		"requirements": job.Requirements,
		"status":       job.Status,
		"updated_at":   job.UpdatedAt,
	}
	unset := bson.M{}
	optional := map[string]interface{}{
		"openings":          job.Openings,
		"application_start": job.ApplicationStart,
		"application_end":   job.ApplicationEnd,
	}
	for field, v := range optional {
		switch val := v.(type) {
		case *int:
			if val == nil {
				unset[field] = ""
			} else {
				set[field] = *val
			}
		case *time.Time:
			if val == nil {
				unset[field] = ""
			} else {
				set[field] = *val
			}
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := r.collection.UpdateByID(ctx, job.ID, update)
	return err
}

func (r *JobRepository) DeleteJob(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *JobRepository) List(ctx context.Context, f Filter) ([]*Job, error) {
	return r.find(ctx, ListFilter(f))
}

func (r *JobRepository) ListByRecruiter(ctx context.Context, recruiterID primitive.ObjectID) ([]*Job, error) {
	return r.find(ctx, bson.M{"recruiter_id": recruiterID})
}

func (r *JobRepository) find(ctx context.Context, filter bson.M) ([]*Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	jobs := []*Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// IncrementApplicants bumps the denormalized counter with a single atomic $inc.
func (r *JobRepository) IncrementApplicants(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"applicants_count": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountByStatus groups jobs by status. A non-zero recruiterID restricts the count to that recruiter.
func (r *JobRepository) CountByStatus(ctx context.Context, recruiterID primitive.ObjectID) (map[string]int64, error) {
	pipeline := mongo.Pipeline{}
	if !recruiterID.IsZero() {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"recruiter_id": recruiterID}}})
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

// ListFilter builds the active-only listing query. User input is quoted before it reaches $regex.
func ListFilter(f Filter) bson.M {
	query := bson.M{"status": StatusActive}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		query["$or"] = bson.A{
			bson.M{"title": primitive.Regex{Pattern: pattern, Options: "i"}},
			bson.M{"company": primitive.Regex{Pattern: pattern, Options: "i"}},
		}
	}
	if f.Location != "" {
		query["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Type != "" {
		query["type"] = f.Type
	}
	return query
}
