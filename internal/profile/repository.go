package profile

import (
	"context"
	"time"

	"CareerConnect/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileRepository struct {
	studentsCollection   *mongo.Collection
	recruitersCollection *mongo.Collection
	usersCollection      *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		studentsCollection:   db.Collection("student_profiles"),
		recruitersCollection: db.Collection("recruiter_profiles"),
		usersCollection:      db.Collection("users"),
	}
}

func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)}
	if err := config.EnsureIndexes(ctx, r.studentsCollection, unique); err != nil {
		return err
	}
	return config.EnsureIndexes(ctx, r.recruitersCollection, unique,
		mongo.IndexModel{Keys: bson.D{{Key: "approved", Value: 1}}})
}

// upsertEmpty creates the profile document for userID if it does not exist yet.
func upsertEmpty(ctx context.Context, coll *mongo.Collection, userID primitive.ObjectID, defaults bson.M) error {
	now := time.Now().UTC()
	defaults["user_id"] = userID
	defaults["created_at"] = now
	defaults["updated_at"] = now
	_, err := coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": defaults},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *ProfileRepository) InitStudent(ctx context.Context, userID primitive.ObjectID) error {
	return upsertEmpty(ctx, r.studentsCollection, userID, bson.M{"skills": bson.A{}})
}

func (r *ProfileRepository) InitRecruiter(ctx context.Context, userID primitive.ObjectID) error {
	return upsertEmpty(ctx, r.recruitersCollection, userID, bson.M{"approved": false})
}

func (r *ProfileRepository) FindStudent(ctx context.Context, userID primitive.ObjectID) (*StudentProfile, error) {
	var p StudentProfile
	if err := r.studentsCollection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpdateStudent applies set to the student's profile and returns the result, or nil if there is no profile.
func (r *ProfileRepository) UpdateStudent(ctx context.Context, userID primitive.ObjectID, set bson.M) (*StudentProfile, error) {
	set["updated_at"] = time.Now().UTC()
	var p StudentProfile
	err := r.studentsCollection.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) UpdateRecruiter(ctx context.Context, userID primitive.ObjectID, set bson.M) (*RecruiterProfile, error) {
	set["updated_at"] = time.Now().UTC()
	var p RecruiterProfile
	err := r.recruitersCollection.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) CountPendingRecruiters(ctx context.Context) (int64, error) {
	return r.recruitersCollection.CountDocuments(ctx, bson.M{"approved": false})
}

// StudentView joins the users document with the student profile. It returns nil if the user is gone.
func (r *ProfileRepository) StudentView(ctx context.Context, userID primitive.ObjectID) (*StudentView, error) {
	var u user
	if err := r.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	view := &StudentView{ID: u.ID, Name: u.Name, Email: u.Email, Skills: []string{}}
	p, err := r.FindStudent(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		view.University = p.University
		view.Degree = p.Degree
		view.GraduationYear = p.GraduationYear
		view.Skills = p.Skills
		view.ResumeURL = p.ResumeURL
		view.Phone = p.Phone
		view.AvatarURL = p.AvatarURL
		view.GithubURL = p.GithubURL
		view.LinkedinURL = p.LinkedinURL
	}
	return view, nil
}

// RecruiterViews joins users with their recruiter profiles for ids. Unknown ids are absent from the map.
func (r *ProfileRepository) RecruiterViews(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*RecruiterView, error) {
	views := make(map[primitive.ObjectID]*RecruiterView, len(ids))
	if len(ids) == 0 {
		return views, nil
	}
	cursor, err := r.usersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []user
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		views[u.ID] = &RecruiterView{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	cursor, err = r.recruitersCollection.Find(ctx, bson.M{"user_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var profiles []*RecruiterProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if view, ok := views[p.UserID]; ok {
			view.Profile = p
		}
	}
	return views, nil
}
