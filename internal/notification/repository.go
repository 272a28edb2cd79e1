package notification

import (
	"context"
	"time"

	"CareerConnect/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{collection: db.Collection("notifications")}
}

const (
	createdIndex = "created_at_1"
	// legacyTTLIndex was the TTL index name before retention shared createdIndex.
	legacyTTLIndex = "created_at_ttl"
)

// EnsureIndexes creates the lookup indexes and reconciles the created_at index with retentionDays.
// retentionDays > 0 makes it a TTL index; 0 keeps notifications forever.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context, retentionDays int) error {
	err := config.EnsureIndexes(ctx, r.collection,
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "emailed", Value: 1}, {Key: "email_attempts", Value: 1}}},
	)
	if err != nil {
		return err
	}
	return r.ensureRetention(ctx, retentionTTL(retentionDays))
}

func retentionTTL(days int) int32 {
	if days <= 0 {
		return 0
	}
	if days > config.MaxRetentionDays {
		days = config.MaxRetentionDays
	}
	return int32(days * 24 * 60 * 60)
}

// ensureRetention keeps exactly one created_at index named createdIndex. A TTL change on an
// existing TTL index goes through collMod; adding or removing the TTL rebuilds the index.
func (r *NotificationRepository) ensureRetention(ctx context.Context, ttl int32) error {
	specs, err := r.collection.Indexes().ListSpecifications(ctx)
	if err != nil {
		return err
	}
	var current *mongo.IndexSpecification
	for _, spec := range specs {
		switch spec.Name {
		case legacyTTLIndex:
			if _, err := r.collection.Indexes().DropOne(ctx, legacyTTLIndex); err != nil {
				return err
			}
		case createdIndex:
			current = spec
		}
	}

	if current != nil {
		hasTTL := current.ExpireAfterSeconds != nil
		switch {
		case !hasTTL && ttl == 0:
			return nil
		case hasTTL && ttl > 0:
			if *current.ExpireAfterSeconds == ttl {
				return nil
			}
			return r.collection.Database().RunCommand(ctx, bson.D{
				{Key: "collMod", Value: r.collection.Name()},
				{Key: "index", Value: bson.D{{Key: "name", Value: createdIndex}, {Key: "expireAfterSeconds", Value: ttl}}},
			}).Err()
		}
		if _, err := r.collection.Indexes().DropOne(ctx, createdIndex); err != nil {
			return err
		}
	}

	opts := options.Index().SetName(createdIndex)
	if ttl > 0 {
		opts.SetExpireAfterSeconds(ttl)
	}
	return config.EnsureIndexes(ctx, r.collection, mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: opts})
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *Notification) error {
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	notifications := []*Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// MarkRead returns nil when the notification does not exist or belongs to another user.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n Notification
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PendingEmail fetches notifications not yet mirrored to email, oldest first.
func (r *NotificationRepository) PendingEmail(ctx context.Context, limit int64, maxAttempts int) ([]*Notification, error) {
	filter := bson.M{"emailed": false, "email_attempts": bson.M{"$lt": maxAttempts}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkEmailed(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"emailed": true, "emailed_at": at}})
	return err
}

func (r *NotificationRepository) RecordEmailFailure(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"email_attempts": 1}})
	return err
}
