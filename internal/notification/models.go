package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeApplicationReceived  = "application_received"
	TypeApplicationSubmitted = "application_submitted"
	TypeApplicationStatus    = "application_status"
)

// Notification is a per-user message produced by a ledger transition. Only the read flag
// and the email bookkeeping fields change after creation.
type Notification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	Type          string             `bson:"type" json:"type"`
	Message       string             `bson:"message" json:"message"`
	Data          map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	Read          bool               `bson:"read" json:"read"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	Emailed       bool               `bson:"emailed" json:"-"`
	EmailAttempts int                `bson:"email_attempts" json:"-"`
	EmailedAt     *time.Time         `bson:"emailed_at,omitempty" json:"-"`
}
