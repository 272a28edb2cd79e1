package application

import (
	"time"

	"CareerConnect/internal/job"
	"CareerConnect/internal/profile"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifecycle: pending is the only initial state, accepted and rejected are terminal.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Application is one ledger entry. There is at most one per (JobID, StudentID).
type Application struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID       primitive.ObjectID `bson:"job_id" json:"jobId"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"studentId"`
	CoverLetter string             `bson:"cover_letter" json:"coverLetter"`
	ResumeURL   string             `bson:"resume_url" json:"resumeUrl"`
	Status      string             `bson:"status" json:"status"`
	AppliedAt   time.Time          `bson:"applied_at" json:"appliedDate"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

type SubmitRequest struct {
	CoverLetter string `json:"coverLetter" validate:"max=5000"`
	ResumeURL   string `json:"resumeUrl" validate:"omitempty,url"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// StudentEntry is an application as its student sees it. Job is nil if the job was deleted.
type StudentEntry struct {
	*Application
	Job *job.Snapshot `json:"job"`
}

// ApplicantEntry is an application as the job's recruiter sees it, joined with the current student profile.
type ApplicantEntry struct {
	*Application
	Student *profile.StudentView `json:"student"`
}
