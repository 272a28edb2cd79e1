package job

import (
	"time"

	"CareerConnect/internal/profile"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Job is a recruiter's posted opening. ApplicantsCount is a denormalized counter kept by the ledger.
type Job struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecruiterID      primitive.ObjectID `bson:"recruiter_id" json:"recruiterId"`
	Title            string             `bson:"title" json:"title"`
	Company          string             `bson:"company" json:"company"`
	Location         string             `bson:"location" json:"location"`
	Category         string             `bson:"category" json:"category"`
	Type             string             `bson:"type" json:"type"`
	SalaryMin        int                `bson:"salary_min,omitempty" json:"salaryMin,omitempty"`
	SalaryMax        int                `bson:"salary_max,omitempty" json:"salaryMax,omitempty"`
	Description      string             `bson:"description" json:"description"`
	Requirements     []string           `bson:"requirements" json:"requirements"`
	Openings         *int               `bson:"openings,omitempty" json:"openings,omitempty"`
	ApplicantsCount  int                `bson:"applicants_count" json:"applicantsCount"`
	ApplicationStart *time.Time         `bson:"application_start,omitempty" json:"applicationStart,omitempty"`
	ApplicationEnd   *time.Time         `bson:"application_end,omitempty" json:"applicationEnd,omitempty"`
	Status           string             `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`

	// Recruiter is filled on public reads and never stored.
	Recruiter *profile.RecruiterView `bson:"-" json:"recruiter,omitempty"`
}

// WindowOpen reports whether t falls inside [ApplicationStart, ApplicationEnd]. Both bounds are inclusive
// and an unset bound is unbounded.
func (j *Job) WindowOpen(t time.Time) bool {
	if j.ApplicationStart != nil && t.Before(*j.ApplicationStart) {
		return false
	}
	if j.ApplicationEnd != nil && t.After(*j.ApplicationEnd) {
		return false
	}
	return true
}

// HasCapacity reports whether another application fits. Jobs without openings never fill up.
func (j *Job) HasCapacity() bool {
	return j.Openings == nil || j.ApplicantsCount < *j.Openings
}

// Snapshot is the read-only public view of a job attached to a student's applications.
type Snapshot struct {
	ID           primitive.ObjectID `json:"id"`
	Title        string             `json:"title"`
	Company      string             `json:"company"`
	Location     string             `json:"location"`
	Type         string             `json:"type"`
	Category     string             `json:"category"`
	SalaryMin    int                `json:"salaryMin,omitempty"`
	SalaryMax    int                `json:"salaryMax,omitempty"`
	Description  string             `json:"description"`
	Requirements []string           `json:"requirements"`
	Status       string             `json:"status"`
}

func (j *Job) Snapshot() *Snapshot {
	return &Snapshot{
		ID:           j.ID,
		Title:        j.Title,
		Company:      j.Company,
		Location:     j.Location,
		Type:         j.Type,
		Category:     j.Category,
		SalaryMin:    j.SalaryMin,
		SalaryMax:    j.SalaryMax,
		Description:  j.Description,
		Requirements: j.Requirements,
		Status:       j.Status,
	}
}

type JobRequest struct {
	Title            string     `json:"title" validate:"required"`
	Company          string     `json:"company" validate:"required"`
	Location         string     `json:"location" validate:"required"`
	Category         string     `json:"category" validate:"required"`
	Type             string     `json:"type" validate:"required,oneof=full-time part-time internship contract"`
	SalaryMin        int        `json:"salaryMin" validate:"gte=0"`
	SalaryMax        int        `json:"salaryMax" validate:"gte=0"`
	Description      string     `json:"description"`
	Requirements     []string   `json:"requirements"`
	Openings         *int       `json:"openings" validate:"omitempty,gte=0"`
	ApplicationStart *time.Time `json:"applicationStart"`
	ApplicationEnd   *time.Time `json:"applicationEnd"`
	Status           string     `json:"status" validate:"omitempty,oneof=active closed"`
}

// Filter narrows the public job listing. Empty fields do not filter.
type Filter struct {
	Search   string `query:"search"`
	Location string `query:"location"`
	Category string `query:"category"`
	Type     string `query:"type"`
}
