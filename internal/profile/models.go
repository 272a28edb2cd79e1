package profile

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StudentProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"userId"`
	University     string             `bson:"university" json:"university"`
	Degree         string             `bson:"degree" json:"degree"`
	GraduationYear int                `bson:"graduation_year" json:"graduationYear"`
	Skills         []string           `bson:"skills" json:"skills"`
	ResumeURL      string             `bson:"resume_url" json:"resumeUrl"`
	Phone          string             `bson:"phone" json:"phone"`
	AvatarURL      string             `bson:"avatar_url" json:"avatarUrl"`
	GithubURL      string             `bson:"github_url" json:"githubUrl"`
	LinkedinURL    string             `bson:"linkedin_url" json:"linkedinUrl"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

type RecruiterProfile struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"user_id" json:"userId"`
	Company            string             `bson:"company" json:"company"`
	CompanyDescription string             `bson:"company_description" json:"companyDescription"`
	Website            string             `bson:"website" json:"website"`
	LogoURL            string             `bson:"logo_url" json:"logoUrl"`
	Approved           bool               `bson:"approved" json:"approved"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// StudentView is the applicant as a recruiter sees it. It is assembled at read time, so
// profile edits made after applying are visible on older applications too.
type StudentView struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	University     string             `json:"university"`
	Degree         string             `json:"degree"`
	GraduationYear int                `json:"graduationYear"`
	Skills         []string           `json:"skills"`
	ResumeURL      string             `json:"resumeUrl"`
	Phone          string             `json:"phone"`
	AvatarURL      string             `json:"avatarUrl"`
	GithubURL      string             `json:"githubUrl"`
	LinkedinURL    string             `json:"linkedinUrl"`
}

// RecruiterView is the poster shown next to a job. Profile is nil until the recruiter has one.
type RecruiterView struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Profile *RecruiterProfile  `json:"recruiterProfile,omitempty"`
}

type StudentProfileRequest struct {
	University     string   `json:"university"`
	Degree         string   `json:"degree"`
	GraduationYear int      `json:"graduationYear" validate:"omitempty,gte=1950,lte=2100"`
	Skills         []string `json:"skills"`
	Phone          string   `json:"phone"`
	GithubURL      string   `json:"githubUrl" validate:"omitempty,url"`
	LinkedinURL    string   `json:"linkedinUrl" validate:"omitempty,url"`
}

type RecruiterProfileRequest struct {
	Company            string `json:"company"`
	CompanyDescription string `json:"companyDescription"`
	Website            string `json:"website" validate:"omitempty,url"`
	LogoURL            string `json:"logoUrl" validate:"omitempty,url"`
}

// user mirrors the fields of the users collection the applicant join needs.
type user struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
}
