package profile

import (
	"context"
	"io"
	"strings"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Upload kinds and the profile field each one sets.
const (
	UploadAvatar = "avatar"
	UploadResume = "resume"
)

var uploadFields = map[string]string{
	UploadAvatar: "avatar_url",
	UploadResume: "resume_url",
}

var uploadDefaultExt = map[string]string{
	UploadAvatar: ".png",
	UploadResume: ".pdf",
}

type ProfileStore interface {
	InitStudent(ctx context.Context, userID primitive.ObjectID) error
	InitRecruiter(ctx context.Context, userID primitive.ObjectID) error
	FindStudent(ctx context.Context, userID primitive.ObjectID) (*StudentProfile, error)
	UpdateStudent(ctx context.Context, userID primitive.ObjectID, set bson.M) (*StudentProfile, error)
	UpdateRecruiter(ctx context.Context, userID primitive.ObjectID, set bson.M) (*RecruiterProfile, error)
	StudentView(ctx context.Context, userID primitive.ObjectID) (*StudentView, error)
}

type ProfileService struct {
	repo    ProfileStore
	files   storage.Store
	checker *access.Checker
	logger  *zap.Logger
}

func NewProfileService(repo ProfileStore, files storage.Store, checker *access.Checker, logger *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, files: files, checker: checker, logger: logger}
}

// InitProfile creates the empty profile that matches role. Admins have none.
func (s *ProfileService) InitProfile(ctx context.Context, userID primitive.ObjectID, role access.Role) error {
	switch role {
	case access.RoleStudent:
		return s.repo.InitStudent(ctx, userID)
	case access.RoleRecruiter:
		return s.repo.InitRecruiter(ctx, userID)
	}
	return nil
}

func (s *ProfileService) GetStudent(ctx context.Context, caller access.Identity, userID primitive.ObjectID) (*StudentProfile, error) {
	if err := s.checker.Require(caller, access.ObjProfile, access.ActRead, access.Owns(userID)); err != nil {
		return nil, err
	}
	p, err := s.repo.FindStudent(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if p == nil {
		return nil, apperr.NotFound("Profile not found")
	}
	return p, nil
}

func cleanSkills(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, skill := range in {
		skill = strings.TrimSpace(skill)
		if skill == "" || seen[strings.ToLower(skill)] {
			continue
		}
		seen[strings.ToLower(skill)] = true
		out = append(out, skill)
	}
	return out
}

func (s *ProfileService) UpdateStudent(ctx context.Context, caller access.Identity, userID primitive.ObjectID, req StudentProfileRequest) (*StudentProfile, error) {
	if err := s.checker.Require(caller, access.ObjProfile, access.ActUpdate, access.Owns(userID)); err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateStudent(ctx, userID, bson.M{
		"university":      strings.TrimSpace(req.University),
		"degree":          strings.TrimSpace(req.Degree),
		"graduation_year": req.GraduationYear,
		"skills":          cleanSkills(req.Skills),
		"phone":           strings.TrimSpace(req.Phone),
		"github_url":      req.GithubURL,
		"linkedin_url":    req.LinkedinURL,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if p == nil {
		return nil, apperr.NotFound("Profile not found")
	}
	return p, nil
}

// Upload stores the file and records only its URL on the student's profile.
func (s *ProfileService) Upload(ctx context.Context, caller access.Identity, userID primitive.ObjectID, kind, filename, contentType string, body io.Reader) (*StudentProfile, error) {
	if err := s.checker.Require(caller, access.ObjProfile, access.ActUpdate, access.Owns(userID)); err != nil {
		return nil, err
	}
	field, ok := uploadFields[kind]
	if !ok {
		return nil, apperr.Validation("Unknown upload kind")
	}
	if err := checkContentType(kind, contentType); err != nil {
		return nil, err
	}

	key := storage.ObjectKey(kind, userID.Hex(), filename, uploadDefaultExt[kind])
	url, err := s.files.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	p, err := s.repo.UpdateStudent(ctx, userID, bson.M{field: url})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if p == nil {
		return nil, apperr.NotFound("Profile not found")
	}
	s.logger.Info("profile file uploaded", zap.String("user_id", userID.Hex()), zap.String("kind", kind), zap.String("key", key))
	return p, nil
}

func checkContentType(kind, contentType string) error {
	switch kind {
	case UploadAvatar:
		if !strings.HasPrefix(contentType, "image/") {
			return apperr.Validation("Avatar must be an image")
		}
	case UploadResume:
		switch contentType {
		case "application/pdf", "application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		default:
			return apperr.Validation("Resume must be a PDF or Word document")
		}
	}
	return nil
}

func (s *ProfileService) UpdateRecruiter(ctx context.Context, caller access.Identity, userID primitive.ObjectID, req RecruiterProfileRequest) (*RecruiterProfile, error) {
	if err := s.checker.Require(caller, access.ObjProfile, access.ActUpdate, access.Owns(userID)); err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateRecruiter(ctx, userID, bson.M{
		"company":             strings.TrimSpace(req.Company),
		"company_description": req.CompanyDescription,
		"website":             req.Website,
		"logo_url":            req.LogoURL,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if p == nil {
		return nil, apperr.NotFound("Profile not found")
	}
	return p, nil
}

func (s *ProfileService) ApproveRecruiter(ctx context.Context, caller access.Identity, recruiterID primitive.ObjectID) (*RecruiterProfile, error) {
	if err := s.checker.Require(caller, access.ObjProfile, access.ActApprove); err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateRecruiter(ctx, recruiterID, bson.M{"approved": true})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if p == nil {
		return nil, apperr.NotFound("Recruiter not found")
	}
	s.logger.Info("recruiter approved", zap.String("recruiter_id", recruiterID.Hex()), zap.String("by", caller.ID.Hex()))
	return p, nil
}

// StudentView returns the applicant view of userID, or nil when the user no longer exists.
func (s *ProfileService) StudentView(ctx context.Context, userID primitive.ObjectID) (*StudentView, error) {
	return s.repo.StudentView(ctx, userID)
}
