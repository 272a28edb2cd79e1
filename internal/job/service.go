package job

import (
	"context"
	"strings"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/profile"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type JobStore interface {
	CreateJob(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Job, error)
	ReplaceJob(ctx context.Context, job *Job) error
	DeleteJob(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f Filter) ([]*Job, error)
	ListByRecruiter(ctx context.Context, recruiterID primitive.ObjectID) ([]*Job, error)
}

// RecruiterDirectory resolves the recruiters shown on public job reads.
type RecruiterDirectory interface {
	RecruiterViews(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*profile.RecruiterView, error)
}

// JobService is the Job Directory: public reads, ownership-gated writes.
type JobService struct {
	repo       JobStore
	recruiters RecruiterDirectory
	checker    *access.Checker
	logger     *zap.Logger
	now        func() time.Time
}

func NewJobService(repo JobStore, recruiters RecruiterDirectory, checker *access.Checker, logger *zap.Logger) *JobService {
	return &JobService{repo: repo, recruiters: recruiters, checker: checker, logger: logger, now: time.Now}
}

func validateRequest(req *JobRequest) error {
	if req.SalaryMin > 0 && req.SalaryMax > 0 && req.SalaryMin > req.SalaryMax {
		return apperr.Validation("salaryMin must not exceed salaryMax")
	}
	if req.ApplicationStart != nil && req.ApplicationEnd != nil && req.ApplicationEnd.Before(*req.ApplicationStart) {
		return apperr.Validation("applicationEnd must not be before applicationStart")
	}
	return nil
}

func cleanRequirements(in []string) []string {
	out := []string{}
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (s *JobService) Create(ctx context.Context, caller access.Identity, req JobRequest) (*Job, error) {
	if err := s.checker.Require(caller, access.ObjJob, access.ActCreate); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	job := &Job{
		ID:               primitive.NewObjectID(),
		RecruiterID:      caller.ID,
		Title:            strings.TrimSpace(req.Title),
		Company:          strings.TrimSpace(req.Company),
		Location:         strings.TrimSpace(req.Location),
		Category:         req.Category,
		Type:             req.Type,
		SalaryMin:        req.SalaryMin,
		SalaryMax:        req.SalaryMax,
		Description:      req.Description,
		Requirements:     cleanRequirements(req.Requirements),
		Openings:         req.Openings,
		ApplicationStart: req.ApplicationStart,
		ApplicationEnd:   req.ApplicationEnd,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, apperr.Internal(err)
	}
	s.logger.Info("job created", zap.String("job_id", job.ID.Hex()), zap.String("recruiter_id", caller.ID.Hex()))
	return job, nil
}

func (s *JobService) find(ctx context.Context, id primitive.ObjectID) (*Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if job == nil {
		return nil, apperr.NotFound("Job not found")
	}
	return job, nil
}

// Get returns the job with its recruiter attached.
func (s *JobService) Get(ctx context.Context, id primitive.ObjectID) (*Job, error) {
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRecruiters(ctx, []*Job{job}); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) attachRecruiters(ctx context.Context, jobs []*Job) error {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, j := range jobs {
		if !seen[j.RecruiterID] {
			seen[j.RecruiterID] = true
			ids = append(ids, j.RecruiterID)
		}
	}
	views, err := s.recruiters.RecruiterViews(ctx, ids)
	if err != nil {
		return apperr.Internal(err)
	}
	for _, j := range jobs {
		j.Recruiter = views[j.RecruiterID]
	}
	return nil
}

// owned loads the job and checks that caller may perform act on it.
func (s *JobService) owned(ctx context.Context, caller access.Identity, id primitive.ObjectID, act string) (*Job, error) {
	if err := s.checker.Require(caller, access.ObjJob, act); err != nil {
		return nil, err
	}
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checker.Require(caller, access.ObjJob, act, access.Owns(job.RecruiterID)); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) Update(ctx context.Context, caller access.Identity, id primitive.ObjectID, req JobRequest) (*Job, error) {
	job, err := s.owned(ctx, caller, id, access.ActUpdate)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	job.Title = strings.TrimSpace(req.Title)
	job.Company = strings.TrimSpace(req.Company)
	job.Location = strings.TrimSpace(req.Location)
	job.Category = req.Category
	job.Type = req.Type
	job.SalaryMin = req.SalaryMin
	job.SalaryMax = req.SalaryMax
	job.Description = req.Description
	job.Requirements = cleanRequirements(req.Requirements)
	job.Openings = req.Openings
	job.ApplicationStart = req.ApplicationStart
	job.ApplicationEnd = req.ApplicationEnd
	if req.Status != "" {
		job.Status = req.Status
	}
	job.UpdatedAt = s.now().UTC()

	if err := s.repo.ReplaceJob(ctx, job); err != nil {
		return nil, apperr.Internal(err)
	}
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, caller access.Identity, id primitive.ObjectID) error {
	if _, err := s.owned(ctx, caller, id, access.ActDelete); err != nil {
		return err
	}
	if err := s.repo.DeleteJob(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	s.logger.Info("job deleted", zap.String("job_id", id.Hex()))
	return nil
}

func (s *JobService) List(ctx context.Context, f Filter) ([]*Job, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.Location = strings.TrimSpace(f.Location)
	jobs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.attachRecruiters(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *JobService) ListMine(ctx context.Context, caller access.Identity) ([]*Job, error) {
	if err := s.checker.Require(caller, access.ObjJob, access.ActListOwn); err != nil {
		return nil, err
	}
	jobs, err := s.repo.ListByRecruiter(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return jobs, nil
}
