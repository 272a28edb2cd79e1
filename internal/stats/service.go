package stats

import (
	"context"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/application"
	"CareerConnect/internal/job"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type UserCounter interface {
	CountByRole(ctx context.Context) (map[access.Role]int64, error)
}

type RecruiterCounter interface {
	CountPendingRecruiters(ctx context.Context) (int64, error)
}

type JobCounter interface {
	CountByStatus(ctx context.Context, recruiterID primitive.ObjectID) (map[string]int64, error)
	ListByRecruiter(ctx context.Context, recruiterID primitive.ObjectID) ([]*job.Job, error)
}

type ApplicationCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByStatusForStudent(ctx context.Context, studentID primitive.ObjectID) (map[string]int64, error)
	CountByStatusForJobs(ctx context.Context, jobIDs []primitive.ObjectID) (map[string]int64, error)
}

// StatsService computes dashboard rollups at read time. The counts are not taken in one
// transaction, so a snapshot may lag concurrent writes.
type StatsService struct {
	users        UserCounter
	recruiters   RecruiterCounter
	jobs         JobCounter
	applications ApplicationCounter
	checker      *access.Checker
	logger       *zap.Logger
}

func NewStatsService(users UserCounter, recruiters RecruiterCounter, jobs JobCounter, applications ApplicationCounter, checker *access.Checker, logger *zap.Logger) *StatsService {
	return &StatsService{
		users:        users,
		recruiters:   recruiters,
		jobs:         jobs,
		applications: applications,
		checker:      checker,
		logger:       logger,
	}
}

func applicationCounts(byStatus map[string]int64) ApplicationCounts {
	c := ApplicationCounts{
		Pending:  byStatus[application.StatusPending],
		Accepted: byStatus[application.StatusAccepted],
		Rejected: byStatus[application.StatusRejected],
	}
	for _, n := range byStatus {
		c.Total += n
	}
	return c
}

func (s *StatsService) Admin(ctx context.Context, caller access.Identity) (*AdminStats, error) {
	if err := s.checker.Require(caller, access.ObjStats, access.ActReadAdmin); err != nil {
		return nil, err
	}

	var (
		roles   map[access.Role]int64
		pending int64
		jobs    map[string]int64
		apps    map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roles, err = s.users.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		pending, err = s.recruiters.CountPendingRecruiters(gctx)
		return err
	})
	g.Go(func() (err error) {
		jobs, err = s.jobs.CountByStatus(gctx, primitive.NilObjectID)
		return err
	})
	g.Go(func() (err error) {
		apps, err = s.applications.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal(err)
	}

	out := &AdminStats{
		TotalStudents:     roles[access.RoleStudent],
		TotalRecruiters:   roles[access.RoleRecruiter],
		PendingRecruiters: pending,
		ActiveJobs:        jobs[job.StatusActive],
		ClosedJobs:        jobs[job.StatusClosed],
		Applications:      applicationCounts(apps),
	}
	for _, n := range jobs {
		out.TotalJobs += n
	}
	return out, nil
}

func (s *StatsService) Recruiter(ctx context.Context, caller access.Identity) (*RecruiterStats, error) {
	if err := s.checker.Require(caller, access.ObjStats, access.ActReadOwn); err != nil {
		return nil, err
	}
	if caller.Role != access.RoleRecruiter {
		return nil, apperr.Forbidden("Forbidden: insufficient permissions")
	}
	jobs, err := s.jobs.ListByRecruiter(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := &RecruiterStats{TotalJobs: int64(len(jobs))}
	ids := make([]primitive.ObjectID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
		if j.Status == job.StatusActive {
			out.ActiveJobs++
		}
	}
	apps, err := s.applications.CountByStatusForJobs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out.Applications = applicationCounts(apps)
	return out, nil
}

func (s *StatsService) Student(ctx context.Context, caller access.Identity) (*StudentStats, error) {
	if err := s.checker.Require(caller, access.ObjStats, access.ActReadOwn); err != nil {
		return nil, err
	}
	if caller.Role != access.RoleStudent {
		return nil, apperr.Forbidden("Forbidden: insufficient permissions")
	}
	apps, err := s.applications.CountByStatusForStudent(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &StudentStats{Applications: applicationCounts(apps)}, nil
}
