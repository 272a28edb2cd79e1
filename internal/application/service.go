package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/job"
	"CareerConnect/internal/metrics"
	"CareerConnect/internal/notification"
	"CareerConnect/internal/profile"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *Application) error
	Exists(ctx context.Context, jobID, studentID primitive.ObjectID) (bool, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Application, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*Application, error)
	ListByJob(ctx context.Context, jobID primitive.ObjectID) ([]*Application, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string, at time.Time) (*Application, error)
}

// JobLookup is the part of the job directory the ledger reads and bumps.
type JobLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*job.Job, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*job.Job, error)
	IncrementApplicants(ctx context.Context, id primitive.ObjectID) error
}

type Notifier interface {
	Emit(ctx context.Context, userID primitive.ObjectID, kind, message string, data map[string]string) error
}

type StudentDirectory interface {
	StudentView(ctx context.Context, userID primitive.ObjectID) (*profile.StudentView, error)
}

// LedgerService owns the application lifecycle: submission, listing and the
// pending -> accepted | rejected transition.
type LedgerService struct {
	repo     ApplicationStore
	jobs     JobLookup
	notifier Notifier
	students StudentDirectory
	checker  *access.Checker
	logger   *zap.Logger
	now      func() time.Time
}

func NewLedgerService(repo ApplicationStore, jobs JobLookup, notifier Notifier, students StudentDirectory, checker *access.Checker, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		repo:     repo,
		jobs:     jobs,
		notifier: notifier,
		students: students,
		checker:  checker,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit records a pending application. The checks run in a fixed order and the first failure wins:
// role, job exists, window, capacity, duplicate.
func (s *LedgerService) Submit(ctx context.Context, caller access.Identity, jobID primitive.ObjectID, req SubmitRequest) (*Application, error) {
	if err := s.checker.Require(caller, access.ObjApplication, access.ActSubmit); err != nil {
		if apperr.Is(err, apperr.KindForbidden) {
			return nil, apperr.Unauthorized("Only students can apply for jobs")
		}
		return nil, err
	}

	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if j == nil {
		return nil, apperr.NotFound("Job not found")
	}

	now := s.now().UTC()
	if j.Status == job.StatusClosed || !j.WindowOpen(now) {
		return nil, apperr.New(apperr.KindWindowClosed, "Applications are not open for this job")
	}
	if !j.HasCapacity() {
		return nil, apperr.New(apperr.KindCapacityReached, "This job is no longer accepting applications")
	}

	exists, err := s.repo.Exists(ctx, jobID, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.New(apperr.KindDuplicateApplication, "You have already applied to this job")
	}

	app := &Application{
		ID:          primitive.NewObjectID(),
		JobID:       jobID,
		StudentID:   caller.ID,
		CoverLetter: strings.TrimSpace(req.CoverLetter),
		ResumeURL:   strings.TrimSpace(req.ResumeURL),
		Status:      StatusPending,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.New(apperr.KindDuplicateApplication, "You have already applied to this job")
		}
		return nil, apperr.Internal(err)
	}
	metrics.ApplicationsSubmitted.Inc()

	data := map[string]string{"jobId": jobID.Hex(), "applicationId": app.ID.Hex()}
	newEffects(s.logger, zap.String("application_id", app.ID.Hex()), zap.String("job_id", jobID.Hex())).
		add("increment_applicants", func(ctx context.Context) error {
			return s.jobs.IncrementApplicants(ctx, jobID)
		}).
		add("notify_recruiter", func(ctx context.Context) error {
			return s.notifier.Emit(ctx, j.RecruiterID, notification.TypeApplicationReceived,
				fmt.Sprintf("New application received for %s", j.Title), data)
		}).
		add("notify_student", func(ctx context.Context) error {
			return s.notifier.Emit(ctx, caller.ID, notification.TypeApplicationSubmitted,
				fmt.Sprintf("Your application for %s at %s was submitted", j.Title, j.Company), data)
		}).
		run(ctx)

	s.logger.Info("application submitted",
		zap.String("application_id", app.ID.Hex()),
		zap.String("job_id", jobID.Hex()),
		zap.String("student_id", caller.ID.Hex()))
	return app, nil
}

// ListForStudent returns the caller's applications newest first, each with a snapshot of its job.
func (s *LedgerService) ListForStudent(ctx context.Context, caller access.Identity) ([]*StudentEntry, error) {
	if err := s.checker.Require(caller, access.ObjApplication, access.ActListOwn); err != nil {
		return nil, err
	}
	apps, err := s.repo.ListByStudent(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	ids := make([]primitive.ObjectID, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.JobID)
	}
	jobs, err := s.jobs.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byID := make(map[primitive.ObjectID]*job.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	entries := make([]*StudentEntry, 0, len(apps))
	for _, app := range apps {
		entry := &StudentEntry{Application: app}
		if j, ok := byID[app.JobID]; ok {
			entry.Job = j.Snapshot()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListForJob returns the job's applications newest first. Only the job's owner may call it.
// Student details are read at call time, so later profile edits show on older applications.
func (s *LedgerService) ListForJob(ctx context.Context, caller access.Identity, jobID primitive.ObjectID) ([]*ApplicantEntry, error) {
	if err := s.checker.Require(caller, access.ObjApplication, access.ActListForJob); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if j == nil {
		return nil, apperr.NotFound("Job not found")
	}
	if err := s.checker.Require(caller, access.ObjApplication, access.ActListForJob, access.Owns(j.RecruiterID)); err != nil {
		return nil, err
	}

	apps, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	entries := make([]*ApplicantEntry, 0, len(apps))
	for _, app := range apps {
		view, err := s.students.StudentView(ctx, app.StudentID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		entries = append(entries, &ApplicantEntry{Application: app, Student: view})
	}
	return entries, nil
}

// UpdateStatus moves a pending application to accepted or rejected. Terminal applications
// cannot be moved again.
// Existence is checked before the role and ownership check.
func (s *LedgerService) UpdateStatus(ctx context.Context, caller access.Identity, id primitive.ObjectID, status string) (*Application, error) {
	if caller.Anonymous() {
		return nil, apperr.Unauthorized("Not authenticated")
	}
	if status != StatusAccepted && status != StatusRejected {
		return nil, apperr.Validation("Status must be accepted or rejected")
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if app == nil {
		return nil, apperr.NotFound("Application not found")
	}
	j, err := s.jobs.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if j == nil {
		return nil, apperr.NotFound("Job not found")
	}
	if err := s.checker.Require(caller, access.ObjApplication, access.ActUpdateStatus, access.Owns(j.RecruiterID)); err != nil {
		return nil, err
	}

	if app.Status != StatusPending {
		return nil, invalidTransition(app.Status)
	}
	updated, err := s.repo.TransitionStatus(ctx, id, StatusPending, status, s.now().UTC())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if updated == nil {
		// lost a race with another update
		return nil, invalidTransition("")
	}
	metrics.ApplicationTransitions.WithLabelValues(status).Inc()

	newEffects(s.logger, zap.String("application_id", id.Hex())).
		add("notify_student", func(ctx context.Context) error {
			return s.notifier.Emit(ctx, updated.StudentID, notification.TypeApplicationStatus,
				fmt.Sprintf("Your application for %s at %s has been %s", j.Title, j.Company, status),
				map[string]string{"jobId": j.ID.Hex(), "applicationId": id.Hex(), "status": status})
		}).
		run(ctx)

	s.logger.Info("application status updated", zap.String("application_id", id.Hex()), zap.String("status", status))
	return updated, nil
}

func invalidTransition(current string) error {
	if current == "" {
		return apperr.New(apperr.KindInvalidTransition, "Application has already been reviewed")
	}
	return apperr.New(apperr.KindInvalidTransition, "Application has already been "+current)
}
