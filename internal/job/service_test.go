package job

import (
	"context"
	"testing"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/profile"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memJobs struct {
	jobs map[primitive.ObjectID]*Job
}

func (m *memJobs) CreateJob(_ context.Context, job *Job) error {
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobs) FindByID(_ context.Context, id primitive.ObjectID) (*Job, error) {
	if j, ok := m.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (m *memJobs) ReplaceJob(_ context.Context, job *Job) error {
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobs) DeleteJob(_ context.Context, id primitive.ObjectID) error {
	delete(m.jobs, id)
	return nil
}

func (m *memJobs) List(context.Context, Filter) ([]*Job, error) {
	var out []*Job
	for _, j := range m.jobs {
		cp := *j
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memJobs) ListByRecruiter(_ context.Context, id primitive.ObjectID) ([]*Job, error) {
	var out []*Job
	for _, j := range m.jobs {
		if j.RecruiterID == id {
			out = append(out, j)
		}
	}
	return out, nil
}

type recruitersStub map[primitive.ObjectID]*profile.RecruiterView

func (r recruitersStub) RecruiterViews(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*profile.RecruiterView, error) {
	out := map[primitive.ObjectID]*profile.RecruiterView{}
	for _, id := range ids {
		if v, ok := r[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func newService(t *testing.T) (*JobService, *memJobs) {
	checker, err := access.NewChecker(zap.NewNop())
	require.NoError(t, err)
	store := &memJobs{jobs: map[primitive.ObjectID]*Job{}}
	return NewJobService(store, recruitersStub{}, checker, zap.NewNop()), store
}

func request() JobRequest {
	return JobRequest{
		Title:        "Backend Intern",
		Company:      "Acme",
		Location:     "Berlin",
		Category:     "engineering",
		Type:         "internship",
		Requirements: []string{" Go ", "", "SQL"},
	}
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newService(t)
	recruiter := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleRecruiter}

	job, err := svc.Create(context.Background(), recruiter, request())
	require.NoError(t, err)
	require.Equal(t, StatusActive, job.Status)
	require.Equal(t, 0, job.ApplicantsCount)
	require.Equal(t, recruiter.ID, job.RecruiterID)
	require.Equal(t, []string{"Go", "SQL"}, job.Requirements)
}

func TestCreateRequiresRecruiter(t *testing.T) {
	svc, _ := newService(t)
	student := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleStudent}

	_, err := svc.Create(context.Background(), student, request())
	require.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.Create(context.Background(), access.Identity{}, request())
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestCreateValidatesRanges(t *testing.T) {
	svc, _ := newService(t)
	recruiter := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleRecruiter}

	req := request()
	req.SalaryMin, req.SalaryMax = 5000, 1000
	_, err := svc.Create(context.Background(), recruiter, req)
	require.True(t, apperr.Is(err, apperr.KindValidation))

	req = request()
	start := time.Now()
	end := start.Add(-time.Hour)
	req.ApplicationStart, req.ApplicationEnd = &start, &end
	_, err = svc.Create(context.Background(), recruiter, req)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateAndDeleteAreOwnerOnly(t *testing.T) {
	svc, store := newService(t)
	owner := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleRecruiter}
	other := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleRecruiter}

	job, err := svc.Create(context.Background(), owner, request())
	require.NoError(t, err)

	req := request()
	req.Title = "Hijacked"
	_, err = svc.Update(context.Background(), other, job.ID, req)
	require.True(t, apperr.Is(err, apperr.KindForbidden))
	require.True(t, apperr.Is(svc.Delete(context.Background(), other, job.ID), apperr.KindForbidden))

	req.Title = "Senior Intern"
	req.Status = StatusClosed
	updated, err := svc.Update(context.Background(), owner, job.ID, req)
	require.NoError(t, err)
	require.Equal(t, "Senior Intern", updated.Title)
	require.Equal(t, StatusClosed, updated.Status)

	require.NoError(t, svc.Delete(context.Background(), owner, job.ID))
	require.Empty(t, store.jobs)

	_, err = svc.Update(context.Background(), owner, job.ID, req)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateKeepsApplicantCount(t *testing.T) {
	svc, store := newService(t)
	owner := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleRecruiter}
	job, err := svc.Create(context.Background(), owner, request())
	require.NoError(t, err)
	store.jobs[job.ID].ApplicantsCount = 3

	updated, err := svc.Update(context.Background(), owner, job.ID, request())
	require.NoError(t, err)
	require.Equal(t, 3, updated.ApplicantsCount)
}

func TestPublicReadsCarryRecruiter(t *testing.T) {
	svc, _ := newService(t)
	owner := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleRecruiter}
	ghost := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleRecruiter}
	svc.recruiters = recruitersStub{owner.ID: {
		ID: owner.ID, Name: "Rita", Email: "rita@acme.example",
		Profile: &profile.RecruiterProfile{UserID: owner.ID, Company: "Acme"},
	}}

	posted, err := svc.Create(context.Background(), owner, request())
	require.NoError(t, err)
	require.Nil(t, posted.Recruiter)
	orphan, err := svc.Create(context.Background(), ghost, request())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), posted.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Recruiter)
	require.Equal(t, "Rita", got.Recruiter.Name)
	require.Equal(t, "Acme", got.Recruiter.Profile.Company)

	jobs, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		if j.ID == orphan.ID {
			require.Nil(t, j.Recruiter)
		} else {
			require.Equal(t, "rita@acme.example", j.Recruiter.Email)
		}
	}
}

func TestWindowOpenIsInclusive(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	job := &Job{ApplicationStart: &start, ApplicationEnd: &end}

	require.True(t, job.WindowOpen(start))
	require.True(t, job.WindowOpen(end))
	require.False(t, job.WindowOpen(start.Add(-time.Nanosecond)))
	require.False(t, job.WindowOpen(end.Add(time.Nanosecond)))
	require.True(t, (&Job{}).WindowOpen(time.Now()))
}

func TestHasCapacity(t *testing.T) {
	one := 1
	require.True(t, (&Job{Openings: &one, ApplicantsCount: 0}).HasCapacity())
	require.False(t, (&Job{Openings: &one, ApplicantsCount: 1}).HasCapacity())
	require.True(t, (&Job{ApplicantsCount: 100}).HasCapacity())
}

func TestListFilter(t *testing.T) {
	q := ListFilter(Filter{})
	require.Equal(t, bson.M{"status": StatusActive}, q)

	q = ListFilter(Filter{Search: "a.c", Location: "ber", Category: "engineering", Type: "internship"})
	require.Equal(t, StatusActive, q["status"])
	require.Equal(t, "engineering", q["category"])
	require.Equal(t, "internship", q["type"])
	require.Equal(t, primitive.Regex{Pattern: "ber", Options: "i"}, q["location"])

	or := q["$or"].(bson.A)
	require.Len(t, or, 2)
	require.Equal(t, bson.M{"title": primitive.Regex{Pattern: `a\.c`, Options: "i"}}, or[0])
	require.Equal(t, bson.M{"company": primitive.Regex{Pattern: `a\.c`, Options: "i"}}, or[1])
}
