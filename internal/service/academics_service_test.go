package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubatch-api/internal/models"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

type studentLookupStub map[string]*models.Student

func (s studentLookupStub) Get(_ context.Context, id string) (*models.Student, error) {
	if st, ok := s[id]; ok {
		return st, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

type attendanceRepoStub struct {
	created  []models.AttendanceRecord
	from, to string
	err      error
}

func (r *attendanceRepoStub) Create(_ context.Context, record *models.AttendanceRecord) error {
	if r.err != nil {
		return r.err
	}
	record.ID = "att-1"
	r.created = append(r.created, *record)
	return nil
}

func (r *attendanceRepoStub) ListByStudent(_ context.Context, _ string, from, to string) ([]models.AttendanceRecord, error) {
	r.from, r.to = from, to
	return r.created, r.err
}

type progressRepoStub struct {
	created []models.ProgressRecord
}

func (r *progressRepoStub) Create(_ context.Context, record *models.ProgressRecord) error {
	record.ID = "prog-1"
	r.created = append(r.created, *record)
	return nil
}

func (r *progressRepoStub) ListByStudent(context.Context, string) ([]models.ProgressRecord, error) {
	return r.created, nil
}

var knownStudents = studentLookupStub{"stu-1": {ID: "stu-1", Name: "Asha Rao"}}

func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
}

func TestAttendanceServiceMark(t *testing.T) {
	repo := &attendanceRepoStub{}
	svc := NewAttendanceService(repo, knownStudents, nil, nil)
	svc.now = fixedClock

	record, err := svc.Mark(context.Background(), MarkAttendanceRequest{StudentID: "stu-1", Date: "2024-06-14", Status: models.AttendancePresent})
	require.NoError(t, err)
	assert.Equal(t, "att-1", record.ID)
	assert.Equal(t, fixedClock(), record.MarkedAt)

	_, err = svc.Mark(context.Background(), MarkAttendanceRequest{StudentID: "stu-1", Date: "14/06/2024", Status: "late"})
	require.Error(t, err)
	fields := appErrors.FromError(err).Fields
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "status")

	_, err = svc.Mark(context.Background(), MarkAttendanceRequest{StudentID: "ghost", Date: "2024-06-14", Status: models.AttendanceAbsent})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	repo.err = errors.New("locked")
	_, err = svc.Mark(context.Background(), MarkAttendanceRequest{StudentID: "stu-1", Date: "2024-06-14", Status: models.AttendanceAbsent})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestAttendanceServiceHistoryRange(t *testing.T) {
	repo := &attendanceRepoStub{}
	svc := NewAttendanceService(repo, knownStudents, nil, nil)
	svc.now = fixedClock

	_, err := svc.History(context.Background(), "stu-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-16", repo.from)
	assert.Equal(t, "2024-06-15", repo.to)

	_, err = svc.History(context.Background(), "stu-1", "2024-06-10", "2024-06-01")
	require.Error(t, err)
	assert.Equal(t, "from must not be after to", appErrors.FromError(err).Fields["from"])

	_, err = svc.History(context.Background(), "stu-1", "June", "")
	assert.Contains(t, appErrors.FromError(err).Fields, "from")

	_, err = svc.History(context.Background(), "ghost", "", "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestProgressServiceRecordAndList(t *testing.T) {
	repo := &progressRepoStub{}
	svc := NewProgressService(repo, knownStudents, nil, nil)
	svc.now = fixedClock

	score := 87
	record, err := svc.Record(context.Background(), "stu-1", RecordProgressRequest{Subject: " Algebra ", Topic: "Quadratics", Score: &score, Feedback: " steady "})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", record.Subject)
	assert.Equal(t, "steady", record.Feedback)
	assert.Equal(t, 87, record.Score)

	zero := 0
	_, err = svc.Record(context.Background(), "stu-1", RecordProgressRequest{Subject: "Algebra", Topic: "Basics", Score: &zero})
	require.NoError(t, err)

	over := 101
	_, err = svc.Record(context.Background(), "stu-1", RecordProgressRequest{Subject: "Algebra", Topic: "Basics", Score: &over})
	assert.Contains(t, appErrors.FromError(err).Fields, "score")

	_, err = svc.Record(context.Background(), "stu-1", RecordProgressRequest{Subject: "Algebra", Topic: "Basics"})
	assert.Equal(t, "score is required", appErrors.FromError(err).Fields["score"])

	records, err := svc.List(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = svc.List(context.Background(), "ghost")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
