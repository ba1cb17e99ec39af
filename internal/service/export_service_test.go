package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/repository"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

func TestExportServiceRosterCSV(t *testing.T) {
	repo := repository.NewMemoryStudentRepository()
	seedStudents(t, repo, models.BatchMorning, 120)
	seedStudents(t, repo, models.BatchFull, 2)

	svc := NewExportService(repo, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

	file, err := svc.Roster(context.Background(), models.BatchMorning, "")
	require.NoError(t, err)
	assert.Equal(t, "roster-20240501-093000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	body := bytes.TrimPrefix(file.Body, []byte("\ufeff"))
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 121)
	assert.Equal(t, rosterHeaders, records[0])
	for _, row := range records[1:] {
		assert.Equal(t, "morning", row[4])
		assert.Equal(t, "completed", row[6])
	}
}

func TestExportServiceRosterPDF(t *testing.T) {
	repo := repository.NewMemoryStudentRepository()
	seedStudents(t, repo, models.BatchPrivate, 3)

	file, err := NewExportService(repo, nil, nil, nil).Roster(context.Background(), "", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceRejectsBadInput(t *testing.T) {
	svc := NewExportService(repository.NewMemoryStudentRepository(), nil, nil, nil)

	_, err := svc.Roster(context.Background(), "", "xlsx")
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "format")

	_, err = svc.Roster(context.Background(), "weekend", "csv")
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "batchType")
}
