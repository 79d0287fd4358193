package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herry-chi/dashboard-operation-lifex/src/database"
	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
)

func setupCommentService(t *testing.T) ChartCommentService {
	t.Helper()
	logger.InitLogger("error")
	require.NoError(t, database.InitDB(t.TempDir()+"/comments.db"))
	t.Cleanup(func() { database.DB.Close() })
	return NewChartCommentService(database.DB)
}

func TestCommentLifecycle(t *testing.T) {
	svc := setupCommentService(t)

	_, err := svc.Get("kpi-cards")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	saved, err := svc.Upsert("kpi-cards", "Strong week for settlements")
	require.NoError(t, err)
	assert.Equal(t, "Strong week for settlements", saved.Content)

	got, err := svc.Get("kpi-cards")
	require.NoError(t, err)
	assert.Equal(t, saved.Content, got.Content)

	updated, err := svc.Upsert("kpi-cards", "Revised note")
	require.NoError(t, err)
	assert.Equal(t, "Revised note", updated.Content)

	require.NoError(t, svc.Delete("kpi-cards"))
	_, err = svc.Get("kpi-cards")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	assert.ErrorIs(t, svc.Delete("kpi-cards"), ErrCommentNotFound)
}

func TestCommentSanitization(t *testing.T) {
	svc := setupCommentService(t)

	saved, err := svc.Upsert("flow-chart", "<b>watch</b> the assessment stage")
	require.NoError(t, err)
	assert.Equal(t, "watch the assessment stage", saved.Content)

	_, err = svc.Upsert("flow-chart", "<script>alert(1)</script>")
	assert.ErrorIs(t, err, ErrCommentEmpty, "markup-only comments sanitize to nothing")
}
