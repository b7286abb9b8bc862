package repository

import (
	"context"
	"testing"

	"gratitude/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRepository_Stats(t *testing.T) {
	db := newTestDB(t)
	repo := NewAdminRepository(db)
	author := mkUser(t, db, "author")
	other := mkUser(t, db, "other")
	acme := mkCompany(t, db, "Acme", "acme", true)
	mkCompany(t, db, "Pending", "pending", false)
	th := mkThanks(t, db, author, models.CompanyTarget(acme.ID))
	mkThanks(t, db, author, models.CompanyTarget(acme.ID), pending())
	require.NoError(t, db.Create(&models.Comment{Text: "ok", UserID: other.ID, ThanksID: th.ID, IsApproved: true}).Error)
	require.NoError(t, db.Create(&models.Comment{Text: "wait", UserID: other.ID, ThanksID: th.ID}).Error)
	require.NoError(t, db.Create(&models.Report{UserID: other.ID, ThanksID: th.ID, Reason: "suspicious content", Status: models.ReportPending}).Error)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.AdminStats{
		Users:            2,
		Companies:        2,
		Thanks:           2,
		Comments:         2,
		PendingReports:   1,
		PendingThanks:    1,
		PendingComments:  1,
		PendingCompanies: 1,
	}, stats)
}
