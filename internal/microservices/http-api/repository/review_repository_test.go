package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/reviewchain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Business{}, &models.Review{}))
	return db
}

func seedReview(t *testing.T, db *gorm.DB) *models.Review {
	t.Helper()
	user := models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	business := models.Business{Name: "Blue Door Cafe"}
	require.NoError(t, db.Create(&business).Error)

	review := models.Review{
		UserID:     user.ID,
		BusinessID: business.ID,
		Rating:     2,
		Content:    "cold coffee",
	}
	require.NoError(t, NewReviewRepository(db).Create(&review))
	return &review
}

func reload(t *testing.T, db *gorm.DB, id string) *models.Review {
	t.Helper()
	var review models.Review
	require.NoError(t, db.First(&review, "id = ?", id).Error)
	return &review
}

// An owner reply must not move updated_at: that column records whether the
// author spent their one in-place edit, and a full Save would bump it.
func TestSetBusinessResponse_DoesNotConsumeEditWindow(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)

	created := reload(t, db, seedReview(t, db).ID)
	require.True(t, created.UpdatedAt.Equal(created.CreatedAt))

	now := created.CreatedAt.Add(10 * time.Second)
	response := "sorry to hear that, come back for a free coffee"
	created.BusinessResponse = &response
	created.BusinessResponseAt = &now
	require.NoError(t, repo.SetBusinessResponse(created))

	after := reload(t, db, created.ID)
	require.NotNil(t, after.BusinessResponse)
	assert.Equal(t, response, *after.BusinessResponse)

	assert.True(t, after.UpdatedAt.Equal(after.CreatedAt),
		"a business response must not move UpdatedAt")
	assert.True(t, reviewchain.CanEdit(after, after.UserID, created.CreatedAt.Add(30*time.Second)),
		"author keeps the edit window after the owner responds")
}

func TestSetProofDecision_DoesNotConsumeEditWindow(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)

	created := reload(t, db, seedReview(t, db).ID)

	verified := true
	tag := "Verified Customer"
	created.ProofVerified = &verified
	created.CustomVerificationTag = &tag
	require.NoError(t, repo.SetProofDecision(created))

	after := reload(t, db, created.ID)
	require.NotNil(t, after.ProofVerified)
	assert.True(t, *after.ProofVerified)
	require.NotNil(t, after.CustomVerificationTag)
	assert.Equal(t, tag, *after.CustomVerificationTag)

	assert.True(t, after.UpdatedAt.Equal(after.CreatedAt),
		"a moderation decision must not move UpdatedAt")
	assert.True(t, reviewchain.CanEdit(after, after.UserID, created.CreatedAt.Add(30*time.Second)),
		"author keeps the edit window after a proof decision")
}

// Save is reserved for the real in-place edit, where moving updated_at off
// created_at is exactly the point.
func TestSave_RecordsTheEdit(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)

	created := reload(t, db, seedReview(t, db).ID)

	created.Content = "cold coffee (edit: lukewarm, to be fair)"
	created.UpdatedAt = created.CreatedAt.Add(20 * time.Second)
	require.NoError(t, repo.Save(created))

	after := reload(t, db, created.ID)
	assert.Equal(t, "cold coffee (edit: lukewarm, to be fair)", after.Content)
	assert.False(t, after.UpdatedAt.Equal(after.CreatedAt))
	assert.False(t, reviewchain.CanEdit(after, after.UserID, created.CreatedAt.Add(30*time.Second)),
		"the single edit is spent")
}

func TestCreateUpdate_AssignsSequentialNumbers(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)

	original := seedReview(t, db)

	first := models.Review{
		UserID:         original.UserID,
		BusinessID:     original.BusinessID,
		ParentReviewID: &original.ID,
		Rating:         3,
		Content:        "new management, improving",
	}
	require.NoError(t, repo.CreateUpdate(&first))
	require.NotNil(t, first.UpdateNumber)
	assert.Equal(t, 1, *first.UpdateNumber)

	second := models.Review{
		UserID:         original.UserID,
		BusinessID:     original.BusinessID,
		ParentReviewID: &original.ID,
		Rating:         4,
		Content:        "genuinely good now",
	}
	require.NoError(t, repo.CreateUpdate(&second))
	require.NotNil(t, second.UpdateNumber)
	assert.Equal(t, 2, *second.UpdateNumber)
}
