package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/reviewchain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) SetIdentityVerified(id string, verified bool) (*models.User, error) {
	args := m.Called(id, verified)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestDecideProof_Approve(t *testing.T) {
	mockReviewSvc := new(MockReviewService)
	mockUserSvc := new(MockUserService)
	handler := NewAdminHandler(mockReviewSvc, mockUserSvc)
	router := setupRouter()
	router.POST("/admin/reviews/:review_id/proof", asUser("admin-id", "admin"), handler.DecideProof)

	resp := &dto.ReviewResponse{
		ID: "rev-1",
		Badge: reviewchain.Badge{
			Kind: reviewchain.BadgeCustomVerified,
			Tag:  "Verified Customer",
		},
	}
	mockReviewSvc.On("SetProofVerification", "rev-1", mock.AnythingOfType("*dto.ProofDecisionDTO")).
		Return(resp, nil)

	tag := "Verified Customer"
	body, _ := json.Marshal(dto.ProofDecisionDTO{Verified: true, Tag: &tag})
	req, _ := http.NewRequest("POST", "/admin/reviews/rev-1/proof", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockReviewSvc.AssertExpectations(t)
}

func TestDecideProof_MissingTagRejected(t *testing.T) {
	mockReviewSvc := new(MockReviewService)
	mockUserSvc := new(MockUserService)
	handler := NewAdminHandler(mockReviewSvc, mockUserSvc)
	router := setupRouter()
	router.POST("/admin/reviews/:review_id/proof", asUser("admin-id", "admin"), handler.DecideProof)

	mockReviewSvc.On("SetProofVerification", "rev-1", mock.AnythingOfType("*dto.ProofDecisionDTO")).
		Return(nil, service.ErrTagRequired)

	body, _ := json.Marshal(dto.ProofDecisionDTO{Verified: true})
	req, _ := http.NewRequest("POST", "/admin/reviews/rev-1/proof", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReviewSvc.AssertExpectations(t)
}

func TestVerifyIdentity_SetsProfileBadge(t *testing.T) {
	mockReviewSvc := new(MockReviewService)
	mockUserSvc := new(MockUserService)
	handler := NewAdminHandler(mockReviewSvc, mockUserSvc)
	router := setupRouter()
	router.POST("/admin/users/:user_id/verify", asUser("admin-id", "admin"), handler.VerifyIdentity)

	user := &models.User{ID: "user-1", Username: "alice", MainBadge: models.MainBadgeVerified}
	mockUserSvc.On("SetIdentityVerified", "user-1", true).Return(user, nil)

	req, _ := http.NewRequest("POST", "/admin/users/user-1/verify",
		bytes.NewBufferString(`{"verified": true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, models.MainBadgeVerified, response["main_badge"])
	mockUserSvc.AssertExpectations(t)
}
