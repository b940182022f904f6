package handler

import (
	"context"
	"net/http"
	"time"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler carries the moderation surface: proof decisions on reviews and
// identity verification on user profiles.
type AdminHandler struct {
	reviewService service.ReviewService
	userService   service.UserService
}

func NewAdminHandler(reviewService service.ReviewService, userService service.UserService) *AdminHandler {
	return &AdminHandler{
		reviewService: reviewService,
		userService:   userService,
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/reviews/:review_id/proof", h.DecideProof)
		admin.POST("/users/:user_id/verify", h.VerifyIdentity)
	}
}

// DecideProof records the outcome of proof moderation on a review
// POST /api/admin/reviews/:review_id/proof
func (h *AdminHandler) DecideProof(c *gin.Context) {
	reviewID := c.Param("review_id")

	var req dto.ProofDecisionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.SetProofVerification(ctx, reviewID, &req)
	if err != nil {
		switch err {
		case service.ErrReviewNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrProofNotSubmitted, service.ErrTagRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyIdentity sets or clears the profile-level verified badge
// POST /api/admin/users/:user_id/verify
func (h *AdminHandler) VerifyIdentity(c *gin.Context) {
	userID := c.Param("user_id")

	var req struct {
		Verified bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.SetIdentityVerified(userID, req.Verified)
	if err != nil {
		if err == service.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    user.ID,
		"username":   user.Username,
		"main_badge": user.MainBadge,
	})
}
