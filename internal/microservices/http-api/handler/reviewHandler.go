package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/reviewchain"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	metrics       *middleware.Metrics
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// WithMetrics attaches the Prometheus counters. A nil receiver on the
// counters is a no-op, so wiring is optional.
func (h *ReviewHandler) WithMetrics(m *middleware.Metrics) *ReviewHandler {
	h.metrics = m
	return h
}

// RegisterBusinessRoutes registers the routes nested under a business
func (h *ReviewHandler) RegisterBusinessRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/:business_id/reviews")
	{
		reviews.GET("", middleware.RequireScopes("read:reviews"), h.List)
		reviews.POST("", middleware.RequireScopes("write:reviews"), h.Create)
	}
}

// RegisterReviewRoutes registers the routes addressed by review id
func (h *ReviewHandler) RegisterReviewRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/reviews")
	{
		reviews.POST("/:review_id/updates", middleware.RequireScopes("write:reviews"), h.AppendUpdate)
		reviews.PATCH("/:review_id", middleware.RequireScopes("write:reviews"), h.Edit)
		reviews.GET("/:review_id/history", middleware.RequireScopes("read:reviews"), h.History)
		reviews.POST("/:review_id/response", middleware.RequireScopes("write:businesses"), h.Respond)
	}
}

// List renders a business's reviews: one entry per reviewer, current version,
// plus the aggregate stats
// GET /api/businesses/:business_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	businessID, err := strconv.ParseInt(c.Param("business_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid business ID"})
		return
	}

	page, pageSize := parsePagination(c)
	order := reviewchain.ParseSortOrder(c.Query("sort"))

	// edit flags are viewer-specific; without a viewer in context none are set
	viewerID := ""
	if id, exists := c.Get("userID"); exists {
		viewerID = id.(string)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.GetBusinessReviews(ctx, businessID, viewerID, order, page, pageSize)
	if err != nil {
		if err == service.ErrBusinessNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create submits the original review of a chain
// POST /api/businesses/:business_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	businessID, err := strconv.ParseInt(c.Param("business_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid business ID"})
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.CreateReview(ctx, userID.(string), businessID, &req)
	if err != nil {
		switch err {
		case service.ErrBusinessNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrReviewExists:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.metrics.IncReviewsCreated()
	c.JSON(http.StatusCreated, resp)
}

// AppendUpdate appends a dated update to an existing chain
// POST /api/reviews/:review_id/updates
func (h *ReviewHandler) AppendUpdate(c *gin.Context) {
	reviewID := c.Param("review_id")

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.AppendUpdateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.AppendUpdate(ctx, userID.(string), reviewID, &req)
	if err != nil {
		switch err {
		case service.ErrReviewNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrNotReviewOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.metrics.IncUpdatesAppended()
	c.JSON(http.StatusCreated, resp)
}

// Edit performs the one-time in-place edit within the grace window
// PATCH /api/reviews/:review_id
func (h *ReviewHandler) Edit(c *gin.Context) {
	reviewID := c.Param("review_id")

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.EditReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.EditReview(ctx, userID.(string), reviewID, &req)
	if err != nil {
		switch err {
		case service.ErrReviewNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrNotReviewOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case service.ErrEditWindowClosed:
			// the client should offer "post an update" instead
			h.metrics.IncEditWindowDenied()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History returns every version of a chain, oldest first
// GET /api/reviews/:review_id/history
func (h *ReviewHandler) History(c *gin.Context) {
	reviewID := c.Param("review_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.GetReviewHistory(ctx, reviewID)
	if err != nil {
		if err == service.ErrReviewNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Respond attaches the business owner's reply to a review
// POST /api/reviews/:review_id/response
func (h *ReviewHandler) Respond(c *gin.Context) {
	reviewID := c.Param("review_id")

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.RespondReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.RespondToReview(ctx, userID.(string), reviewID, &req)
	if err != nil {
		switch err {
		case service.ErrReviewNotFound, service.ErrBusinessNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrNotBusinessOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
