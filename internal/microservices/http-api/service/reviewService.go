package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reviewhub/internal/cache"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/reviewchain"

	"gorm.io/gorm"
)

var (
	ErrBusinessNotFound  = errors.New("business not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrReviewExists      = errors.New("review already exists for this business")
	ErrNotReviewOwner    = errors.New("not the review owner")
	ErrEditWindowClosed  = errors.New("edit window closed")
	ErrNotBusinessOwner  = errors.New("not the business owner")
	ErrProofNotSubmitted = errors.New("no proof submitted for this review")
	ErrTagRequired       = errors.New("verification tag is required")
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID string, businessID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	AppendUpdate(ctx context.Context, userID, reviewID string, req *dto.AppendUpdateDTO) (*dto.ReviewResponse, error)
	EditReview(ctx context.Context, userID, reviewID string, req *dto.EditReviewDTO) (*dto.ReviewResponse, error)
	GetBusinessReviews(ctx context.Context, businessID int64, viewerID string, order reviewchain.SortOrder, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	GetReviewHistory(ctx context.Context, reviewID string) (*dto.ReviewHistoryResponse, error)
	RespondToReview(ctx context.Context, ownerID, reviewID string, req *dto.RespondReviewDTO) (*dto.ReviewResponse, error)
	SetProofVerification(ctx context.Context, reviewID string, req *dto.ProofDecisionDTO) (*dto.ReviewResponse, error)
}

type reviewService struct {
	reviewRepo   repository.ReviewRepository
	businessRepo repository.BusinessRepository
	statsCache   *cache.StatsCache
	logger       *slog.Logger
	now          func() time.Time
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	businessRepo repository.BusinessRepository,
	statsCache *cache.StatsCache,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		statsCache:   statsCache,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateReview starts a new review chain. One chain per (user, business): a
// second attempt is rejected, the client should append an update instead.
func (s *reviewService) CreateReview(ctx context.Context, userID string, businessID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	// Check if the user already started a chain for this business
	if _, err := s.reviewRepo.GetOriginal(userID, businessID); err == nil {
		return nil, ErrReviewExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		UserID:           userID,
		BusinessID:       businessID,
		Rating:           req.Rating,
		Content:          strings.TrimSpace(req.Content),
		IsProofSubmitted: req.ProofSubmitted,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	// Reload with the author preloaded for badge resolution
	created, err := s.reviewRepo.GetByID(review.ID)
	if err != nil {
		return nil, err
	}

	s.refreshBusinessStats(ctx, businessID)

	return s.toResponse(created, 0, userID), nil
}

// AppendUpdate creates a dated follow-up row on an existing chain. The
// reviewID may be any row of the chain; the update always attaches to the
// original. The update number is assigned inside the repository transaction;
// if a concurrent append wins the race we retry once with a fresh number.
func (s *reviewService) AppendUpdate(ctx context.Context, userID, reviewID string, req *dto.AppendUpdateDTO) (*dto.ReviewResponse, error) {
	original, err := s.resolveOriginal(reviewID)
	if err != nil {
		return nil, err
	}
	if original.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	update := &models.Review{
		UserID:           original.UserID,
		BusinessID:       original.BusinessID,
		ParentReviewID:   &original.ID,
		Rating:           req.Rating,
		Content:          strings.TrimSpace(req.Content),
		IsProofSubmitted: req.ProofSubmitted,
	}

	if err := s.reviewRepo.CreateUpdate(update); err != nil {
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		s.logger.Warn("update number race lost, retrying",
			"review_id", original.ID, "user_id", userID)
		update.ID = ""
		update.UpdateNumber = nil
		if err := s.reviewRepo.CreateUpdate(update); err != nil {
			return nil, err
		}
	}

	created, err := s.reviewRepo.GetByID(update.ID)
	if err != nil {
		return nil, err
	}

	s.refreshBusinessStats(ctx, original.BusinessID)

	updateCount, err := s.chainUpdateCount(original)
	if err != nil {
		return nil, err
	}
	return s.toResponse(created, updateCount, userID), nil
}

// EditReview performs the one allowed in-place edit. Author only, once, and
// only within the minute after the row was created; outside that, the caller
// gets ErrEditWindowClosed and should append an update instead.
func (s *reviewService) EditReview(ctx context.Context, userID, reviewID string, req *dto.EditReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.getReview(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	now := s.now()
	if !reviewchain.CanEdit(review, userID, now) {
		return nil, ErrEditWindowClosed
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Content != nil {
		review.Content = strings.TrimSpace(*req.Content)
	}
	// Moving UpdatedAt off CreatedAt is what consumes the edit
	review.UpdatedAt = now

	if err := s.reviewRepo.Save(review); err != nil {
		return nil, err
	}

	s.refreshBusinessStats(ctx, review.BusinessID)

	updateCount, _ := s.chainUpdateCount(review)
	return s.toResponse(review, updateCount, userID), nil
}

// GetBusinessReviews renders the listing for a business: every chain collapsed
// to its current version, badges resolved, stats aggregated, paginated.
//
// Pagination happens after chain grouping because a page of raw rows could
// split a chain across pages and show a stale version as current.
func (s *reviewService) GetBusinessReviews(ctx context.Context, businessID int64, viewerID string, order reviewchain.SortOrder, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	rows, err := s.reviewRepo.GetByBusiness(businessID)
	if err != nil {
		return nil, err
	}

	chains, anomalies := reviewchain.BuildChains(rows)
	s.reportAnomalies(anomalies)

	byKey := make(map[reviewchain.ChainKey]*reviewchain.Chain, len(chains))
	for i := range chains {
		byKey[chains[i].Key] = &chains[i]
	}

	current := reviewchain.ListCurrent(chains, order)
	stats := reviewchain.Aggregate(chains)
	total := len(current)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	data := make([]dto.ReviewResponse, 0, end-start)
	for i := start; i < end; i++ {
		r := current[i]
		updateCount := 0
		if chain, ok := byKey[reviewchain.ChainKey{UserID: r.UserID, BusinessID: r.BusinessID}]; ok {
			updateCount = len(chain.Updates)
		}
		data = append(data, *s.toResponse(&r, updateCount, viewerID))
	}

	return dto.NewPaginatedReviewResponse(data, stats, total, page, pageSize), nil
}

// GetReviewHistory returns every version of one user's chain for a business,
// oldest first. The reviewID may be any row of the chain.
func (s *reviewService) GetReviewHistory(ctx context.Context, reviewID string) (*dto.ReviewHistoryResponse, error) {
	review, err := s.getReview(reviewID)
	if err != nil {
		return nil, err
	}

	rows, err := s.reviewRepo.GetByUserAndBusiness(review.UserID, review.BusinessID)
	if err != nil {
		return nil, err
	}

	chains, anomalies := reviewchain.BuildChains(rows)
	s.reportAnomalies(anomalies)
	if len(chains) == 0 {
		return nil, ErrReviewNotFound
	}

	versions := make([]dto.ReviewVersionResponse, 0, len(chains[0].AllVersions))
	for _, v := range chains[0].AllVersions {
		versions = append(versions, dto.ReviewVersionResponse{
			ID:           v.ID,
			UpdateNumber: v.UpdateNumber,
			Rating:       v.Rating,
			Content:      v.Content,
			CreatedAt:    v.CreatedAt,
			Edited:       !v.UpdatedAt.Equal(v.CreatedAt),
		})
	}

	return &dto.ReviewHistoryResponse{
		UserID:     review.UserID,
		Username:   review.User.Username,
		BusinessID: review.BusinessID,
		Versions:   versions,
	}, nil
}

// RespondToReview attaches the business owner's reply to a review row
func (s *reviewService) RespondToReview(ctx context.Context, ownerID, reviewID string, req *dto.RespondReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.getReview(reviewID)
	if err != nil {
		return nil, err
	}

	business, err := s.businessRepo.GetByID(ctx, review.BusinessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if business.OwnerID == nil || *business.OwnerID != ownerID {
		return nil, ErrNotBusinessOwner
	}

	now := s.now()
	response := strings.TrimSpace(req.Response)
	review.BusinessResponse = &response
	review.BusinessResponseAt = &now

	// Column-limited write: a reply must not move the row's UpdatedAt, which
	// would fake an edit and burn the author's edit window.
	if err := s.reviewRepo.SetBusinessResponse(review); err != nil {
		return nil, err
	}

	updateCount, _ := s.chainUpdateCount(review)
	return s.toResponse(review, updateCount, ownerID), nil
}

// SetProofVerification records the moderation outcome for a submitted proof.
// Approval requires a tag; an approved proof without a tag would leave the
// badge resolver nothing to display.
func (s *reviewService) SetProofVerification(ctx context.Context, reviewID string, req *dto.ProofDecisionDTO) (*dto.ReviewResponse, error) {
	review, err := s.getReview(reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsProofSubmitted {
		return nil, ErrProofNotSubmitted
	}

	if req.Verified {
		if req.Tag == nil || strings.TrimSpace(*req.Tag) == "" {
			return nil, ErrTagRequired
		}
		tag := strings.TrimSpace(*req.Tag)
		review.CustomVerificationTag = &tag
	} else {
		review.CustomVerificationTag = nil
	}
	verified := req.Verified
	review.ProofVerified = &verified

	if err := s.reviewRepo.SetProofDecision(review); err != nil {
		return nil, err
	}

	updateCount, _ := s.chainUpdateCount(review)
	return s.toResponse(review, updateCount, ""), nil
}

// getReview loads a single row, mapping the gorm not-found to our sentinel
func (s *reviewService) getReview(reviewID string) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// resolveOriginal walks from any chain row to the chain's original row
func (s *reviewService) resolveOriginal(reviewID string) (*models.Review, error) {
	review, err := s.getReview(reviewID)
	if err != nil {
		return nil, err
	}
	if review.IsOriginal() {
		return review, nil
	}
	return s.getReview(*review.ParentReviewID)
}

func (s *reviewService) chainUpdateCount(original *models.Review) (int, error) {
	rows, err := s.reviewRepo.GetByUserAndBusiness(original.UserID, original.BusinessID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range rows {
		if !r.IsOriginal() {
			count++
		}
	}
	return count, nil
}

// refreshBusinessStats recomputes the denormalized listing stats from the
// chains after a review write. Best-effort: a failure here is logged, the
// review write itself already succeeded.
func (s *reviewService) refreshBusinessStats(ctx context.Context, businessID int64) {
	rows, err := s.reviewRepo.GetByBusiness(businessID)
	if err != nil {
		s.logger.Error("failed to load reviews for stats refresh",
			"business_id", businessID, "error", err)
		return
	}

	chains, anomalies := reviewchain.BuildChains(rows)
	s.reportAnomalies(anomalies)
	stats := reviewchain.Aggregate(chains)

	if err := s.businessRepo.UpdateStats(ctx, businessID, stats.AverageRating, stats.ReviewCount); err != nil {
		s.logger.Error("failed to write business stats",
			"business_id", businessID, "error", err)
		return
	}
	if err := s.statsCache.Invalidate(ctx, businessID); err != nil {
		s.logger.Warn("failed to invalidate stats cache",
			"business_id", businessID, "error", err)
	}
}

func (s *reviewService) reportAnomalies(anomalies []reviewchain.Anomaly) {
	for _, a := range anomalies {
		s.logger.Warn("review chain anomaly",
			"kind", a.Kind,
			"user_id", a.Key.UserID,
			"business_id", a.Key.BusinessID,
			"review_ids", a.ReviewIDs)
	}
}

func (s *reviewService) toResponse(r *models.Review, updateCount int, viewerID string) *dto.ReviewResponse {
	now := s.now()
	badge := reviewchain.ResolveBadge(r, &r.User)
	canEdit := viewerID != "" && reviewchain.CanEdit(r, viewerID, now)
	notice := viewerID == r.UserID && !canEdit && reviewchain.ShowEditExpiredNotice(r, viewerID, now)
	return dto.FromModelToReviewResponse(r, badge, updateCount, canEdit, notice)
}
