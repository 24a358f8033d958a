package service

import (
	"context"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

// RatingService scores users by how reliably they repay.
type RatingService struct {
	store storage.Store
}

// NewRatingService creates a new RatingService.
func NewRatingService(store storage.Store) *RatingService {
	return &RatingService{store: store}
}

// UserRating returns completed borrower debts over all borrower debts as a
// percentage. A user with no borrower debts scores 100.
func (s *RatingService) UserRating(ctx context.Context, userID string) (float64, error) {
	debts, err := s.store.ListBorrowerDebts(ctx, userID)
	if err != nil {
		return 0, err
	}
	return rating(debts), nil
}

// GroupRatings returns the rating of every group member, computed over
// their borrower debts across all groups.
func (s *RatingService) GroupRatings(ctx context.Context, groupID string) (map[string]float64, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ratings := make(map[string]float64, len(group.Members))
	for _, userID := range group.Members {
		score, err := s.UserRating(ctx, userID)
		if err != nil {
			return nil, err
		}
		ratings[userID] = score
	}
	return ratings, nil
}

func rating(debts []*models.Debt) float64 {
	approved, completed := 0, 0
	for _, debt := range debts {
		if !debt.Approved {
			continue
		}
		approved++
		if debt.Completed {
			completed++
		}
	}
	if approved == 0 {
		return 100
	}
	return float64(completed) / float64(approved) * 100
}
