package tiktok

import (
	"context"

	"premise_fetcher/internal/domain"
)

// VideoLister produces the videos of a profile. The profile grid is rendered
// client side, so listing needs either a browser or simulated data.
type VideoLister interface {
	List(ctx context.Context, handle, sort string, limit int) ([]domain.RawItem, error)
}
