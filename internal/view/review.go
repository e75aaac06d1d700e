package view

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"campus-reveal-backend/internal/model"
)

var (
	// ErrRatingRequired blocks a submission made before any star is chosen.
	ErrRatingRequired = errors.New("please select a rating before submitting your review")
	// ErrInvalidRating rejects a star count outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// ReviewSource loads a college with its reviews and accepts new ones.
type ReviewSource interface {
	GetCollege(ctx context.Context, id string) (*model.College, error)
	ListReviews(ctx context.Context, collegeID string) ([]model.Review, error)
	AddReview(ctx context.Context, collegeID, text string, rating int) (*model.Review, error)
}

// ReviewView is the detail screen of one college: its record, its reviews
// and the review being drafted.
type ReviewView struct {
	src       ReviewSource
	collegeID string
	log       *zap.SugaredLogger

	mu      sync.Mutex
	token   uint64
	college Fetch[*model.College]
	reviews Fetch[[]model.Review]
	text    string
	rating  int

	// submitted holds reviews posted from this view; an activation that
	// started before a post finished may not see them in its fetch.
	submitted []model.Review
}

// NewReviewView creates the view for collegeID.
func NewReviewView(src ReviewSource, collegeID string, log *zap.SugaredLogger) *ReviewView {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ReviewView{src: src, collegeID: collegeID, log: log}
}

// Activate loads the college and its reviews concurrently. A failed college
// load fails the view; a failed review load only leaves the list empty.
func (v *ReviewView) Activate(ctx context.Context) error {
	v.mu.Lock()
	v.token++
	token := v.token
	v.college = Fetch[*model.College]{Loading: true}
	v.reviews = Fetch[[]model.Review]{Loading: true}
	v.mu.Unlock()

	var (
		college    *model.College
		reviews    []model.Review
		reviewsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		college, err = v.src.GetCollege(gctx, v.collegeID)
		return err
	})
	g.Go(func() error {
		reviews, reviewsErr = v.src.ListReviews(gctx, v.collegeID)
		return nil
	})
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.token {
		return ErrSuperseded
	}
	if reviewsErr != nil {
		v.log.Warnw("error fetching reviews", "college", v.collegeID, "err", reviewsErr)
		reviews = nil
	}
	v.college = Fetch[*model.College]{Data: college, Err: err}
	v.reviews = Fetch[[]model.Review]{Data: mergeSubmitted(reviews, v.submitted), Err: reviewsErr}
	return err
}

// mergeSubmitted appends the submitted reviews that fetched lacks.
func mergeSubmitted(fetched, submitted []model.Review) []model.Review {
	if len(submitted) == 0 {
		return fetched
	}
	fetched = slices.Clip(fetched)
	seen := make(map[string]struct{}, len(fetched))
	for _, r := range fetched {
		seen[r.ID] = struct{}{}
	}
	for _, r := range submitted {
		if _, ok := seen[r.ID]; !ok {
			fetched = append(fetched, r)
		}
	}
	return fetched
}

// College returns the college fetch state.
func (v *ReviewView) College() Fetch[*model.College] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.college
}

// Reviews returns the review list fetch state.
func (v *ReviewView) Reviews() Fetch[[]model.Review] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reviews
}

// SetText replaces the draft review text.
func (v *ReviewView) SetText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.text = text
}

// SetRating selects n stars.
func (v *ReviewView) SetRating(n int) error {
	if n < model.MinRating || n > model.MaxRating {
		return ErrInvalidRating
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rating = n
	return nil
}

// Draft returns the text and rating not yet submitted.
func (v *ReviewView) Draft() (string, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text, v.rating
}

// Submit posts the draft. On success the stored review is appended to the
// list and the draft cleared; on failure the draft is kept. The review also
// survives an activation that was already in flight when it was posted.
func (v *ReviewView) Submit(ctx context.Context) (*model.Review, error) {
	v.mu.Lock()
	text, rating := v.text, v.rating
	v.mu.Unlock()

	if rating == 0 {
		return nil, ErrRatingRequired
	}

	review, err := v.src.AddReview(ctx, v.collegeID, text, rating)
	if err != nil {
		v.log.Errorw("error adding review", "college", v.collegeID, "err", err)
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitted = append(v.submitted, *review)
	v.reviews.Data = append(v.reviews.Data, *review)
	v.text = ""
	v.rating = 0
	return review, nil
}

// Stars renders rating out of five as filled and empty stars.
func Stars(rating int) string {
	rating = min(max(rating, 0), model.MaxRating)
	return strings.Repeat("★", rating) + strings.Repeat("☆", model.MaxRating-rating)
}
