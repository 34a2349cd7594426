// Package pipeline classifies marketplace listings against task filters.
//
// Each item type runs an ordered rule chain; the first rejection wins and
// carries a human-readable reason for the reject cache. Listings from the
// configured test seller bypass every rejection rule but still run extraction
// and produce a match draft.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/loupelabs/loupe/internal/metrics"
	"github.com/loupelabs/loupe/pkg/extract"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// Detailer fetches normalized listing details, returning (nil, nil) when the
// marketplace degrades.
type Detailer interface {
	Fetch(ctx context.Context, itemID string, includeShipping bool) (*domain.ListingDetail, error)
}

// MatchChecker is the store subset backing the duplicate gates.
type MatchChecker interface {
	JewelryMatchExists(ctx context.Context, taskID, listingID string) (bool, error)
	GemstoneMatchExists(ctx context.Context, taskID, listingID string) (bool, error)
	WatchMatchExists(ctx context.Context, taskID, listingID string) (bool, error)
}

// Input is one listing to classify together with its task context. Rejected
// is the task's preloaded reject-cache id set; Prices carries current spot
// prices keyed by lowercased metal name (jewelry only).
type Input struct {
	Task     *domain.Task
	Listing  *domain.ListingSummary
	Rejected map[string]struct{}
	Prices   map[string]domain.MetalPrice
}

// Outcome is the classification result. Exactly one of the match drafts is
// set when Accepted. Skip means the listing was already handled (cached
// rejection or existing match) and must produce neither a reject-cache row
// nor a notification.
type Outcome struct {
	Accepted bool
	Skip     bool
	Bypass   bool

	// Rejection details, set when !Accepted && !Skip.
	Reason string
	Stage  string

	Jewelry  *domain.JewelryMatch
	Gemstone *domain.GemstoneMatch
	Watch    *domain.WatchMatch
}

// Pipeline evaluates listings for all three item types.
type Pipeline struct {
	details    Detailer
	matches    MatchChecker
	testSeller string
	log        *slog.Logger
	nowFunc    func() time.Time
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithTestSeller sets the seller username whose listings bypass rejection.
func WithTestSeller(username string) Option {
	return func(p *Pipeline) {
		p.testSeller = username
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(fn func() time.Time) Option {
	return func(p *Pipeline) {
		p.nowFunc = fn
	}
}

// New creates a Pipeline with injected dependencies.
func New(details Detailer, matches MatchChecker, opts ...Option) *Pipeline {
	p := &Pipeline{
		details: details,
		matches: matches,
		log:     slog.Default(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classify runs the rule chain for the task's item type. Errors are reserved
// for infrastructure failures (store errors, daily API limit) and malformed
// tasks; every domain decision comes back as an Outcome. The chains deref
// their filter bag freely, so a task missing its bag is refused here.
func (p *Pipeline) Classify(ctx context.Context, in Input) (*Outcome, error) {
	switch in.Task.Type {
	case domain.ItemJewelry:
		if in.Task.JewelryFilters == nil {
			return nil, fmt.Errorf("classify: task %s has no jewelry filters", in.Task.ID)
		}
		return p.classifyJewelry(ctx, in)
	case domain.ItemGemstone:
		if in.Task.GemstoneFilters == nil {
			return nil, fmt.Errorf("classify: task %s has no gemstone filters", in.Task.ID)
		}
		return p.classifyGemstone(ctx, in)
	case domain.ItemWatch:
		if in.Task.WatchFilters == nil {
			return nil, fmt.Errorf("classify: task %s has no watch filters", in.Task.ID)
		}
		return p.classifyWatch(ctx, in)
	default:
		return nil, fmt.Errorf("classify: unknown item type %q", in.Task.Type)
	}
}

// reject records the rejection metric and builds a rejection outcome.
func (p *Pipeline) reject(itemType domain.ItemType, stage, reason string) *Outcome {
	metrics.RejectionsTotal.WithLabelValues(string(itemType), stage).Inc()
	return &Outcome{Reason: reason, Stage: stage}
}

// isBypass reports whether the listing's seller is the configured test seller.
func (p *Pipeline) isBypass(l *domain.ListingSummary) bool {
	return p.testSeller != "" && strings.EqualFold(l.Seller.Username, p.testSeller)
}

// commonPrefix runs the rules shared by all chains. A non-nil outcome ends
// classification; bypass listings only short-circuit on nothing.
func (p *Pipeline) commonPrefix(in Input, bypass bool) *Outcome {
	if bypass {
		return nil
	}

	t, l := in.Task, in.Listing

	if _, ok := in.Rejected[l.ItemID]; ok {
		return &Outcome{Skip: true}
	}

	title := strings.ToLower(l.Title)
	for _, kw := range t.ExcludeKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(title, kw) {
			return p.reject(t.Type, "keywords", fmt.Sprintf("Excluded keyword %q", kw))
		}
	}

	if len(t.Conditions) > 0 && l.Condition != "" {
		if !conditionAllowed(l.Condition, t.Conditions) {
			return p.reject(t.Type, "condition", fmt.Sprintf("Condition %q not in whitelist", l.Condition))
		}
	}

	// Price gates use the raw listed price; shipping is not known for every
	// listing until the detail fetch.
	if t.MinPrice != nil && l.Price < *t.MinPrice {
		return p.reject(t.Type, "price", fmt.Sprintf("Price $%.2f below minimum $%.2f", l.Price, *t.MinPrice))
	}
	if t.MaxPrice != nil && l.Price > *t.MaxPrice {
		return p.reject(t.Type, "price", fmt.Sprintf("Price $%.2f above maximum $%.2f", l.Price, *t.MaxPrice))
	}

	return nil
}

// conditionAllowed compares the listing condition against the whitelist,
// normalizing marketplace aliases on both sides.
func conditionAllowed(raw string, whitelist []string) bool {
	canon, ok := extract.NormalizeCondition(raw)
	if !ok {
		canon = strings.ToLower(strings.TrimSpace(raw))
	}
	for _, w := range whitelist {
		wc, ok := extract.NormalizeCondition(w)
		if !ok {
			wc = strings.ToLower(strings.TrimSpace(w))
		}
		if strings.EqualFold(canon, wc) {
			return true
		}
	}
	return false
}

// baseMatch builds the shared match columns from the listing summary.
func baseMatch(t *domain.Task, l *domain.ListingSummary) domain.Match {
	return domain.Match{
		TaskID:         t.ID,
		UserID:         t.UserID,
		EbayListingID:  l.ItemID,
		EbayTitle:      l.Title,
		EbayURL:        l.ListingURL,
		ListedPrice:    l.Price,
		ShippingCost:   l.ShippingCost,
		Currency:       orDefault(l.Currency, "USD"),
		BuyFormat:      dominantFormat(l),
		SellerFeedback: l.Seller.FeedbackScore,
		ItemCreated:    l.ItemCreationDate,
		Status:         domain.MatchNew,
	}
}

// dominantFormat picks the buying option used for persistence and scoring.
// Best-offer listings are the most negotiable, so that option wins when
// present.
func dominantFormat(l *domain.ListingSummary) string {
	preference := []string{"BEST_OFFER", "FIXED_PRICE", "AUCTION"}
	for _, want := range preference {
		for _, opt := range l.BuyingOptions {
			if opt == want {
				return want
			}
		}
	}
	if len(l.BuyingOptions) > 0 {
		return l.BuyingOptions[0]
	}
	return l.ListingType
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// lowerAspect returns the lowercased value of a listing detail aspect.
func lowerAspect(d *domain.ListingDetail, name string) (string, bool) {
	v, ok := d.Aspect(name)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(v)), true
}
