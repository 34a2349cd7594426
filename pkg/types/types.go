// Package domain defines the core business types for the loupe deal hunter.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ItemType represents the task's listing category.
type ItemType string

// Item type constants.
const (
	ItemJewelry  ItemType = "jewelry"
	ItemWatch    ItemType = "watch"
	ItemGemstone ItemType = "gemstone"
)

// TaskStatus represents the lifecycle state of a search task.
type TaskStatus string

// Task status constants. Only active tasks are polled.
const (
	TaskActive  TaskStatus = "active"
	TaskPaused  TaskStatus = "paused"
	TaskStopped TaskStatus = "stopped"
)

// MatchStatus represents the review state of a persisted match.
type MatchStatus string

// Match status constants.
const (
	MatchNew       MatchStatus = "new"
	MatchPurchased MatchStatus = "purchased"
	MatchRejected  MatchStatus = "rejected"
	MatchWatching  MatchStatus = "watching"
	MatchReviewing MatchStatus = "reviewing"
)

// ShippingType classifies how a listing's shipping cost was quoted.
type ShippingType string

// Shipping type constants.
const (
	ShippingFree       ShippingType = "free"
	ShippingFixed      ShippingType = "fixed"
	ShippingCalculated ShippingType = "calculated"
	ShippingUnknown    ShippingType = "unknown"
)

// CredentialStatus represents the state of a marketplace API credential.
type CredentialStatus string

// Credential status constants.
const (
	CredentialActive      CredentialStatus = "active"
	CredentialRateLimited CredentialStatus = "rate_limited"
	CredentialError       CredentialStatus = "error"
)

// RotationStrategy selects how the credential pool picks the next credential.
type RotationStrategy string

// Rotation strategy constants.
const (
	RotateRoundRobin RotationStrategy = "round_robin"
	RotateLeastUsed  RotationStrategy = "least_used"
)

// Task represents a user-defined marketplace search with per-type filters.
type Task struct {
	ID     string     `json:"id"        db:"id"`
	UserID string     `json:"user_id"   db:"user_id"`
	Name   string     `json:"name"      db:"name"      validate:"required"`
	Type   ItemType   `json:"item_type" db:"item_type" validate:"required,oneof=jewelry watch gemstone"`
	Status TaskStatus `json:"status"    db:"status"    validate:"required,oneof=active paused stopped"`

	// Common gates
	MinPrice          *float64 `json:"min_price,omitempty"     db:"min_price"`
	MaxPrice          *float64 `json:"max_price,omitempty"     db:"max_price"`
	MinSellerFeedback int      `json:"min_seller_feedback"     db:"min_seller_feedback"`
	ExcludeKeywords   []string `json:"exclude_keywords"        db:"exclude_keywords"`
	ListingFormats    []string `json:"listing_format"          db:"listing_format"`
	Conditions        []string `json:"conditions"              db:"conditions"`
	ItemLocation      string   `json:"item_location,omitempty" db:"item_location"`

	// Exactly one filter bag is populated, matching Type.
	JewelryFilters  *JewelryFilters  `json:"jewelry_filters,omitempty"  db:"jewelry_filters"`
	WatchFilters    *WatchFilters    `json:"watch_filters,omitempty"    db:"watch_filters"`
	GemstoneFilters *GemstoneFilters `json:"gemstone_filters,omitempty" db:"gemstone_filters"`

	PollInterval    int      `json:"poll_interval"               db:"poll_interval" validate:"min=1,max=3600"`
	MinProfitMargin *float64 `json:"min_profit_margin,omitempty" db:"min_profit_margin"`

	// Notification routing, written back by the channel provisioner.
	SlackChannel   string `json:"slack_channel,omitempty"    db:"slack_channel"`
	SlackChannelID string `json:"slack_channel_id,omitempty" db:"slack_channel_id"`

	LastRun   *time.Time `json:"last_run,omitempty" db:"last_run"`
	CreatedAt time.Time  `json:"created_at"         db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"         db:"updated_at"`
}

var validate = validator.New()

// Validate checks struct tags and the filter-bag invariant: exactly one of
// the three filter bags is set and it matches the task's item type.
func (t *Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}

	bags := 0
	if t.JewelryFilters != nil {
		bags++
	}
	if t.WatchFilters != nil {
		bags++
	}
	if t.GemstoneFilters != nil {
		bags++
	}
	if bags != 1 {
		return fmt.Errorf("task %s: expected exactly one filter bag, got %d", t.ID, bags)
	}

	switch t.Type {
	case ItemJewelry:
		if t.JewelryFilters == nil {
			return fmt.Errorf("task %s: item_type jewelry without jewelry_filters", t.ID)
		}
	case ItemWatch:
		if t.WatchFilters == nil {
			return fmt.Errorf("task %s: item_type watch without watch_filters", t.ID)
		}
	case ItemGemstone:
		if t.GemstoneFilters == nil {
			return fmt.Errorf("task %s: item_type gemstone without gemstone_filters", t.ID)
		}
	}
	return nil
}

// EffectiveMinMargin resolves the profit-margin floor for jewelry
// classification: task value, then filter value, then -50, never below -50.
func (t *Task) EffectiveMinMargin() float64 {
	margin := -50.0
	switch {
	case t.MinProfitMargin != nil:
		margin = *t.MinProfitMargin
	case t.JewelryFilters != nil && t.JewelryFilters.MinProfitMargin != nil:
		margin = *t.JewelryFilters.MinProfitMargin
	}
	if margin < -50 {
		margin = -50
	}
	return margin
}

// JewelryFilters is the jewelry-specific filter bag.
type JewelryFilters struct {
	Metal                 []string `json:"metal,omitempty"`
	Conditions            []string `json:"conditions,omitempty"`
	Categories            []string `json:"categories,omitempty"`
	Brands                []string `json:"brands,omitempty"`
	MainStones            []string `json:"main_stones,omitempty"`
	MetalPurity           []string `json:"metal_purity,omitempty"`
	SettingStyle          []string `json:"setting_style,omitempty"`
	Era                   []string `json:"era,omitempty"`
	Features              []string `json:"features,omitempty"`
	Colors                []string `json:"colors,omitempty"`
	StoneColors           []string `json:"stone_colors,omitempty"`
	Materials             []string `json:"materials,omitempty"`
	Styles                []string `json:"styles,omitempty"`
	WeightMin             *float64 `json:"weight_min,omitempty"`
	WeightMax             *float64 `json:"weight_max,omitempty"`
	CaratWeightMin        *float64 `json:"carat_weight_min,omitempty"`
	CaratWeightMax        *float64 `json:"carat_weight_max,omitempty"`
	Keywords              string   `json:"keywords,omitempty"`
	NoStone               *bool    `json:"no_stone,omitempty"`
	SelectedSubcategories []int    `json:"selected_subcategories,omitempty"`
	MinProfitMargin       *float64 `json:"min_profit_margin,omitempty"`
}

// NoStoneEnabled reports whether stone-bearing listings should be rejected.
// The filter defaults to true when unset.
func (f *JewelryFilters) NoStoneEnabled() bool {
	return f == nil || f.NoStone == nil || *f.NoStone
}

// WantsSilver reports whether any selected metal is a silver variant.
func (f *JewelryFilters) WantsSilver() bool {
	if f == nil {
		return false
	}
	for _, m := range f.Metal {
		if strings.Contains(strings.ToLower(m), "silver") {
			return true
		}
	}
	return false
}

// GemstoneFilters is the gemstone-specific filter bag.
type GemstoneFilters struct {
	StoneTypes       []string `json:"stone_types,omitempty"`
	GemstoneCreation []string `json:"gemstone_creation,omitempty"`
	Colors           []string `json:"colors,omitempty"`
	Shapes           []string `json:"shapes,omitempty"`
	Clarities        []string `json:"clarities,omitempty"`
	Treatments       []string `json:"treatments,omitempty"`
	Conditions       []string `json:"conditions,omitempty"`
	Brands           []string `json:"brands,omitempty"`
	CaratMin         *float64 `json:"carat_min,omitempty"`
	CaratMax         *float64 `json:"carat_max,omitempty"`
	Certifications   []string `json:"certifications,omitempty"`
	AllowLabCreated  bool     `json:"allow_lab_created,omitempty"`
	IncludeJewelry   bool     `json:"include_jewelry,omitempty"`
	MinDealScore     *int     `json:"min_deal_score,omitempty"`
	MaxRiskScore     *int     `json:"max_risk_score,omitempty"`
	Keywords         string   `json:"keywords,omitempty"`
}

// WatchFilters is the watch-specific filter bag.
type WatchFilters struct {
	Brands            []string `json:"brands,omitempty"`
	Models            []string `json:"models,omitempty"`
	Movements         []string `json:"movements,omitempty"`
	CaseMaterials     []string `json:"case_materials,omitempty"`
	BezelMaterials    []string `json:"bezel_materials,omitempty"`
	DialColors        []string `json:"dial_colors,omitempty"`
	BandMaterials     []string `json:"band_materials,omitempty"`
	YearFrom          *int     `json:"year_from,omitempty"`
	YearTo            *int     `json:"year_to,omitempty"`
	CaseSizeMin       *float64 `json:"case_size_min,omitempty"`
	CaseSizeMax       *float64 `json:"case_size_max,omitempty"`
	ThicknessMin      *float64 `json:"thickness_min,omitempty"`
	ThicknessMax      *float64 `json:"thickness_max,omitempty"`
	LugWidthMin       *float64 `json:"lug_width_min,omitempty"`
	LugWidthMax       *float64 `json:"lug_width_max,omitempty"`
	ReferenceNumber   string   `json:"reference_number,omitempty"`
	Chrono24Reference string   `json:"chrono24_reference,omitempty"`
	ReferenceMargin   *float64 `json:"reference_margin,omitempty"`
	Keywords          string   `json:"keywords,omitempty"`
}

// Credential is one marketplace API key pair managed by the pool.
type Credential struct {
	Label         string           `json:"label"`
	AppID         string           `json:"app_id"`
	CertID        string           `json:"cert_id"`
	Status        CredentialStatus `json:"status"`
	RateLimitedAt *time.Time       `json:"rate_limited_at,omitempty"`
	CallsToday    int              `json:"calls_today"`
	LastUsed      *time.Time       `json:"last_used,omitempty"`
}

// CredentialSettings is the JSON document stored under the "ebay_keys" setting.
type CredentialSettings struct {
	Keys             []Credential     `json:"keys"`
	RotationStrategy RotationStrategy `json:"rotation_strategy,omitempty"`
}

// Seller identifies the listing's seller with feedback stats.
type Seller struct {
	Username           string  `json:"username"`
	FeedbackScore      int     `json:"feedbackScore"`
	FeedbackPercentage float64 `json:"feedbackPercentage"`
}

// ListingSummary is one row of a search-adapter result page.
type ListingSummary struct {
	ItemID           string       `json:"itemId"`
	Title            string       `json:"title"`
	Price            float64      `json:"price"`
	Currency         string       `json:"currency"`
	ShippingCost     *float64     `json:"shippingCost,omitempty"`
	ShippingType     ShippingType `json:"shippingType"`
	Condition        string       `json:"condition,omitempty"`
	ListingURL       string       `json:"listingUrl"`
	ListingType      string       `json:"listingType"`
	Seller           Seller       `json:"sellerInfo"`
	BuyingOptions    []string     `json:"buyingOptions,omitempty"`
	ItemCreationDate *time.Time   `json:"itemCreationDate,omitempty"`
	CategoryID       string       `json:"categoryId,omitempty"`
}

// TotalCost returns price plus shipping when the shipping cost is known.
func (s *ListingSummary) TotalCost() float64 {
	if s.ShippingCost != nil {
		return s.Price + *s.ShippingCost
	}
	return s.Price
}

// ListingDetail is the normalized item detail used by the pipelines.
// Aspects are keyed by lowercased aspect name.
type ListingDetail struct {
	ItemID          string            `json:"itemId"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Aspects         map[string]string `json:"aspects"`
	CategoryID      string            `json:"categoryId"`
	ReturnsAccepted *bool             `json:"returnsAccepted,omitempty"`
	ShippingCost    *float64          `json:"shippingCost,omitempty"`
	ShippingType    ShippingType      `json:"shippingType,omitempty"`
}

// Aspect returns the value for a lowercased aspect name.
func (d *ListingDetail) Aspect(name string) (string, bool) {
	if d == nil || d.Aspects == nil {
		return "", false
	}
	v, ok := d.Aspects[name]
	return v, ok
}

// Match holds the columns shared by all three match tables.
type Match struct {
	ID               int64       `json:"id"                            db:"id"`
	TaskID           string      `json:"task_id"                       db:"task_id"`
	UserID           string      `json:"user_id"                       db:"user_id"`
	EbayListingID    string      `json:"ebay_listing_id"               db:"ebay_listing_id"`
	EbayTitle        string      `json:"ebay_title"                    db:"ebay_title"`
	EbayURL          string      `json:"ebay_url"                      db:"ebay_url"`
	ListedPrice      float64     `json:"listed_price"                  db:"listed_price"`
	ShippingCost     *float64    `json:"shipping_cost,omitempty"       db:"shipping_cost"`
	Currency         string      `json:"currency"                      db:"currency"`
	BuyFormat        string      `json:"buy_format"                    db:"buy_format"`
	SellerFeedback   int         `json:"seller_feedback"               db:"seller_feedback"`
	FoundAt          time.Time   `json:"found_at"                      db:"found_at"`
	ItemCreated      *time.Time  `json:"item_creation_date,omitempty"  db:"item_creation_date"`
	Status           MatchStatus `json:"status"                        db:"status"`
	NotificationSent bool        `json:"notification_sent"             db:"notification_sent"`
	SlackMessageTS   *string     `json:"slack_message_ts,omitempty"    db:"slack_message_ts"`
	SlackChannelID   *string     `json:"slack_channel_id,omitempty"    db:"slack_channel_id"`

	// Joined from tasks for notification routing; not a match column.
	TaskChannel string `json:"-" db:"task_slack_channel"`
}

// TotalCost returns listed price plus shipping when known.
func (m *Match) TotalCost() float64 {
	if m.ShippingCost != nil {
		return m.ListedPrice + *m.ShippingCost
	}
	return m.ListedPrice
}

// JewelryMatch is a persisted jewelry hit with scrap economics.
type JewelryMatch struct {
	Match

	Karat          *int     `json:"karat,omitempty"           db:"karat"`
	WeightGrams    *float64 `json:"weight_g,omitempty"        db:"weight_g"`
	MetalType      string   `json:"metal_type,omitempty"      db:"metal_type"`
	MeltValue      *float64 `json:"melt_value,omitempty"      db:"melt_value"`
	ProfitScrap    *float64 `json:"profit_scrap,omitempty"    db:"profit_scrap"`
	BreakEven      *float64 `json:"break_even,omitempty"      db:"break_even"`
	SuggestedOffer *float64 `json:"suggested_offer,omitempty" db:"suggested_offer"`
}

// GemstoneMatch is a persisted gemstone hit with deal/risk scores.
type GemstoneMatch struct {
	Match

	StoneType string   `json:"stone_type,omitempty" db:"stone_type"`
	Shape     string   `json:"shape,omitempty"      db:"shape"`
	Carat     *float64 `json:"carat,omitempty"      db:"carat"`
	Colour    string   `json:"colour,omitempty"     db:"colour"`
	Clarity   string   `json:"clarity,omitempty"    db:"clarity"`
	CertLab   string   `json:"cert_lab,omitempty"   db:"cert_lab"`
	Treatment string   `json:"treatment,omitempty"  db:"treatment"`
	IsNatural bool     `json:"is_natural"           db:"is_natural"`
	DealScore int      `json:"deal_score"           db:"deal_score"`
	RiskScore int      `json:"risk_score"           db:"risk_score"`
}

// WatchMatch is a persisted watch hit with captured attributes.
type WatchMatch struct {
	Match

	CaseMaterial string `json:"case_material,omitempty" db:"case_material"`
	BandMaterial string `json:"band_material,omitempty" db:"band_material"`
	Movement     string `json:"movement,omitempty"      db:"movement"`
	DialColor    string `json:"dial_color,omitempty"    db:"dial_color"`
	Year         *int   `json:"year,omitempty"          db:"year"`
	Brand        string `json:"brand,omitempty"         db:"brand"`
	Model        string `json:"model,omitempty"         db:"model"`
}

// RejectedItem is one reject-cache row; reprocessing is skipped until expiry.
type RejectedItem struct {
	TaskID          string    `json:"task_id"          db:"task_id"`
	EbayListingID   string    `json:"ebay_listing_id"  db:"ebay_listing_id"`
	RejectionReason string    `json:"rejection_reason" db:"rejection_reason"`
	RejectedAt      time.Time `json:"rejected_at"      db:"rejected_at"`
	ExpiresAt       time.Time `json:"expires_at"       db:"expires_at"`
}

// CachedItem is one detail-cache row. Shipping is never cached.
type CachedItem struct {
	EbayItemID  string            `json:"ebay_item_id"   db:"ebay_item_id"`
	Aspects     map[string]string `json:"item_specifics" db:"item_specifics"`
	Title       string            `json:"title"          db:"title"`
	Description string            `json:"description"    db:"description"`
	CategoryID  string            `json:"category_id"    db:"category_id"`
	FetchedAt   time.Time         `json:"fetched_at"     db:"fetched_at"`
	ExpiresAt   time.Time         `json:"expires_at"     db:"expires_at"`
}

// MetalPrice holds per-gram spot prices for one metal. Non-gold metals carry
// their pure per-gram price in PriceGram24K.
type MetalPrice struct {
	Metal        string    `json:"metal"          db:"metal"`
	PriceGram10K float64   `json:"price_gram_10k" db:"price_gram_10k"`
	PriceGram14K float64   `json:"price_gram_14k" db:"price_gram_14k"`
	PriceGram18K float64   `json:"price_gram_18k" db:"price_gram_18k"`
	PriceGram24K float64   `json:"price_gram_24k" db:"price_gram_24k"`
	UpdatedAt    time.Time `json:"updated_at"     db:"updated_at"`
}

// HealthMetric is one per-cycle worker health row.
type HealthMetric struct {
	CycleTimestamp  time.Time `json:"cycle_timestamp"   db:"cycle_timestamp"`
	CycleDurationMS int64     `json:"cycle_duration_ms" db:"cycle_duration_ms"`
	TasksProcessed  int       `json:"tasks_processed"   db:"tasks_processed"`
	TasksFailed     int       `json:"tasks_failed"      db:"tasks_failed"`
	TotalItemsFound int       `json:"total_items_found" db:"total_items_found"`
	TotalMatches    int       `json:"total_matches"     db:"total_matches"`
	TotalExcluded   int       `json:"total_excluded"    db:"total_excluded"`
	MemoryUsageMB   float64   `json:"memory_usage_mb"   db:"memory_usage_mb"`
}

// SendResult reports the outcome of a notification attempt. A failed post is
// not an error; the match row simply stays unsent.
type SendResult struct {
	OK        bool   `json:"ok"`
	MessageTS string `json:"message_ts,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}
