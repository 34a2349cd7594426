package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/loupelabs/loupe/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if cfg.MaxConns == 0 {
		cfg.MaxConns = defaultPoolSize
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Pool exposes the underlying connection pool for ops tooling and test setup.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// ListActiveTasks returns every task eligible for polling.
func (s *PostgresStore) ListActiveTasks(ctx context.Context) ([]domain.Task, error) {
	return s.queryTasks(ctx, queryListActiveTasks)
}

// GetTask retrieves a task by its ID.
func (s *PostgresStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t := &domain.Task{}
	if err := scanTask(s.pool.QueryRow(ctx, queryGetTask, id), t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns tasks for the ops API, oldest first.
func (s *PostgresStore) ListTasks(ctx context.Context, limit, offset int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.queryTasks(ctx, queryListTasks, limit, max(offset, 0))
}

// UpdateTaskChannel persists the provisioned notification channel on a task.
func (s *PostgresStore) UpdateTaskChannel(ctx context.Context, id, channel, channelID string) error {
	_, err := s.pool.Exec(ctx, queryUpdateTaskChannel, id, channel, channelID)
	if err != nil {
		return fmt.Errorf("updating task channel: %w", err)
	}
	return nil
}

// TouchTaskLastRun sets the last_run timestamp for a task.
func (s *PostgresStore) TouchTaskLastRun(ctx context.Context, id string, t time.Time) error {
	_, err := s.pool.Exec(ctx, queryTouchTaskLastRun, id, t)
	if err != nil {
		return fmt.Errorf("touching task last_run: %w", err)
	}
	return nil
}

// JewelryMatchExists reports whether a jewelry match row exists for the pair.
func (s *PostgresStore) JewelryMatchExists(ctx context.Context, taskID, listingID string) (bool, error) {
	return s.exists(ctx, queryJewelryMatchExists, taskID, listingID)
}

// InsertJewelryMatch inserts a jewelry match. Returns false without error when
// the (task, listing) pair already exists.
func (s *PostgresStore) InsertJewelryMatch(ctx context.Context, m *domain.JewelryMatch) (bool, error) {
	args := matchArgs(&m.Match)
	args["karat"] = m.Karat
	args["weight_g"] = m.WeightGrams
	args["metal_type"] = m.MetalType
	args["melt_value"] = m.MeltValue
	args["profit_scrap"] = m.ProfitScrap
	args["break_even"] = m.BreakEven
	args["suggested_offer"] = m.SuggestedOffer

	err := s.pool.QueryRow(ctx, queryInsertJewelryMatch, args).Scan(&m.ID, &m.FoundAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // conflict: already handled
	}
	if err != nil {
		return false, fmt.Errorf("inserting jewelry match: %w", err)
	}
	return true, nil
}

// ListUnsentJewelryMatches returns undelivered jewelry matches, newest first,
// each joined with its task's notification channel.
func (s *PostgresStore) ListUnsentJewelryMatches(ctx context.Context, limit int) ([]domain.JewelryMatch, error) {
	rows, err := s.pool.Query(ctx, queryListUnsentJewelryMatches, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unsent jewelry matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.JewelryMatch
	for rows.Next() {
		var m domain.JewelryMatch
		if err := scanJewelryMatch(rows, &m, true); err != nil {
			return nil, fmt.Errorf("scanning jewelry match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListJewelryMatches queries jewelry matches with optional filters.
func (s *PostgresStore) ListJewelryMatches(ctx context.Context, q *MatchQuery) ([]domain.JewelryMatch, error) {
	sql, args := q.ToSQL(baseJewelrySelect, false)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jewelry matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.JewelryMatch
	for rows.Next() {
		var m domain.JewelryMatch
		if err := scanJewelryMatch(rows, &m, false); err != nil {
			return nil, fmt.Errorf("scanning jewelry match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GemstoneMatchExists reports whether a gemstone match row exists for the pair.
func (s *PostgresStore) GemstoneMatchExists(ctx context.Context, taskID, listingID string) (bool, error) {
	return s.exists(ctx, queryGemstoneMatchExists, taskID, listingID)
}

// InsertGemstoneMatch inserts a gemstone match. Returns false without error
// when the (task, listing) pair already exists.
func (s *PostgresStore) InsertGemstoneMatch(ctx context.Context, m *domain.GemstoneMatch) (bool, error) {
	args := matchArgs(&m.Match)
	args["stone_type"] = m.StoneType
	args["shape"] = m.Shape
	args["carat"] = m.Carat
	args["colour"] = m.Colour
	args["clarity"] = m.Clarity
	args["cert_lab"] = m.CertLab
	args["treatment"] = m.Treatment
	args["is_natural"] = m.IsNatural
	args["deal_score"] = m.DealScore
	args["risk_score"] = m.RiskScore

	err := s.pool.QueryRow(ctx, queryInsertGemstoneMatch, args).Scan(&m.ID, &m.FoundAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inserting gemstone match: %w", err)
	}
	return true, nil
}

// ListUnsentGemstoneMatches returns undelivered gemstone matches, newest
// first, each joined with its task's notification channel.
func (s *PostgresStore) ListUnsentGemstoneMatches(ctx context.Context, limit int) ([]domain.GemstoneMatch, error) {
	rows, err := s.pool.Query(ctx, queryListUnsentGemstoneMatches, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unsent gemstone matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.GemstoneMatch
	for rows.Next() {
		var m domain.GemstoneMatch
		if err := scanGemstoneMatch(rows, &m, true); err != nil {
			return nil, fmt.Errorf("scanning gemstone match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListGemstoneMatches queries gemstone matches with optional filters.
func (s *PostgresStore) ListGemstoneMatches(ctx context.Context, q *MatchQuery) ([]domain.GemstoneMatch, error) {
	sql, args := q.ToSQL(baseGemstoneSelect, true)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying gemstone matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.GemstoneMatch
	for rows.Next() {
		var m domain.GemstoneMatch
		if err := scanGemstoneMatch(rows, &m, false); err != nil {
			return nil, fmt.Errorf("scanning gemstone match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// WatchMatchExists reports whether a watch match row exists for the pair.
func (s *PostgresStore) WatchMatchExists(ctx context.Context, taskID, listingID string) (bool, error) {
	return s.exists(ctx, queryWatchMatchExists, taskID, listingID)
}

// InsertWatchMatch inserts a watch match. Returns false without error when
// the (task, listing) pair already exists.
func (s *PostgresStore) InsertWatchMatch(ctx context.Context, m *domain.WatchMatch) (bool, error) {
	args := matchArgs(&m.Match)
	args["case_material"] = m.CaseMaterial
	args["band_material"] = m.BandMaterial
	args["movement"] = m.Movement
	args["dial_color"] = m.DialColor
	args["year"] = m.Year
	args["brand"] = m.Brand
	args["model"] = m.Model

	err := s.pool.QueryRow(ctx, queryInsertWatchMatch, args).Scan(&m.ID, &m.FoundAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inserting watch match: %w", err)
	}
	return true, nil
}

// ListWatchMatches queries watch matches with optional filters.
func (s *PostgresStore) ListWatchMatches(ctx context.Context, q *MatchQuery) ([]domain.WatchMatch, error) {
	sql, args := q.ToSQL(baseWatchSelect, false)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying watch matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.WatchMatch
	for rows.Next() {
		var m domain.WatchMatch
		if err := rows.Scan(
			&m.ID, &m.TaskID, &m.UserID, &m.EbayListingID, &m.EbayTitle, &m.EbayURL,
			&m.ListedPrice, &m.ShippingCost, &m.Currency, &m.BuyFormat, &m.SellerFeedback,
			&m.FoundAt, &m.ItemCreated, &m.Status, &m.NotificationSent,
			&m.SlackMessageTS, &m.SlackChannelID,
			&m.CaseMaterial, &m.BandMaterial, &m.Movement,
			&m.DialColor, &m.Year, &m.Brand, &m.Model,
		); err != nil {
			return nil, fmt.Errorf("scanning watch match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// matchTable maps an item type to its match table name. The allowlist keeps
// table names out of caller control.
func matchTable(itemType domain.ItemType) (string, error) {
	switch itemType {
	case domain.ItemJewelry:
		return "matches_jewelry", nil
	case domain.ItemGemstone:
		return "matches_gemstone", nil
	case domain.ItemWatch:
		return "matches_watch", nil
	default:
		return "", fmt.Errorf("unknown item type %q", itemType)
	}
}

// UpdateMatchNotification records a delivery outcome on a match row.
func (s *PostgresStore) UpdateMatchNotification(
	ctx context.Context,
	itemType domain.ItemType,
	id int64,
	sent bool,
	ts, channelID *string,
) error {
	table, err := matchTable(itemType)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, fmt.Sprintf(queryUpdateMatchNotification, table), id, sent, ts, channelID)
	if err != nil {
		return fmt.Errorf("updating match notification: %w", err)
	}
	return nil
}

// UpdateMatchStatusByMessage resolves a match by its Slack (channel, ts) pair
// and sets its status. Returns false when no row matched.
func (s *PostgresStore) UpdateMatchStatusByMessage(
	ctx context.Context,
	itemType domain.ItemType,
	channelID, ts string,
	status domain.MatchStatus,
) (bool, error) {
	table, err := matchTable(itemType)
	if err != nil {
		return false, err
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(queryUpdateMatchStatusByMessage, table), channelID, ts, string(status))
	if err != nil {
		return false, fmt.Errorf("updating match status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IsRejected reports whether a live rejection exists for the pair.
func (s *PostgresStore) IsRejected(ctx context.Context, taskID, listingID string) (bool, error) {
	return s.exists(ctx, queryIsRejected, taskID, listingID)
}

// UpsertRejection records (or refreshes) a rejection for the pair.
func (s *PostgresStore) UpsertRejection(ctx context.Context, r *domain.RejectedItem) error {
	args := pgx.NamedArgs{
		"task_id":          r.TaskID,
		"ebay_listing_id":  r.EbayListingID,
		"rejection_reason": r.RejectionReason,
		"rejected_at":      r.RejectedAt,
		"expires_at":       r.ExpiresAt,
	}

	if _, err := s.pool.Exec(ctx, queryUpsertRejection, args); err != nil {
		return fmt.Errorf("upserting rejection: %w", err)
	}
	return nil
}

// ListRejectedIDs returns the set of live rejected listing ids for a task.
func (s *PostgresStore) ListRejectedIDs(ctx context.Context, taskID string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, queryListRejectedIDs, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying rejected ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning rejected id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// DeleteExpiredRejections removes rejections past their TTL.
func (s *PostgresStore) DeleteExpiredRejections(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, queryDeleteExpiredRejections)
	if err != nil {
		return 0, fmt.Errorf("deleting expired rejections: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetCachedItem returns a detail-cache row, or nil when absent. Freshness is
// the caller's concern; expired rows are returned as-is.
func (s *PostgresStore) GetCachedItem(ctx context.Context, itemID string) (*domain.CachedItem, error) {
	item := &domain.CachedItem{}
	var aspectsJSON []byte

	err := s.pool.QueryRow(ctx, queryGetCachedItem, itemID).Scan(
		&item.EbayItemID, &aspectsJSON, &item.Title, &item.Description,
		&item.CategoryID, &item.FetchedAt, &item.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached item: %w", err)
	}

	if err := json.Unmarshal(aspectsJSON, &item.Aspects); err != nil {
		return nil, fmt.Errorf("unmarshaling item specifics: %w", err)
	}
	return item, nil
}

// UpsertCachedItem inserts or refreshes a detail-cache row.
func (s *PostgresStore) UpsertCachedItem(ctx context.Context, item *domain.CachedItem) error {
	aspectsJSON, err := json.Marshal(item.Aspects)
	if err != nil {
		return fmt.Errorf("marshaling item specifics: %w", err)
	}

	args := pgx.NamedArgs{
		"ebay_item_id":   item.EbayItemID,
		"item_specifics": aspectsJSON,
		"title":          item.Title,
		"description":    item.Description,
		"category_id":    item.CategoryID,
		"fetched_at":     item.FetchedAt,
		"expires_at":     item.ExpiresAt,
	}

	if _, err := s.pool.Exec(ctx, queryUpsertCachedItem, args); err != nil {
		return fmt.Errorf("upserting cached item: %w", err)
	}
	return nil
}

// DeleteExpiredCachedItems removes detail-cache rows past their TTL.
func (s *PostgresStore) DeleteExpiredCachedItems(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, queryDeleteExpiredCachedItems)
	if err != nil {
		return 0, fmt.Errorf("deleting expired cached items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListMetalPrices returns the per-gram spot price rows.
func (s *PostgresStore) ListMetalPrices(ctx context.Context) ([]domain.MetalPrice, error) {
	rows, err := s.pool.Query(ctx, queryListMetalPrices)
	if err != nil {
		return nil, fmt.Errorf("querying metal prices: %w", err)
	}
	defer rows.Close()

	var prices []domain.MetalPrice
	for rows.Next() {
		var p domain.MetalPrice
		if err := rows.Scan(
			&p.Metal, &p.PriceGram10K, &p.PriceGram14K, &p.PriceGram18K, &p.PriceGram24K,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning metal price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// GetCredentialSettings reads the credential document. A missing row yields
// an empty settings document, not an error.
func (s *PostgresStore) GetCredentialSettings(ctx context.Context) (*domain.CredentialSettings, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, queryGetSetting, credentialSettingsKey).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.CredentialSettings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential settings: %w", err)
	}

	settings := &domain.CredentialSettings{}
	if err := json.Unmarshal(value, settings); err != nil {
		return nil, fmt.Errorf("unmarshaling credential settings: %w", err)
	}
	return settings, nil
}

// SaveCredentialSettings writes the credential document back.
func (s *PostgresStore) SaveCredentialSettings(ctx context.Context, settings *domain.CredentialSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling credential settings: %w", err)
	}

	if _, err := s.pool.Exec(ctx, queryUpsertSetting, credentialSettingsKey, value); err != nil {
		return fmt.Errorf("saving credential settings: %w", err)
	}
	return nil
}

// InsertHealthMetric records one worker cycle summary.
func (s *PostgresStore) InsertHealthMetric(ctx context.Context, m *domain.HealthMetric) error {
	args := pgx.NamedArgs{
		"cycle_timestamp":   m.CycleTimestamp,
		"cycle_duration_ms": m.CycleDurationMS,
		"tasks_processed":   m.TasksProcessed,
		"tasks_failed":      m.TasksFailed,
		"total_items_found": m.TotalItemsFound,
		"total_matches":     m.TotalMatches,
		"total_excluded":    m.TotalExcluded,
		"memory_usage_mb":   m.MemoryUsageMB,
	}

	if _, err := s.pool.Exec(ctx, queryInsertHealthMetric, args); err != nil {
		return fmt.Errorf("inserting health metric: %w", err)
	}
	return nil
}

// ListHealthMetrics returns recent cycle summaries, newest first.
func (s *PostgresStore) ListHealthMetrics(ctx context.Context, limit int) ([]domain.HealthMetric, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.pool.Query(ctx, queryListHealthMetrics, limit)
	if err != nil {
		return nil, fmt.Errorf("querying health metrics: %w", err)
	}
	defer rows.Close()

	var out []domain.HealthMetric
	for rows.Next() {
		var m domain.HealthMetric
		if err := rows.Scan(
			&m.CycleTimestamp, &m.CycleDurationMS, &m.TasksProcessed, &m.TasksFailed,
			&m.TotalItemsFound, &m.TotalMatches, &m.TotalExcluded, &m.MemoryUsageMB,
		); err != nil {
			return nil, fmt.Errorf("scanning health metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// exists is a helper for two-argument EXISTS queries.
func (s *PostgresStore) exists(ctx context.Context, query string, a, b string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return exists, nil
}

// queryTasks runs a task select and scans the rows.
func (s *PostgresStore) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// matchArgs builds the named arguments shared by all match inserts.
func matchArgs(m *domain.Match) pgx.NamedArgs {
	return pgx.NamedArgs{
		"task_id":            m.TaskID,
		"user_id":            m.UserID,
		"ebay_listing_id":    m.EbayListingID,
		"ebay_title":         m.EbayTitle,
		"ebay_url":           m.EbayURL,
		"listed_price":       m.ListedPrice,
		"shipping_cost":      m.ShippingCost,
		"currency":           m.Currency,
		"buy_format":         m.BuyFormat,
		"seller_feedback":    m.SellerFeedback,
		"item_creation_date": m.ItemCreated,
	}
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

// scanTask scans a task row, decoding the jsonb filter bags.
func scanTask(row scannable, t *domain.Task) error {
	var jewelryJSON, watchJSON, gemstoneJSON []byte

	if err := row.Scan(
		&t.ID, &t.UserID, &t.Name, &t.Type, &t.Status,
		&t.MinPrice, &t.MaxPrice, &t.MinSellerFeedback,
		&t.ExcludeKeywords, &t.ListingFormats, &t.Conditions,
		&t.ItemLocation,
		&jewelryJSON, &watchJSON, &gemstoneJSON,
		&t.PollInterval, &t.MinProfitMargin,
		&t.SlackChannel, &t.SlackChannelID,
		&t.LastRun, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return err
	}

	if len(jewelryJSON) > 0 {
		t.JewelryFilters = &domain.JewelryFilters{}
		if err := json.Unmarshal(jewelryJSON, t.JewelryFilters); err != nil {
			return fmt.Errorf("unmarshaling jewelry filters: %w", err)
		}
	}
	if len(watchJSON) > 0 {
		t.WatchFilters = &domain.WatchFilters{}
		if err := json.Unmarshal(watchJSON, t.WatchFilters); err != nil {
			return fmt.Errorf("unmarshaling watch filters: %w", err)
		}
	}
	if len(gemstoneJSON) > 0 {
		t.GemstoneFilters = &domain.GemstoneFilters{}
		if err := json.Unmarshal(gemstoneJSON, t.GemstoneFilters); err != nil {
			return fmt.Errorf("unmarshaling gemstone filters: %w", err)
		}
	}

	return nil
}

// scanJewelryMatch scans a jewelry match row; withChannel adds the joined
// task channel column present on the unsent query.
func scanJewelryMatch(row scannable, m *domain.JewelryMatch, withChannel bool) error {
	dest := []any{
		&m.ID, &m.TaskID, &m.UserID, &m.EbayListingID, &m.EbayTitle, &m.EbayURL,
		&m.ListedPrice, &m.ShippingCost, &m.Currency, &m.BuyFormat, &m.SellerFeedback,
		&m.FoundAt, &m.ItemCreated, &m.Status, &m.NotificationSent,
		&m.SlackMessageTS, &m.SlackChannelID,
		&m.Karat, &m.WeightGrams, &m.MetalType, &m.MeltValue, &m.ProfitScrap,
		&m.BreakEven, &m.SuggestedOffer,
	}
	if withChannel {
		dest = append(dest, &m.TaskChannel)
	}
	return row.Scan(dest...)
}

// scanGemstoneMatch scans a gemstone match row; withChannel as above.
func scanGemstoneMatch(row scannable, m *domain.GemstoneMatch, withChannel bool) error {
	dest := []any{
		&m.ID, &m.TaskID, &m.UserID, &m.EbayListingID, &m.EbayTitle, &m.EbayURL,
		&m.ListedPrice, &m.ShippingCost, &m.Currency, &m.BuyFormat, &m.SellerFeedback,
		&m.FoundAt, &m.ItemCreated, &m.Status, &m.NotificationSent,
		&m.SlackMessageTS, &m.SlackChannelID,
		&m.StoneType, &m.Shape, &m.Carat, &m.Colour,
		&m.Clarity, &m.CertLab, &m.Treatment,
		&m.IsNatural, &m.DealScore, &m.RiskScore,
	}
	if withChannel {
		dest = append(dest, &m.TaskChannel)
	}
	return row.Scan(dest...)
}
