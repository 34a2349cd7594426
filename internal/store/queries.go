package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// Task queries.
const (
	taskColumns = `id, user_id, name, item_type, status,
		min_price, max_price, min_seller_feedback,
		COALESCE(exclude_keywords, '{}'), COALESCE(listing_format, '{}'), COALESCE(conditions, '{}'),
		COALESCE(item_location, ''),
		jewelry_filters, watch_filters, gemstone_filters,
		poll_interval, min_profit_margin,
		COALESCE(slack_channel, ''), COALESCE(slack_channel_id, ''),
		last_run, created_at, updated_at`

	queryListActiveTasks = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status = 'active'
		ORDER BY created_at`

	queryGetTask = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1`

	queryListTasks = `
		SELECT ` + taskColumns + `
		FROM tasks
		ORDER BY created_at
		LIMIT $1 OFFSET $2`

	queryUpdateTaskChannel = `
		UPDATE tasks SET
			slack_channel = $2,
			slack_channel_id = $3,
			updated_at = now()
		WHERE id = $1`

	queryTouchTaskLastRun = `
		UPDATE tasks SET
			last_run = $2,
			updated_at = now()
		WHERE id = $1`
)

// Jewelry match queries.
const (
	jewelryColumns = `id, task_id, user_id, ebay_listing_id, ebay_title, ebay_url,
		listed_price, shipping_cost, currency, buy_format, seller_feedback,
		found_at, item_creation_date, status, notification_sent,
		slack_message_ts, slack_channel_id,
		karat, weight_g, COALESCE(metal_type, ''), melt_value, profit_scrap,
		break_even, suggested_offer`

	queryJewelryMatchExists = `
		SELECT EXISTS(
			SELECT 1 FROM matches_jewelry
			WHERE task_id = $1 AND ebay_listing_id = $2
		)`

	queryInsertJewelryMatch = `
		INSERT INTO matches_jewelry (
			task_id, user_id, ebay_listing_id, ebay_title, ebay_url,
			listed_price, shipping_cost, currency, buy_format, seller_feedback,
			found_at, item_creation_date, status, notification_sent,
			karat, weight_g, metal_type, melt_value, profit_scrap,
			break_even, suggested_offer
		) VALUES (
			@task_id, @user_id, @ebay_listing_id, @ebay_title, @ebay_url,
			@listed_price, @shipping_cost, @currency, @buy_format, @seller_feedback,
			now(), @item_creation_date, 'new', false,
			@karat, @weight_g, @metal_type, @melt_value, @profit_scrap,
			@break_even, @suggested_offer
		)
		ON CONFLICT (task_id, ebay_listing_id) DO NOTHING
		RETURNING id, found_at`

	queryListUnsentJewelryMatches = `
		SELECT m.id, m.task_id, m.user_id, m.ebay_listing_id, m.ebay_title, m.ebay_url,
			m.listed_price, m.shipping_cost, m.currency, m.buy_format, m.seller_feedback,
			m.found_at, m.item_creation_date, m.status, m.notification_sent,
			m.slack_message_ts, m.slack_channel_id,
			m.karat, m.weight_g, COALESCE(m.metal_type, ''), m.melt_value, m.profit_scrap,
			m.break_even, m.suggested_offer,
			COALESCE(t.slack_channel, '')
		FROM matches_jewelry m
		JOIN tasks t ON t.id = m.task_id
		WHERE m.notification_sent = false
		ORDER BY m.found_at DESC
		LIMIT $1`

	baseJewelrySelect = `SELECT ` + jewelryColumns + ` FROM matches_jewelry`
)

// Gemstone match queries.
const (
	gemstoneColumns = `id, task_id, user_id, ebay_listing_id, ebay_title, ebay_url,
		listed_price, shipping_cost, currency, buy_format, seller_feedback,
		found_at, item_creation_date, status, notification_sent,
		slack_message_ts, slack_channel_id,
		COALESCE(stone_type, ''), COALESCE(shape, ''), carat, COALESCE(colour, ''),
		COALESCE(clarity, ''), COALESCE(cert_lab, ''), COALESCE(treatment, ''),
		is_natural, deal_score, risk_score`

	queryGemstoneMatchExists = `
		SELECT EXISTS(
			SELECT 1 FROM matches_gemstone
			WHERE task_id = $1 AND ebay_listing_id = $2
		)`

	queryInsertGemstoneMatch = `
		INSERT INTO matches_gemstone (
			task_id, user_id, ebay_listing_id, ebay_title, ebay_url,
			listed_price, shipping_cost, currency, buy_format, seller_feedback,
			found_at, item_creation_date, status, notification_sent,
			stone_type, shape, carat, colour, clarity, cert_lab, treatment,
			is_natural, deal_score, risk_score
		) VALUES (
			@task_id, @user_id, @ebay_listing_id, @ebay_title, @ebay_url,
			@listed_price, @shipping_cost, @currency, @buy_format, @seller_feedback,
			now(), @item_creation_date, 'new', false,
			@stone_type, @shape, @carat, @colour, @clarity, @cert_lab, @treatment,
			@is_natural, @deal_score, @risk_score
		)
		ON CONFLICT (task_id, ebay_listing_id) DO NOTHING
		RETURNING id, found_at`

	queryListUnsentGemstoneMatches = `
		SELECT m.id, m.task_id, m.user_id, m.ebay_listing_id, m.ebay_title, m.ebay_url,
			m.listed_price, m.shipping_cost, m.currency, m.buy_format, m.seller_feedback,
			m.found_at, m.item_creation_date, m.status, m.notification_sent,
			m.slack_message_ts, m.slack_channel_id,
			COALESCE(m.stone_type, ''), COALESCE(m.shape, ''), m.carat, COALESCE(m.colour, ''),
			COALESCE(m.clarity, ''), COALESCE(m.cert_lab, ''), COALESCE(m.treatment, ''),
			m.is_natural, m.deal_score, m.risk_score,
			COALESCE(t.slack_channel, '')
		FROM matches_gemstone m
		JOIN tasks t ON t.id = m.task_id
		WHERE m.notification_sent = false
		ORDER BY m.found_at DESC
		LIMIT $1`

	baseGemstoneSelect = `SELECT ` + gemstoneColumns + ` FROM matches_gemstone`
)

// Watch match queries.
const (
	watchColumns = `id, task_id, user_id, ebay_listing_id, ebay_title, ebay_url,
		listed_price, shipping_cost, currency, buy_format, seller_feedback,
		found_at, item_creation_date, status, notification_sent,
		slack_message_ts, slack_channel_id,
		COALESCE(case_material, ''), COALESCE(band_material, ''), COALESCE(movement, ''),
		COALESCE(dial_color, ''), year, COALESCE(brand, ''), COALESCE(model, '')`

	queryWatchMatchExists = `
		SELECT EXISTS(
			SELECT 1 FROM matches_watch
			WHERE task_id = $1 AND ebay_listing_id = $2
		)`

	queryInsertWatchMatch = `
		INSERT INTO matches_watch (
			task_id, user_id, ebay_listing_id, ebay_title, ebay_url,
			listed_price, shipping_cost, currency, buy_format, seller_feedback,
			found_at, item_creation_date, status, notification_sent,
			case_material, band_material, movement, dial_color, year, brand, model
		) VALUES (
			@task_id, @user_id, @ebay_listing_id, @ebay_title, @ebay_url,
			@listed_price, @shipping_cost, @currency, @buy_format, @seller_feedback,
			now(), @item_creation_date, 'new', false,
			@case_material, @band_material, @movement, @dial_color, @year, @brand, @model
		)
		ON CONFLICT (task_id, ebay_listing_id) DO NOTHING
		RETURNING id, found_at`

	baseWatchSelect = `SELECT ` + watchColumns + ` FROM matches_watch`
)

// Notification tracking queries; %s is the match table, validated by
// matchTable before interpolation.
const (
	queryUpdateMatchNotification = `
		UPDATE %s SET
			notification_sent = $2,
			slack_message_ts = $3,
			slack_channel_id = $4
		WHERE id = $1`

	queryUpdateMatchStatusByMessage = `
		UPDATE %s SET
			status = $3
		WHERE slack_channel_id = $1 AND slack_message_ts = $2`
)

// Reject cache queries.
const (
	queryIsRejected = `
		SELECT EXISTS(
			SELECT 1 FROM rejected_items
			WHERE task_id = $1 AND ebay_listing_id = $2 AND expires_at > now()
		)`

	queryUpsertRejection = `
		INSERT INTO rejected_items (
			task_id, ebay_listing_id, rejection_reason, rejected_at, expires_at
		) VALUES (
			@task_id, @ebay_listing_id, @rejection_reason, @rejected_at, @expires_at
		)
		ON CONFLICT (task_id, ebay_listing_id) DO UPDATE SET
			rejection_reason = EXCLUDED.rejection_reason,
			rejected_at = EXCLUDED.rejected_at,
			expires_at = EXCLUDED.expires_at`

	queryListRejectedIDs = `
		SELECT ebay_listing_id
		FROM rejected_items
		WHERE task_id = $1 AND expires_at > now()`

	queryDeleteExpiredRejections = `
		DELETE FROM rejected_items
		WHERE expires_at <= now()`
)

// Detail cache queries.
const (
	queryGetCachedItem = `
		SELECT ebay_item_id, item_specifics, COALESCE(title, ''), COALESCE(description, ''),
			COALESCE(category_id, ''), fetched_at, expires_at
		FROM ebay_item_cache
		WHERE ebay_item_id = $1`

	queryUpsertCachedItem = `
		INSERT INTO ebay_item_cache (
			ebay_item_id, item_specifics, title, description, category_id, fetched_at, expires_at
		) VALUES (
			@ebay_item_id, @item_specifics, @title, @description, @category_id, @fetched_at, @expires_at
		)
		ON CONFLICT (ebay_item_id) DO UPDATE SET
			item_specifics = EXCLUDED.item_specifics,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			category_id = EXCLUDED.category_id,
			fetched_at = EXCLUDED.fetched_at,
			expires_at = EXCLUDED.expires_at`

	queryDeleteExpiredCachedItems = `
		DELETE FROM ebay_item_cache
		WHERE expires_at <= now()`
)

// Metal price queries.
const (
	queryListMetalPrices = `
		SELECT metal, price_gram_10k, price_gram_14k, price_gram_18k, price_gram_24k, updated_at
		FROM metal_prices`
)

// Settings queries.
const (
	credentialSettingsKey = "ebay_keys"

	queryGetSetting = `
		SELECT value
		FROM settings
		WHERE key = $1`

	queryUpsertSetting = `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()`
)

// Worker health queries.
const (
	queryInsertHealthMetric = `
		INSERT INTO worker_health_metrics (
			cycle_timestamp, cycle_duration_ms, tasks_processed, tasks_failed,
			total_items_found, total_matches, total_excluded, memory_usage_mb
		) VALUES (
			@cycle_timestamp, @cycle_duration_ms, @tasks_processed, @tasks_failed,
			@total_items_found, @total_matches, @total_excluded, @memory_usage_mb
		)`

	queryListHealthMetrics = `
		SELECT cycle_timestamp, cycle_duration_ms, tasks_processed, tasks_failed,
			total_items_found, total_matches, total_excluded, memory_usage_mb
		FROM worker_health_metrics
		ORDER BY cycle_timestamp DESC
		LIMIT $1`
)
