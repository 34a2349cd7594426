package store

import (
	"fmt"
	"strings"

	domain "github.com/loupelabs/loupe/pkg/types"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByFoundAt   = "found_at"
	orderByPrice     = "price"
	orderByDealScore = "deal_score"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
// deal_score only exists on matches_gemstone; ToSQL falls back to the default
// for the other tables.
var validOrderBy = map[string]string{
	orderByFoundAt:   "found_at DESC",
	orderByPrice:     "listed_price ASC",
	orderByDealScore: "deal_score DESC",
}

const defaultMatchOrder = "found_at DESC"

// MatchQuery defines optional filters for ops-API match listings.
type MatchQuery struct {
	TaskID       *string
	Status       *domain.MatchStatus
	MinDealScore *int // gemstone only
	MaxRiskScore *int // gemstone only
	Limit        int  // default 50
	Offset       int
	OrderBy      string // "found_at", "price", "deal_score"
}

// ToSQL appends WHERE, ORDER BY, LIMIT, and OFFSET to a base match select.
// scored marks tables carrying deal/risk columns (matches_gemstone); score
// filters and ordering are dropped for the others.
func (q *MatchQuery) ToSQL(baseSelect string, scored bool) (string, []any) {
	var conditions []string
	var args []any
	paramIdx := 1

	if q.TaskID != nil {
		conditions = append(conditions, fmt.Sprintf("task_id = $%d", paramIdx))
		args = append(args, *q.TaskID)
		paramIdx++
	}

	if q.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", paramIdx))
		args = append(args, string(*q.Status))
		paramIdx++
	}

	if scored {
		if q.MinDealScore != nil {
			conditions = append(conditions, fmt.Sprintf("deal_score >= $%d", paramIdx))
			args = append(args, *q.MinDealScore)
			paramIdx++
		}
		if q.MaxRiskScore != nil {
			conditions = append(conditions, fmt.Sprintf("risk_score <= $%d", paramIdx))
			args = append(args, *q.MaxRiskScore)
			paramIdx++
		}
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultMatchOrder
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			if q.OrderBy != orderByDealScore || scored {
				orderClause = col
			}
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	sql := fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseSelect, whereClause, orderClause, limit, offset,
	)

	return sql, args
}
