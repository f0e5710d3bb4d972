// Package advisoryrepo manages the improvement action catalog and the
// per-user completion state persisted against it.
package advisoryrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/pkg/dbpkg"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
)

// RepoPGS facilitates advisory repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns advisory RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const listForUserQuery = `
SELECT
	a.id, a.title, a.impact, a.difficulty, a.timeframe,
	COALESCE(p.completed, false), COALESCE(p.updated_at, a.created_at)
FROM improvement_actions a
LEFT JOIN user_action_progress p ON p.action_id = a.id AND p.user_id = $1
WHERE a.active
ORDER BY a.impact DESC, a.id
`

// ListForUser returns the active action catalog with the user's completion
// state joined in.
func (r *RepoPGS) ListForUser(ctx context.Context, userID string) ([]domain.ImprovementAction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listForUserQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.ImprovementAction{}

	for rows.Next() {
		var a domain.ImprovementAction

		err := rows.Scan(&a.ID, &a.Title, &a.Impact, &a.Difficulty, &a.Timeframe, &a.Completed, &a.UpdatedAt)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const toggleQuery = `
WITH toggled AS (
	INSERT INTO user_action_progress (user_id, action_id, completed, updated_at)
	SELECT $1, id, true, now() FROM improvement_actions WHERE id = $2 AND active
	ON CONFLICT (user_id, action_id)
	DO UPDATE SET completed = NOT user_action_progress.completed, updated_at = now()
	RETURNING action_id, completed, updated_at
)
SELECT a.id, a.title, a.impact, a.difficulty, a.timeframe, t.completed, t.updated_at
FROM toggled t
JOIN improvement_actions a ON a.id = t.action_id
`

// Toggle flips the user's completion state of the given action and returns
// the full catalog row with the new state. Every toggle is a real state
// change persisted server-side.
func (r *RepoPGS) Toggle(ctx context.Context, userID, actionID string) (domain.ImprovementAction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, toggleQuery, userID, actionID)

	var a domain.ImprovementAction

	err := row.Scan(&a.ID, &a.Title, &a.Impact, &a.Difficulty, &a.Timeframe, &a.Completed, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrActionNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const isCompletedQuery = `
SELECT COALESCE(
	(SELECT completed FROM user_action_progress WHERE user_id = $1 AND action_id = $2),
	false
)
`

// IsCompleted reports whether the user has completed the given action.
func (r *RepoPGS) IsCompleted(ctx context.Context, userID, actionID string) (bool, error) {
	l := zerolog.Ctx(ctx)

	var completed bool
	if err := r.db.QueryRowContext(ctx, isCompletedQuery, userID, actionID).Scan(&completed); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return completed, nil
}
