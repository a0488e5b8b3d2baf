package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/imblue/mep-ui-gateway/internal/data/pgxutil"
	apperrors "github.com/imblue/mep-ui-gateway/internal/errors"
	"github.com/imblue/mep-ui-gateway/internal/ports"
)

// AuditRepo persists authentication and authorization events to Postgres.
// It implements ports.AuditLog.
type AuditRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAuditRepo creates a new AuditRepo instance with the given database connection.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// auditColumns defines the column list for auth event SELECT queries to keep field mapping consistent.
const auditColumns = `id, kind, user_id, path, roles, detail, occurred_at`

// Record inserts one auth event. A missing ID or timestamp is filled in.
func (r *AuditRepo) Record(ctx context.Context, event ports.AuditEvent) error {
	if event.Kind == "" {
		return apperrors.Validation("audit event kind is required")
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.timeProvider.Now()
	}
	roles := event.Roles
	if roles == nil {
		roles = []string{}
	}

	query := `
		INSERT INTO auth_events (id, kind, user_id, path, roles, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, query,
			event.ID, string(event.Kind), event.UserID, event.Path, roles, event.Detail, event.OccurredAt,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("record auth event: %w", apperrors.MapDBError(err))
	}
	return nil
}

// AuthEventRow is one persisted auth event.
type AuthEventRow struct {
	ID         string    `db:"id"`
	Kind       string    `db:"kind"`
	UserID     string    `db:"user_id"`
	Path       string    `db:"path"`
	Roles      []string  `db:"roles"`
	Detail     string    `db:"detail"`
	OccurredAt time.Time `db:"occurred_at"`
}

// RecentByUser returns the newest events for one user, newest first.
func (r *AuditRepo) RecentByUser(ctx context.Context, userID string, limit int) ([]AuthEventRow, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `SELECT ` + auditColumns + `
		FROM auth_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2`

	var events []AuthEventRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, userID, limit)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		collected, collectErr := pgx.CollectRows(rows, pgx.RowToStructByName[AuthEventRow])
		if collectErr != nil {
			return collectErr
		}
		events = collected
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []AuthEventRow{}, nil
		}
		return nil, fmt.Errorf("list auth events: %w", apperrors.MapDBError(err))
	}
	return events, nil
}
