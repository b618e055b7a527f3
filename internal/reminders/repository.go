package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, userID, message string, remindAt time.Time) (Reminder, error)
	// PullDue atomically marks the user's due reminders delivered and
	// returns them, so a concurrent poller push cannot deliver the same
	// reminder twice.
	PullDue(ctx context.Context, userID string) ([]Reminder, error)
	// ListDue returns every undelivered reminder whose time has passed,
	// across all users.
	ListDue(ctx context.Context) ([]Reminder, error)
	// Claim marks a single reminder delivered and reports whether this
	// caller won the row. A false return with nil error means another
	// path already delivered it.
	Claim(ctx context.Context, id int64) (bool, error)
	// Revert undoes a claim after a failed push so a later tick or a
	// pull can deliver the reminder.
	Revert(ctx context.Context, id int64) error
	DeleteDelivered(ctx context.Context, userID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, userID, message string, remindAt time.Time) (Reminder, error) {
	query := `
		INSERT INTO reminders (user_id, message, remind_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, message, remind_at, delivered`

	var rem Reminder
	err := r.pool.QueryRow(ctx, query, userID, message, remindAt).
		Scan(&rem.ID, &rem.UserID, &rem.Message, &rem.RemindAt, &rem.Delivered)
	if err != nil {
		return Reminder{}, fmt.Errorf("inserting reminder: %w", err)
	}
	return rem, nil
}

func (r *postgresRepository) PullDue(ctx context.Context, userID string) ([]Reminder, error) {
	query := `
		UPDATE reminders
		SET delivered = TRUE
		WHERE user_id = $1 AND NOT delivered AND remind_at <= now()
		RETURNING id, user_id, message, remind_at, delivered`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pulling due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (r *postgresRepository) ListDue(ctx context.Context) ([]Reminder, error) {
	query := `
		SELECT id, user_id, message, remind_at, delivered
		FROM reminders
		WHERE NOT delivered AND remind_at <= now()
		ORDER BY remind_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (r *postgresRepository) Claim(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reminders SET delivered = TRUE WHERE id = $1 AND NOT delivered`, id)
	if err != nil {
		return false, fmt.Errorf("claiming reminder %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) Revert(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE reminders SET delivered = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("reverting reminder %d: %w", id, err)
	}
	return nil
}

func (r *postgresRepository) DeleteDelivered(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM reminders WHERE user_id = $1 AND delivered`, userID); err != nil {
		return fmt.Errorf("deleting delivered reminders: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM reminders WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deleting reminders: %w", err)
	}
	return nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReminders(rows rowScanner) ([]Reminder, error) {
	var out []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.UserID, &rem.Message, &rem.RemindAt, &rem.Delivered); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}
