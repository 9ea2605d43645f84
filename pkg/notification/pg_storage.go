package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStorage is a PostgreSQL implementation of the Storage interface
// backed by a pgx connection pool. Apply the schema with Migrate before
// first use.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a Postgres-backed notification storage.
func NewPgStorage(pool *pgxpool.Pool) (*PgStorage, error) {
	if pool == nil {
		return nil, errors.New("notification: pgx pool is required")
	}
	return &PgStorage{pool: pool}, nil
}

const notificationColumns = `id, user_id, type, channel, priority, title, content,
	action_url, action_text, icon, metadata, is_read, is_dismissed,
	sent_at, delivered_at, read_at, dismissed_at, expires_at, created_at`

func (s *PgStorage) Create(ctx context.Context, n Notification) (Notification, error) {
	if n.UserID == "" {
		return Notification{}, ErrUserIDRequired
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var query string
	var args []any
	if n.ID == "" {
		query = `INSERT INTO notifications
			(user_id, type, channel, priority, title, content, action_url, action_text, icon,
			 metadata, is_read, is_dismissed, sent_at, delivered_at, read_at, dismissed_at,
			 expires_at, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
			RETURNING id`
		args = []any{
			n.UserID, n.Type, n.Channel, n.Priority, n.Title, n.Content,
			n.ActionURL, n.ActionText, n.Icon, n.Metadata, n.IsRead, n.IsDismissed,
			n.SentAt, n.DeliveredAt, n.ReadAt, n.DismissedAt, n.ExpiresAt, n.CreatedAt,
		}
	} else {
		query = `INSERT INTO notifications
			(id, user_id, type, channel, priority, title, content, action_url, action_text, icon,
			 metadata, is_read, is_dismissed, sent_at, delivered_at, read_at, dismissed_at,
			 expires_at, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			RETURNING id`
		args = []any{
			n.ID, n.UserID, n.Type, n.Channel, n.Priority, n.Title, n.Content,
			n.ActionURL, n.ActionText, n.Icon, n.Metadata, n.IsRead, n.IsDismissed,
			n.SentAt, n.DeliveredAt, n.ReadAt, n.DismissedAt, n.ExpiresAt, n.CreatedAt,
		}
	}

	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n.ID); err != nil {
		return Notification{}, fmt.Errorf("failed to insert notification: %w", err)
	}
	return n, nil
}

func (s *PgStorage) Get(ctx context.Context, userID, id string) (*Notification, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 AND id = $2`,
		userID, id)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query notification: %w", err)
	}
	return &n, nil
}

func (s *PgStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > now())`
	args := []any{userID}

	if opts.OnlyUnread {
		query += ` AND is_read = FALSE`
	}
	if len(opts.Types) > 0 {
		types := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			types[i] = string(t)
		}
		args = append(args, types)
		query += fmt.Sprintf(` AND type = ANY($%d)`, len(args))
	}
	if len(opts.Channels) > 0 {
		channels := make([]string, len(opts.Channels))
		for i, ch := range opts.Channels {
			channels[i] = string(ch)
		}
		args = append(args, channels)
		query += fmt.Sprintf(` AND channel = ANY($%d)`, len(args))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PgStorage) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = now()
		 WHERE user_id = $1 AND id = ANY($2) AND is_read = FALSE`,
		userID, ids)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *PgStorage) MarkDismissed(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_dismissed = TRUE, dismissed_at = now()
		 WHERE user_id = $1 AND id = ANY($2) AND is_dismissed = FALSE`,
		userID, ids)
	if err != nil {
		return fmt.Errorf("failed to mark notifications dismissed: %w", err)
	}
	return nil
}

func (s *PgStorage) Delete(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE user_id = $1 AND id = ANY($2)`,
		userID, ids)
	if err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}

func (s *PgStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications
		 WHERE user_id = $1 AND is_read = FALSE
		   AND (expires_at IS NULL OR expires_at > now())`,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Channel, &n.Priority, &n.Title, &n.Content,
		&n.ActionURL, &n.ActionText, &n.Icon, &n.Metadata, &n.IsRead, &n.IsDismissed,
		&n.SentAt, &n.DeliveredAt, &n.ReadAt, &n.DismissedAt, &n.ExpiresAt, &n.CreatedAt,
	)
	return n, err
}
