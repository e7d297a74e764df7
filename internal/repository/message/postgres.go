package message

import (
	"context"
	"errors"

	"farmmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const messageColumns = `m.id::text, m.sender_id::text, m.receiver_id::text, m.content, m.is_read, m.created_at,
su.username, ru.username`

const messageJoin = `
FROM messages m
JOIN users su ON m.sender_id = su.id
JOIN users ru ON m.receiver_id = ru.id`

func (r *postgresRepo) Send(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (sender_id, receiver_id, content)
VALUES ($1, $2, $3)
RETURNING id::text`, senderID, receiverID, content).Scan(&id)
	if err != nil {
		return nil, err
	}

	m, err := scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+messageJoin+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) Thread(ctx context.Context, userID, partnerID string) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+messageColumns+messageJoin+`
WHERE (m.sender_id = $1 AND m.receiver_id = $2)
   OR (m.sender_id = $2 AND m.receiver_id = $1)
ORDER BY m.created_at ASC`, userID, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Opening a thread reads it.
	if _, err := r.pool.Exec(ctx, `
UPDATE messages SET is_read = TRUE
WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`, userID, partnerID); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *postgresRepo) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT partner.id::text,
       partner.username,
       latest.content,
       latest.created_at,
       COALESCE(unread.n, 0)
FROM (
	SELECT DISTINCT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id
	FROM messages
	WHERE sender_id = $1 OR receiver_id = $1
) t
JOIN users partner ON partner.id = t.partner_id
LEFT JOIN LATERAL (
	SELECT content, created_at
	FROM messages
	WHERE (sender_id = $1 AND receiver_id = t.partner_id)
	   OR (sender_id = t.partner_id AND receiver_id = $1)
	ORDER BY created_at DESC
	LIMIT 1
) latest ON TRUE
LEFT JOIN LATERAL (
	SELECT COUNT(*) AS n
	FROM messages
	WHERE sender_id = t.partner_id AND receiver_id = $1 AND is_read = FALSE
) unread ON TRUE
ORDER BY latest.created_at DESC NULLS LAST`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.PartnerID, &c.PartnerUsername, &c.LastMessage, &c.LastMessageTime, &c.UnreadCount); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *postgresRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`, userID).Scan(&n)
	return n, err
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	if err := row.Scan(
		&m.ID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Content,
		&m.IsRead,
		&m.CreatedAt,
		&m.SenderUsername,
		&m.ReceiverUsername,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
