package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/models"
)

type ChatRepo struct {
	db Querier
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{db: pool}
}

func (r *ChatRepo) WithTx(tx pgx.Tx) *ChatRepo {
	return &ChatRepo{db: tx}
}

func (r *ChatRepo) Create(ctx context.Context, m *models.ChatMessage) error {
	m.ID = uuid.New()

	query := `
		INSERT INTO chat_messages (id, sender_id, class_id, session_id, text, role, replied_to_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING sent_at`

	return r.db.QueryRow(ctx, query,
		m.ID, m.SenderID, m.ClassID, m.SessionID, m.Text, m.Role, m.RepliedToID,
	).Scan(&m.SentAt)
}

func (r *ChatRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error) {
	m := &models.ChatMessage{}
	query := `SELECT c.id, c.sender_id, u.name, c.class_id, c.session_id, c.text, c.role, c.sent_at, c.replied_to_id
		FROM chat_messages c
		JOIN users u ON u.id = c.sender_id
		WHERE c.id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.SenderID, &m.SenderName, &m.ClassID, &m.SessionID,
		&m.Text, &m.Role, &m.SentAt, &m.RepliedToID,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListBySession returns a session's messages in ascending timestamp order.
func (r *ChatRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	query := `SELECT c.id, c.sender_id, u.name, c.class_id, c.session_id, c.text, c.role, c.sent_at, c.replied_to_id
		FROM chat_messages c
		JOIN users u ON u.id = c.sender_id
		WHERE c.session_id = $1
		ORDER BY c.sent_at`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		m := &models.ChatMessage{}
		err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.ClassID, &m.SessionID,
			&m.Text, &m.Role, &m.SentAt, &m.RepliedToID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *ChatRepo) UpdateText(ctx context.Context, id uuid.UUID, text string) error {
	_, err := r.db.Exec(ctx, "UPDATE chat_messages SET text = $1 WHERE id = $2", text, id)
	return err
}

func (r *ChatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, "DELETE FROM chat_messages WHERE id = $1", id)
	return err
}
