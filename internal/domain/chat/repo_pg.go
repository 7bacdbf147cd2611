package chat

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

const messageCols = `id, appointment_id, sender_id, sender_role, body, created_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.AppointmentID, &m.SenderID, &m.SenderRole, &m.Body, &m.CreatedAt)
	return &m, err
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_messages (id, appointment_id, sender_id, sender_role, body)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.AppointmentID, m.SenderID, m.SenderRole, m.Body)
	return err
}

func (r *messageRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE appointment_id = $1`, appointmentID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+messageCols+` FROM chat_messages
		WHERE appointment_id = $1
		ORDER BY created_at ASC LIMIT $2 OFFSET $3`, appointmentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
