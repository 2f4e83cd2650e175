package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type Message struct {
	ID        int64
	Username  string
	Text      string
	Room      string
	Timestamp time.Time
}

// SaveMessage appends a chat message for a room. Username and room are
// expected to already be normalized by the caller; the timestamp is
// assigned by the database and defines history ordering.
func (p *Postgres) SaveMessage(ctx context.Context, username, text, room string) (Message, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO messages (username, text, room)
		VALUES ($1, $2, $3)
		RETURNING id, username, text, room, ts
	`, username, text, room)

	var m Message
	if err := row.Scan(&m.ID, &m.Username, &m.Text, &m.Room, &m.Timestamp); err != nil {
		p.log.Error("message.save", "room", room, "cause", classify(err), "err", err)
		return Message{}, err
	}
	return m, nil
}

// RoomHistory returns up to limit messages for a room, oldest first.
func (p *Postgres) RoomHistory(ctx context.Context, room string, limit int) ([]Message, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, username, text, room, ts
		FROM messages
		WHERE room = $1
		ORDER BY ts ASC
		LIMIT $2
	`, room, limit)
	if err != nil {
		p.log.Error("message.history", "room", room, "cause", classify(err), "err", err)
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Username, &m.Text, &m.Room, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// classify separates data errors (constraint/schema violations reported by
// postgres) from connectivity failures for the log line.
func classify(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return "data"
	}
	return "connectivity"
}
