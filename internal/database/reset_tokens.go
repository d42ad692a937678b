package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createPasswordResetToken = `
INSERT INTO password_reset_tokens (token, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING token, user_id, expires_at, used
`

type CreatePasswordResetTokenParams struct {
	Token     uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
}

func (q *Queries) CreatePasswordResetToken(ctx context.Context, arg CreatePasswordResetTokenParams) (PasswordResetToken, error) {
	row := q.db.QueryRow(ctx, createPasswordResetToken, arg.Token, arg.UserID, arg.ExpiresAt)
	var t PasswordResetToken
	err := row.Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used)
	return t, err
}

const getPasswordResetToken = `
SELECT token, user_id, expires_at, used FROM password_reset_tokens WHERE token = $1
`

func (q *Queries) GetPasswordResetToken(ctx context.Context, token uuid.UUID) (PasswordResetToken, error) {
	row := q.db.QueryRow(ctx, getPasswordResetToken, token)
	var t PasswordResetToken
	err := row.Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used)
	return t, err
}

const markPasswordResetTokenUsed = `
UPDATE password_reset_tokens SET used = true WHERE token = $1
RETURNING token
`

func (q *Queries) MarkPasswordResetTokenUsed(ctx context.Context, token uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, markPasswordResetTokenUsed, token)
	var out uuid.UUID
	err := row.Scan(&out)
	return out, err
}
