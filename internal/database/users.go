package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, name, email, hashed_password, role, created_at, updated_at`

const getUserByEmail = `
SELECT ` + userColumns + ` FROM users WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT ` + userColumns + ` FROM users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const createUser = `
INSERT INTO users (name, email, hashed_password, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns + `
`

type CreateUserParams struct {
	Name           string
	Email          string
	HashedPassword string
	Role           string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Name, arg.Email, arg.HashedPassword, arg.Role)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const updateUserPassword = `
UPDATE users SET hashed_password = $2, updated_at = now() WHERE id = $1
RETURNING id
`

func (q *Queries) UpdateUserPassword(ctx context.Context, id uuid.UUID, hashedPassword string) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, updateUserPassword, id, hashedPassword)
	var out uuid.UUID
	err := row.Scan(&out)
	return out, err
}
