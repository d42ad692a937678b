package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	HashedPassword string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description pgtype.Text
	CreatedAt   time.Time
}

type Product struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	CreatedAt  time.Time
}

type Order struct {
	ID            uuid.UUID
	UserID        pgtype.UUID
	CustomerName  string
	CustomerEmail string
	TotalAmount   pgtype.Numeric
	Status        string
	Notes         pgtype.Text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Price     pgtype.Numeric
	Size      pgtype.Text
	Color     pgtype.Text
	CreatedAt time.Time
}

type PasswordResetToken struct {
	Token     uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	Used      bool
}
