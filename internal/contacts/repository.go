package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound covers both missing contacts and contacts owned by someone else.
var ErrNotFound = errors.New("contact not found")

// Repository persists contacts. Every lookup is scoped by owner.
type Repository interface {
	Create(ctx context.Context, c Contact) error
	ListByUser(ctx context.Context, userID string) ([]Contact, error)
	Get(ctx context.Context, userID, id string) (Contact, error)
	Update(ctx context.Context, c Contact) error
	Delete(ctx context.Context, userID, id string) error
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectContact = `SELECT id, user_id, name, phone_number, created_at FROM emergency_contacts`

func (r *PostgresRepository) Create(ctx context.Context, c Contact) error {
	id, userID, err := parseIDs(c.ID, c.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO emergency_contacts (id, user_id, name, phone_number, created_at)
        VALUES ($1, $2, $3, $4, $5)`, id, userID, c.Name, c.PhoneNumber, c.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Contact, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, selectContact+` WHERE user_id = $1 ORDER BY created_at, id`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (Contact, error) {
	cid, uid, err := parseIDs(id, userID)
	if err != nil {
		return Contact{}, ErrNotFound
	}
	return scanContact(r.db.QueryRow(ctx, selectContact+` WHERE id = $1 AND user_id = $2`, cid, uid))
}

func (r *PostgresRepository) Update(ctx context.Context, c Contact) error {
	id, userID, err := parseIDs(c.ID, c.UserID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE emergency_contacts SET name = $3, phone_number = $4
        WHERE id = $1 AND user_id = $2`, id, userID, c.Name, c.PhoneNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	cid, uid, err := parseIDs(id, userID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM emergency_contacts WHERE id = $1 AND user_id = $2`, cid, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func parseIDs(id, userID string) (uuid.UUID, uuid.UUID, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parse contact id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parse user id: %w", err)
	}
	return cid, uid, nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var (
		id, userID uuid.UUID
		c          Contact
	)
	if err := row.Scan(&id, &userID, &c.Name, &c.PhoneNumber, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, fmt.Errorf("scan contact: %w", err)
	}
	c.ID = id.String()
	c.UserID = userID.String()
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
