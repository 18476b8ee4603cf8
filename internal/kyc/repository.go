package kyc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRecordNotFound is returned when the user has no KYC record.
var ErrRecordNotFound = errors.New("kyc record not found")

// Repository stores one KYC record per user.
type Repository interface {
	Create(ctx context.Context, userID string) (Record, error)
	Get(ctx context.Context, userID string) (Record, error)
	// SetPhone binds phone. A different number drops any verification,
	// which only ever holds for the phone the OTP was checked against.
	SetPhone(ctx context.Context, userID, phone string) (Record, error)
	// MarkVerified sets the id number and the verified flag together.
	MarkVerified(ctx context.Context, userID, idNumber string) (Record, error)
}

// PostgresRepository implements Repository on the kyc_records table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const returning = ` RETURNING user_id, id_number, phone_number, is_verified, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, userID string) (Record, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Record{}, fmt.Errorf("parse user id: %w", err)
	}
	return scanRecord(r.db.QueryRow(ctx, `INSERT INTO kyc_records (user_id, is_verified, updated_at)
        VALUES ($1, FALSE, $2)`+returning, id, time.Now().UTC()))
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (Record, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Record{}, ErrRecordNotFound
	}
	return scanRecord(r.db.QueryRow(ctx, `SELECT user_id, id_number, phone_number, is_verified, updated_at
        FROM kyc_records WHERE user_id = $1`, id))
}

func (r *PostgresRepository) SetPhone(ctx context.Context, userID, phone string) (Record, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Record{}, ErrRecordNotFound
	}
	return scanRecord(r.db.QueryRow(ctx, `UPDATE kyc_records SET
            is_verified = CASE WHEN phone_number IS DISTINCT FROM $2 THEN FALSE ELSE is_verified END,
            id_number = CASE WHEN phone_number IS DISTINCT FROM $2 THEN NULL ELSE id_number END,
            phone_number = $2,
            updated_at = $3
        WHERE user_id = $1`+returning, id, phone, time.Now().UTC()))
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, userID, idNumber string) (Record, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Record{}, ErrRecordNotFound
	}
	return scanRecord(r.db.QueryRow(ctx, `UPDATE kyc_records SET id_number = $2, is_verified = TRUE, updated_at = $3
        WHERE user_id = $1`+returning, id, idNumber, time.Now().UTC()))
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		id       uuid.UUID
		idNumber *string
		phone    *string
		rec      Record
	)
	if err := row.Scan(&id, &idNumber, &phone, &rec.IsVerified, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("scan kyc record: %w", err)
	}
	rec.UserID = id.String()
	if idNumber != nil {
		rec.IDNumber = *idNumber
	}
	if phone != nil {
		rec.PhoneNumber = *phone
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
