package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultWelcome is stored for every new account.
const DefaultWelcome = "Welcome to your dashboard!"

var ErrNotFound = errors.New("dashboard not found")

// Data is the per-user dashboard content.
type Data struct {
	UserID         string    `json:"user_id"`
	WelcomeMessage string    `json:"welcome_message"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Repository persists dashboard data.
type Repository interface {
	Create(ctx context.Context, userID, message string) (Data, error)
	Get(ctx context.Context, userID string) (Data, error)
	SetWelcome(ctx context.Context, userID, message string) (Data, error)
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, message string) (Data, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Data{}, fmt.Errorf("parse user id: %w", err)
	}
	return scanData(r.db.QueryRow(ctx, `INSERT INTO dashboards (user_id, welcome_message, updated_at)
        VALUES ($1, $2, $3) RETURNING user_id, welcome_message, updated_at`, id, message, time.Now().UTC()))
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (Data, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Data{}, ErrNotFound
	}
	return scanData(r.db.QueryRow(ctx, `SELECT user_id, welcome_message, updated_at FROM dashboards WHERE user_id = $1`, id))
}

func (r *PostgresRepository) SetWelcome(ctx context.Context, userID, message string) (Data, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Data{}, ErrNotFound
	}
	return scanData(r.db.QueryRow(ctx, `UPDATE dashboards SET welcome_message = $2, updated_at = $3
        WHERE user_id = $1 RETURNING user_id, welcome_message, updated_at`, id, message, time.Now().UTC()))
}

func scanData(row pgx.Row) (Data, error) {
	var (
		id   uuid.UUID
		data Data
	)
	if err := row.Scan(&id, &data.WelcomeMessage, &data.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Data{}, ErrNotFound
		}
		return Data{}, fmt.Errorf("scan dashboard: %w", err)
	}
	data.UserID = id.String()
	data.UpdatedAt = data.UpdatedAt.UTC()
	return data, nil
}

type memoryRepository struct {
	mu   sync.RWMutex
	data map[string]Data
}

// NewMemoryRepository builds an in-memory dashboard store.
func NewMemoryRepository() Repository {
	return &memoryRepository{data: make(map[string]Data)}
}

func (r *memoryRepository) Create(_ context.Context, userID, message string) (Data, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := Data{UserID: userID, WelcomeMessage: message, UpdatedAt: time.Now().UTC()}
	r.data[userID] = d
	return d, nil
}

func (r *memoryRepository) Get(_ context.Context, userID string) (Data, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.data[userID]
	if !ok {
		return Data{}, ErrNotFound
	}
	return d, nil
}

func (r *memoryRepository) SetWelcome(_ context.Context, userID, message string) (Data, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.data[userID]
	if !ok {
		return Data{}, ErrNotFound
	}
	d.WelcomeMessage = message
	d.UpdatedAt = time.Now().UTC()
	r.data[userID] = d
	return d, nil
}
