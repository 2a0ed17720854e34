package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cafe-pos/internal/entity"
)

// StaffRepository resolves staff references for order creation.
type StaffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db}
}

func (r *StaffRepository) GetStaff(ctx context.Context, id int) (*entity.Staff, error) {
	return getStaff(ctx, r.db, id)
}

func getStaff(ctx context.Context, q querier, id int) (*entity.Staff, error) {
	s := entity.Staff{}
	query := `SELECT id, name, role, active FROM staff WHERE id = ?`
	err := q.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.Role, &s.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("staff %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
