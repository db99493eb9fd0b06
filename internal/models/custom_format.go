// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/autobrr/grabarr/internal/dbinterface"
)

// CustomFormat is a user-defined matcher over parsed release metadata.
// Expression is an expr-lang boolean expression evaluated against the
// release fields exposed by the format detector.
type CustomFormat struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks required fields. Expression compilation is the detector's
// concern; the store only rejects the obviously empty.
func (f *CustomFormat) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Reason: "custom format name is required"}
	}
	if strings.TrimSpace(f.Expression) == "" {
		return &ValidationError{Field: "expression", Reason: "custom format expression is required"}
	}
	return nil
}

// CustomFormatStore handles persistence for custom formats.
type CustomFormatStore struct {
	db dbinterface.Querier
}

// NewCustomFormatStore returns a CustomFormatStore backed by db.
func NewCustomFormatStore(db dbinterface.Querier) *CustomFormatStore {
	return &CustomFormatStore{db: db}
}

// List returns all custom formats ordered by name.
func (s *CustomFormatStore) List(ctx context.Context) ([]*CustomFormat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, expression, created_at
		FROM custom_formats
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var formats []*CustomFormat
	for rows.Next() {
		var f CustomFormat
		if err := rows.Scan(&f.ID, &f.Name, &f.Expression, &f.CreatedAt); err != nil {
			return nil, err
		}
		formats = append(formats, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return formats, nil
}

// Get returns the custom format with the given id, or sql.ErrNoRows.
func (s *CustomFormatStore) Get(ctx context.Context, id int) (*CustomFormat, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, expression, created_at
		FROM custom_formats
		WHERE id = ?
	`, id)

	var f CustomFormat
	if err := row.Scan(&f.ID, &f.Name, &f.Expression, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new custom format and returns it with the generated id.
func (s *CustomFormatStore) Create(ctx context.Context, f *CustomFormat) (*CustomFormat, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_formats (name, expression)
		VALUES (?, ?)
	`, strings.TrimSpace(f.Name), f.Expression)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("custom format %q already exists", f.Name)}
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Delete removes the custom format with the given id.
func (s *CustomFormatStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM custom_formats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
