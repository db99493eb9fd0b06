// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/autobrr/grabarr/internal/dbinterface"
)

// Artist is a monitored artist record. Only the fields the qualification core
// needs are modeled: the assigned quality profile and the tags that scope
// delay profiles.
type Artist struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	QualityProfileID int      `json:"qualityProfileId"`
	Tags             []string `json:"tags"`
}

// ImportList is an external list configuration that pins a quality profile.
type ImportList struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	QualityProfileID int    `json:"qualityProfileId"`
}

// RootFolder is a library root with an optional default quality profile.
type RootFolder struct {
	ID                      int    `json:"id"`
	Path                    string `json:"path"`
	DefaultQualityProfileID int    `json:"defaultQualityProfileId"`
}

// ArtistStore handles persistence for artist records.
type ArtistStore struct {
	db dbinterface.Querier
}

func NewArtistStore(db dbinterface.Querier) *ArtistStore {
	return &ArtistStore{db: db}
}

// Create inserts a new artist record.
func (s *ArtistStore) Create(ctx context.Context, a *Artist) (*Artist, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "artist name is required"}
	}

	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO artists (name, quality_profile_id, tags)
		VALUES (?, ?, ?)
	`, strings.TrimSpace(a.Name), a.QualityProfileID, string(tagsJSON))
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	created := *a
	created.ID = int(id)
	created.Tags = tags
	return &created, nil
}

// Get returns the artist with the given id, or sql.ErrNoRows.
func (s *ArtistStore) Get(ctx context.Context, id int) (*Artist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, quality_profile_id, tags
		FROM artists
		WHERE id = ?
	`, id)

	var a Artist
	var tagsJSON string
	if err := row.Scan(&a.ID, &a.Name, &a.QualityProfileID, &tagsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &a.Tags); err != nil {
		return nil, fmt.Errorf("artist %d: unmarshal tags: %w", a.ID, err)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return &a, nil
}

// ReferencesQualityProfile reports whether any artist is assigned the profile.
func (s *ArtistStore) ReferencesQualityProfile(ctx context.Context, profileID int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM artists WHERE quality_profile_id = ?
	`, profileID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ImportListStore handles persistence for import list configurations.
type ImportListStore struct {
	db dbinterface.Querier
}

func NewImportListStore(db dbinterface.Querier) *ImportListStore {
	return &ImportListStore{db: db}
}

// Create inserts a new import list configuration.
func (s *ImportListStore) Create(ctx context.Context, l *ImportList) (*ImportList, error) {
	if strings.TrimSpace(l.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "import list name is required"}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_lists (name, quality_profile_id)
		VALUES (?, ?)
	`, strings.TrimSpace(l.Name), l.QualityProfileID)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	created := *l
	created.ID = int(id)
	return &created, nil
}

// ReferencesQualityProfile reports whether any import list pins the profile.
func (s *ImportListStore) ReferencesQualityProfile(ctx context.Context, profileID int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM import_lists WHERE quality_profile_id = ?
	`, profileID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RootFolderStore handles persistence for root folders.
type RootFolderStore struct {
	db dbinterface.Querier
}

func NewRootFolderStore(db dbinterface.Querier) *RootFolderStore {
	return &RootFolderStore{db: db}
}

// Create inserts a new root folder.
func (s *RootFolderStore) Create(ctx context.Context, f *RootFolder) (*RootFolder, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, &ValidationError{Field: "path", Reason: "root folder path is required"}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO root_folders (path, default_quality_profile_id)
		VALUES (?, ?)
	`, strings.TrimSpace(f.Path), f.DefaultQualityProfileID)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	created := *f
	created.ID = int(id)
	return &created, nil
}

// ReferencesQualityProfile reports whether any root folder defaults to the profile.
func (s *RootFolderStore) ReferencesQualityProfile(ctx context.Context, profileID int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM root_folders WHERE default_quality_profile_id = ?
	`, profileID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
