// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package profiles owns quality profile resolution: building default
// profiles from the static catalog, CRUD with referential delete checks, the
// first-run bootstrap, and keeping every profile's format items in sync with
// the custom format catalog.
package profiles

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/events"
	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/internal/quality"
)

// ReferenceChecker is implemented by collaborators (artists, import lists,
// root folders) that can hold a live reference to a quality profile.
type ReferenceChecker interface {
	ReferencesQualityProfile(ctx context.Context, profileID int) (bool, error)
}

// Service resolves, persists, and maintains quality profiles.
type Service struct {
	profiles *models.QualityProfileStore
	formats  *models.CustomFormatStore
	checkers []ReferenceChecker
}

// New constructs the service and subscribes it to profile-relevant events.
func New(bus *events.Bus, profiles *models.QualityProfileStore, formats *models.CustomFormatStore, checkers ...ReferenceChecker) *Service {
	s := &Service{
		profiles: profiles,
		formats:  formats,
		checkers: checkers,
	}
	if bus != nil {
		bus.Subscribe(s.handleEvent)
	}
	return s
}

// Get returns the profile with the given id.
func (s *Service) Get(ctx context.Context, id int) (*models.QualityProfile, error) {
	return s.profiles.Get(ctx, id)
}

// All returns every stored profile.
func (s *Service) All(ctx context.Context) ([]*models.QualityProfile, error) {
	return s.profiles.List(ctx)
}

// Exists reports whether a profile with the given id is stored.
func (s *Service) Exists(ctx context.Context, id int) (bool, error) {
	return s.profiles.Exists(ctx, id)
}

// Add validates and persists a new profile.
func (s *Service) Add(ctx context.Context, p *models.QualityProfile) (*models.QualityProfile, error) {
	return s.profiles.Create(ctx, p)
}

// Update validates and persists changes to an existing profile.
func (s *Service) Update(ctx context.Context, p *models.QualityProfile) (*models.QualityProfile, error) {
	return s.profiles.Update(ctx, p)
}

// Delete removes a profile unless an artist, import list, or root folder
// still references it, in which case a *models.ConflictError carrying the
// profile's name is returned and nothing changes.
func (s *Service) Delete(ctx context.Context, id int) error {
	for _, checker := range s.checkers {
		referenced, err := checker.ReferencesQualityProfile(ctx, id)
		if err != nil {
			return errors.Wrap(err, "check quality profile references")
		}
		if referenced {
			profile, err := s.profiles.Get(ctx, id)
			if err != nil {
				return errors.Wrap(err, "load quality profile for conflict report")
			}
			return &models.ConflictError{Name: profile.Name, Reason: "quality profile is in use"}
		}
	}

	return s.profiles.Delete(ctx, id)
}

// DefaultProfile builds (without persisting) a profile over the full quality
// catalog. Catalog entries sharing a group weight become a group item with a
// synthetic id; singletons stay leaves. A nil cutoff defaults to Unknown, and
// a cutoff that falls inside a multi-member group is promoted to the group's
// id. Every known custom format is attached with score zero.
func (s *Service) DefaultProfile(ctx context.Context, name string, cutoff *quality.Quality, allowed ...quality.Quality) (*models.QualityProfile, error) {
	allowedIDs := make(map[int]struct{}, len(allowed))
	for _, q := range allowed {
		allowedIDs[q.ID] = struct{}{}
	}

	profileCutoff := quality.Unknown.ID
	if cutoff != nil {
		profileCutoff = cutoff.ID
	}

	var items []models.QualityProfileItem
	groupID := models.GroupIDBase

	for start := 0; start < len(quality.Catalog); {
		end := start
		for end < len(quality.Catalog) && quality.Catalog[end].GroupWeight == quality.Catalog[start].GroupWeight {
			end++
		}
		group := quality.Catalog[start:end]

		if len(group) == 1 {
			q := group[0]
			_, ok := allowedIDs[q.ID]
			items = append(items, models.QualityProfileItem{Quality: &q, Allowed: ok})
			start = end
			continue
		}

		groupAllowed := false
		for _, q := range group {
			if _, ok := allowedIDs[q.ID]; ok {
				groupAllowed = true
				break
			}
		}

		leaves := make([]models.QualityProfileItem, 0, len(group))
		for _, q := range group {
			q := q
			leaves = append(leaves, models.QualityProfileItem{Quality: &q, Allowed: groupAllowed})
		}

		items = append(items, models.QualityProfileItem{
			ID:      groupID,
			Name:    group[0].GroupName,
			Items:   leaves,
			Allowed: groupAllowed,
		})

		for _, q := range group {
			if q.ID == profileCutoff {
				profileCutoff = groupID
				break
			}
		}

		groupID++
		start = end
	}

	formats, err := s.formats.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list custom formats")
	}
	formatItems := make([]models.ProfileFormatItem, 0, len(formats))
	for _, f := range formats {
		formatItems = append(formatItems, models.ProfileFormatItem{FormatID: f.ID, Score: 0})
	}

	profile := &models.QualityProfile{
		Name:        name,
		Cutoff:      profileCutoff,
		Items:       items,
		FormatItems: formatItems,
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) handleEvent(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ApplicationStarted:
		return s.bootstrap(ctx)
	case events.CustomFormatAdded:
		return s.handleFormatAdded(ctx, e.Format)
	case events.CustomFormatDeleted:
		return s.handleFormatDeleted(ctx, e.Format)
	default:
		return nil
	}
}

// bootstrap seeds the three default profiles, but only when no profiles exist
// at all. A partially populated catalog is left untouched.
func (s *Service) bootstrap(ctx context.Context) error {
	count, err := s.profiles.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "count quality profiles")
	}
	if count > 0 {
		return nil
	}

	log.Info().Msg("Setting up default quality profiles")

	if err := s.addDefaultProfile(ctx, "Any", &quality.Unknown, quality.Catalog...); err != nil {
		return err
	}
	if err := s.addDefaultProfile(ctx, "Lossless", &quality.FLAC,
		quality.FLAC, quality.ALAC, quality.FLAC_24); err != nil {
		return err
	}
	return s.addDefaultProfile(ctx, "Standard", &quality.MP3_192,
		quality.MP3_192, quality.MP3_256, quality.MP3_320)
}

func (s *Service) addDefaultProfile(ctx context.Context, name string, cutoff *quality.Quality, allowed ...quality.Quality) error {
	profile, err := s.DefaultProfile(ctx, name, cutoff, allowed...)
	if err != nil {
		return fmt.Errorf("build default profile %q: %w", name, err)
	}
	if _, err := s.profiles.Create(ctx, profile); err != nil {
		return fmt.Errorf("create default profile %q: %w", name, err)
	}
	return nil
}

// handleFormatAdded prepends a disabled zero-score item to every profile.
// Front position marks the new format least trusted until a user raises it.
func (s *Service) handleFormatAdded(ctx context.Context, format *models.CustomFormat) error {
	all, err := s.profiles.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list quality profiles")
	}

	for _, profile := range all {
		profile.FormatItems = append([]models.ProfileFormatItem{{FormatID: format.ID, Score: 0}}, profile.FormatItems...)
		if _, err := s.profiles.Update(ctx, profile); err != nil {
			return fmt.Errorf("attach format %d to profile %d: %w", format.ID, profile.ID, err)
		}
	}
	return nil
}

// handleFormatDeleted strips the format from every profile. A profile whose
// format list empties gets both score thresholds reset; a stale nonzero
// threshold would reference formats that no longer exist.
func (s *Service) handleFormatDeleted(ctx context.Context, format *models.CustomFormat) error {
	all, err := s.profiles.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list quality profiles")
	}

	for _, profile := range all {
		kept := profile.FormatItems[:0]
		for _, item := range profile.FormatItems {
			if item.FormatID != format.ID {
				kept = append(kept, item)
			}
		}
		profile.FormatItems = kept

		if len(profile.FormatItems) == 0 {
			profile.MinFormatScore = 0
			profile.CutoffFormatScore = 0
		}

		if _, err := s.profiles.Update(ctx, profile); err != nil {
			return fmt.Errorf("detach format %d from profile %d: %w", format.ID, profile.ID, err)
		}
	}
	return nil
}
