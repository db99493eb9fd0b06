// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/grabarr/internal/database"
	"github.com/autobrr/grabarr/internal/decision"
	"github.com/autobrr/grabarr/internal/domain"
	"github.com/autobrr/grabarr/internal/events"
	"github.com/autobrr/grabarr/internal/formats"
	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/internal/profiles"
	"github.com/autobrr/grabarr/internal/tracked"
	"github.com/autobrr/grabarr/pkg/releases"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewBus()
	profileStore := models.NewQualityProfileStore(db)
	formatStore := models.NewCustomFormatStore(db)
	delayStore := models.NewDelayProfileStore(db)
	artistStore := models.NewArtistStore(db)

	profileService := profiles.New(bus, profileStore, formatStore, artistStore)

	parser := releases.NewParser(time.Minute)
	detector := formats.NewExprDetector(parser)
	evaluator := decision.New(detector, formatStore, delayStore)
	tracker := tracked.NewService(tracked.Config{MaxDownloadRetries: 3})

	// Seeds the default quality profiles.
	bus.Publish(context.Background(), events.ApplicationStarted{})

	server := NewServer(&Dependencies{
		Config:         &domain.Config{Host: "localhost", Port: 7878},
		DB:             db,
		Bus:            bus,
		ProfileService: profileService,
		DelayProfiles:  delayStore,
		CustomFormats:  formatStore,
		Detector:       detector,
		Evaluator:      evaluator,
		Tracker:        tracker,
		Parser:         parser,
	})

	return server.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/health/liveness", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/health/readiness", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Contains(t, got, "version")
}

func TestQualityProfileEndpoints(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	// Defaults seeded on startup.
	rec := doJSON(t, handler, http.MethodGet, "/api/quality-profiles/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*models.QualityProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 3)

	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Any", "Lossless", "Standard"}, names)

	// Get one of them by id.
	rec = doJSON(t, handler, http.MethodGet, "/api/quality-profiles/"+itoa(list[0].ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown id is a 404.
	rec = doJSON(t, handler, http.MethodGet, "/api/quality-profiles/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Profile with a cutoff outside its items is rejected.
	rec = doJSON(t, handler, http.MethodPost, "/api/quality-profiles/", map[string]any{
		"name":   "Broken",
		"cutoff": 12345,
		"items":  []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelayProfileEndpoints(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/delay-profiles/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*models.DelayProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault())

	// The seeded default cannot be deleted.
	rec = doJSON(t, handler, http.MethodDelete, "/api/delay-profiles/1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Tagged profile can be created and the default still lists last.
	rec = doJSON(t, handler, http.MethodPost, "/api/delay-profiles/", map[string]any{
		"preferredProtocol": "torrent",
		"torrentDelay":      30,
		"tags":              []string{"vinyl"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/delay-profiles/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.True(t, list[len(list)-1].IsDefault(), "default evaluates last")

	// Untagged non-default profile is invalid.
	rec = doJSON(t, handler, http.MethodPost, "/api/delay-profiles/", map[string]any{
		"preferredProtocol": "usenet",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomFormatEndpoints(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	// Broken expression is rejected before persisting.
	rec := doJSON(t, handler, http.MethodPost, "/api/custom-formats/", map[string]any{
		"name":       "broken",
		"expression": `Source ==`,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/custom-formats/", map[string]any{
		"name":       "vinyl source",
		"expression": `Source == "VINYL"`,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.CustomFormat
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotZero(t, created.ID)

	// Creating a format fans out a zero-score entry into every profile.
	rec = doJSON(t, handler, http.MethodGet, "/api/quality-profiles/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*models.QualityProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	for _, p := range list {
		found := false
		for _, item := range p.FormatItems {
			if item.FormatID == created.ID {
				found = true
				assert.Zero(t, item.Score)
			}
		}
		assert.True(t, found, "profile %s should reference the new format", p.Name)
	}

	// Delete strips it back out again.
	rec = doJSON(t, handler, http.MethodDelete, "/api/custom-formats/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/quality-profiles/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	for _, p := range list {
		for _, item := range p.FormatItems {
			assert.NotEqual(t, created.ID, item.FormatID)
		}
	}
}

func TestQueueEndpoints(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/queue/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*tracked.Download
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Empty(t, list)

	rec = doJSON(t, handler, http.MethodGet, "/api/queue/1:missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/queue/1:missing/ignore", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluateEndpoint(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	// Find the Standard profile id.
	rec := doJSON(t, handler, http.MethodGet, "/api/quality-profiles/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*models.QualityProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))

	var standardID int
	for _, p := range list {
		if p.Name == "Standard" {
			standardID = p.ID
		}
	}
	require.NotZero(t, standardID)

	// FLAC is not allowed by the Standard profile.
	rec = doJSON(t, handler, http.MethodPost, "/api/release/evaluate", map[string]any{
		"title":            "Artist - Album (2024) [FLAC]",
		"indexer":          "indexer1",
		"guid":             "guid-1",
		"protocol":         "usenet",
		"publishDate":      time.Now().Format(time.RFC3339),
		"qualityProfileId": standardID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quality  string            `json:"quality"`
		Decision decision.Decision `json:"decision"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "FLAC", resp.Quality)
	assert.Equal(t, decision.TypeReject, resp.Decision.Type)

	// MP3 320 passes and grabs immediately with the default delay profile.
	rec = doJSON(t, handler, http.MethodPost, "/api/release/evaluate", map[string]any{
		"title":            "Artist - Album (2024) [MP3 320]",
		"indexer":          "indexer1",
		"guid":             "guid-2",
		"protocol":         "usenet",
		"publishDate":      time.Now().Format(time.RFC3339),
		"qualityProfileId": standardID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, decision.TypeGrabNow, resp.Decision.Type)

	// Missing profile id is a 400.
	rec = doJSON(t, handler, http.MethodPost, "/api/release/evaluate", map[string]any{
		"title": "Artist - Album (2024) [MP3 320]",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func TestEvaluateBatchEndpoint(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/quality-profiles/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*models.QualityProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))

	var standardID int
	for _, p := range list {
		if p.Name == "Standard" {
			standardID = p.ID
		}
	}
	require.NotZero(t, standardID)

	release := func(title, guid string) map[string]any {
		return map[string]any{
			"title":       title,
			"indexer":     "indexer1",
			"guid":        guid,
			"protocol":    "usenet",
			"publishDate": time.Now().Format(time.RFC3339),
		}
	}

	// Candidates arrive in a deliberately bad order: the best quality last,
	// a disallowed quality in the middle.
	rec = doJSON(t, handler, http.MethodPost, "/api/release/evaluate/batch", map[string]any{
		"qualityProfileId": standardID,
		"releases": []map[string]any{
			release("Artist - Album (2024) [MP3 192]", "guid-192"),
			release("Artist - Album (2024) [FLAC]", "guid-flac"),
			release("Artist - Album (2024) [MP3 320]", "guid-320"),
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Candidates []struct {
			GUID     string            `json:"guid"`
			Quality  string            `json:"quality"`
			Decision decision.Decision `json:"decision"`
		} `json:"candidates"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Candidates, 3)

	assert.Equal(t, "guid-320", resp.Candidates[0].GUID, "highest quality ranks first")
	assert.Equal(t, decision.TypeGrabNow, resp.Candidates[0].Decision.Type)
	assert.Equal(t, "guid-192", resp.Candidates[1].GUID)
	assert.Equal(t, "guid-flac", resp.Candidates[2].GUID, "rejected candidates sort last")
	assert.Equal(t, decision.TypeReject, resp.Candidates[2].Decision.Type)

	// An empty batch is a 400.
	rec = doJSON(t, handler, http.MethodPost, "/api/release/evaluate/batch", map[string]any{
		"qualityProfileId": standardID,
		"releases":         []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
