// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package formats implements custom format detection and scoring. A custom
// format is a user-defined boolean expression over parsed release metadata;
// each quality profile assigns it a signed score, and a release's format
// score is the sum over every matching format.
package formats

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/pkg/releases"
)

// ReleaseEnv is the expression environment a custom format is evaluated
// against. Field names are the identifiers available inside expressions.
type ReleaseEnv struct {
	Title    string   `expr:"Title"`
	Artist   string   `expr:"Artist"`
	Group    string   `expr:"Group"`
	Source   string   `expr:"Source"`
	Audio    []string `expr:"Audio"`
	Year     int      `expr:"Year"`
	Indexer  string   `expr:"Indexer"`
	Protocol string   `expr:"Protocol"`
	SizeMB   int64    `expr:"SizeMB"`
	Quality  string   `expr:"Quality"`
}

// Detector reports which custom formats a release matches. Implemented by
// ExprDetector; tests substitute their own.
type Detector interface {
	Matches(release *models.Release, formats []*models.CustomFormat) []*models.CustomFormat
}

// ExprDetector compiles format expressions once and caches the programs
// keyed by expression text, so edits invalidate naturally.
type ExprDetector struct {
	parser *releases.Parser

	mu       sync.RWMutex
	programs map[string]*vm.Program
}

// NewExprDetector returns a detector using the given title parser.
func NewExprDetector(parser *releases.Parser) *ExprDetector {
	return &ExprDetector{
		parser:   parser,
		programs: make(map[string]*vm.Program),
	}
}

// Compile validates an expression without evaluating it. Used by the API
// layer to reject broken formats before they are persisted.
func (d *ExprDetector) Compile(expression string) error {
	_, err := d.program(expression)
	return err
}

func (d *ExprDetector) program(expression string) (*vm.Program, error) {
	d.mu.RLock()
	program, ok := d.programs[expression]
	d.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(expression, expr.Env(ReleaseEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile custom format expression: %w", err)
	}

	d.mu.Lock()
	d.programs[expression] = program
	d.mu.Unlock()
	return program, nil
}

// Matches evaluates every format against the release and returns those whose
// expression holds. A format that fails to compile or evaluate is skipped and
// logged; one broken format must not poison scoring for the rest.
func (d *ExprDetector) Matches(release *models.Release, formats []*models.CustomFormat) []*models.CustomFormat {
	if len(formats) == 0 {
		return nil
	}

	env := d.buildEnv(release)

	var matched []*models.CustomFormat
	for _, format := range formats {
		program, err := d.program(format.Expression)
		if err != nil {
			log.Warn().Err(err).Str("format", format.Name).Msg("Skipping custom format with invalid expression")
			continue
		}

		out, err := expr.Run(program, env)
		if err != nil {
			log.Warn().Err(err).Str("format", format.Name).Msg("Custom format evaluation failed")
			continue
		}

		if ok, _ := out.(bool); ok {
			matched = append(matched, format)
		}
	}
	return matched
}

func (d *ExprDetector) buildEnv(release *models.Release) ReleaseEnv {
	parsed := d.parser.Parse(release.Title)

	audio := make([]string, 0, len(parsed.Audio))
	for _, a := range parsed.Audio {
		audio = append(audio, strings.ToUpper(strings.TrimSpace(a)))
	}

	return ReleaseEnv{
		Title:    release.Title,
		Artist:   parsed.Artist,
		Group:    parsed.Group,
		Source:   strings.ToUpper(strings.TrimSpace(parsed.Source)),
		Audio:    audio,
		Year:     parsed.Year,
		Indexer:  release.Indexer,
		Protocol: string(release.Protocol),
		SizeMB:   release.Size / (1024 * 1024),
		Quality:  release.Quality.Name,
	}
}
