// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

// migrations are applied in order; PRAGMA user_version tracks the last applied
// index + 1. Never edit an entry after release, append a new one instead.
var migrations = []string{
	// 1: initial schema
	`
	CREATE TABLE quality_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		cutoff INTEGER NOT NULL,
		min_format_score INTEGER NOT NULL DEFAULT 0,
		cutoff_format_score INTEGER NOT NULL DEFAULT 0,
		items TEXT NOT NULL,
		format_items TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE delay_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		preferred_protocol TEXT NOT NULL DEFAULT 'usenet',
		usenet_delay INTEGER NOT NULL DEFAULT 0,
		torrent_delay INTEGER NOT NULL DEFAULT 0,
		bypass_if_highest_quality INTEGER NOT NULL DEFAULT 0,
		bypass_if_above_custom_format_score INTEGER NOT NULL DEFAULT 0,
		minimum_custom_format_score INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]'
	);

	-- The untagged default delay profile. Id 1 is never deleted and never
	-- carries tags; it is the fallback when no tagged profile matches.
	INSERT INTO delay_profiles (
		id, preferred_protocol, usenet_delay, torrent_delay,
		bypass_if_highest_quality, bypass_if_above_custom_format_score,
		minimum_custom_format_score, sort_order, tags
	) VALUES (1, 'usenet', 0, 0, 0, 0, 0, 2147483647, '[]');

	CREATE TABLE custom_formats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		expression TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE artists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		quality_profile_id INTEGER NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE import_lists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		quality_profile_id INTEGER NOT NULL
	);

	CREATE TABLE root_folders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		default_quality_profile_id INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX idx_artists_quality_profile ON artists (quality_profile_id);
	CREATE INDEX idx_import_lists_quality_profile ON import_lists (quality_profile_id);
	`,
}
