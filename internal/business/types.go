// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package business fetches per-restaurant detail from the upstream
// directory: contact info and opening hours from its JSON endpoint,
// reviews scraped from its HTML pages. Both paths run behind circuit
// breakers so a slow upstream degrades detail panes instead of taking
// recommendations down with it.
package business

// BusinessInfo is the detail record for one restaurant.
type BusinessInfo struct {
	BusinessID string      `json:"id"`
	Name       string      `json:"name"`
	Phone      string      `json:"display_phone"`
	Website    string      `json:"url"`
	ImageURLs  []string    `json:"photos"`
	Hours      []OpenHours `json:"hours"`
	IsClosed   bool        `json:"is_closed"`
}

// OpenHours is one opening interval. Day is 0-based starting Monday;
// Start and End are 24-hour HHMM strings as the upstream reports them.
type OpenHours struct {
	Day         int    `json:"day"`
	Start       string `json:"start"`
	End         string `json:"end"`
	IsOvernight bool   `json:"is_overnight"`
}

// Review is one user review of a restaurant.
type Review struct {
	User        string  `json:"user"`
	Rating      float64 `json:"rating"`
	TimeCreated string  `json:"time_created"`
	Text        string  `json:"text"`
}
