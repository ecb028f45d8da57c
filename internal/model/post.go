// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the blog post types shared by the repository, the
// HTTP layer and validation.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and on-disk format of a post date.
const DateLayout = "2006-01-02"

// Date is a calendar day serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day from t.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Post is a blog post as projected from its index file.
type Post struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        Date     `json:"date"`
	Draft       bool     `json:"draft"`
	Tags        []string `json:"tags"`
	Content     string   `json:"content"`
	FilePath    string   `json:"file_path"`

	// Revision is the blob hash observed when the post was read. Updates and
	// deletes send it back so a concurrent change is detected.
	Revision string `json:"-"`
}

// PostSummary is a post without its body, as returned by listings.
type PostSummary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        Date     `json:"date"`
	Draft       bool     `json:"draft"`
	Tags        []string `json:"tags"`
}

// Summary returns the listing view of p.
func (p *Post) Summary() PostSummary {
	return PostSummary{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		Draft:       p.Draft,
		Tags:        p.Tags,
	}
}

// Fields returns the editable fields of p.
func (p *Post) Fields() PostFields {
	return PostFields{
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		Draft:       p.Draft,
		Tags:        p.Tags,
		Content:     p.Content,
	}
}

// PostFields are the validated, editable fields of a post.
type PostFields struct {
	Title       string
	Description string
	Date        Date
	Draft       bool
	Tags        []string
	Content     string
}

// PostPatch is a field-level merge patch. Nil fields keep their current value.
type PostPatch struct {
	Title       *string
	Description *string
	Date        *Date
	Draft       *bool
	Tags        *[]string
	Content     *string
}

// Apply merges the patch over f and returns the result.
func (p PostPatch) Apply(f PostFields) PostFields {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Date != nil {
		f.Date = *p.Date
	}
	if p.Draft != nil {
		f.Draft = *p.Draft
	}
	if p.Tags != nil {
		f.Tags = *p.Tags
	}
	if p.Content != nil {
		f.Content = *p.Content
	}
	return f
}

// PostList is the response body of a listing.
type PostList struct {
	Posts []PostSummary `json:"posts"`
	Total int           `json:"total"`
}

// Identity is the authenticated GitHub account.
type Identity struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Email     string `json:"email"`
}
