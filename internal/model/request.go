// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits.
const (
	MaxSlugLength        = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxTags              = 20
	MaxTagLength         = 50
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidationErrors maps a field name to its error message.
type ValidationErrors map[string]string

// Error implements error.
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidSlug reports whether s can name a post directory.
func IsValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

// CreatePostRequest is the body of a create call.
type CreatePostRequest struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Draft       bool     `json:"draft"`
	Tags        []string `json:"tags"`
	Content     string   `json:"content"`
}

// Validate checks the request and returns the normalised fields.
func (r *CreatePostRequest) Validate() (PostFields, ValidationErrors) {
	errs := ValidationErrors{}

	switch {
	case r.Slug == "":
		errs["slug"] = "Slug is required"
	case !IsValidSlug(r.Slug):
		errs["slug"] = fmt.Sprintf("Slug must be 1-%d characters of lowercase letters, digits and hyphens", MaxSlugLength)
	}

	fields := PostFields{
		Title:       validateText(errs, "title", r.Title, MaxTitleLength),
		Description: validateText(errs, "description", r.Description, MaxDescriptionLength),
		Draft:       r.Draft,
		Content:     r.Content,
	}

	if r.Date == "" {
		errs["date"] = "Date is required"
	} else if d, err := ParseDate(r.Date); err != nil {
		errs["date"] = "Date must be in YYYY-MM-DD format"
	} else {
		fields.Date = d
	}

	tags, msg := NormalizeTags(r.Tags)
	if msg != "" {
		errs["tags"] = msg
	}
	fields.Tags = tags

	if len(errs) > 0 {
		return PostFields{}, errs
	}
	return fields, nil
}

// UpdatePostRequest is the body of an update call. Absent or null fields
// are left unchanged.
type UpdatePostRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Date        *string   `json:"date"`
	Draft       *bool     `json:"draft"`
	Tags        *[]string `json:"tags"`
	Content     *string   `json:"content"`
}

// Validate checks the present fields and returns the patch.
func (r *UpdatePostRequest) Validate() (PostPatch, ValidationErrors) {
	errs := ValidationErrors{}
	patch := PostPatch{
		Draft:   r.Draft,
		Content: r.Content,
	}

	if r.Title != nil {
		title := validateText(errs, "title", *r.Title, MaxTitleLength)
		patch.Title = &title
	}
	if r.Description != nil {
		description := validateText(errs, "description", *r.Description, MaxDescriptionLength)
		patch.Description = &description
	}
	if r.Date != nil {
		if d, err := ParseDate(*r.Date); err != nil {
			errs["date"] = "Date must be in YYYY-MM-DD format"
		} else {
			patch.Date = &d
		}
	}
	if r.Tags != nil {
		tags, msg := NormalizeTags(*r.Tags)
		if msg != "" {
			errs["tags"] = msg
		}
		patch.Tags = &tags
	}

	if len(errs) > 0 {
		return PostPatch{}, errs
	}
	return patch, nil
}

// NormalizeTags trims every tag, drops empty ones and checks the limits.
// The returned message is empty when the tags are valid.
func NormalizeTags(tags []string) ([]string, string) {
	if len(tags) > MaxTags {
		return nil, fmt.Sprintf("At most %d tags are allowed", MaxTags)
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, fmt.Sprintf("Tag %q exceeds %d characters", tag, MaxTagLength)
		}
		for _, r := range tag {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != ' ' {
				return nil, fmt.Sprintf("Tag %q may only contain letters, digits, hyphens and spaces", tag)
			}
		}
		out = append(out, tag)
	}
	return out, ""
}

// validateText trims value, records an error when it is blank or too long,
// and returns the trimmed value.
func validateText(errs ValidationErrors, field, value string, limit int) string {
	value = strings.TrimSpace(value)
	switch n := utf8.RuneCountInString(value); {
	case n == 0:
		errs[field] = capitalize(field) + " is required"
	case n > limit:
		errs[field] = fmt.Sprintf("%s must be at most %d characters", capitalize(field), limit)
	}
	return value
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
