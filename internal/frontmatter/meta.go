// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package frontmatter

import (
	"fmt"
	"strings"
	"time"
)

// Meta is a decoded metadata block. Values keep the dynamic types produced
// by the YAML decoder; the accessors below coerce them for post fields.
type Meta map[string]any

// dateLayouts are tried in order when a date value is a string.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Text returns the value at key when it is a string.
func (m Meta) Text(key string) string {
	s, _ := m[key].(string)
	return s
}

// Title returns the title, empty when missing or not a string.
func (m Meta) Title() string {
	return m.Text(KeyTitle)
}

// Description returns the description, empty when missing or not a string.
func (m Meta) Description() string {
	return m.Text(KeyDescription)
}

// Draft reports whether the draft flag is set to boolean true.
func (m Meta) Draft() bool {
	b, _ := m[KeyDraft].(bool)
	return b
}

// Date returns the publication date truncated to a calendar day. The second
// result is false when the field is missing or cannot be parsed.
func (m Meta) Date() (time.Time, bool) {
	switch v := m[KeyDate].(type) {
	case time.Time:
		return truncateDay(v), true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncateDay(t), true
			}
		}
	}
	return time.Time{}, false
}

// Tags returns the tag list. Scalars inside the sequence are stringified;
// anything that is not a sequence yields nil.
func (m Meta) Tags() []string {
	items, ok := m[KeyTags].([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case string:
			tags = append(tags, v)
		default:
			tags = append(tags, fmt.Sprint(v))
		}
	}
	return tags
}

// Complete reports whether both title and description are present.
func (m Meta) Complete() bool {
	return strings.TrimSpace(m.Title()) != "" && strings.TrimSpace(m.Description()) != ""
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
