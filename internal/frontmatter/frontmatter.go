// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package frontmatter reads and writes the YAML metadata block that heads
// every post document.
//
// A document with front matter looks like:
//
//	---
//	title: Hello
//	description: First post
//	date: '2024-01-01'
//	---
//
//	Body text.
//
// Only the first delimited block is recognised, so the body may itself contain
// lines made of three dashes.
package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Delimiter is the line that opens and closes the metadata block.
const Delimiter = "---"

// DateLayout is the on-disk format of the date field.
const DateLayout = "2006-01-02"

// Keys written by Encode, in emission order.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyDate        = "date"
	KeyDraft       = "draft"
	KeyTags        = "tags"
)

// block matches an opening delimiter line, the lazily captured YAML body, the
// first closing delimiter line, one optional separator line and the rest.
var block = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|\z)(?:\r?\n)?(.*)\z`)

// Decode splits text into its metadata and body. When text has no leading
// metadata block the whole input is the body. Malformed YAML yields empty
// metadata; callers decide whether the result is usable.
func Decode(text string) (Meta, string) {
	m := block.FindStringSubmatch(text)
	if m == nil {
		return Meta{}, text
	}

	meta := Meta{}
	if err := yaml.Unmarshal([]byte(m[1]), &meta); err != nil || meta == nil {
		return Meta{}, m[2]
	}
	return meta, m[2]
}

// Encode renders the metadata block, delimiters included. The date is always
// written as a quoted YYYY-MM-DD string, draft only when true and tags only
// when there are any.
func Encode(title, description string, date time.Time, draft bool, tags []string) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, scalar(key), value)
	}

	add(KeyTitle, scalar(title))
	add(KeyDescription, scalar(description))
	add(KeyDate, &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.SingleQuotedStyle,
		Value: date.Format(DateLayout),
	})
	if draft {
		add(KeyDraft, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	// Tags are written as a block sequence at column 0, one "- item" line
	// per tag, which the encoder cannot produce on its own.
	if len(tags) > 0 {
		buf.WriteString(KeyTags + ":\n")
		for _, tag := range tags {
			item, err := yaml.Marshal(tagNode(tag))
			if err != nil {
				return "", fmt.Errorf("encoding tag %q: %w", tag, err)
			}
			buf.WriteString("- " + strings.TrimSuffix(string(item), "\n") + "\n")
		}
	}

	return Delimiter + "\n" + buf.String() + Delimiter + "\n", nil
}

// Compose joins an encoded metadata block and a body with the blank separator
// line that Decode strips again.
func Compose(header, body string) string {
	return header + "\n" + body
}

// tagNode keeps multi-line tags on one line so each sequence item stays a
// single "- " line.
func tagNode(tag string) *yaml.Node {
	n := scalar(tag)
	if strings.ContainsAny(tag, "\r\n") {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
