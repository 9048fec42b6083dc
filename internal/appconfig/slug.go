package appconfig

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const maxSlugAttempts = 100

var ErrSlugExhausted = errors.New("could not find a unique slug")

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify collapses a display name into a URL-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalid.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "app"
	}
	return slug
}

// SlugExists reports whether a slug is already taken.
type SlugExists func(ctx context.Context, slug string) (bool, error)

// UniqueSlug returns the base slug, or the first free numeric-suffixed
// variant (base-2, base-3, ...), giving up after 100 attempts.
func UniqueSlug(ctx context.Context, base string, exists SlugExists) (string, error) {
	slug := Slugify(base)
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := slug
		if attempt > 1 {
			candidate = slug + "-" + strconv.Itoa(attempt)
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugExhausted
}
