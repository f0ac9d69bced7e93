package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 100

var (
	reSlugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reSlugHyphens  = regexp.MustCompile(`-+`)
)

// slugify turns a title into [a-z0-9-], stripping diacritics. Empty results fall back to "post".
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	s = reSlugNonAlnum.ReplaceAllString(b.String(), "-")
	s = reSlugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	if s == "" {
		s = "post"
	}
	return s
}

// uniqueSlug appends -2, -3, ... to base until exists reports the slug free.
func uniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	slug := base
	for i := 2; ; i++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSlugLen {
			trimmed = strings.Trim(trimmed[:maxSlugLen-len(suffix)], "-")
		}
		slug = trimmed + suffix
	}
}
