package domain

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// Capability is the caller's access level for one request.
type Capability int

const (
	Public Capability = iota
	Admin
)

func (c Capability) String() string {
	if c == Admin {
		return "admin"
	}
	return "public"
}

type capabilityKey struct{}

// WithCapability stores the caller's capability on ctx.
func WithCapability(ctx context.Context, c Capability) context.Context {
	return context.WithValue(ctx, capabilityKey{}, c)
}

// CapabilityFrom returns the capability stored on ctx, Public when none.
func CapabilityFrom(ctx context.Context) Capability {
	if c, ok := ctx.Value(capabilityKey{}).(Capability); ok {
		return c
	}
	return Public
}

// Matches reports whether b passes f for a caller holding c.
// It mirrors the SQL predicate of the query engine so that clients can apply
// the same admission rule to live events.
func Matches(b Bookmark, f Filter, c Capability) bool {
	if c != Admin && b.IsPrivate {
		return false
	}
	if c == Admin {
		switch f.Privacy {
		case PrivacyPublic:
			if b.IsPrivate {
				return false
			}
		case PrivacyPrivate:
			if !b.IsPrivate {
				return false
			}
		}
	}
	if f.CategoryID != nil {
		if b.CategoryID == nil || *b.CategoryID != *f.CategoryID {
			return false
		}
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		folder := cases.Fold()
		needle := folder.String(q)
		fields := []string{b.Title, b.URL}
		if b.Description != nil {
			fields = append(fields, *b.Description)
		}
		for _, s := range fields {
			if strings.Contains(folder.String(s), needle) {
				return true
			}
		}
		return false
	}
	return true
}
