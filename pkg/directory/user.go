package directory

import (
	"context"
	"maps"
	"slices"
)

// Preferences holds a user's notification settings.
type Preferences struct {
	NotificationsEnabled bool     `json:"notifications_enabled"`
	EmailFrequency       string   `json:"email_frequency"`
	Channels             []string `json:"channels,omitempty"`
}

// User is the directory record consulted before a notification is sent.
type User struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Preferences *Preferences      `json:"preferences,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy, so callers can hold or mutate the result without
// reaching into shared state.
func (u User) Clone() User {
	out := u
	if u.Preferences != nil {
		prefs := *u.Preferences
		prefs.Channels = slices.Clone(u.Preferences.Channels)
		out.Preferences = &prefs
	}
	out.Metadata = maps.Clone(u.Metadata)
	return out
}

// Lookup resolves users by identifier. Implementations return ErrUserNotFound
// for unknown identifiers and reserve other errors for infrastructure
// failures.
type Lookup interface {
	FindByID(ctx context.Context, id string) (*User, error)
}
