package domain

import "sort"

// AssociationStatus describes the relation between an account and one
// application identity.
type AssociationStatus string

const (
	Associated    AssociationStatus = "associated"
	NotAssociated AssociationStatus = "not_associated"
)

// Account is an immutable snapshot of one identity in the provider's
// directory. The broker never mutates a snapshot; association changes go
// through the provider and show up in the next snapshot.
type Account struct {
	ID          string // stable across sessions, unique in the directory
	Username    string
	DisplayName string

	// Associations maps application identities to their recorded status.
	Associations map[string]AssociationStatus
}

// AssociatedWith returns the application identities whose status is exactly
// Associated, sorted for stable output. Unknown or missing statuses are
// excluded.
func (a Account) AssociatedWith() []string {
	var apps []string
	for app, status := range a.Associations {
		if status == Associated {
			apps = append(apps, app)
		}
	}
	sort.Strings(apps)
	return apps
}

// IsAssociatedWith reports whether the account is associated with the given
// application identity.
func (a Account) IsAssociatedWith(appID string) bool {
	return a.Associations[appID] == Associated
}
