// Package resource defines the registry resources managed from the console and the
// descriptors that bind each one to a list screen.
package resource

import "time"

// User is a registry account.
type User struct {
	Username  string    `json:"username" firestore:"username"`
	Enabled   bool      `json:"enabled" firestore:"enabled"`
	CreatedAt time.Time `json:"createdAt" firestore:"created_at"`
}

// Role is a named set of permissions.
type Role struct {
	Name        string `json:"name" firestore:"name"`
	Description string `json:"description,omitempty" firestore:"description"`
}

// PersonalAccessToken is an API credential owned by a user.
type PersonalAccessToken struct {
	ID        string    `json:"id" firestore:"id"`
	Label     string    `json:"label" firestore:"label"`
	Scopes    []string  `json:"scopes" firestore:"scopes"`
	ExpiresAt time.Time `json:"expiresAt" firestore:"expires_at"`
}

// ContainerRepo is an OCI repository.
type ContainerRepo struct {
	Group string   `json:"group" firestore:"group"`
	Name  string   `json:"name" firestore:"name"`
	Tags  []string `json:"tags" firestore:"tags"`
}

// MavenArtifact is a Maven group/artifact coordinate hosted by the registry.
type MavenArtifact struct {
	GroupID    string `json:"groupId" firestore:"group_id"`
	ArtifactID string `json:"artifactId" firestore:"artifact_id"`
	Public     bool   `json:"public" firestore:"public"`
}

// UserID identifies a user by username.
func UserID(u User) string { return u.Username }

// RoleID identifies a role by name.
func RoleID(r Role) string { return r.Name }

// TokenID identifies a token by its ID.
func TokenID(t PersonalAccessToken) string { return t.ID }

// ContainerRepoID joins group and name as "group/name".
func ContainerRepoID(c ContainerRepo) string { return c.Group + "/" + c.Name }

// MavenArtifactID joins the coordinates as "groupId:artifactId".
func MavenArtifactID(m MavenArtifact) string { return m.GroupID + ":" + m.ArtifactID }
