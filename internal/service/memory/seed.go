package memory

import (
	"fmt"
	"time"

	"github.com/janisto/enseada-console/internal/resource"
)

// Backend bundles one store per resource kind.
type Backend struct {
	Users          *Store[resource.User]
	Roles          *Store[resource.Role]
	Tokens         *Store[resource.PersonalAccessToken]
	ContainerRepos *Store[resource.ContainerRepo]
	MavenArtifacts *Store[resource.MavenArtifact]
}

// NewBackend creates empty stores for every kind.
func NewBackend() *Backend {
	return &Backend{
		Users:          NewStore(resource.Users.MapID),
		Roles:          NewStore(resource.Roles.MapID),
		Tokens:         NewStore(resource.Tokens.MapID),
		ContainerRepos: NewStore(resource.ContainerRepos.MapID),
		MavenArtifacts: NewStore(resource.MavenArtifacts.MapID),
	}
}

// Seed fills the stores with demo data. Enough users are created to span several pages.
func (b *Backend) Seed(now time.Time) {
	now = now.UTC()
	for i := 1; i <= 60; i++ {
		b.Users.Put(resource.User{
			Username:  fmt.Sprintf("user%02d", i),
			Enabled:   i%7 != 0,
			CreatedAt: now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}

	b.Users.Put(resource.User{Username: "admin", Enabled: true, CreatedAt: now})

	for _, r := range []resource.Role{
		{Name: "admin", Description: "Full access"},
		{Name: "maven:reader", Description: "Read Maven repositories"},
		{Name: "maven:deployer", Description: "Deploy Maven artifacts"},
		{Name: "oci:reader", Description: "Pull container images"},
		{Name: "oci:pusher", Description: "Push container images"},
	} {
		b.Roles.Put(r)
	}

	for i := 1; i <= 8; i++ {
		b.Tokens.Put(resource.PersonalAccessToken{
			ID:        fmt.Sprintf("pat-%03d", i),
			Label:     fmt.Sprintf("token %d", i),
			Scopes:    []string{"read"},
			ExpiresAt: now.Add(time.Duration(i) * 30 * 24 * time.Hour),
		})
	}

	for _, group := range []string{"acme", "platform"} {
		for _, name := range []string{"api", "web", "worker"} {
			b.ContainerRepos.Put(resource.ContainerRepo{Group: group, Name: name, Tags: []string{"latest"}})
		}
	}

	for i, artifact := range []string{"core", "client", "server", "testkit"} {
		b.MavenArtifacts.Put(resource.MavenArtifact{GroupID: "io.enseada", ArtifactID: artifact, Public: i%2 == 0})
	}
}
