package firestore

import (
	"cloud.google.com/go/firestore"

	"github.com/janisto/enseada-console/internal/resource"
)

// Backend bundles one store per resource kind over a shared client.
type Backend struct {
	Users          *Store[resource.User]
	Roles          *Store[resource.Role]
	Tokens         *Store[resource.PersonalAccessToken]
	ContainerRepos *Store[resource.ContainerRepo]
	MavenArtifacts *Store[resource.MavenArtifact]
}

// NewBackend creates stores for every kind using the kind paths as collection names.
func NewBackend(client *firestore.Client) *Backend {
	return &Backend{
		Users:          newKindStore(client, resource.Users),
		Roles:          newKindStore(client, resource.Roles),
		Tokens:         newKindStore(client, resource.Tokens),
		ContainerRepos: newKindStore(client, resource.ContainerRepos),
		MavenArtifacts: newKindStore(client, resource.MavenArtifacts),
	}
}

func newKindStore[T any](client *firestore.Client, kind resource.Kind[T]) *Store[T] {
	return NewStore(client, kind.Path, kind.MapID)
}
