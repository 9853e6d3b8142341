package upstream

import (
	"github.com/janisto/enseada-console/internal/listpage"
	"github.com/janisto/enseada-console/internal/resource"
)

// Backend bundles one accessor per resource kind over a shared client.
type Backend struct {
	Users          listpage.Accessor[resource.User]
	Roles          listpage.Accessor[resource.Role]
	Tokens         listpage.Accessor[resource.PersonalAccessToken]
	ContainerRepos listpage.Accessor[resource.ContainerRepo]
	MavenArtifacts listpage.Accessor[resource.MavenArtifact]
}

// NewBackend creates accessors for every kind using the kind paths.
func NewBackend(c *Client) *Backend {
	return &Backend{
		Users:          Accessor[resource.User](c, resource.Users.Path),
		Roles:          Accessor[resource.Role](c, resource.Roles.Path),
		Tokens:         Accessor[resource.PersonalAccessToken](c, resource.Tokens.Path),
		ContainerRepos: Accessor[resource.ContainerRepo](c, resource.ContainerRepos.Path),
		MavenArtifacts: Accessor[resource.MavenArtifact](c, resource.MavenArtifacts.Path),
	}
}
