package resource

import "github.com/janisto/enseada-console/internal/listpage"

// Kind describes one list screen: its service key, labels, backend path and identity.
type Kind[T any] struct {
	// Key is the service key and URL segment, e.g. "users".
	Key string
	// Label names a single resource in messages, e.g. "user".
	Label string
	// Title is the screen heading.
	Title string
	// Path is the collection name in Firestore and the path segment on the registry API.
	Path string
	// MapID extracts the resource identifier.
	MapID listpage.IDFunc[T]
}

// Descriptor is the type-erased view of a Kind.
type Descriptor struct {
	Key   string `json:"key" doc:"Service key" example:"users"`
	Label string `json:"label" doc:"Resource label used in messages" example:"user"`
	Title string `json:"title" doc:"Screen title" example:"Users"`
}

// Describe returns the type-erased descriptor.
func (k Kind[T]) Describe() Descriptor {
	return Descriptor{Key: k.Key, Label: k.Label, Title: k.Title}
}

// Resource kind descriptors.
var (
	Users = Kind[User]{
		Key:   "users",
		Label: "user",
		Title: "Users",
		Path:  "users",
		MapID: UserID,
	}
	Roles = Kind[Role]{
		Key:   "roles",
		Label: "role",
		Title: "Roles",
		Path:  "roles",
		MapID: RoleID,
	}
	Tokens = Kind[PersonalAccessToken]{
		Key:   "pats",
		Label: "token",
		Title: "Personal access tokens",
		Path:  "pats",
		MapID: TokenID,
	}
	ContainerRepos = Kind[ContainerRepo]{
		Key:   "containers",
		Label: "container repository",
		Title: "Container repositories",
		Path:  "containers",
		MapID: ContainerRepoID,
	}
	MavenArtifacts = Kind[MavenArtifact]{
		Key:   "maven",
		Label: "artifact",
		Title: "Maven artifacts",
		Path:  "maven",
		MapID: MavenArtifactID,
	}
)

// Descriptors lists every kind in menu order.
func Descriptors() []Descriptor {
	return []Descriptor{
		Users.Describe(),
		Roles.Describe(),
		Tokens.Describe(),
		ContainerRepos.Describe(),
		MavenArtifacts.Describe(),
	}
}
