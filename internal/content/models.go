// Package content manages the site owner's portfolio content: the
// profile singleton, projects, and publications.
package content

// Profile is the site owner's profile. A single row exists; saving
// replaces it wholesale.
type Profile struct {
	Name      string            `json:"name"`
	Title     string            `json:"title"`
	Bio       string            `json:"bio"`
	Email     string            `json:"email"`
	Location  string            `json:"location"`
	AvatarURL string            `json:"avatarUrl"`
	Links     map[string]string `json:"links"`
	UpdatedAt string            `json:"updatedAt,omitempty"`
}

// Project is a portfolio project entry.
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
	RepoURL     string   `json:"repoUrl"`
	DemoURL     string   `json:"demoUrl"`
	SortOrder   int      `json:"sortOrder"`
	Published   bool     `json:"published"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// Publication is a paper or article entry, listed newest year first.
type Publication struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Venue     string `json:"venue"`
	Year      int    `json:"year"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
