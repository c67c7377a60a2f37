package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/crypto"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/database"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("content: not found")

// Repository persists portfolio content in SQLite. Collections with
// structured fields (profile links, project tech tags) store them as
// JSON text columns.
type Repository struct {
	db *database.DB
}

// NewRepository creates a content repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// GetProfile returns the owner profile, or an empty profile when none
// has been saved yet.
func (r *Repository) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	var links string
	err := r.db.QueryRowContext(ctx, `
		SELECT name, title, bio, email, location, avatar_url, links, updated_at
		FROM profile
		WHERE id = 'owner'
	`).Scan(&p.Name, &p.Title, &p.Bio, &p.Email, &p.Location, &p.AvatarURL, &links, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return &Profile{Links: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := json.Unmarshal([]byte(links), &p.Links); err != nil {
		return nil, fmt.Errorf("failed to decode profile links: %w", err)
	}
	if p.Links == nil {
		p.Links = map[string]string{}
	}
	return &p, nil
}

// SaveProfile replaces the owner profile.
func (r *Repository) SaveProfile(ctx context.Context, p *Profile) error {
	links := p.Links
	if links == nil {
		links = map[string]string{}
	}
	encoded, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to encode profile links: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profile (id, name, title, bio, email, location, avatar_url, links, updated_at)
		VALUES ('owner', ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			bio = excluded.bio,
			email = excluded.email,
			location = excluded.location,
			avatar_url = excluded.avatar_url,
			links = excluded.links,
			updated_at = excluded.updated_at
	`, p.Name, p.Title, p.Bio, p.Email, p.Location, p.AvatarURL, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ListProjects returns projects ordered for display. When
// publishedOnly is set, drafts are excluded.
func (r *Repository) ListProjects(ctx context.Context, publishedOnly bool) ([]*Project, error) {
	query := `
		SELECT id, title, summary, description, tech, repo_url, demo_url,
		       sort_order, published, created_at, updated_at
		FROM projects
	`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject returns a single project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, summary, description, tech, repo_url, demo_url,
		       sort_order, published, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject inserts a new project and assigns its ID.
func (r *Repository) CreateProject(ctx context.Context, p *Project) error {
	id, err := crypto.GenerateID("prj")
	if err != nil {
		return fmt.Errorf("failed to generate project ID: %w", err)
	}
	p.ID = id

	tech, err := encodeTech(p.Tech)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, summary, description, tech, repo_url,
		                      demo_url, sort_order, published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Summary, p.Description, tech, p.RepoURL, p.DemoURL,
		p.SortOrder, boolToInt(p.Published))
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// UpdateProject replaces an existing project's fields.
func (r *Repository) UpdateProject(ctx context.Context, p *Project) error {
	tech, err := encodeTech(p.Tech)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET title = ?, summary = ?, description = ?, tech = ?, repo_url = ?,
		    demo_url = ?, sort_order = ?, published = ?, updated_at = datetime('now')
		WHERE id = ?
	`, p.Title, p.Summary, p.Description, tech, p.RepoURL, p.DemoURL,
		p.SortOrder, boolToInt(p.Published), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireRow(result)
}

// DeleteProject removes a project.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(result)
}

// ListPublications returns publications, newest year first.
func (r *Repository) ListPublications(ctx context.Context) ([]*Publication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, authors, venue, year, url, created_at, updated_at
		FROM publications
		ORDER BY year DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}
	defer rows.Close()

	publications := []*Publication{}
	for rows.Next() {
		var p Publication
		if err := rows.Scan(&p.ID, &p.Title, &p.Authors, &p.Venue, &p.Year,
			&p.URL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan publication: %w", err)
		}
		publications = append(publications, &p)
	}
	return publications, rows.Err()
}

// CreatePublication inserts a new publication and assigns its ID.
func (r *Repository) CreatePublication(ctx context.Context, p *Publication) error {
	id, err := crypto.GenerateID("pub")
	if err != nil {
		return fmt.Errorf("failed to generate publication ID: %w", err)
	}
	p.ID = id

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO publications (id, title, authors, venue, year, url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Authors, p.Venue, p.Year, p.URL)
	if err != nil {
		return fmt.Errorf("failed to create publication: %w", err)
	}
	return nil
}

// UpdatePublication replaces an existing publication's fields.
func (r *Repository) UpdatePublication(ctx context.Context, p *Publication) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE publications
		SET title = ?, authors = ?, venue = ?, year = ?, url = ?,
		    updated_at = datetime('now')
		WHERE id = ?
	`, p.Title, p.Authors, p.Venue, p.Year, p.URL, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update publication: %w", err)
	}
	return requireRow(result)
}

// DeletePublication removes a publication.
func (r *Repository) DeletePublication(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM publications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete publication: %w", err)
	}
	return requireRow(result)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	var tech string
	var published int
	err := row.Scan(&p.ID, &p.Title, &p.Summary, &p.Description, &tech,
		&p.RepoURL, &p.DemoURL, &p.SortOrder, &published, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	if err := json.Unmarshal([]byte(tech), &p.Tech); err != nil {
		return nil, fmt.Errorf("failed to decode project tech tags: %w", err)
	}
	if p.Tech == nil {
		p.Tech = []string{}
	}
	p.Published = published != 0
	return &p, nil
}

func encodeTech(tech []string) (string, error) {
	if tech == nil {
		tech = []string{}
	}
	encoded, err := json.Marshal(tech)
	if err != nil {
		return "", fmt.Errorf("failed to encode project tech tags: %w", err)
	}
	return string(encoded), nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
