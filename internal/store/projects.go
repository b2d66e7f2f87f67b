package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"seosuite/internal/core"
)

const activeProjectKey = "active_project_id"

// Project is a named workspace holding linking and extraction state.
type Project struct {
	ID        string    `db:"id" json:"id" yaml:"id"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" yaml:"updated_at"`
}

// LinkingState is what the internal linking tool keeps per project.
// Articles is authoritative when set; BulkInput is the editable text form.
type LinkingState struct {
	Pillar          core.PillarPage  `json:"pillar" yaml:"pillar"`
	Articles        []core.Article   `json:"articles,omitempty" yaml:"articles,omitempty"`
	BulkInput       string           `json:"bulk_input" yaml:"bulk_input"`
	Strategy        string           `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	LinksPerArticle int              `json:"links_per_article,omitempty" yaml:"links_per_article,omitempty"`
	Templates       []string         `json:"templates,omitempty" yaml:"templates,omitempty"`
	LinkingMap      *core.LinkingMap `json:"linking_map,omitempty" yaml:"linking_map,omitempty"`
}

// ExtractorState is what the keyword extractor keeps per project.
type ExtractorState struct {
	URLs       []string             `json:"urls,omitempty" yaml:"urls,omitempty"`
	SitemapURL string               `json:"sitemap_url,omitempty" yaml:"sitemap_url,omitempty"`
	Config     core.ExtractorConfig `json:"config" yaml:"config"`
	Results    *core.BatchResult    `json:"results,omitempty" yaml:"results,omitempty"`
}

// ProjectState is the saved tool state of a project.
type ProjectState struct {
	Linking   LinkingState   `json:"linking" yaml:"linking"`
	Extractor ExtractorState `json:"extractor" yaml:"extractor"`
}

func projectNotFound(id string) error {
	return fmt.Errorf("project %s: %w", id, ErrNotFound)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.NewValidationError("name", "project name is required")
	}
	return name, nil
}

// CreateProject stores a new project and makes it the active one.
func (s *Store) CreateProject(ctx context.Context, name string) (Project, error) {
	name, err := validateName(name)
	if err != nil {
		return Project{}, err
	}

	ts := now()
	project := Project{ID: uuid.NewString(), Name: name, CreatedAt: ts, UpdatedAt: ts}

	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertProject(ctx, tx, project); err != nil {
			return err
		}
		return setActive(ctx, tx, project.ID)
	})
	if err != nil {
		return Project{}, err
	}
	return project, nil
}

func insertProject(ctx context.Context, tx *sqlx.Tx, p Project) error {
	query := tx.Rebind(`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, query, p.ID, p.Name, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// ListProjects returns all projects, oldest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	projects := []Project{}
	query := `SELECT id, name, created_at, updated_at FROM projects ORDER BY created_at, id`
	if err := s.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns the project with the given id.
func (s *Store) GetProject(ctx context.Context, id string) (Project, error) {
	var project Project
	query := s.db.Rebind(`SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`)
	err := s.db.GetContext(ctx, &project, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, projectNotFound(id)
	}
	if err != nil {
		return Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// RenameProject changes a project's name.
func (s *Store) RenameProject(ctx context.Context, id, name string) (Project, error) {
	name, err := validateName(name)
	if err != nil {
		return Project{}, err
	}

	query := s.db.Rebind(`UPDATE projects SET name = ?, updated_at = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, name, now(), id)
	if err != nil {
		return Project{}, fmt.Errorf("failed to rename project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Project{}, projectNotFound(id)
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project with its state and keywords. When the
// project was active, the oldest remaining project becomes active.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM projects WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return projectNotFound(id)
		}

		for _, table := range []string{"project_state", "master_keywords"} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE project_id = ?", table)), id); err != nil {
				return fmt.Errorf("failed to delete project %s: %w", table, err)
			}
		}

		active, err := getActive(ctx, tx)
		if err != nil {
			return err
		}
		if active != id {
			return nil
		}

		var next string
		err = tx.GetContext(ctx, &next, `SELECT id FROM projects ORDER BY created_at, id LIMIT 1`)
		if errors.Is(err, sql.ErrNoRows) {
			return clearActive(ctx, tx)
		}
		if err != nil {
			return fmt.Errorf("failed to pick next active project: %w", err)
		}
		return setActive(ctx, tx, next)
	})
}

// SetActiveProject marks the project as the active one.
func (s *Store) SetActiveProject(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireProject(ctx, tx, id); err != nil {
			return err
		}
		return setActive(ctx, tx, id)
	})
}

// ActiveProject returns the active project, or nil when there is none.
func (s *Store) ActiveProject(ctx context.Context) (*Project, error) {
	var id string
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`SELECT value FROM settings WHERE key = ?`), activeProjectKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active project: %w", err)
	}

	project, err := s.GetProject(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func getActive(ctx context.Context, tx *sqlx.Tx) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, tx.Rebind(`SELECT value FROM settings WHERE key = ?`), activeProjectKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get active project: %w", err)
	}
	return id, nil
}

func setActive(ctx context.Context, tx *sqlx.Tx, id string) error {
	query := tx.Rebind(`
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
	if _, err := tx.ExecContext(ctx, query, activeProjectKey, id); err != nil {
		return fmt.Errorf("failed to set active project: %w", err)
	}
	return nil
}

func clearActive(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM settings WHERE key = ?`), activeProjectKey); err != nil {
		return fmt.Errorf("failed to clear active project: %w", err)
	}
	return nil
}

// SaveState replaces the saved state of a project.
func (s *Store) SaveState(ctx context.Context, projectID string, state ProjectState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode project state: %w", err)
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		ts := now()
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE projects SET updated_at = ? WHERE id = ?`), ts, projectID)
		if err != nil {
			return fmt.Errorf("failed to touch project: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return projectNotFound(projectID)
		}

		query := tx.Rebind(`
		INSERT INTO project_state (project_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (project_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`)
		if _, err := tx.ExecContext(ctx, query, projectID, string(data), ts); err != nil {
			return fmt.Errorf("failed to save project state: %w", err)
		}
		return nil
	})
}

// LoadState returns the saved state of a project, or an empty state when
// nothing was saved yet.
func (s *Store) LoadState(ctx context.Context, projectID string) (ProjectState, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return ProjectState{}, err
	}

	var data string
	err := s.db.GetContext(ctx, &data, s.db.Rebind(`SELECT state FROM project_state WHERE project_id = ?`), projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return ProjectState{}, nil
	}
	if err != nil {
		return ProjectState{}, fmt.Errorf("failed to load project state: %w", err)
	}

	var state ProjectState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return ProjectState{}, fmt.Errorf("failed to decode project state: %w", err)
	}
	return state, nil
}
