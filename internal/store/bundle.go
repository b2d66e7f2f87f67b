package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"seosuite/internal/core"
)

// BundleVersion is written into every exported bundle.
const BundleVersion = 1

// Bundle is a portable copy of one project.
type Bundle struct {
	Version  int             `json:"version" yaml:"version"`
	Project  Project         `json:"project" yaml:"project"`
	State    ProjectState    `json:"state" yaml:"state"`
	Keywords []MasterKeyword `json:"keywords" yaml:"keywords"`
}

// ExportProject collects a project, its state and its keywords.
func (s *Store) ExportProject(ctx context.Context, id string) (Bundle, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return Bundle{}, err
	}
	state, err := s.LoadState(ctx, id)
	if err != nil {
		return Bundle{}, err
	}
	keywords, err := s.ListKeywords(ctx, id)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{Version: BundleVersion, Project: project, State: state, Keywords: keywords}, nil
}

// ImportProject stores a bundle as a new project with fresh IDs and makes it
// active.
func (s *Store) ImportProject(ctx context.Context, b Bundle) (Project, error) {
	if b.Version > BundleVersion {
		return Project{}, core.NewValidationError("version", "unsupported bundle version %d", b.Version)
	}
	name, err := validateName(b.Project.Name)
	if err != nil {
		return Project{}, err
	}

	ts := now()
	project := Project{ID: uuid.NewString(), Name: name, CreatedAt: ts, UpdatedAt: ts}

	keywords := make([]MasterKeyword, 0, len(b.Keywords))
	for i, kw := range b.Keywords {
		keyword := strings.TrimSpace(kw.Keyword)
		if keyword == "" {
			return Project{}, core.NewValidationError(fmt.Sprintf("keywords[%d].keyword", i), "is required")
		}
		intent, err := NormalizeIntent(kw.Intent)
		if err != nil {
			return Project{}, err
		}
		created := kw.CreatedAt
		if created.IsZero() {
			created = ts
		}
		keywords = append(keywords, MasterKeyword{
			ID:        uuid.NewString(),
			ProjectID: project.ID,
			Keyword:   keyword,
			Intent:    intent,
			CreatedAt: created,
			UpdatedAt: ts,
		})
	}

	state, err := json.Marshal(b.State)
	if err != nil {
		return Project{}, fmt.Errorf("failed to encode project state: %w", err)
	}

	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertProject(ctx, tx, project); err != nil {
			return err
		}
		query := tx.Rebind(`INSERT INTO project_state (project_id, state, updated_at) VALUES (?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, query, project.ID, string(state), ts); err != nil {
			return fmt.Errorf("failed to save project state: %w", err)
		}
		if err := insertKeywords(ctx, tx, keywords); err != nil {
			return err
		}
		return setActive(ctx, tx, project.ID)
	})
	if err != nil {
		return Project{}, err
	}
	return project, nil
}

// MarshalBundle encodes a bundle as "json" or "yaml".
func MarshalBundle(b Bundle, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return json.MarshalIndent(b, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(b)
	default:
		return nil, core.NewConfigurationError("format", "unsupported bundle format %q (supported: json, yaml)", format)
	}
}

// UnmarshalBundle decodes a bundle. JSON is tried when the data starts with
// '{', YAML otherwise.
func UnmarshalBundle(data []byte) (Bundle, error) {
	var b Bundle
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return Bundle{}, core.NewValidationError("bundle", "is empty")
	}

	var err error
	if strings.HasPrefix(trimmed, "{") {
		err = json.Unmarshal(data, &b)
	} else {
		err = yaml.Unmarshal(data, &b)
	}
	if err != nil {
		return Bundle{}, core.NewValidationError("bundle", "failed to decode: %v", err)
	}
	return b, nil
}
