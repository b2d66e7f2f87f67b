package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"seosuite/internal/core"
)

// Search intents a master keyword can carry.
const (
	IntentInformational = "informational"
	IntentNavigational  = "navigational"
	IntentCommercial    = "commercial"
	IntentTransactional = "transactional"
)

// Intents lists the accepted search intents.
func Intents() []string {
	return []string{IntentInformational, IntentNavigational, IntentCommercial, IntentTransactional}
}

// MasterKeyword is a keyword tracked by a project.
type MasterKeyword struct {
	ID        string    `db:"id" json:"id" yaml:"id"`
	ProjectID string    `db:"project_id" json:"project_id" yaml:"-"`
	Position  int       `db:"position" json:"position" yaml:"-"`
	Keyword   string    `db:"keyword" json:"keyword" yaml:"keyword"`
	Intent    string    `db:"intent" json:"intent" yaml:"intent"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" yaml:"updated_at"`
}

// KeywordInput is a keyword to add. An empty intent means informational.
type KeywordInput struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Intent  string `json:"intent" yaml:"intent"`
}

// KeywordUpdate changes the non-nil fields of a keyword.
type KeywordUpdate struct {
	Keyword *string `json:"keyword,omitempty"`
	Intent  *string `json:"intent,omitempty"`
}

// NormalizeIntent lowercases intent and checks it is known. Empty means informational.
func NormalizeIntent(intent string) (string, error) {
	intent = strings.ToLower(strings.TrimSpace(intent))
	if intent == "" {
		return IntentInformational, nil
	}
	for _, known := range Intents() {
		if intent == known {
			return intent, nil
		}
	}
	return "", core.NewValidationError("intent", "unknown intent %q (supported: %s)", intent, strings.Join(Intents(), ", "))
}

func keywordNotFound(id string) error {
	return fmt.Errorf("keyword %s: %w", id, ErrNotFound)
}

// AddKeywords appends keywords to a project and returns them with their new IDs.
func (s *Store) AddKeywords(ctx context.Context, projectID string, inputs []KeywordInput) ([]MasterKeyword, error) {
	ts := now()
	added := make([]MasterKeyword, 0, len(inputs))
	for i, in := range inputs {
		keyword := strings.TrimSpace(in.Keyword)
		if keyword == "" {
			return nil, core.NewValidationError(fmt.Sprintf("keywords[%d].keyword", i), "is required")
		}
		intent, err := NormalizeIntent(in.Intent)
		if err != nil {
			return nil, err
		}
		added = append(added, MasterKeyword{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Keyword:   keyword,
			Intent:    intent,
			CreatedAt: ts,
			UpdatedAt: ts,
		})
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireProject(ctx, tx, projectID); err != nil {
			return err
		}
		return insertKeywords(ctx, tx, added)
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// insertKeywords appends keywords after the project's last position.
func insertKeywords(ctx context.Context, tx *sqlx.Tx, keywords []MasterKeyword) error {
	if len(keywords) == 0 {
		return nil
	}

	var last int
	err := tx.GetContext(ctx, &last,
		tx.Rebind(`SELECT COALESCE(MAX(position), 0) FROM master_keywords WHERE project_id = ?`), keywords[0].ProjectID)
	if err != nil {
		return fmt.Errorf("failed to read keyword positions: %w", err)
	}

	query := tx.Rebind(`
	INSERT INTO master_keywords (id, project_id, position, keyword, intent, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i := range keywords {
		k := &keywords[i]
		k.Position = last + i + 1
		if _, err := tx.ExecContext(ctx, query, k.ID, k.ProjectID, k.Position, k.Keyword, k.Intent, k.CreatedAt, k.UpdatedAt); err != nil {
			return fmt.Errorf("failed to add keyword %q: %w", k.Keyword, err)
		}
	}
	return nil
}

// UpdateKeyword applies update to a project's keyword.
func (s *Store) UpdateKeyword(ctx context.Context, projectID, id string, update KeywordUpdate) (MasterKeyword, error) {
	kw, err := s.getKeyword(ctx, projectID, id)
	if err != nil {
		return MasterKeyword{}, err
	}

	if update.Keyword != nil {
		keyword := strings.TrimSpace(*update.Keyword)
		if keyword == "" {
			return MasterKeyword{}, core.NewValidationError("keyword", "is required")
		}
		kw.Keyword = keyword
	}
	if update.Intent != nil {
		intent, err := NormalizeIntent(*update.Intent)
		if err != nil {
			return MasterKeyword{}, err
		}
		kw.Intent = intent
	}
	kw.UpdatedAt = now()

	query := s.db.Rebind(`UPDATE master_keywords SET keyword = ?, intent = ?, updated_at = ? WHERE id = ? AND project_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, kw.Keyword, kw.Intent, kw.UpdatedAt, id, projectID); err != nil {
		return MasterKeyword{}, fmt.Errorf("failed to update keyword: %w", err)
	}
	return kw, nil
}

// DeleteKeyword removes a project's keyword.
func (s *Store) DeleteKeyword(ctx context.Context, projectID, id string) error {
	query := s.db.Rebind(`DELETE FROM master_keywords WHERE id = ? AND project_id = ?`)
	res, err := s.db.ExecContext(ctx, query, id, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return keywordNotFound(id)
	}
	return nil
}

// ListKeywords returns a project's keywords in the order they were added.
func (s *Store) ListKeywords(ctx context.Context, projectID string) ([]MasterKeyword, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	keywords := []MasterKeyword{}
	query := s.db.Rebind(`
	SELECT id, project_id, position, keyword, intent, created_at, updated_at
	FROM master_keywords WHERE project_id = ? ORDER BY position`)
	if err := s.db.SelectContext(ctx, &keywords, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return keywords, nil
}

func (s *Store) getKeyword(ctx context.Context, projectID, id string) (MasterKeyword, error) {
	var kw MasterKeyword
	query := s.db.Rebind(`
	SELECT id, project_id, position, keyword, intent, created_at, updated_at
	FROM master_keywords WHERE id = ? AND project_id = ?`)
	err := s.db.GetContext(ctx, &kw, query, id, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return MasterKeyword{}, keywordNotFound(id)
	}
	if err != nil {
		return MasterKeyword{}, fmt.Errorf("failed to get keyword: %w", err)
	}
	return kw, nil
}

func requireProject(ctx context.Context, tx *sqlx.Tx, id string) error {
	var exists int
	if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM projects WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if exists == 0 {
		return projectNotFound(id)
	}
	return nil
}
