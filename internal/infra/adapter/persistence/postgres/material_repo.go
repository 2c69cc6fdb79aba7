// Package postgres provides the PostgreSQL implementation of the material
// repository. Metadata is stored as a jsonb column and (de)serialized here so
// the rest of the application only ever sees the typed metadata struct.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"studyforge/internal/domain/entity"
	"studyforge/internal/repository"
)

// MaterialRepo implements repository.MaterialRepository using database/sql
// over the pgx stdlib driver.
type MaterialRepo struct{ db *sql.DB }

// NewMaterialRepo creates a new PostgreSQL-backed material repository.
func NewMaterialRepo(db *sql.DB) repository.MaterialRepository {
	return &MaterialRepo{db: db}
}

const materialColumns = `id, project_id, title, content, focus_area, metadata, file_path, file_type, file_size, status, created_at`

func (repo *MaterialRepo) Create(ctx context.Context, material *entity.Material) error {
	const query = `
INSERT INTO materials (id, project_id, title, content, focus_area, metadata, file_path, file_type, file_size, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	metadata, err := json.Marshal(material.Metadata)
	if err != nil {
		return fmt.Errorf("Create: marshal metadata: %w", err)
	}

	_, err = repo.db.ExecContext(ctx, query,
		material.ID, material.ProjectID, material.Title, material.Content,
		material.FocusArea, metadata, material.FilePath, material.FileType,
		material.FileSize, string(material.Status), material.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *MaterialRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Material, error) {
	const query = `
SELECT ` + materialColumns + `
FROM materials
WHERE id = $1
LIMIT 1`

	material, err := scanMaterial(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return material, nil
}

func (repo *MaterialRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entity.Material, error) {
	const query = `
SELECT ` + materialColumns + `
FROM materials
WHERE project_id = $1
ORDER BY created_at DESC`

	rows, err := repo.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("ListByProject: %w", err)
	}
	defer func() { _ = rows.Close() }()

	materials := make([]*entity.Material, 0, 20)
	for rows.Next() {
		material, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByProject: Scan: %w", err)
		}
		materials = append(materials, material)
	}
	return materials, rows.Err()
}

func (repo *MaterialRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.MaterialStatus) error {
	const query = `UPDATE materials SET status = $1 WHERE id = $2`

	result, err := repo.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return requireRow(result, "UpdateStatus")
}

func (repo *MaterialRepo) UpdateContent(ctx context.Context, id uuid.UUID, update repository.ContentUpdate, status entity.MaterialStatus) error {
	const query = `
UPDATE materials
SET content = $1, file_path = $2, file_type = $3, file_size = $4, metadata = $5, status = $6
WHERE id = $7`

	metadata, err := json.Marshal(update.Metadata)
	if err != nil {
		return fmt.Errorf("UpdateContent: marshal metadata: %w", err)
	}

	result, err := repo.db.ExecContext(ctx, query,
		update.Content, update.FilePath, update.FileType, update.FileSize,
		metadata, string(status), id,
	)
	if err != nil {
		return fmt.Errorf("UpdateContent: %w", err)
	}
	return requireRow(result, "UpdateContent")
}

func (repo *MaterialRepo) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata entity.MaterialMetadata) error {
	const query = `UPDATE materials SET metadata = $1 WHERE id = $2`

	doc, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("UpdateMetadata: marshal metadata: %w", err)
	}

	result, err := repo.db.ExecContext(ctx, query, doc, id)
	if err != nil {
		return fmt.Errorf("UpdateMetadata: %w", err)
	}
	return requireRow(result, "UpdateMetadata")
}

func (repo *MaterialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM materials WHERE id = $1`

	result, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireRow(result, "Delete")
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanMaterial.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMaterial(row rowScanner) (*entity.Material, error) {
	var material entity.Material
	var metadata []byte
	var status string

	err := row.Scan(
		&material.ID, &material.ProjectID, &material.Title, &material.Content,
		&material.FocusArea, &metadata, &material.FilePath, &material.FileType,
		&material.FileSize, &status, &material.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	material.Status = entity.MaterialStatus(status)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &material.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &material, nil
}

// requireRow converts a zero-row update into entity.ErrNotFound so callers can
// distinguish a missing material from a database failure.
func requireRow(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: RowsAffected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return nil
}
