package material_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyforge/internal/domain/entity"
	"studyforge/internal/repository"
	"studyforge/internal/usecase/material"
)

// fakeRepo is an in-memory MaterialRepository recording every status
// transition.
type fakeRepo struct {
	rows        map[uuid.UUID]*entity.Material
	transitions []entity.MaterialStatus

	createErr       error
	updateStatusErr map[entity.MaterialStatus]error
	updateContent   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:            make(map[uuid.UUID]*entity.Material),
		updateStatusErr: make(map[entity.MaterialStatus]error),
	}
}

func (f *fakeRepo) Create(_ context.Context, m *entity.Material) error {
	if f.createErr != nil {
		return f.createErr
	}
	clone := *m
	f.rows[m.ID] = &clone
	f.transitions = append(f.transitions, m.Status)
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*entity.Material, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (f *fakeRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]*entity.Material, error) {
	var out []*entity.Material
	for _, row := range f.rows {
		if row.ProjectID == projectID {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.MaterialStatus) error {
	if err := f.updateStatusErr[status]; err != nil {
		return err
	}
	row, ok := f.rows[id]
	if !ok {
		return entity.ErrNotFound
	}
	row.Status = status
	f.transitions = append(f.transitions, status)
	return nil
}

func (f *fakeRepo) UpdateContent(_ context.Context, id uuid.UUID, update repository.ContentUpdate, status entity.MaterialStatus) error {
	if f.updateContent != nil {
		return f.updateContent
	}
	row, ok := f.rows[id]
	if !ok {
		return entity.ErrNotFound
	}
	row.Content = update.Content
	row.FilePath = update.FilePath
	row.FileType = update.FileType
	row.FileSize = update.FileSize
	row.Metadata = update.Metadata
	row.Status = status
	f.transitions = append(f.transitions, status)
	return nil
}

func (f *fakeRepo) UpdateMetadata(_ context.Context, id uuid.UUID, metadata entity.MaterialMetadata) error {
	row, ok := f.rows[id]
	if !ok {
		return entity.ErrNotFound
	}
	row.Metadata = metadata
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return entity.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// fakeStore is a BlobStore accepting everything within maxSize.
type fakeStore struct {
	maxSize   int64
	savedTo   string
	removed   []uuid.UUID
	saveErr   error
	removeErr error
}

func (f *fakeStore) SaveMaterialFile(tempPath string, projectID, materialID uuid.UUID) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.savedTo = "/data/materials/" + projectID.String() + "/" + materialID.String() + "/material" + filepath.Ext(tempPath)
	return f.savedTo, nil
}

func (f *fakeStore) ValidateFileSize(bytes int64) bool { return bytes > 0 && bytes <= f.maxSize }

func (f *fakeStore) ValidateFileType(filename string) bool {
	switch filepath.Ext(filename) {
	case ".txt", ".pdf", ".md", ".doc", ".docx":
		return true
	}
	return false
}

func (f *fakeStore) MaxFileSize() int64 { return f.maxSize }

func (f *fakeStore) RemoveMaterialStorage(_, materialID uuid.UUID) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, materialID)
	return nil
}

// fakeExtractor returns canned text or an error.
type fakeExtractor struct {
	text string
	err  error

	gotSource entity.MaterialSource
}

func (f *fakeExtractor) Extract(_ context.Context, source entity.MaterialSource) (string, error) {
	f.gotSource = source
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newService(repo *fakeRepo, store *fakeStore, ext *fakeExtractor) *material.Service {
	if store == nil {
		store = &fakeStore{maxSize: 10 << 20}
	}
	return material.NewService(repo, store, ext, nil)
}

func TestService_ProcessMaterial_InlineText(t *testing.T) {
	repo := newFakeRepo()
	ext := &fakeExtractor{text: "Hello world"}
	svc := newService(repo, nil, ext)

	got, err := svc.ProcessMaterial(context.Background(), entity.MaterialSource{
		Type:    "text",
		Content: "Hello world",
		Title:   "Greeting",
	}, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, got.Status)
	assert.Equal(t, "Hello world", got.Content)
	assert.Equal(t, "Greeting", got.Title)
	assert.Nil(t, got.FilePath, "inline text must not set file fields")
	assert.Nil(t, got.FileType)
	assert.Nil(t, got.FileSize)
	assert.Equal(t, 2, got.Metadata.WordCount)
	assert.NotNil(t, got.Metadata.ProcessedAt)

	assert.Equal(t, []entity.MaterialStatus{
		entity.StatusPending,
		entity.StatusProcessing,
		entity.StatusCompleted,
	}, repo.transitions)
}

func TestService_ProcessMaterial_FileSource(t *testing.T) {
	dir := t.TempDir()
	staged := filepath.Join(dir, "staged.txt")
	require.NoError(t, os.WriteFile(staged, []byte("file body"), 0o644))

	repo := newFakeRepo()
	store := &fakeStore{maxSize: 10 << 20}
	ext := &fakeExtractor{text: "file body"}
	svc := newService(repo, store, ext)

	got, err := svc.ProcessMaterial(context.Background(), entity.MaterialSource{
		Type:    "txt",
		Content: staged,
	}, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, got.Status)
	require.NotNil(t, got.FilePath)
	assert.Equal(t, store.savedTo, *got.FilePath)
	require.NotNil(t, got.FileType)
	assert.Equal(t, "txt", *got.FileType)
	require.NotNil(t, got.FileSize)
	assert.Equal(t, int64(len("file body")), *got.FileSize)

	// Extraction must run against the promoted path, not the staged one
	assert.Equal(t, store.savedTo, ext.gotSource.Content)
}

func TestService_ProcessMaterial_UnsupportedType(t *testing.T) {
	repo := newFakeRepo()
	ext := &fakeExtractor{err: &entity.UnsupportedTypeError{Type: "invalid"}}
	svc := newService(repo, nil, ext)

	_, err := svc.ProcessMaterial(context.Background(), entity.MaterialSource{
		Type:    "invalid",
		Content: "some content",
	}, uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"invalid"`, "error must name the rejected type")

	require.Len(t, repo.rows, 1)
	for _, row := range repo.rows {
		assert.Equal(t, entity.StatusError, row.Status)
	}
}

func TestService_ProcessMaterial_OversizedFile(t *testing.T) {
	dir := t.TempDir()
	staged := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(staged, make([]byte, 2048), 0o644))

	repo := newFakeRepo()
	store := &fakeStore{maxSize: 1024}
	svc := newService(repo, store, &fakeExtractor{})

	_, err := svc.ProcessMaterial(context.Background(), entity.MaterialSource{
		Type:    "txt",
		Content: staged,
	}, uuid.New())

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "file_size", validationErr.Field)
	assert.Empty(t, store.savedTo, "no file may be moved before validation passes")

	for _, row := range repo.rows {
		assert.Equal(t, entity.StatusError, row.Status)
	}
}

func TestService_ProcessMaterial_InvalidSource(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, nil, &fakeExtractor{})

	tests := []struct {
		name   string
		source entity.MaterialSource
	}{
		{
			name:   "missing type",
			source: entity.MaterialSource{Content: "body"},
		},
		{
			name:   "missing content",
			source: entity.MaterialSource{Type: "txt"},
		},
		{
			name:   "private url",
			source: entity.MaterialSource{Type: "url", Content: "http://127.0.0.1/secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ProcessMaterial(context.Background(), tt.source, uuid.New())

			require.Error(t, err)
			assert.Empty(t, repo.rows, "no row may be created for an invalid source")
		})
	}
}

func TestService_ProcessMaterial_CreateFailurePropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("db down")
	svc := newService(repo, nil, &fakeExtractor{text: "x"})

	_, err := svc.ProcessMaterial(context.Background(), entity.MaterialSource{
		Type:    "text",
		Content: "body",
	}, uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestService_ProcessMaterial_MarkErrorNeverMasks(t *testing.T) {
	repo := newFakeRepo()
	// Both the extraction and the error-status update fail; the caller must
	// still see the extraction failure.
	repo.updateStatusErr[entity.StatusError] = errors.New("db down")
	extractionErr := &entity.ExtractionError{Format: "pdf", Err: errors.New("corrupt xref")}
	svc := newService(repo, nil, &fakeExtractor{err: extractionErr})

	_, err := svc.ProcessMaterial(context.Background(), entity.MaterialSource{
		Type:    "pdf",
		Content: "inline-ish content",
	}, uuid.New())

	require.Error(t, err)
	var gotErr *entity.ExtractionError
	assert.ErrorAs(t, err, &gotErr)
}

func TestService_Get(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, nil, &fakeExtractor{})

	t.Run("missing material", func(t *testing.T) {
		_, err := svc.Get(context.Background(), uuid.New())

		assert.ErrorIs(t, err, entity.ErrNotFound)
	})

	t.Run("existing material", func(t *testing.T) {
		row := &entity.Material{ID: uuid.New(), ProjectID: uuid.New(), Status: entity.StatusCompleted}
		repo.rows[row.ID] = row

		got, err := svc.Get(context.Background(), row.ID)

		require.NoError(t, err)
		assert.Equal(t, row.ID, got.ID)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("row and storage removed", func(t *testing.T) {
		repo := newFakeRepo()
		store := &fakeStore{maxSize: 10 << 20}
		svc := newService(repo, store, &fakeExtractor{})

		row := &entity.Material{ID: uuid.New(), ProjectID: uuid.New()}
		repo.rows[row.ID] = row

		require.NoError(t, svc.Delete(context.Background(), row.ID))

		assert.Empty(t, repo.rows)
		assert.Equal(t, []uuid.UUID{row.ID}, store.removed)
	})

	t.Run("missing material", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newService(repo, nil, &fakeExtractor{})

		err := svc.Delete(context.Background(), uuid.New())

		assert.ErrorIs(t, err, entity.ErrNotFound)
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		repo := newFakeRepo()
		store := &fakeStore{maxSize: 10 << 20, removeErr: errors.New("disk gone")}
		svc := newService(repo, store, &fakeExtractor{})

		row := &entity.Material{ID: uuid.New(), ProjectID: uuid.New()}
		repo.rows[row.ID] = row

		err := svc.Delete(context.Background(), row.ID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk gone")
	})
}

func TestService_UpdateMetadata(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, nil, &fakeExtractor{})

	row := &entity.Material{ID: uuid.New(), ProjectID: uuid.New()}
	repo.rows[row.ID] = row

	metadata := entity.MaterialMetadata{
		Objectives: []string{"Understand fractions"},
		Templates:  []entity.ContentTemplate{{Pattern: "What is {x}?"}},
	}

	require.NoError(t, svc.UpdateMetadata(context.Background(), row.ID, metadata))
	assert.Equal(t, metadata, repo.rows[row.ID].Metadata)
}
