package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"
	"ssemi/internal/platform/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historialEntry struct {
	evidenciaID  int
	instructorID int
}

type stubEvidenceRepo struct {
	repository.EvidenceRepository
	evidencias map[int]*model.Evidencia
	historial  []historialEntry
	nextID     int
}

func newStubEvidenceRepo() *stubEvidenceRepo {
	return &stubEvidenceRepo{evidencias: map[int]*model.Evidencia{}, nextID: 1}
}

func (r *stubEvidenceRepo) Create(_ context.Context, ev *model.Evidencia) error {
	ev.ID = r.nextID
	r.nextID++
	copied := *ev
	r.evidencias[ev.ID] = &copied
	return nil
}

func (r *stubEvidenceRepo) FindByID(_ context.Context, id int) (*model.Evidencia, error) {
	ev, ok := r.evidencias[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *ev
	return &copied, nil
}

func (r *stubEvidenceRepo) List(_ context.Context, usuarioID int) ([]*model.Evidencia, error) {
	var out []*model.Evidencia
	for id := 1; id < r.nextID; id++ {
		ev, ok := r.evidencias[id]
		if !ok {
			continue
		}
		if usuarioID == 0 || ev.UsuarioID == usuarioID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *stubEvidenceRepo) ListByEstados(_ context.Context, estados ...string) ([]*model.Evidencia, error) {
	var out []*model.Evidencia
	for id := 1; id < r.nextID; id++ {
		ev, ok := r.evidencias[id]
		if !ok {
			continue
		}
		for _, estado := range estados {
			if ev.Estado == estado {
				out = append(out, ev)
				break
			}
		}
	}
	return out, nil
}

func (r *stubEvidenceRepo) Update(_ context.Context, ev *model.Evidencia) error {
	if _, ok := r.evidencias[ev.ID]; !ok {
		return common.ErrNotFound
	}
	copied := *ev
	r.evidencias[ev.ID] = &copied
	return nil
}

func (r *stubEvidenceRepo) SetEstado(_ context.Context, id int, estado string) error {
	ev, ok := r.evidencias[id]
	if !ok {
		return common.ErrNotFound
	}
	ev.Estado = estado
	return nil
}

func (r *stubEvidenceRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.evidencias[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.evidencias, id)
	return nil
}

func (r *stubEvidenceRepo) InsertHistorial(_ context.Context, evidenciaID, instructorID int) error {
	r.historial = append(r.historial, historialEntry{evidenciaID, instructorID})
	return nil
}

func (r *stubEvidenceRepo) HistorialByInstructor(_ context.Context, instructorID int) ([]model.CargaHistorial, error) {
	var out []model.CargaHistorial
	for _, h := range r.historial {
		if h.instructorID != instructorID {
			continue
		}
		entry := model.CargaHistorial{EvidenciaID: h.evidenciaID, InstructorID: h.instructorID}
		if ev, ok := r.evidencias[h.evidenciaID]; ok {
			entry.Titulo = ev.Titulo
			entry.Estado = ev.Estado
			entry.Archivos = ev.Archivos
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *stubEvidenceRepo) DeleteHistorial(_ context.Context, evidenciaID int) error {
	kept := r.historial[:0]
	for _, h := range r.historial {
		if h.evidenciaID != evidenciaID {
			kept = append(kept, h)
		}
	}
	r.historial = kept
	return nil
}

func newTestEvidenceService(t *testing.T) (*EvidenceService, *stubEvidenceRepo, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	repo := newStubEvidenceRepo()
	audit := NewAuditService(&stubAuditRepo{}, zerolog.Nop())
	return NewEvidenceService(repo, store, audit), repo, dir
}

func upload(name, content string) FileUpload {
	return FileUpload{Name: name, Content: strings.NewReader(content)}
}

// storedPath resolves an archivos entry to its on-disk location.
func storedPath(dir, archivo string) string {
	return filepath.Join(dir, strings.TrimPrefix(archivo, "uploads/"))
}

func TestEvidenceCreateStoresFilesAndHistory(t *testing.T) {
	svc, repo, dir := newTestEvidenceService(t)

	in := EvidenceInput{Titulo: "Acta de visita", CategoriaID: 1}
	ev, err := svc.Create(context.Background(), 4, in, []FileUpload{
		upload("acta.pdf", "pdf-bytes"),
		upload("foto.png", "png-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.EvidenciaCargada, ev.Estado)
	require.Len(t, ev.Archivos, 2)
	for _, archivo := range ev.Archivos {
		assert.True(t, strings.HasPrefix(archivo, "uploads/"))
		assert.FileExists(t, storedPath(dir, archivo))
	}
	require.Len(t, repo.historial, 1)
	assert.Equal(t, historialEntry{ev.ID, 4}, repo.historial[0])
}

func TestEvidenceCreateBorrador(t *testing.T) {
	svc, _, _ := newTestEvidenceService(t)

	in := EvidenceInput{Titulo: "Borrador de informe", CategoriaID: 1, Borrador: true}
	ev, err := svc.Create(context.Background(), 4, in, []FileUpload{upload("informe.docx", "x")})
	require.NoError(t, err)
	assert.Equal(t, model.EvidenciaBorrador, ev.Estado)
}

func TestEvidenceUpdateReplacesFilesWholesale(t *testing.T) {
	svc, _, dir := newTestEvidenceService(t)

	ev, err := svc.Create(context.Background(), 4,
		EvidenceInput{Titulo: "Acta", CategoriaID: 1},
		[]FileUpload{upload("vieja.pdf", "v")})
	require.NoError(t, err)
	oldPath := storedPath(dir, ev.Archivos[0])

	updated, err := svc.Update(context.Background(), ev.ID, 4,
		EvidenceInput{Titulo: "Acta corregida", CategoriaID: 1},
		[]FileUpload{upload("nueva.pdf", "n")})
	require.NoError(t, err)

	require.Len(t, updated.Archivos, 1)
	assert.NotEqual(t, ev.Archivos[0], updated.Archivos[0])
	assert.NoFileExists(t, oldPath)
	assert.FileExists(t, storedPath(dir, updated.Archivos[0]))
}

func TestEvidenceUpdateKeepsFilesWhenNoneSent(t *testing.T) {
	svc, _, dir := newTestEvidenceService(t)

	ev, err := svc.Create(context.Background(), 4,
		EvidenceInput{Titulo: "Acta", CategoriaID: 1},
		[]FileUpload{upload("acta.pdf", "v")})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), ev.ID, 4,
		EvidenceInput{Titulo: "Acta corregida", CategoriaID: 2}, nil)
	require.NoError(t, err)

	assert.Equal(t, ev.Archivos, updated.Archivos)
	assert.FileExists(t, storedPath(dir, updated.Archivos[0]))
}

func TestEvidenceUpdateBlockedWhenEvaluada(t *testing.T) {
	svc, repo, _ := newTestEvidenceService(t)

	ev, err := svc.Create(context.Background(), 4,
		EvidenceInput{Titulo: "Acta", CategoriaID: 1},
		[]FileUpload{upload("acta.pdf", "v")})
	require.NoError(t, err)
	require.NoError(t, repo.SetEstado(context.Background(), ev.ID, model.EvidenciaEvaluada))

	_, err = svc.Update(context.Background(), ev.ID, 4,
		EvidenceInput{Titulo: "Tarde", CategoriaID: 1}, nil)
	assert.ErrorIs(t, err, common.ErrEvidenceEvaluated)
	assert.EqualError(t, err, "No se puede editar una evidencia evaluada")
}

func TestEvidenceDeleteRemovesFilesAndHistory(t *testing.T) {
	svc, repo, dir := newTestEvidenceService(t)

	ev, err := svc.Create(context.Background(), 4,
		EvidenceInput{Titulo: "Acta", CategoriaID: 1},
		[]FileUpload{upload("acta.pdf", "v")})
	require.NoError(t, err)
	path := storedPath(dir, ev.Archivos[0])

	require.NoError(t, svc.Delete(context.Background(), ev.ID, 4))

	assert.NoFileExists(t, path)
	assert.Empty(t, repo.historial)
	_, err = repo.FindByID(context.Background(), ev.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEvidenceListMarksCalificado(t *testing.T) {
	svc, repo, _ := newTestEvidenceService(t)

	ev, err := svc.Create(context.Background(), 4,
		EvidenceInput{Titulo: "Evaluada", CategoriaID: 1},
		[]FileUpload{upload("a.pdf", "a")})
	require.NoError(t, err)
	require.NoError(t, repo.SetEstado(context.Background(), ev.ID, model.EvidenciaEvaluada))

	_, err = svc.Create(context.Background(), 4,
		EvidenceInput{Titulo: "Nueva", CategoriaID: 1},
		[]FileUpload{upload("b.pdf", "b")})
	require.NoError(t, err)

	items, err := svc.List(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Calificado)
	assert.False(t, items[1].Calificado)
	assert.NotEmpty(t, items[0].URL)
}

func TestEvidenceDetailUsesDisplayNames(t *testing.T) {
	svc, _, _ := newTestEvidenceService(t)

	ev, err := svc.Create(context.Background(), 4,
		EvidenceInput{Titulo: "Acta", CategoriaID: 1},
		[]FileUpload{upload("Informe Final.PDF", "x")})
	require.NoError(t, err)

	detail, err := svc.Detail(context.Background(), ev.ID)
	require.NoError(t, err)
	require.Len(t, detail.ArchivosDetalle, 1)
	assert.Equal(t, "informe-final.pdf", detail.ArchivosDetalle[0].Nombre)
	assert.Equal(t, ev.Archivos[0], detail.ArchivosDetalle[0].URL)
}

func TestEvidenceOpenFileMissing(t *testing.T) {
	svc, _, _ := newTestEvidenceService(t)

	_, err := svc.OpenFile("no-existe.pdf")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEvidenceOpenFileIgnoresPathTraversal(t *testing.T) {
	svc, _, dir := newTestEvidenceService(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legit.pdf"), []byte("x"), 0o644))

	f, err := svc.OpenFile("../../legit.pdf")
	require.NoError(t, err)
	f.Close()
}
