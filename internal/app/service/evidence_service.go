package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"
	"ssemi/internal/platform/storage"
)

// EvidenceService manages instructor evidence uploads: the records, their
// files on disk and the per-instructor upload history.
type EvidenceService struct {
	evidences repository.EvidenceRepository
	store     *storage.FileStore
	audit     *AuditService
}

func NewEvidenceService(evidences repository.EvidenceRepository, store *storage.FileStore, audit *AuditService) *EvidenceService {
	return &EvidenceService{evidences: evidences, store: store, audit: audit}
}

// FileUpload is one incoming file, decoupled from the transport.
type FileUpload struct {
	Name    string
	Content io.Reader
}

type EvidenceInput struct {
	Titulo      string                 `json:"titulo" validate:"required,max=200"`
	Descripcion string                 `json:"descripcion" validate:"max=1000"`
	CategoriaID int                    `json:"id_categoria" validate:"required,min=1"`
	Formulario  map[string]interface{} `json:"formulario"`
	Borrador    bool                   `json:"borrador"`
}

// EvidenciaListItem is the flattened row served by the evidence list. URL
// points at the first stored file.
type EvidenciaListItem struct {
	ID          int       `json:"id"`
	Titulo      string    `json:"titulo"`
	Descripcion string    `json:"descripcion"`
	Fecha       time.Time `json:"fecha"`
	URL         string    `json:"url"`
	Estado      string    `json:"estado"`
	Calificado  bool      `json:"calificado"`
}

type ArchivoView struct {
	Nombre string `json:"nombre"`
	URL    string `json:"url"`
}

type EvidenciaDetail struct {
	*model.Evidencia
	ArchivosDetalle []ArchivoView `json:"archivos_detalle"`
}

func (s *EvidenceService) Create(ctx context.Context, usuarioID int, in EvidenceInput, files []FileUpload) (*model.Evidencia, error) {
	archivos, err := s.saveFiles(files)
	if err != nil {
		return nil, err
	}

	estado := model.EvidenciaCargada
	if in.Borrador {
		estado = model.EvidenciaBorrador
	}
	ev := &model.Evidencia{
		Titulo:      in.Titulo,
		Descripcion: optional(in.Descripcion),
		CategoriaID: in.CategoriaID,
		Archivos:    archivos,
		Formulario:  in.Formulario,
		Estado:      estado,
		UsuarioID:   usuarioID,
	}
	if err := s.evidences.Create(ctx, ev); err != nil {
		s.removeFiles(archivos)
		return nil, err
	}
	if err := s.evidences.InsertHistorial(ctx, ev.ID, usuarioID); err != nil {
		return nil, err
	}

	accion := model.AccionCrearEvidencia
	if len(files) > 1 {
		accion = model.AccionCrearEvidenciaMultiple
	}
	s.audit.Log(ctx, usuarioID, accion,
		fmt.Sprintf("Cargó evidencia '%s' con %d archivo(s)", in.Titulo, len(archivos)),
		"evidencia", ev.ID)
	return ev, nil
}

// Update rewrites an evidence. New files replace the stored ones wholesale;
// an evaluated evidence can no longer change.
func (s *EvidenceService) Update(ctx context.Context, id, usuarioID int, in EvidenceInput, files []FileUpload) (*model.Evidencia, error) {
	ev, err := s.evidences.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.Estado == model.EvidenciaEvaluada {
		return nil, common.ErrEvidenceEvaluated
	}

	if len(files) > 0 {
		archivos, err := s.saveFiles(files)
		if err != nil {
			return nil, err
		}
		s.removeFiles(ev.Archivos)
		ev.Archivos = archivos
	}
	ev.Titulo = in.Titulo
	ev.Descripcion = optional(in.Descripcion)
	ev.CategoriaID = in.CategoriaID
	if in.Formulario != nil {
		ev.Formulario = in.Formulario
	}
	if in.Borrador {
		ev.Estado = model.EvidenciaBorrador
	} else {
		ev.Estado = model.EvidenciaCargada
	}

	if err := s.evidences.Update(ctx, ev); err != nil {
		return nil, err
	}
	if err := s.evidences.InsertHistorial(ctx, ev.ID, usuarioID); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, usuarioID, model.AccionEditarEvidencia,
		fmt.Sprintf("Editó evidencia '%s'", ev.Titulo), "evidencia", ev.ID)
	return ev, nil
}

// Delete removes the record, its upload history and its files.
func (s *EvidenceService) Delete(ctx context.Context, id, usuarioID int) error {
	ev, err := s.evidences.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.evidences.DeleteHistorial(ctx, id); err != nil {
		return err
	}
	if err := s.evidences.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFiles(ev.Archivos)

	s.audit.Log(ctx, usuarioID, model.AccionEliminarEvidencia,
		fmt.Sprintf("Eliminó evidencia '%s'", ev.Titulo), "evidencia", ev.ID)
	return nil
}

// List returns evidence rows, restricted to one owner when usuarioID is
// non-zero.
func (s *EvidenceService) List(ctx context.Context, usuarioID int) ([]EvidenciaListItem, error) {
	evs, err := s.evidences.List(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	items := make([]EvidenciaListItem, 0, len(evs))
	for _, ev := range evs {
		item := EvidenciaListItem{
			ID:         ev.ID,
			Titulo:     ev.Titulo,
			Fecha:      ev.FechaEvidencia,
			Estado:     ev.Estado,
			Calificado: ev.Estado == model.EvidenciaEvaluada,
		}
		if ev.Descripcion != nil {
			item.Descripcion = *ev.Descripcion
		}
		if len(ev.Archivos) > 0 {
			item.URL = ev.Archivos[0]
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *EvidenceService) Detail(ctx context.Context, id int) (*EvidenciaDetail, error) {
	ev, err := s.evidences.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &EvidenciaDetail{Evidencia: ev, ArchivosDetalle: make([]ArchivoView, 0, len(ev.Archivos))}
	for _, a := range ev.Archivos {
		detail.ArchivosDetalle = append(detail.ArchivosDetalle, ArchivoView{Nombre: displayName(a), URL: a})
	}
	return detail, nil
}

func (s *EvidenceService) Historial(ctx context.Context, instructorID int) ([]model.CargaHistorial, error) {
	return s.evidences.HistorialByInstructor(ctx, instructorID)
}

func (s *EvidenceService) Categorias(ctx context.Context) ([]model.Categoria, error) {
	return s.evidences.ListCategorias(ctx)
}

// OpenFile serves a stored file for download.
func (s *EvidenceService) OpenFile(stored string) (*os.File, error) {
	f, err := s.store.Open(stored)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *EvidenceService) saveFiles(files []FileUpload) ([]string, error) {
	archivos := make([]string, 0, len(files))
	for _, f := range files {
		stored, err := s.store.Save(f.Name, f.Content)
		if err != nil {
			s.removeFiles(archivos)
			return nil, err
		}
		archivos = append(archivos, "uploads/"+stored)
	}
	return archivos, nil
}

func (s *EvidenceService) removeFiles(archivos []string) {
	for _, a := range archivos {
		_ = s.store.Remove(a)
	}
}

// displayName strips the "uploads/" prefix and the UUID the store prepends.
func displayName(archivo string) string {
	base := archivo
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "_"); i >= 0 {
		return base[i+1:]
	}
	return base
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
