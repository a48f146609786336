package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"ssemi/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usuarioRow struct {
	ID     int    `json:"id_usuario"`
	Nombre string `json:"primer_nombre"`
	Correo string `json:"correo"`
	Rol    int    `json:"rol_fk"`
	Estado bool   `json:"estado"`
}

var usuariosResource = Resource[usuarioRow]{
	Path: "/usuarios",
	SearchValues: func(u usuarioRow) []string {
		return []string{u.Nombre, u.Correo}
	},
	ExactValues: func(u usuarioRow) map[string]string {
		return map[string]string{
			"rol":    strconv.Itoa(u.Rol),
			"estado": strconv.FormatBool(u.Estado),
		}
	},
}

// usuariosServer serves a mutable collection and counts list fetches.
type usuariosServer struct {
	mu   sync.Mutex
	rows []usuarioRow
	hits int
}

func (s *usuariosServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /usuarios", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		s.mu.Lock()
		defer s.mu.Unlock()
		s.hits++
		json.NewEncoder(w).Encode(s.rows)
	})
	return mux
}

func (s *usuariosServer) listHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

func (s *usuariosServer) setEstado(id int, estado bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Estado = estado
		}
	}
}

func newUsuariosPanel(t *testing.T) (*Panel[usuarioRow], *usuariosServer, *[][]usuarioRow) {
	t.Helper()
	server := &usuariosServer{rows: []usuarioRow{
		{ID: 1, Nombre: "Ana", Correo: "ana@ssemi.com", Rol: model.RolAdministrador, Estado: true},
		{ID: 2, Nombre: "Bruno", Correo: "bruno@ssemi.com", Rol: model.RolInstructor, Estado: true},
		{ID: 3, Nombre: "Carla", Correo: "carla@ssemi.com", Rol: model.RolEvaluador, Estado: false},
	}}
	ts := httptest.NewServer(server.handler())
	t.Cleanup(ts.Close)

	session := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	api := New(ts.URL, session)

	rendered := &[][]usuarioRow{}
	panel := NewPanel(api, usuariosResource, func(view []usuarioRow) {
		*rendered = append(*rendered, view)
	})
	return panel, server, rendered
}

func TestLoadCachesCollection(t *testing.T) {
	panel, server, _ := newUsuariosPanel(t)

	require.NoError(t, panel.Load(context.Background()))
	require.NoError(t, panel.Load(context.Background()))
	assert.Equal(t, 1, server.listHits())
	assert.Len(t, panel.Rows(), 3)
}

func TestRowsReturnsCopyOfCache(t *testing.T) {
	panel, _, _ := newUsuariosPanel(t)
	require.NoError(t, panel.Load(context.Background()))

	rows := panel.Rows()
	rows[0].Nombre = "Mutada"
	rows[0].Estado = false

	assert.Equal(t, "Ana", panel.Rows()[0].Nombre)
	view := panel.ApplyFilters(Filter{Text: "ana"})
	require.Len(t, view, 1)
	assert.True(t, view[0].Estado)
}

func TestApplyFiltersEmptyReturnsAllInOrder(t *testing.T) {
	panel, _, _ := newUsuariosPanel(t)
	require.NoError(t, panel.Load(context.Background()))

	view := panel.ApplyFilters(Filter{})
	require.Len(t, view, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{view[0].ID, view[1].ID, view[2].ID})
}

func TestApplyFiltersCaseInsensitiveSubstring(t *testing.T) {
	panel, _, _ := newUsuariosPanel(t)
	require.NoError(t, panel.Load(context.Background()))

	view := panel.ApplyFilters(Filter{Text: "BRU"})
	require.Len(t, view, 1)
	assert.Equal(t, "Bruno", view[0].Nombre)

	view = panel.ApplyFilters(Filter{Text: "ssemi.com"})
	assert.Len(t, view, 3)
}

func TestApplyFiltersExactMatch(t *testing.T) {
	panel, _, _ := newUsuariosPanel(t)
	require.NoError(t, panel.Load(context.Background()))

	view := panel.ApplyFilters(Filter{Exact: map[string]string{"estado": "true"}})
	assert.Len(t, view, 2)

	view = panel.ApplyFilters(Filter{
		Text:  "a",
		Exact: map[string]string{"rol": strconv.Itoa(model.RolEvaluador)},
	})
	require.Len(t, view, 1)
	assert.Equal(t, "Carla", view[0].Nombre)

	// Empty exact values are ignored rather than matched literally.
	view = panel.ApplyFilters(Filter{Exact: map[string]string{"rol": ""}})
	assert.Len(t, view, 3)
}

func TestApplyFiltersIsPureAndIdempotent(t *testing.T) {
	panel, _, _ := newUsuariosPanel(t)
	require.NoError(t, panel.Load(context.Background()))

	filter := Filter{Text: "an"}
	once := panel.ApplyFilters(filter)
	twice := panel.ApplyFilters(filter)
	assert.Equal(t, once, twice)

	// The cache is untouched by filtering.
	assert.Len(t, panel.Rows(), 3)
}

func TestRenderReplacesRowsWholesale(t *testing.T) {
	panel, _, rendered := newUsuariosPanel(t)
	require.NoError(t, panel.Load(context.Background()))

	view := panel.ApplyFilters(Filter{Text: "ana"})
	panel.Render(view)
	panel.Render(view)

	require.Len(t, *rendered, 2)
	assert.Equal(t, (*rendered)[0], (*rendered)[1])
}

func TestMutateInvalidatesCacheAndRefreshes(t *testing.T) {
	panel, server, rendered := newUsuariosPanel(t)
	require.NoError(t, panel.Load(context.Background()))

	err := panel.Mutate(context.Background(), Filter{}, func(ctx context.Context) error {
		server.setEstado(2, false)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, server.listHits())
	require.NotEmpty(t, *rendered)
	last := (*rendered)[len(*rendered)-1]
	for _, row := range last {
		if row.ID == 2 {
			assert.False(t, row.Estado)
		}
	}
}

func TestMutateFailureLeavesStateUntouched(t *testing.T) {
	panel, server, rendered := newUsuariosPanel(t)
	require.NoError(t, panel.Load(context.Background()))

	err := panel.Mutate(context.Background(), Filter{}, func(ctx context.Context) error {
		return errors.New("No autorizado")
	})
	require.Error(t, err)

	assert.Equal(t, 1, server.listHits())
	assert.Empty(t, *rendered)
	assert.Len(t, panel.Rows(), 3)
}
