package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacia-pos/internal/application/dto"
	apphttp "github.com/tu-usuario/farmacia-pos/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeSweeper captura el asOf recibido y devuelve una lista fija.
type fakeSweeper struct {
	asOf     time.Time
	llamadas int
	ids      []string
}

func (f *fakeSweeper) Sweep(_ context.Context, asOf time.Time) ([]string, error) {
	f.llamadas++
	f.asOf = asOf
	return f.ids, nil
}

// appDeBarrido construye una aplicación Fiber mínima con solo la ruta del sweep.
func appDeBarrido(sw *fakeSweeper) *fiber.App {
	app := fiber.New()
	h := apphttp.NewInventoryHandler(nil, nil, nil, sw)
	app.Post("/api/inventory/sweep", h.Sweep)
	return app
}

func postSweep(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/sweep", reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Sweep: corte temporal fijado por el scheduler externo
// ──────────────────────────────────────────────────────────────────────────────

// Un as_of explícito en el cuerpo llega intacto al caso de uso y se refleja
// en swept_at.
func TestSweep_AsOfExplicito(t *testing.T) {
	sw := &fakeSweeper{ids: []string{"b1", "b2"}}
	app := appDeBarrido(sw)

	corte := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	resp := postSweep(t, app, `{"as_of":"2025-06-15T10:00:00Z"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, sw.llamadas)
	assert.True(t, sw.asOf.Equal(corte), "el caso de uso debe recibir el as_of del cuerpo")

	var out dto.SweepResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"b1", "b2"}, out.Quarantined)
	assert.True(t, out.SweptAt.Equal(corte))
}

// Sin cuerpo, el barrido corre al instante actual.
func TestSweep_SinCuerpoUsaAhora(t *testing.T) {
	sw := &fakeSweeper{}
	app := appDeBarrido(sw)

	antes := time.Now()
	resp := postSweep(t, app, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, sw.llamadas)
	assert.False(t, sw.asOf.Before(antes))
	assert.WithinDuration(t, time.Now(), sw.asOf, 5*time.Second)

	var out dto.SweepResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{}, out.Quarantined)
}

// Un as_of malformado es 400 y no dispara la corrida.
func TestSweep_AsOfInvalido(t *testing.T) {
	sw := &fakeSweeper{}
	app := appDeBarrido(sw)

	resp := postSweep(t, app, `{"as_of":"ayer a la tarde"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, sw.llamadas)
}
