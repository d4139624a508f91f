package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupRoutesAndMiddlewareOrder(t *testing.T) {
	r := New()
	api := r.Group("/api/v1", tag("api"))
	orders := api.Group("orders", tag("auth"))
	orders.Patch("/{id}/status", "orders.status", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(chi.URLParam(req, "id"))) //nolint:errcheck
	}, tag("route"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/orders/12/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12", rec.Body.String())
	assert.Equal(t, []string{"api", "auth", "route"}, rec.Header().Values("X-Chain"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/12/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNamedRouteURL(t *testing.T) {
	r := New()
	api := r.Group("/api/v1")
	api.Delete("/lunches/{id}/images/{imageId}", "lunches.images.destroy", func(http.ResponseWriter, *http.Request) {})

	url, err := r.URL("lunches.images.destroy", map[string]string{"id": "3", "imageId": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/lunches/3/images/9", url)

	_, err = r.URL("lunches.images.destroy", map[string]string{"id": "3"})
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesAreSorted(t *testing.T) {
	r := New()
	noop := func(http.ResponseWriter, *http.Request) {}
	g := r.Group("/api/v1")
	g.Post("/orders", "orders.store", noop)
	g.Get("/orders", "orders.index", noop)
	r.Get("/health", "health", noop)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, RouteInfo{Method: "GET", Path: "/api/v1/orders", Name: "orders.index"}, routes[0])
	assert.Equal(t, RouteInfo{Method: "POST", Path: "/api/v1/orders", Name: "orders.store"}, routes[1])
	assert.Equal(t, "/health", routes[2].Path)
}
