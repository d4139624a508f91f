package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflaxess123/obedi/pkg/database"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+id, nil))
	}

	assert.Contains(t, scrape(t), `obedi_http_requests_total{method="GET",route="/api/v1/orders/{id}",status="404"} 2`)
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	OrdersCreated.Inc()
	OrderTransitions.WithLabelValues("ACCEPTED").Inc()
	RecordCache(true)

	body := scrape(t)
	assert.Contains(t, body, "obedi_orders_created_total")
	assert.Contains(t, body, `obedi_orders_status_transitions_total{status="ACCEPTED"}`)
	assert.Contains(t, body, `obedi_cache_lookups_total{result="hit"}`)
}

func TestInstrumentDB(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, InstrumentDB(db))

	type row struct{ ID uint }
	require.NoError(t, db.AutoMigrate(&row{}))
	require.NoError(t, db.Create(&row{}).Error)

	var rows []row
	require.NoError(t, db.Find(&rows).Error)

	body := scrape(t)
	assert.Contains(t, body, `obedi_db_query_duration_seconds_count{operation="insert"}`)
	assert.Contains(t, body, `obedi_db_query_duration_seconds_count{operation="select"}`)
}
