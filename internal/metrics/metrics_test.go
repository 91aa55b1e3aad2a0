package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/tables/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/tables/{name}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tables/orders", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(HTTPRequestsInFlight))
}

func TestMiddleware_UnmatchedPathsShareOneSeries(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)
	seriesBefore := testutil.CollectAndCount(HTTPRequestsTotal)

	for _, path := range []string{"/nope/1", "/nope/2", "/wp-admin.php"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
	assert.LessOrEqual(t, testutil.CollectAndCount(HTTPRequestsTotal)-seriesBefore, 1)
}

func TestRecordGeneration(t *testing.T) {
	ok := GenerationRequestsTotal.WithLabelValues("success")
	failed := GenerationRequestsTotal.WithLabelValues("error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordGeneration(time.Second, nil)
	RecordGeneration(time.Second, errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestRecordGenerationTokens(t *testing.T) {
	in := GenerationTokensTotal.WithLabelValues("input")
	out := GenerationTokensTotal.WithLabelValues("output")
	inBefore, outBefore := testutil.ToFloat64(in), testutil.ToFloat64(out)

	RecordGenerationTokens(12, 30)

	assert.Equal(t, inBefore+12, testutil.ToFloat64(in))
	assert.Equal(t, outBefore+30, testutil.ToFloat64(out))
}

func TestRecordCatalogOperation(t *testing.T) {
	RecordCatalogOperation("list_tables", "postgres", 10*time.Millisecond, nil)
	RecordCatalogOperation("describe_table", "postgres", 10*time.Millisecond, errors.New("boom"))

	assert.GreaterOrEqual(t, testutil.CollectAndCount(CatalogOperationDuration), 2)
}
