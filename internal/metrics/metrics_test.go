package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.BookingsTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.PaymentsTotal.WithLabelValues(OutcomeInsufficientFunds).Inc()
	m.TxRetriesTotal.WithLabelValues("book").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsTotal.WithLabelValues(OutcomeInsufficientFunds)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TxRetriesTotal.WithLabelValues("book")))
}

func TestMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))
}
