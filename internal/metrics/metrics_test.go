package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SignupsTotal.WithLabelValues(ResultOK).Inc()
	m.LoginsTotal.WithLabelValues(ResultDenied).Inc()
	m.LoginsTotal.WithLabelValues(ResultDenied).Inc()
	m.PasswordRehashesTotal.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignupsTotal.WithLabelValues(ResultOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues(ResultDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PasswordRehashesTotal))

	expected := `
# HELP fittrack_logins_total Total number of login attempts by result
# TYPE fittrack_logins_total counter
fittrack_logins_total{result="denied"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fittrack_logins_total"))
}

func TestNewMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics(reg)
	m.VerificationEmailsTotal.WithLabelValues(ResultError).Inc()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	bodyStr := string(body)
	assert.Contains(t, bodyStr, "# HELP")
	assert.Contains(t, bodyStr, "go_goroutines")
	assert.Contains(t, bodyStr, `fittrack_verification_emails_total{result="error"} 1`)
}
