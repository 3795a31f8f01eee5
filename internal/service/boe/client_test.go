package boe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"FXOptions/internal/service/provider"
	xhttp "FXOptions/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bankRateCSV = `DATE,IUDBEDR
"07 Aug 2024",5
"06 Feb 2025",4.5
"08 May 2025",4.25
`

func TestParseLatest(t *testing.T) {
	v, err := ParseLatest([]byte(bankRateCSV))
	require.NoError(t, err)
	assert.Equal(t, 4.25, v)

	// trailing junk and out-of-range values are skipped
	v, err = ParseLatest([]byte(bankRateCSV + "\"footer\",n/a\n\"x\",2025\n"))
	require.NoError(t, err)
	assert.Equal(t, 4.25, v)

	_, err = ParseLatest([]byte("DATE,IUDBEDR\n"))
	assert.ErrorIs(t, err, ErrNoRate)

	_, err = ParseLatest([]byte("<html>maintenance</html>"))
	assert.ErrorIs(t, err, ErrNoRate)
}

func TestRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, bankRateCSV)
	}))
	defer srv.Close()

	rate, err := New(provider.New("boe", xhttp.NewClient()), srv.URL).Rate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.0425, rate, 1e-12)
}
