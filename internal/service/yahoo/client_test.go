package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"FXOptions/internal/service/provider"
	"FXOptions/pkg/cache"
	xhttp "FXOptions/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeYahoo serves the chart, cookie, crumb and options endpoints.
type fakeYahoo struct {
	mu          sync.Mutex
	crumbs      []string // handed out in order, last one repeats
	validCrumb  string
	crumbCalls  int32
	optionCalls int32
	lastDate    string
}

func (f *fakeYahoo) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		switch symbol {
		case "EURUSD=X":
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":1.0842},
				"indicators":{"quote":[{"close":[1.08,null,1.09,1.1]}]}}],"error":null}}`)
		case "^IRX":
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":4.21},"indicators":{"quote":[]}}]}}`)
		case "EMPTY=X":
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{},"indicators":{"quote":[]}}]}}`)
		default:
			http.Error(w, `{"chart":{"result":null,"error":{"code":"Not Found"}}}`, http.StatusNotFound)
		}
	})
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/crumb", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Cookie"), "A3=session") {
			http.Error(w, "missing cookie", http.StatusUnauthorized)
			return
		}
		n := atomic.AddInt32(&f.crumbCalls, 1)
		time.Sleep(20 * time.Millisecond)
		f.mu.Lock()
		defer f.mu.Unlock()
		idx := int(n) - 1
		if idx >= len(f.crumbs) {
			idx = len(f.crumbs) - 1
		}
		fmt.Fprint(w, f.crumbs[idx])
	})
	mux.HandleFunc("/v7/finance/options/SLV", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.optionCalls, 1)
		f.mu.Lock()
		valid := f.validCrumb
		f.lastDate = r.URL.Query().Get("date")
		f.mu.Unlock()
		if r.URL.Query().Get("crumb") != valid {
			http.Error(w, `{"finance":{"error":{"code":"Unauthorized"}}}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"optionChain":{"result":[{
			"underlyingSymbol":"SLV",
			"expirationDates":[1750377600,1766102400],
			"quote":{"regularMarketPrice":27.5},
			"options":[{"expirationDate":1750377600,"calls":[
				{"strike":27.0,"lastPrice":1.35},
				{"strike":28.0},
				{"strike":29.0,"lastPrice":0.4}
			]}]}],"error":null}}`)
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeYahoo, opts ...SessionOption) (*Client, *Session) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	fetch := provider.New("yahoo", xhttp.NewClient(xhttp.WithTimeout(2*time.Second)))
	sess := NewSession(fetch, srv.URL+"/cookie", srv.URL+"/crumb", opts...)
	c := New(fetch, Config{
		ChartURL:   srv.URL + "/v8/finance/chart",
		OptionsURL: srv.URL + "/v7/finance/options",
	}, sess)
	return c, sess
}

func TestQuote(t *testing.T) {
	c, _ := newTestClient(t, &fakeYahoo{crumbs: []string{"c1"}})
	ctx := context.Background()

	p, err := c.Quote(ctx, "EURUSD=X")
	require.NoError(t, err)
	assert.Equal(t, 1.0842, p)

	p, err = c.Quote(ctx, "^IRX")
	require.NoError(t, err)
	assert.Equal(t, 4.21, p)

	_, err = c.Quote(ctx, "EMPTY=X")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = c.Quote(ctx, "NOPE=X")
	assert.True(t, xhttp.IsStatus(err, http.StatusNotFound))
}

func TestDailyCloses_SkipsNulls(t *testing.T) {
	c, _ := newTestClient(t, &fakeYahoo{crumbs: []string{"c1"}})

	closes, err := c.DailyCloses(context.Background(), "EURUSD=X")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.08, 1.09, 1.1}, closes)

	_, err = c.DailyCloses(context.Background(), "^IRX")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestOptionChain(t *testing.T) {
	f := &fakeYahoo{crumbs: []string{"c1"}, validCrumb: "c1"}
	c, _ := newTestClient(t, f)

	expiry := time.Unix(1766102400, 0).UTC()
	chain, err := c.OptionChain(context.Background(), "SLV", &expiry)
	require.NoError(t, err)

	assert.Equal(t, 27.5, chain.UnderlyingPrice)
	assert.Len(t, chain.Expirations, 2)
	assert.Equal(t, time.Unix(1750377600, 0).UTC(), chain.Expiry)
	require.Len(t, chain.Calls, 2)
	assert.Equal(t, 27.0, chain.Calls[0].Strike)
	assert.Equal(t, 0.4, chain.Calls[1].LastPrice)
	assert.Equal(t, "1766102400", f.lastDate)
}

func TestOptionChain_RefreshesRejectedCrumbOnce(t *testing.T) {
	f := &fakeYahoo{crumbs: []string{"stale", "fresh"}, validCrumb: "fresh"}
	c, sess := newTestClient(t, f)

	_, err := c.OptionChain(context.Background(), "SLV", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.crumbCalls))
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.optionCalls))

	cred, err := sess.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", cred.Crumb)
}

func TestOptionChain_GivesUpAfterOneRetry(t *testing.T) {
	f := &fakeYahoo{crumbs: []string{"bad"}, validCrumb: "never"}
	c, _ := newTestClient(t, f)

	_, err := c.OptionChain(context.Background(), "SLV", nil)
	assert.True(t, xhttp.IsStatus(err, http.StatusUnauthorized))
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.optionCalls))
}

func TestSession_ConcurrentFirstUseAcquiresOnce(t *testing.T) {
	f := &fakeYahoo{crumbs: []string{"c1"}}
	_, sess := newTestClient(t, f)

	var wg sync.WaitGroup
	crumbs := make([]string, 8)
	for i := range crumbs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cred, err := sess.Get(context.Background())
			if err == nil {
				crumbs[i] = cred.Crumb
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&f.crumbCalls))
	for _, c := range crumbs {
		assert.Equal(t, "c1", c)
	}
}

func TestSession_ShortCallerDoesNotFailSharedAcquisition(t *testing.T) {
	f := &fakeYahoo{crumbs: []string{"c1"}}
	_, sess := newTestClient(t, f)

	short, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	var shortErr, longErr error
	var longCred Credential
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, shortErr = sess.Get(short)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(time.Millisecond)
		longCred, longErr = sess.Get(context.Background())
	}()
	wg.Wait()

	assert.ErrorIs(t, shortErr, context.DeadlineExceeded)
	require.NoError(t, longErr)
	assert.Equal(t, "c1", longCred.Crumb)
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.crumbCalls))

	cred, err := sess.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c1", cred.Crumb)
}

func TestSession_InvalidateKeepsNewerCredential(t *testing.T) {
	f := &fakeYahoo{crumbs: []string{"c1", "c2"}}
	_, sess := newTestClient(t, f)
	ctx := context.Background()

	first, err := sess.Get(ctx)
	require.NoError(t, err)
	sess.Invalidate(ctx, first)
	second, err := sess.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c2", second.Crumb)

	// a late invalidation of the old crumb must not drop the new one
	sess.Invalidate(ctx, first)
	again, err := sess.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c2", again.Crumb)
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.crumbCalls))
}

func TestSession_UsesStore(t *testing.T) {
	store := cache.NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "cred", Credential{Crumb: "shared", Cookies: []string{"A3=session"}}, time.Hour))

	f := &fakeYahoo{crumbs: []string{"own"}, validCrumb: "shared"}
	c, sess := newTestClient(t, f, WithStore(store, "cred", time.Hour))

	_, err := c.OptionChain(ctx, "SLV", nil)
	require.NoError(t, err)
	assert.Zero(t, atomic.LoadInt32(&f.crumbCalls))

	// rejected credential is removed from the store and replaced
	sess.Invalidate(ctx, Credential{Crumb: "shared"})
	var stored Credential
	assert.ErrorIs(t, store.Get(ctx, "cred", &stored), cache.ErrCacheMiss)

	cred, err := sess.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "own", cred.Crumb)
	require.NoError(t, store.Get(ctx, "cred", &stored))
	assert.Equal(t, "own", stored.Crumb)
}

func TestCredentialCookieHeader(t *testing.T) {
	assert.Equal(t, "A=1; B=2", Credential{Cookies: []string{"A=1", "B=2"}}.CookieHeader())
}
