package yahoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"FXOptions/internal/domain/repository"
	"FXOptions/internal/service/provider"
	"FXOptions/pkg/cache"
	xhttp "FXOptions/pkg/http"
	"FXOptions/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Credential is the cookie and crumb pair the options endpoint requires.
type Credential struct {
	Crumb   string   `json:"crumb"`
	Cookies []string `json:"cookies"` // name=value pairs
}

// CookieHeader renders the cookies as a Cookie request header value.
func (c Credential) CookieHeader() string {
	return strings.Join(c.Cookies, "; ")
}

// Session is the process-wide credential cell. It is filled lazily, shared
// by all requests, and dropped when the provider rejects it. No lock is held
// while talking to the network; concurrent first callers share one
// acquisition through singleflight.
type Session struct {
	fetch     *provider.Fetcher
	cookieURL string
	crumbURL  string

	mu    sync.Mutex
	cred  *Credential
	group singleflight.Group

	store    cache.Service
	storeKey string
	ttl      time.Duration
	metrics  repository.Metrics
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStore persists the credential in s under key, so replicas and
// restarts reuse it until ttl expires.
func WithStore(s cache.Service, key string, ttl time.Duration) SessionOption {
	return func(sess *Session) {
		sess.store = s
		sess.storeKey = key
		sess.ttl = ttl
	}
}

// WithSessionMetrics counts credential acquisitions.
func WithSessionMetrics(m repository.Metrics) SessionOption {
	return func(sess *Session) { sess.metrics = m }
}

func NewSession(fetch *provider.Fetcher, cookieURL, crumbURL string, opts ...SessionOption) *Session {
	s := &Session{fetch: fetch, cookieURL: cookieURL, crumbURL: crumbURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current credential, acquiring one if the cell is empty.
func (s *Session) Get(ctx context.Context) (Credential, error) {
	s.mu.Lock()
	if s.cred != nil {
		c := *s.cred
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	// The flight outlives any single caller; the HTTP client timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("credential", func() (interface{}, error) {
		s.mu.Lock()
		if s.cred != nil {
			c := *s.cred
			s.mu.Unlock()
			return c, nil
		}
		s.mu.Unlock()

		if c, ok := s.load(flightCtx); ok {
			s.set(&c)
			return c, nil
		}

		c, err := s.acquire(flightCtx)
		if err != nil {
			return Credential{}, err
		}
		s.set(&c)
		s.save(flightCtx, c)
		return c, nil
	})

	select {
	case <-ctx.Done():
		return Credential{}, fmt.Errorf("yahoo credential: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}
		return res.Val.(Credential), nil
	}
}

// Invalidate empties the cell if it still holds stale. A credential that was
// already replaced by another request is left alone.
func (s *Session) Invalidate(ctx context.Context, stale Credential) {
	s.mu.Lock()
	if s.cred != nil && s.cred.Crumb == stale.Crumb {
		s.cred = nil
	}
	s.mu.Unlock()

	if s.store != nil {
		var stored Credential
		if err := s.store.Get(ctx, s.storeKey, &stored); err == nil && stored.Crumb == stale.Crumb {
			if err := s.store.Delete(ctx, s.storeKey); err != nil {
				s.fetch.Logger().Warn("credential store delete failed", logger.Error(err))
			}
		}
	}
}

func (s *Session) set(c *Credential) {
	s.mu.Lock()
	s.cred = c
	s.mu.Unlock()
}

func (s *Session) load(ctx context.Context) (Credential, bool) {
	if s.store == nil {
		return Credential{}, false
	}
	var c Credential
	if err := s.store.Get(ctx, s.storeKey, &c); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.fetch.Logger().Warn("credential store read failed", logger.Error(err))
		}
		return Credential{}, false
	}
	if c.Crumb == "" {
		return Credential{}, false
	}
	return c, true
}

func (s *Session) save(ctx context.Context, c Credential) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, s.storeKey, c, s.ttl); err != nil {
		s.fetch.Logger().Warn("credential store write failed", logger.Error(err))
	}
}

// acquire visits the cookie endpoint, whatever its status, and exchanges the
// cookies for a crumb.
func (s *Session) acquire(ctx context.Context) (Credential, error) {
	resp, err := s.fetch.Do(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: s.cookieURL})
	if err != nil {
		return Credential{}, fmt.Errorf("yahoo cookie: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	var cookies []string
	for _, ck := range resp.Cookies() {
		cookies = append(cookies, ck.Name+"="+ck.Value)
	}
	if len(cookies) == 0 {
		return Credential{}, errors.New("yahoo cookie: no cookie set")
	}
	cred := Credential{Cookies: cookies}

	var body []byte
	err = s.fetch.Fetch(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     s.crumbURL,
		Headers: map[string]string{"Cookie": cred.CookieHeader()},
	}, &body)
	if err != nil {
		return Credential{}, fmt.Errorf("yahoo crumb: %w", err)
	}
	cred.Crumb = strings.TrimSpace(string(body))
	if cred.Crumb == "" || strings.ContainsAny(cred.Crumb, "<{ ") {
		return Credential{}, errors.New("yahoo crumb: unexpected response")
	}

	if s.metrics != nil {
		s.metrics.RecordCredentialRefresh()
	}
	prefix := cred.Crumb
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	s.fetch.Logger().Info("yahoo crumb obtained", logger.String("crumb_prefix", prefix+"..."))
	return cred, nil
}
