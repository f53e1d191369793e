package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaamkhojo-engine/internal/cache"
	"kaamkhojo-engine/internal/config"
	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/events"
	"kaamkhojo-engine/internal/listing"
	"kaamkhojo-engine/internal/store"
)

type testEnv struct {
	deps    Deps
	handler http.Handler
	actions *actionLog
}

type actionLog struct {
	mu   sync.Mutex
	seen []string
}

func (a *actionLog) Perform(_ context.Context, kind domain.Kind, id int64, action string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = append(a.seen, string(kind)+":"+action+":"+strconv.FormatInt(id, 10))
	return nil
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "kk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = store.Seed(context.Background(), db.Pool, store.MockRecords())
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, config.SaveAtomic(cfgPath, config.Default()))
	var cfgVal atomic.Value
	cfgVal.Store(config.Default())

	acts := &actionLog{}
	d := Deps{
		DB:          db.Pool,
		Source:      store.Source{DB: db.Pool},
		Hub:         events.NewHub(),
		Cache:       cache.NewMemory(),
		Actions:     acts,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
	}
	return &testEnv{deps: d, handler: NewHandler(d, nil), actions: acts}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func cardTitles(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	var out []string
	doc.Find("li.card .card__title, li.row .row__title").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

func TestListingPage_FiltersFromURL(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/jobs?category=blue-collar", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, []string{"Electrician", "Delivery Partner", "Site Supervisor"}, cardTitles(t, rec))
}

func TestListingPage_ListLayoutAndAliases(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/jobs?keyword=react&view=list", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Frontend Developer"}, cardTitles(t, rec))
}

func TestListingPage_MalformedQueryShowsEverything(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/jobs?q=%zz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, cardTitles(t, rec), 8)
}

func TestListingPage_OtherScreens(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/services?q=plumbing", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Home Plumbing Repair"}, cardTitles(t, rec))

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/news", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, cardTitles(t, rec), 2)
}

func TestListingPage_EmptyState(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/freelancers?q=astronaut", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "/freelancers/filter/clear", doc.Find(".empty form").AttrOr("action", ""))
}

func TestListingPage_SourceFailure(t *testing.T) {
	env := newEnv(t)
	env.deps.Source = listing.SourceFunc(func(context.Context, domain.Kind) ([]domain.Record, error) {
		return nil, errors.New("connection refused")
	})
	h := NewHandler(env.deps, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "We could not load jobs")
}

func TestFilterPost_Redirects(t *testing.T) {
	env := newEnv(t)

	cases := []struct {
		name string
		path string
		form url.Values
		want string
	}{
		{
			name: "set enum keeps other params",
			path: "/jobs/filter",
			form: url.Values{"return": {"q=react&view=list"}, "key": {"category"}, "value": {"white-collar"}},
			want: "/jobs?category=white-collar&q=react&view=list",
		},
		{
			name: "sentinel removes param",
			path: "/jobs/filter",
			form: url.Values{"return": {"category=blue-collar&page=2"}, "key": {"category"}, "value": {"all"}},
			want: "/jobs?page=2",
		},
		{
			name: "search bar sets query and location",
			path: "/jobs/filter",
			form: url.Values{"return": {""}, "q": {" react "}, "location": {"Delhi"}},
			want: "/jobs?location=Delhi&q=react",
		},
		{
			name: "alias replaced by canonical name",
			path: "/jobs/filter",
			form: url.Values{"return": {"?keyword=go"}, "q": {"rust"}},
			want: "/jobs?q=rust",
		},
		{
			name: "unknown enum value clears",
			path: "/jobs/filter",
			form: url.Values{"return": {"salary=3-6"}, "key": {"salary"}, "value": {"a-lot"}},
			want: "/jobs",
		},
		{
			name: "clear all keeps layout",
			path: "/jobs/filter/clear",
			form: url.Values{"return": {"q=x&category=blue-collar&view=grid"}},
			want: "/jobs?view=grid",
		},
		{
			name: "services screen",
			path: "/services/filter",
			form: url.Values{"key": {"location"}, "value": {"Gurugram"}},
			want: "/services?location=Gurugram",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, postForm(tc.path, tc.form))
			require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
			assert.Equal(t, tc.want, rec.Header().Get("Location"))
		})
	}
}

func TestFilterPost_Rejects(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, postForm("/jobs/filter", url.Values{"key": {"salaryMax"}, "value": {"1"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "unknown_filter", e.Error.Code)
	assert.NotEmpty(t, e.Error.RequestID)

	rec = env.do(t, postForm("/jobs/filter", url.Values{"return": {"q=x"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/jobs/filter", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestActionPost(t *testing.T) {
	env := newEnv(t)
	ch := env.deps.Hub.Subscribe()
	defer env.deps.Hub.Unsubscribe(ch)

	rec := env.do(t, postForm("/jobs/1/apply", url.Values{"return": {"q=react"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/jobs?q=react", rec.Header().Get("Location"))
	assert.Equal(t, []string{"job:apply:1"}, env.actions.seen)

	var evt events.Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &evt))
	assert.Equal(t, events.TypeRecordAction, evt.Type)

	rec = env.do(t, postForm("/jobs/1/book", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, postForm("/jobs/abc/apply", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIJobs_CacheAndDelete(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var jobs []JobSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 8)
	assert.Equal(t, "Frontend Developer", jobs[0].Title)
	assert.Equal(t, []string{"React", "TypeScript", "Tailwind"}, jobs[0].Skills)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/records/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	assert.Len(t, jobs, 7)

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/records/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/records/zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIRecords(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/records?kind=service&q=plumbing", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RecordsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.KindService, resp.Kind)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "plumbing", resp.Criteria.Keyword)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/records?category=blue-collar&type=contract", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Electrician", resp.Records[0].Title)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/records?kind=gig", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeed(t *testing.T) {
	env := newEnv(t)
	ch := env.deps.Hub.Subscribe()
	defer env.deps.Hub.Unsubscribe(ch)

	body := "records:\n  - kind: freelancer\n    title: Tabla Teacher\n    company: Vikram Rao\n    category: blue-collar\n"
	req := httptest.NewRequest(http.MethodPost, "/seed", strings.NewReader(body))
	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true,"count":1}`, rec.Body.String())

	var evt events.Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &evt))
	assert.Equal(t, events.TypeRecordsSeeded, evt.Type)

	req = httptest.NewRequest(http.MethodPost, "/seed", strings.NewReader("records:\n  - kind: gig\n"))
	rec = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, true, out["ok"])
	assert.EqualValues(t, len(store.MockRecords()), out["records"])
}

func TestConfig_GetPut(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg config.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, config.Default().App.Port, cfg.App.Port)

	cfg.Listing.DefaultLayout = "list"
	b, _ := json.Marshal(cfg)
	rec = env.do(t, httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(string(b))))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "list", env.deps.cfg().Listing.DefaultLayout)

	cfg.App.Port = 0
	b, _ = json.Marshal(cfg)
	rec = env.do(t, httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(string(b))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var vr config.Validation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vr))
	assert.NotEmpty(t, vr.Errors)

	rec = env.do(t, httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(`{"nope":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/config/path", nil))
	assert.Contains(t, rec.Body.String(), "config.yml")
}

func TestMiddleware_RequestID(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = env.do(t, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestMiddleware_RateLimit(t *testing.T) {
	env := newEnv(t)
	h := NewHandler(env.deps, NewClientLimiter(0.001, 2))

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// other clients have their own budget
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientLimiter_PruneDropsIdleClients(t *testing.T) {
	cl := NewClientLimiter(10, 1)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	cl.now = func() time.Time { return now }

	cl.limiterFor("10.0.0.1")
	cl.limiterFor("10.0.0.2")
	now = now.Add(2 * time.Hour)
	cl.limiterFor("10.0.0.2")
	require.Equal(t, 2, cl.Clients())

	assert.Equal(t, 1, cl.Prune(time.Hour))
	assert.Equal(t, 1, cl.Clients())
	assert.Zero(t, cl.Prune(time.Hour))

	var nilLimiter *ClientLimiter
	assert.Zero(t, nilLimiter.Prune(time.Hour))
}

func TestShutdownRoute(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/shutdown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	called := false
	d := env.deps
	d.Shutdown = func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}
	h := NewHandler(d, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shutdown", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, nil, http.StatusTeapot, "short_and_stout", "here is my handle")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"short_and_stout","message":"here is my handle"}}`, rec.Body.String())
}

func TestMiddleware_Recover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), RequestID, Recover)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "internal_error", e.Error.Code)
}

func TestRoot_RedirectsToJobs(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/jobs", rec.Header().Get("Location"))

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvents_SSE(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	readData := func() events.Event {
		for {
			line, err := r.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				var e events.Event
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &e))
				return e
			}
		}
	}
	assert.Equal(t, events.TypePing, readData().Type)

	require.Eventually(t, func() bool { return env.deps.Hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	env.deps.Hub.Publish(events.MakeEvent("", events.TypeRecordDeleted, 1, map[string]any{"id": 3}))
	assert.Equal(t, events.TypeRecordDeleted, readData().Type)
}
