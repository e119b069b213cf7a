package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket-admin/internal/auth"
	"rocket-admin/internal/config"
	"rocket-admin/internal/metadata"
	"rocket-admin/internal/store"
	"rocket-admin/internal/views"
)

const cardsDDL = `CREATE TABLE cards (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	power INTEGER,
	foil BOOLEAN NOT NULL DEFAULT 0,
	admin_password TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	code TEXT UNIQUE,
	due_at TIMESTAMP
)`

type testEnv struct {
	app     *fiber.App
	store   *store.Store
	res     *metadata.ResourceDefinition
	session string
	csrf    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := t.Context()

	s, err := store.New(ctx, config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	_, err = s.DB.ExecContext(ctx, cardsDDL)
	require.NoError(t, err)

	table, err := s.Table(ctx, "cards")
	require.NoError(t, err)
	adapter, err := metadata.AdapterFor(s.Dialect.Name())
	require.NoError(t, err)
	cols, err := adapter.ExtractColumns(table)
	require.NoError(t, err)

	duplicate := metadata.NewMemberAction("Duplicate", Duplicate)
	duplicate.Destructive = false
	boom := metadata.NewMemberAction("Boom", func(context.Context, string, metadata.Database) error {
		return errors.New("the reactor is offline")
	})
	powered := metadata.NewMemberAction("Power Up", func(ctx context.Context, id string, db metadata.Database) error {
		_, err := db.Update(ctx, "cards", "id", id, metadata.Record{"power": int64(9000)})
		return err
	})
	powered.Condition = "power != nil && power < 100"

	res, err := metadata.NewResource(table, cols, metadata.Options{
		Index:             metadata.ViewOptions{Columns: []string{"name", "power", "admin_password"}},
		MemberActions:     []*metadata.MemberAction{duplicate, boom, powered},
		CollectionActions: []*metadata.CollectionAction{metadata.NewCollectionAction("Export CSV", ExportCSV)},
	})
	require.NoError(t, err)
	reg := metadata.NewRegistry()
	reg.Load([]*metadata.ResourceDefinition{res})

	authCfg := config.AuthConfig{Secret: "test-secret-at-least-16", SessionTTL: time.Hour, CSRFTTL: time.Hour}
	manager := auth.NewManager(authCfg)
	renderer, err := views.New(views.DefaultTheme("Test Admin"), "")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(Deps{
		Registry: reg,
		DB:       s,
		Auth:     manager,
		Views:    renderer,
		Logger:   logger,
		PerPage:  20,
		FlashTTL: time.Minute,
	})
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(renderer, logger)})
	Mount(app, h, auth.NewHandler(manager, s, renderer, logger))

	session, err := manager.IssueSession("user-1", "admin@example.com")
	require.NoError(t, err)
	csrf, err := manager.IssueCSRF("user-1")
	require.NoError(t, err)

	return &testEnv{app: app, store: s, res: res, session: session, csrf: csrf}
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: e.session})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	resp := e.do(t, httptest.NewRequest(http.MethodGet, path, nil), cookies...)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// post submits a form with a valid CSRF pair unless the form sets _csrf itself.
func (e *testEnv) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if _, ok := form[auth.CSRFField]; !ok {
		form.Set(auth.CSRFField, e.csrf)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req, &http.Cookie{Name: auth.CSRFCookie, Value: e.csrf})
}

func (e *testEnv) count(t *testing.T) int64 {
	t.Helper()
	n, err := e.store.Count(t.Context(), "cards", nil)
	require.NoError(t, err)
	return n
}

func (e *testEnv) insert(t *testing.T, values metadata.Record) string {
	t.Helper()
	row, err := e.store.Insert(t.Context(), "cards", values)
	require.NoError(t, err)
	return e.res.RecordID(e.res.Columns.FromRow(row))
}

func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCreate_RedirectsToShowWithOneShotFlash(t *testing.T) {
	e := newTestEnv(t)

	resp := e.post(t, "/cards", url.Values{"name": {"Ace"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cards/1", resp.Header.Get("Location"))
	assert.Equal(t, int64(1), e.count(t))

	flash := responseCookie(resp, FlashCookie)
	require.NotNil(t, flash)
	assert.True(t, flash.HttpOnly)

	showResp, body := e.get(t, "/cards/1", &http.Cookie{Name: FlashCookie, Value: flash.Value})
	assert.Equal(t, http.StatusOK, showResp.StatusCode)
	assert.Equal(t, 1, strings.Count(body, "Card created successfully."))
	cleared := responseCookie(showResp, FlashCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	_, body = e.get(t, "/cards/1")
	assert.NotContains(t, body, "Card created successfully.")
}

func TestCreate_RoundTripCoercesValues(t *testing.T) {
	e := newTestEnv(t)

	resp := e.post(t, "/cards", url.Values{"name": {"Ace"}, "power": {"42"}, "foil": {"true"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	rows, err := e.store.Select(t.Context(), "cards", metadata.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	rec := e.res.Columns.FromRow(rows[0])
	assert.Equal(t, "Ace", rec["name"])
	assert.Equal(t, int64(42), rec["power"])
	assert.Equal(t, true, rec["foil"])
	assert.Nil(t, rec["admin_password"])

	_, body := e.get(t, resp.Header.Get("Location"))
	assert.Contains(t, body, "42")
}

func TestCreate_ValidationRendersFormAndDatabaseErrorRedirectsToNew(t *testing.T) {
	e := newTestEnv(t)
	e.insert(t, metadata.Record{"name": "Ace", "code": "A1"})

	resp := e.post(t, "/cards", url.Values{"name": {"King"}, "power": {"lots"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "New Card")
	assert.Contains(t, string(body), `value="King"`)
	assert.Contains(t, string(body), `<small class="error">Power must be a whole number</small>`)
	assert.Contains(t, string(body), "flash-error")
	assert.NotNil(t, responseCookie(resp, auth.CSRFCookie), "the re-rendered form carries a fresh token")

	resp = e.post(t, "/cards", url.Values{"name": {"Ace again"}, "code": {"A1"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cards/new", resp.Header.Get("Location"))
	flash := responseCookie(resp, FlashCookie)
	require.NotNil(t, flash)
	_, page := e.get(t, "/cards/new", &http.Cookie{Name: FlashCookie, Value: flash.Value})
	assert.Contains(t, page, "flash-error")

	assert.Equal(t, int64(1), e.count(t))
}

func TestCSRF_RejectsWithoutMutation(t *testing.T) {
	e := newTestEnv(t)
	id := e.insert(t, metadata.Record{"name": "Ace"})

	cases := []struct {
		name     string
		path     string
		form     url.Values
		location string
	}{
		{"create missing field", "/cards", url.Values{"name": {"King"}, auth.CSRFField: {""}}, "/cards/new"},
		{"create forged field", "/cards", url.Values{"name": {"King"}, auth.CSRFField: {"forged"}}, "/cards/new"},
		{"update", "/cards/" + id + "?_method=PUT", url.Values{"name": {"Renamed"}, auth.CSRFField: {"forged"}}, "/cards/" + id + "/edit"},
		{"destroy", "/cards/" + id + "?_method=DELETE", url.Values{auth.CSRFField: {""}}, "/cards/" + id},
		{"member action", "/cards/" + id + "/actions/duplicate", url.Values{auth.CSRFField: {"forged"}}, "/cards/" + id},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := e.post(t, tc.path, tc.form)
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tc.location, resp.Header.Get("Location"))
			assert.NotNil(t, responseCookie(resp, FlashCookie))
			assert.Equal(t, int64(1), e.count(t))
		})
	}

	rows, err := e.store.Select(t.Context(), "cards", metadata.Query{})
	require.NoError(t, err)
	assert.Equal(t, "Ace", rows[0]["name"])
}

func TestCSRF_MatchingPairMustBeSigned(t *testing.T) {
	e := newTestEnv(t)
	other := auth.NewManager(config.AuthConfig{Secret: "some-other-secret-value", SessionTTL: time.Hour, CSRFTTL: time.Hour})
	foreign, err := other.IssueCSRF("user-1")
	require.NoError(t, err)

	form := url.Values{"name": {"King"}, auth.CSRFField: {foreign}}
	req := httptest.NewRequest(http.MethodPost, "/cards", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := e.do(t, req, &http.Cookie{Name: auth.CSRFCookie, Value: foreign})
	assert.Equal(t, "/cards/new", resp.Header.Get("Location"))
	assert.Equal(t, int64(0), e.count(t))
}

func TestCSRF_LatestFormWins(t *testing.T) {
	e := newTestEnv(t)

	first, _ := e.get(t, "/cards/new")
	firstToken := responseCookie(first, auth.CSRFCookie)
	require.NotNil(t, firstToken)
	second, _ := e.get(t, "/cards/new")
	secondToken := responseCookie(second, auth.CSRFCookie)
	require.NotNil(t, secondToken)
	require.NotEqual(t, firstToken.Value, secondToken.Value)

	submit := func(field string) *http.Response {
		form := url.Values{"name": {"Ace"}, auth.CSRFField: {field}}
		req := httptest.NewRequest(http.MethodPost, "/cards", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return e.do(t, req, &http.Cookie{Name: auth.CSRFCookie, Value: secondToken.Value})
	}

	resp := submit(firstToken.Value)
	assert.Equal(t, "/cards/new", resp.Header.Get("Location"))
	assert.Equal(t, int64(0), e.count(t))

	resp = submit(secondToken.Value)
	assert.Equal(t, "/cards/1", resp.Header.Get("Location"))
	assert.Equal(t, int64(1), e.count(t))
}

func TestShow_NotFound(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.get(t, "/cards/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Card not found.")
	assert.Contains(t, body, `href="/cards"`)

	resp, _ = e.get(t, "/cards/abc/edit")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.get(t, "/ghosts")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found.")
}

func TestIndex_Pagination(t *testing.T) {
	e := newTestEnv(t)
	for i := range 25 {
		e.insert(t, metadata.Record{"name": "Card " + string(rune('A'+i))})
	}

	resp, body := e.get(t, "/cards")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 20, strings.Count(body, `<tr class="row">`))
	assert.Contains(t, body, `<span class="disabled">Previous</span>`)
	assert.Contains(t, body, `<a href="/cards?page=2" rel="next">Next</a>`)

	_, body = e.get(t, "/cards?page=2")
	assert.Equal(t, 5, strings.Count(body, `<tr class="row">`))
	assert.Contains(t, body, `<span class="disabled">Next</span>`)
	assert.Contains(t, body, `<a href="/cards?page=1" rel="prev">Previous</a>`)

	_, body = e.get(t, "/cards?page=7")
	assert.Equal(t, 0, strings.Count(body, `<tr class="row">`))
	assert.Contains(t, body, "No cards on page 7.")
}

func TestIndex_PageBeyondOffsetRange(t *testing.T) {
	e := newTestEnv(t)
	for _, name := range []string{"Ace", "King", "Queen"} {
		e.insert(t, metadata.Record{"name": name})
	}

	resp, body := e.get(t, "/cards?page=922337203685477581")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, strings.Count(body, `<tr class="row">`))
	assert.Contains(t, body, "No cards on page 922337203685477581.")
}

func TestPageOffset(t *testing.T) {
	off, ok := pageOffset(3, 20)
	assert.True(t, ok)
	assert.Equal(t, 40, off)

	_, ok = pageOffset(922337203685477581, 20)
	assert.False(t, ok)
	_, ok = pageOffset(0, 20)
	assert.False(t, ok)
}

func TestPasswordColumnsNeverRendered(t *testing.T) {
	e := newTestEnv(t)
	id := e.insert(t, metadata.Record{"name": "Ace", "admin_password": "hunter2-secret"})

	for _, path := range []string{"/cards", "/cards/" + id, "/cards/" + id + "/edit"} {
		_, body := e.get(t, path)
		assert.NotContains(t, body, "hunter2-secret", path)
	}
	_, body := e.get(t, "/cards")
	assert.NotContains(t, body, "Admin Password")
}

func TestUpdate(t *testing.T) {
	e := newTestEnv(t)
	id := e.insert(t, metadata.Record{"name": "Ace", "power": int64(1), "admin_password": "keep-me"})

	resp := e.post(t, "/cards/"+id+"?_method=PUT", url.Values{"name": {"Ace of Spades"}, "power": {"7"}, "admin_password": {""}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cards/"+id, resp.Header.Get("Location"))

	rows, err := e.store.Select(t.Context(), "cards", metadata.Query{})
	require.NoError(t, err)
	rec := e.res.Columns.FromRow(rows[0])
	assert.Equal(t, "Ace of Spades", rec["name"])
	assert.Equal(t, int64(7), rec["power"])
	assert.Equal(t, "keep-me", rec["admin_password"], "blank password keeps the stored value")
	assert.Equal(t, false, rec["foil"])

	resp = e.post(t, "/cards/999?_method=PUT", url.Values{"name": {"Ghost"}})
	assert.Equal(t, "/cards", resp.Header.Get("Location"))
}

func TestUpdate_TimestampSecondsSurviveEditRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	due := time.Date(2026, 10, 15, 12, 0, 37, 0, time.UTC)
	id := e.insert(t, metadata.Record{"name": "Ace", "due_at": due})

	resp, body := e.get(t, "/cards/"+id+"/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="due_at" value="2026-10-15T12:00:37" step="1"`)

	resp = e.post(t, "/cards/"+id+"?_method=PUT", url.Values{"name": {"Ace"}, "due_at": {"2026-10-15T12:00:37"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	rows, err := e.store.Select(t.Context(), "cards", metadata.Query{})
	require.NoError(t, err)
	stored, ok := e.res.Columns.FromRow(rows[0])["due_at"].(time.Time)
	require.True(t, ok)
	assert.True(t, due.Equal(stored), "stored %s", stored)
}

func TestUpdate_ValidationRendersEditForm(t *testing.T) {
	e := newTestEnv(t)
	id := e.insert(t, metadata.Record{"name": "Ace", "power": int64(3)})

	resp := e.post(t, "/cards/"+id+"?_method=PUT", url.Values{"name": {"Ace"}, "power": {"lots"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Edit Card #"+id)
	assert.Contains(t, string(body), `action="/cards/`+id+`?_method=PUT"`)
	assert.Contains(t, string(body), "Power must be a whole number")

	rows, err := e.store.Select(t.Context(), "cards", metadata.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.res.Columns.FromRow(rows[0])["power"])
}

func TestDestroy(t *testing.T) {
	e := newTestEnv(t)
	id := e.insert(t, metadata.Record{"name": "Ace"})

	resp := e.post(t, "/cards/"+id+"?_method=DELETE", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cards", resp.Header.Get("Location"))
	assert.Equal(t, int64(0), e.count(t))

	resp = e.post(t, "/cards/"+id+"?_method=DELETE", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cards", resp.Header.Get("Location"))
	flash := responseCookie(resp, FlashCookie)
	require.NotNil(t, flash)
	_, body := e.get(t, "/cards", &http.Cookie{Name: FlashCookie, Value: flash.Value})
	assert.Contains(t, body, "Card not found.")
}

func TestOverride_UnknownMethod(t *testing.T) {
	e := newTestEnv(t)
	id := e.insert(t, metadata.Record{"name": "Ace"})
	resp := e.post(t, "/cards/"+id+"?_method=TRACE", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMemberActions(t *testing.T) {
	e := newTestEnv(t)
	id := e.insert(t, metadata.Record{"name": "Ace", "power": int64(5)})

	resp := e.post(t, "/cards/"+id+"/actions/boom", nil)
	assert.Equal(t, "/cards/"+id, resp.Header.Get("Location"))
	flash := responseCookie(resp, FlashCookie)
	require.NotNil(t, flash)
	_, body := e.get(t, "/cards/"+id, &http.Cookie{Name: FlashCookie, Value: flash.Value})
	assert.Contains(t, body, "the reactor is offline")

	resp = e.post(t, "/cards/"+id+"/actions/nope", nil)
	assert.Equal(t, "/cards/"+id, resp.Header.Get("Location"))

	resp = e.post(t, "/cards/"+id+"/actions/power-up", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	rows, err := e.store.Select(t.Context(), "cards", metadata.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(9000), e.res.Columns.FromRow(rows[0])["power"])

	_, body = e.get(t, "/cards/"+id)
	assert.NotContains(t, body, "Power Up", "condition hides the button")
	resp = e.post(t, "/cards/"+id+"/actions/power-up", nil)
	flash = responseCookie(resp, FlashCookie)
	require.NotNil(t, flash)
	_, body = e.get(t, "/cards/"+id, &http.Cookie{Name: FlashCookie, Value: flash.Value})
	assert.Contains(t, body, "Power Up is not available for this Card.")
}

func TestActionFailuresAreActionErrors(t *testing.T) {
	ctx := t.Context()
	failing := metadata.NewMemberAction("Boom", func(context.Context, string, metadata.Database) error {
		return errors.New("the reactor is offline")
	})
	err := runMember(ctx, failing, "1", nil)
	require.Error(t, err)
	assert.True(t, metadata.IsKind(err, metadata.KindAction))
	assert.Equal(t, "the reactor is offline", err.Error())

	panicking := metadata.NewMemberAction("Crash", func(context.Context, string, metadata.Database) error {
		panic("meltdown")
	})
	err = runMember(ctx, panicking, "1", nil)
	require.Error(t, err)
	assert.True(t, metadata.IsKind(err, metadata.KindAction))
	assert.Contains(t, err.Error(), "Crash failed: meltdown")

	collection := metadata.NewCollectionAction("Export", func(*metadata.ActionRequest, metadata.Database) (*metadata.ActionResponse, error) {
		panic("disk full")
	})
	resp, err := runCollection(collection, &metadata.ActionRequest{Context: ctx}, nil)
	assert.Nil(t, resp)
	assert.True(t, metadata.IsKind(err, metadata.KindAction))
	assert.False(t, metadata.IsFatal(err))

	ok := metadata.NewCollectionAction("Noop", func(*metadata.ActionRequest, metadata.Database) (*metadata.ActionResponse, error) {
		return nil, nil
	})
	resp, err = runCollection(ok, &metadata.ActionRequest{Context: ctx}, nil)
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestDuplicateAction(t *testing.T) {
	e := newTestEnv(t)
	id := e.insert(t, metadata.Record{"name": "Ace", "power": int64(3)})

	resp := e.post(t, "/cards/"+id+"/actions/duplicate", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cards/"+id, resp.Header.Get("Location"))
	require.Equal(t, int64(2), e.count(t))

	rows, err := e.store.Select(t.Context(), "cards", metadata.Query{OrderBy: []metadata.Order{{Column: "id"}}})
	require.NoError(t, err)
	copied := e.res.Columns.FromRow(rows[1])
	assert.Equal(t, int64(2), copied["id"])
	assert.Equal(t, "Ace", copied["name"])
	assert.Equal(t, int64(3), copied["power"])

	// code is unique, so copying a record that has one fails and is reported.
	coded := e.insert(t, metadata.Record{"name": "King", "code": "K1"})
	resp = e.post(t, "/cards/"+coded+"/actions/duplicate", nil)
	assert.Equal(t, "/cards/"+coded, resp.Header.Get("Location"))
	assert.Equal(t, int64(3), e.count(t))
}

func TestCollectionAction_ExportCSV(t *testing.T) {
	e := newTestEnv(t)
	e.insert(t, metadata.Record{"name": "Ace", "power": int64(1), "admin_password": "hidden"})
	e.insert(t, metadata.Record{"name": "King", "power": int64(13)})

	resp := e.post(t, "/cards/actions/export-csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="cards.csv"`)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,power,foil"))
	assert.NotContains(t, string(body), "hidden")
	assert.True(t, strings.HasPrefix(lines[2], "2,King,13,No"))

	resp = e.post(t, "/cards/actions/missing", nil)
	assert.Equal(t, "/cards", resp.Header.Get("Location"))
}

func TestDashboardAndSession(t *testing.T) {
	e := newTestEnv(t)
	e.insert(t, metadata.Record{"name": "Ace"})

	resp, body := e.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/cards"`)
	assert.Contains(t, body, "admin@example.com")

	req := httptest.NewRequest(http.MethodGet, "/cards", nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(25, 20))
	assert.Equal(t, 0, totalPages(5, 0))
}

func TestLoadResources(t *testing.T) {
	e := newTestEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cards.yaml"), []byte(`
kind: resource
table: cards
member_actions:
  - name: Duplicate
    handler: duplicate
    destructive: false
collection_actions:
  - name: Export JSON
    handler: export_json
`), 0o644))

	actions := metadata.NewActionRegistry()
	RegisterBuiltinActions(actions)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg, problems := LoadResources(t.Context(), dir, "sqlite", e.store, actions, logger)
	require.Empty(t, problems)
	res := reg.Get("cards")
	require.NotNil(t, res)
	assert.NotNil(t, res.FindMemberAction("duplicate"))
	assert.NotNil(t, res.FindCollectionAction("export-json"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cards_copy.json"), []byte(`{"kind": "resource", "table": "cards", "label": "Copy"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ghosts.yml"), []byte("kind: resource\ntable: ghosts\n"), 0o644))
	_, problems = LoadResources(t.Context(), dir, "sqlite", e.store, actions, logger)
	assert.Len(t, problems, 2, "missing ghosts table and a second resource on /cards")

	_, problems = LoadResources(t.Context(), dir, "oracle", e.store, actions, logger)
	assert.Len(t, problems, 1)
}

func TestExportJSON(t *testing.T) {
	e := newTestEnv(t)
	e.insert(t, metadata.Record{"name": "Ace", "power": int64(1), "admin_password": "hidden"})

	resp, err := ExportJSON(&metadata.ActionRequest{Context: t.Context(), Resource: e.res}, e.store)
	require.NoError(t, err)
	assert.Equal(t, "cards.json", resp.Filename)
	assert.Contains(t, string(resp.Body), `"name": "Ace"`)
	assert.NotContains(t, string(resp.Body), "hidden")
}
