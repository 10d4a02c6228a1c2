package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/simmr/internal/auth"
	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/engine"
	"github.com/hammamikhairi/simmr/internal/friends"
	"github.com/hammamikhairi/simmr/internal/ledger"
	"github.com/hammamikhairi/simmr/internal/logger"
	"github.com/hammamikhairi/simmr/internal/objectstore"
	"github.com/hammamikhairi/simmr/internal/pantry"
	"github.com/hammamikhairi/simmr/internal/recipe"
	"github.com/hammamikhairi/simmr/internal/storage"
	"github.com/hammamikhairi/simmr/internal/story"
	"github.com/hammamikhairi/simmr/internal/storylog"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	handler http.Handler
	tokens  *auth.Tokens
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	recipes := recipe.NewMemorySource(log)

	srv := NewServer(Deps{
		Auth:      auth.NewService(storage.NewMemoryUsers(log), tokens, log),
		Recipes:   recipes,
		Catalogue: recipes,
		Pantry:    pantry.NewService(storage.NewMemoryPantry(log), nil, log),
		Engine: engine.New(recipes, storage.NewMemoryStore(log), log,
			engine.WithNarrator(story.NewCannedNarrator())),
		StoryLogs: storylog.NewService(storage.NewMemoryStoryLogs(log), objectstore.NewMemoryStore(""), recipes, log),
		Friends:   friends.NewService(storage.NewMemoryGroups(log), recipes, log),
		Log:       log,
	}, Options{AllowOrigins: []string{"http://localhost:8081"}})

	return &testEnv{handler: srv.Handler(), tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// register signs up email and returns its token and user ID.
func (e *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "hunter22"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User    domain.User        `json:"user"`
		Session domain.AuthSession `json:"session"`
	}
	decode(t, w, &resp)
	return resp.Session.Token, resp.User.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	env := setupServer(t)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	env := setupServer(t)
	token, id := env.register(t, "Ana@Example.com")

	w := env.do(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me domain.User
	decode(t, w, &me)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "ana@example.com", me.Email)
	assert.Equal(t, "ana", me.DisplayName)

	w = env.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "ana@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "ana@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "ana@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code)
	var session domain.AuthSession
	decode(t, w, &session)
	assert.NotEmpty(t, session.Token)

	w = env.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "ana@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	env := setupServer(t)

	w := env.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type recipeRow struct {
	ID        string           `json:"id"`
	Readiness ledger.Readiness `json:"readiness"`
}

func recipeIDs(rows []recipeRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestRecipesWithReadiness(t *testing.T) {
	env := setupServer(t)
	token, _ := env.register(t, "cook@example.com")

	w := env.do(t, http.MethodGet, "/recipes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []recipeRow
	decode(t, w, &all)
	assert.Len(t, all, len(recipe.Catalogue()))

	w = env.do(t, http.MethodGet, "/recipes?category=Kids", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var kids []recipeRow
	decode(t, w, &kids)
	assert.Equal(t, []string{"rainbow-pizza-bagels"}, recipeIDs(kids))

	w = env.do(t, http.MethodGet, "/recipes?min_servings=6", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var big []recipeRow
	decode(t, w, &big)
	assert.Equal(t, []string{"taco-night-bar"}, recipeIDs(big))

	w = env.do(t, http.MethodGet, "/recipes?q=feta", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feta []recipeRow
	decode(t, w, &feta)
	assert.Equal(t, []string{"baked-feta-pasta"}, recipeIDs(feta))

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/recipes?category=kids", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/recipes?min_servings=zero", token, nil).Code)

	// Default pantry has Pasta, Chicken, Garlic and Butter out of seven.
	w = env.do(t, http.MethodGet, "/recipes/creamy-chicken-pasta", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Recipe    domain.Recipe `json:"recipe"`
		Readiness pantry.Report `json:"readiness"`
	}
	decode(t, w, &detail)
	assert.Equal(t, "Creamy Chicken Pasta", detail.Recipe.Title)
	assert.Equal(t, ledger.Readiness{Total: 7, Have: 4, Percent: 57}, detail.Readiness.Readiness)
	assert.Len(t, detail.Readiness.Missing, 3)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/recipes/nope", token, nil).Code)
}

func TestCategoriesAndSections(t *testing.T) {
	env := setupServer(t)
	token, _ := env.register(t, "cook@example.com")

	w := env.do(t, http.MethodGet, "/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cats []categoryView
	decode(t, w, &cats)
	require.Len(t, cats, len(domain.Categories()))
	assert.Equal(t, domain.CategoryBrowse, cats[0].Name)

	w = env.do(t, http.MethodGet, "/recipes/sections", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sections ledger.BrowseSections
	decode(t, w, &sections)
	assert.Len(t, sections.Kids, 2)
	assert.Equal(t, len(recipe.Catalogue()), len(sections.Kids)+len(sections.Friends)+len(sections.Recommended))
}

func TestPantryEndpoints(t *testing.T) {
	env := setupServer(t)
	token, _ := env.register(t, "cook@example.com")

	w := env.do(t, http.MethodGet, "/pantry", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items struct{ Items []string }
	decode(t, w, &items)
	assert.Equal(t, pantry.DefaultPantry, items.Items)

	assert.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/pantry", token, gin.H{"name": " Cream "}).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/pantry", token, gin.H{"name": "Cream"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/pantry", token, gin.H{}).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/pantry/Cream", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/pantry/Cream", token, nil).Code)

	w = env.do(t, http.MethodGet, "/pantry/available", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &items)
	assert.NotContains(t, items.Items, "Chicken")
	assert.Contains(t, items.Items, "Cream")
}

func TestCookAlong(t *testing.T) {
	env := setupServer(t)
	token, _ := env.register(t, "cook@example.com")
	other, _ := env.register(t, "nosy@example.com")

	w := env.do(t, http.MethodPost, "/cook", token, gin.H{"recipe_id": "banana-pancakes", "tone": "mystery"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view cookView
	decode(t, w, &view)
	id := view.Session.ID
	assert.Equal(t, domain.ToneMystery, view.Session.Tone)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 1, view.Step.Order)

	path := "/cook/" + id
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, other, nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path+"/previous", token, nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodGet, path+"/summary", token, nil).Code)

	w = env.do(t, http.MethodPost, path+"/next", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.Equal(t, 2, view.Step.Order)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path+"/pause", token, nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path+"/next", token, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path+"/resume", token, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path+"/skip", token, nil).Code)

	w = env.do(t, http.MethodPost, path+"/next", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.True(t, view.Completed)
	assert.Nil(t, view.Step)

	w = env.do(t, http.MethodGet, path+"/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct{ Summary string }
	decode(t, w, &summary)
	assert.True(t, strings.HasPrefix(summary.Summary, "You finished Three Ingredient Banana Pancakes!"))

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path+"/next", token, nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path+"/abandon", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/cook/missing", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/cook", token, gin.H{"recipe_id": "nope"}).Code)
}

// Run with -race: readers and writers on one session must not share state.
func TestCookAlongConcurrentRequests(t *testing.T) {
	env := setupServer(t)
	token, _ := env.register(t, "cook@example.com")

	w := env.do(t, http.MethodPost, "/cook", token, gin.H{"recipe_id": "creamy-chicken-pasta"})
	require.Equal(t, http.StatusCreated, w.Code)
	var view cookView
	decode(t, w, &view)
	path := "/cook/" + view.Session.ID

	send := func(method, p string) int {
		req := httptest.NewRequest(method, p, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec.Code
	}

	const rounds = 200
	var (
		wg       sync.WaitGroup
		readBad  atomic.Int32
		writeBad atomic.Int32
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range rounds {
			if send(http.MethodGet, path) != http.StatusOK {
				readBad.Add(1)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range rounds {
			if send(http.MethodPost, path+"/next") != http.StatusOK {
				writeBad.Add(1)
			}
			if send(http.MethodPost, path+"/previous") != http.StatusOK {
				writeBad.Add(1)
			}
		}
	}()
	wg.Wait()

	assert.Zero(t, readBad.Load(), "failed reads")
	assert.Zero(t, writeBad.Load(), "failed moves")

	w = env.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.Equal(t, 1, view.Step.Order)
}

func TestCookCommand(t *testing.T) {
	env := setupServer(t)
	token, _ := env.register(t, "cook@example.com")

	w := env.do(t, http.MethodPost, "/cook", token, gin.H{"recipe_id": "creamy-chicken-pasta"})
	require.Equal(t, http.StatusCreated, w.Code)
	var view cookView
	decode(t, w, &view)
	path := "/cook/" + view.Session.ID + "/command"

	var resp struct {
		Intent string   `json:"intent"`
		Reply  string   `json:"reply"`
		State  cookView `json:"state"`
	}

	w = env.do(t, http.MethodPost, path, token, gin.H{"text": "Okay, next step please"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &resp)
	assert.Equal(t, "next", resp.Intent)
	assert.True(t, strings.HasPrefix(resp.Reply, "Step 2 of 5."), resp.Reply)
	assert.Equal(t, 1, resp.State.Session.CurrentStepIndex)

	w = env.do(t, http.MethodPost, path, token, gin.H{"text": "last step"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "previous", resp.Intent)
	assert.Equal(t, 0, resp.State.Session.CurrentStepIndex)

	w = env.do(t, http.MethodPost, path, token, gin.H{"text": "last step"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "You're already on the first step.", resp.Reply)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, path, token, gin.H{}).Code)
}

func multipartBody(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "dish.jpg")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("\xff\xd8\xff jpeg"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestStoryLogs(t *testing.T) {
	env := setupServer(t)
	token, _ := env.register(t, "cook@example.com")

	upload := func(fields map[string]string, withImage bool) *httptest.ResponseRecorder {
		body, ct := multipartBody(t, fields, withImage)
		req := httptest.NewRequest(http.MethodPost, "/story-logs", body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		return w
	}

	w := upload(map[string]string{"recipe_id": "taco-night-bar", "story_summary": "Loud and happy"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry domain.StoryLog
	decode(t, w, &entry)
	assert.True(t, strings.HasPrefix(entry.DishImageURL, "memory://images/"))
	assert.True(t, strings.HasSuffix(entry.DishImageURL, ".jpg"))

	assert.Equal(t, http.StatusBadRequest, upload(map[string]string{"recipe_id": "taco-night-bar"}, false).Code)
	assert.Equal(t, http.StatusBadRequest, upload(map[string]string{}, true).Code)

	var logs []domain.StoryLog
	w = env.do(t, http.MethodGet, "/story-logs?tab=Friends", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &logs)
	assert.Len(t, logs, 1)

	w = env.do(t, http.MethodGet, "/story-logs?tab=Kids", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &logs)
	assert.Empty(t, logs)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/story-logs?tab=Family", token, nil).Code)
}

func TestGroups(t *testing.T) {
	env := setupServer(t)
	alice, _ := env.register(t, "alice@example.com")
	bob, bobID := env.register(t, "bob@example.com")
	mallory, _ := env.register(t, "mallory@example.com")

	when := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	w := env.do(t, http.MethodPost, "/groups", alice, gin.H{
		"recipe_id":       "taco-night-bar",
		"session_date":    when,
		"invited_friends": []string{bobID},
		"location":        "Alice's",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var gs domain.GroupSession
	decode(t, w, &gs)
	assert.Equal(t, domain.ToneAdventure, gs.StoryTheme)

	var invites []domain.Invite
	w = env.do(t, http.MethodGet, "/invites", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &invites)
	require.Len(t, invites, 1)
	assert.Equal(t, domain.InvitePending, invites[0].Status)

	rsvp := fmt.Sprintf("/groups/%s/rsvp", gs.ID)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, rsvp, bob, gin.H{}).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, rsvp, mallory, gin.H{"accept": true}).Code)

	w = env.do(t, http.MethodPost, rsvp, bob, gin.H{"accept": false})
	require.Equal(t, http.StatusOK, w.Code)
	var inv domain.Invite
	decode(t, w, &inv)
	assert.Equal(t, domain.InviteDeclined, inv.Status)

	var groups []domain.GroupSession
	w = env.do(t, http.MethodGet, "/groups", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &groups)
	assert.Len(t, groups, 1)

	w = env.do(t, http.MethodGet, "/groups", mallory, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAdminReload(t *testing.T) {
	env := setupServer(t)
	user, _ := env.register(t, "cook@example.com")
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/admin/recipes/reload", user, nil).Code)

	admin, _, err := env.tokens.Issue("admin-1", "admin@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	w := env.do(t, http.MethodGet, "/admin/recipes/reload", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"reloaded":%d}`, len(recipe.Catalogue())), w.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("loading: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrSessionOpen, http.StatusConflict},
		{domain.ErrFirstStep, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
