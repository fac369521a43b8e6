package account

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRouter wires the handler behind a stand-in for the bearer
// middleware: the X-Subject header becomes the verified subject.
func newTestRouter(t *testing.T) (*gin.Engine, Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := NewAccountRepository(newTestDB(t))
	svc := NewAccountService(repo, zap.NewNop())

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Subject"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			require.NoError(t, err)
			c.Set(ContextSubjectKey, uint(id))
		}
		c.Next()
	})
	NewAccountHandler(group, svc, zap.NewNop())
	return r, repo
}

func doRequest(r http.Handler, method, path string, subject uint, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if subject != 0 {
		req.Header.Set("X-Subject", strconv.FormatUint(uint64(subject), 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func userPath(id uint) string {
	return "/api/v1/users/" + strconv.FormatUint(uint64(id), 10)
}

func TestAccountHandler_List(t *testing.T) {
	r, repo := newTestRouter(t)
	a := seedAccount(t, repo, "a@x.com")
	seedAccount(t, repo, "b@x.com")

	w := doRequest(r, http.MethodGet, "/api/v1/users", a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "a@x.com", got[0]["email"])
	assert.NotContains(t, got[0], "password_hash")
	assert.NotContains(t, got[0], "PasswordHash")
	assert.NotContains(t, got[0], "refresh_token")
}

func TestAccountHandler_ReadByID(t *testing.T) {
	r, repo := newTestRouter(t)
	a := seedAccount(t, repo, "a@x.com")

	w := doRequest(r, http.MethodGet, userPath(a.ID), a.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, userPath(a.ID+1), a.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/users/abc", a.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountHandler_ReadCurrent(t *testing.T) {
	r, repo := newTestRouter(t)
	a := seedAccount(t, repo, "a@x.com")

	w := doRequest(r, http.MethodGet, "/api/v1/users/me", a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, a.ID, got.ID)

	w = doRequest(r, http.MethodGet, "/api/v1/users/me", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/users/me", a.ID+5, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountHandler_Update(t *testing.T) {
	r, repo := newTestRouter(t)
	a := seedAccount(t, repo, "a@x.com")
	b := seedAccount(t, repo, "b@x.com")

	w := doRequest(r, http.MethodPut, userPath(a.ID), a.ID, map[string]string{"first_name": "Ada"})
	require.Equal(t, http.StatusOK, w.Code)
	var got Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "a@x.com", got.Email)

	w = doRequest(r, http.MethodPut, userPath(b.ID), a.ID, map[string]string{"first_name": "Eve"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodPut, userPath(a.ID), a.ID, map[string]string{"email": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPut, userPath(a.ID), a.ID, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountHandler_UpdateMissing(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodPut, userPath(9), 9, map[string]string{"first_name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountHandler_Delete(t *testing.T) {
	r, repo := newTestRouter(t)
	a := seedAccount(t, repo, "a@x.com")
	b := seedAccount(t, repo, "b@x.com")

	w := doRequest(r, http.MethodDelete, userPath(b.ID), a.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodDelete, userPath(a.ID), a.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, userPath(a.ID), a.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
