package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/memory"
)

func protected(roles ...entity.UserRole) http.Handler {
	logger, _ := test.NewNullLogger()
	users := memory.NewUserRepository(memory.SeedUsers()...)
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromContext(r.Context())
		w.Write([]byte(u.ID))
	})
	if len(roles) > 0 {
		h = RequireRole(roles...)(h)
	}
	return Authenticate(users, logger)(h)
}

func call(h http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != "" {
		req.Header.Set(UserHeader, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	h := protected()

	rec := call(h, "agent-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "agent-1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, "ghost").Code)
}

func TestRequireRole(t *testing.T) {
	h := protected(entity.RoleAdmin)

	assert.Equal(t, http.StatusOK, call(h, "admin-1").Code)
	rec := call(h, "manager-1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"insufficient role"}`, rec.Body.String())
}
