package sessions

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fabline/authority"
	"fabline/bizerror"
	"fabline/session"
	"fabline/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestHandleSessionDetail(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterSessionRestAPI(router, session.SimpleAuthFilter())

	t.Run("should return 401 without a token cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated", "message":"unauthenticated", "data":null}`))
	})

	t.Run("should return 401 for an unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "expired-token"})
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should return the signed-in session", func(t *testing.T) {
		s := testinfra.BuildSession(10, authority.RoleSales)
		cookie := testinfra.SignIn(s)
		defer session.TokenCache.Delete(s.Token)

		req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
		req.AddCookie(cookie)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"token":"` + s.Token + `"`))
		Expect(body).To(ContainSubstring(`"perms":["sales"]`))
	})
}

func TestSimpleLogoutHandler(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterSessionsRestAPI(router)

	t.Run("should evict the token and expire the cookie", func(t *testing.T) {
		s := testinfra.BuildSession(10, authority.RoleSales)
		cookie := testinfra.SignIn(s)

		req := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
		req.AddCookie(cookie)
		status, body, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(body).To(BeZero())

		_, found := session.TokenCache.Get(s.Token)
		Expect(found).To(BeFalse())
		Expect(resp.Header().Get("Set-Cookie")).To(ContainSubstring(session.KeySecToken + "=;"))
	})

	t.Run("should succeed without a cookie as well", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
	})
}
