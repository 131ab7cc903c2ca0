package testinfra

import (
	"net/http"
	"net/http/httptest"

	"fabline/authority"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}

// BuildSession builds a session with the given roles, not registered in the
// token cache.
func BuildSession(uid types.ID, roles ...string) *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: uid, Name: "user" + uid.String(), Nickname: "user " + uid.String()},
		Perms:    authority.Permissions(roles),
	}
}

// SignIn registers a session in the token cache and returns the cookie to
// send with requests passing SimpleAuthFilter.
func SignIn(s *session.Session) *http.Cookie {
	token := uuid.New().String()
	s.Token = token
	session.TokenCache.Set(token, s, cache.DefaultExpiration)
	return &http.Cookie{Name: session.KeySecToken, Value: token}
}
