package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/neurobots-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func authRouter(required bool) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	seen := new(string)
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), testSecret, required).Authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		if id := ctxutil.UserID(c.Request.Context()); id != nil {
			*seen = id.String()
		}
		c.Status(http.StatusOK)
	})
	return r, seen
}

func doGet(r *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthenticateResolvesUser(t *testing.T) {
	r, seen := authRouter(true)
	id := uuid.New()
	if code := doGet(r, signToken(t, id.String(), time.Now().Add(time.Hour))); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if *seen != id.String() {
		t.Fatalf("user=%q want %q", *seen, id)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	r, _ := authRouter(false)
	cases := map[string]string{
		"expired":     signToken(t, uuid.NewString(), time.Now().Add(-time.Hour)),
		"bad subject": signToken(t, "not-a-uuid", time.Now().Add(time.Hour)),
		"garbage":     "abc.def.ghi",
	}
	for name, tok := range cases {
		if code := doGet(r, tok); code != http.StatusUnauthorized {
			t.Fatalf("%s: status=%d want 401", name, code)
		}
	}
}

func TestAuthenticateAnonymous(t *testing.T) {
	optional, seen := authRouter(false)
	if code := doGet(optional, ""); code != http.StatusOK || *seen != "" {
		t.Fatalf("optional auth: status=%d user=%q", code, *seen)
	}
	required, _ := authRouter(true)
	if code := doGet(required, ""); code != http.StatusUnauthorized {
		t.Fatalf("required auth: status=%d", code)
	}
}
