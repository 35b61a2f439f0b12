package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/cosmic-nutrition/backend/config"
	"github.com/pageza/cosmic-nutrition/backend/internal/mocks"
	"github.com/pageza/cosmic-nutrition/backend/internal/service"
	"github.com/pageza/cosmic-nutrition/backend/internal/testdb"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
)

const testJWTSecret = "api-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	meals    *service.MealService
	analysis *mocks.MockAnalysisService
	export   *mocks.MockExportService
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()

	db := testdb.SetupSQLite(t)
	auth, err := service.NewAuthService(config.AuthConfig{JWTSecret: testJWTSecret})
	require.NoError(t, err)

	env := &testEnv{
		router:   gin.New(),
		db:       db,
		meals:    service.NewMealService(db),
		analysis: new(mocks.MockAnalysisService),
		export:   new(mocks.MockExportService),
	}

	RegisterRoutes(env.router, db, Services{
		Auth:     auth,
		Analysis: env.analysis,
		Meals:    env.meals,
		Users:    service.NewUserService(db),
		Export:   env.export,
	}, testdb.Logger())

	return env
}

// tokenFor mints an HS256 token whose subject is userID.
func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
