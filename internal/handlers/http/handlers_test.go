package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"droneview/internal/core/domain"
	"droneview/internal/core/services"
	"droneview/internal/infrastructure/middleware"
	"droneview/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, services.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewMemoryUserRepository()
	drones := memory.NewMemoryDroneRepository()
	history := memory.NewMemoryHistoryRepository(10)
	tokens := services.NewTokenService("test-secret", time.Hour)

	admin := &domain.User{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin}
	require.NoError(t, users.Create(context.Background(), admin, "admin123"))

	router := gin.New()
	NewAuthHandler(users, tokens).SetupRoutes(router)
	NewDroneHandler(drones, users, history, nil).SetupRoutes(router, middleware.AuthMiddleware(tokens))
	NewInferenceHandler(history, nil).SetupRoutes(router)

	return router, tokens
}

func doJSON(router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLogin_Success(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/login", "", domain.Credentials{
		Username: "admin",
		Password: "admin123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.Equal(t, 200, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var payload domain.AuthPayload
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, domain.UserID("u-admin"), payload.UserID)
	assert.Equal(t, "admin", payload.Username)
	assert.Equal(t, "admin", payload.Role)
}

func TestLogin_WrongPassword_EnvelopeFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/login", "", domain.Credentials{
		Username: "admin",
		Password: "nope",
	})

	// Application failures keep HTTP 200; the envelope carries the code.
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 401, resp.Code)
}

func TestProtectedRoute_WithoutToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/alldroneInfo", "", struct{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_ThenLogin(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/register", "", domain.Registration{
		Username: "pilot",
		Password: "secret1",
		Role:     "user",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 200, decodeResponse(t, w).Code)

	w = doJSON(router, http.MethodPost, "/login", "", domain.Credentials{
		Username: "pilot",
		Password: "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 200, decodeResponse(t, w).Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/register", "", domain.Registration{
		Username: "admin",
		Password: "whatever",
		Role:     "user",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 409, decodeResponse(t, w).Code)
}

func TestUpload_StoresLatestImage(t *testing.T) {
	router, tokens := newTestRouter(t)

	token, err := tokens.Generate(&domain.User{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)

	frame := []byte("not-really-a-jpeg")
	w := doJSON(router, http.MethodPost, "/upload", token, domain.UploadRequest{
		UserID:  "u-admin",
		DroneID: "d-1",
		Image:   base64.StdEncoding.EncodeToString(frame),
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.Equal(t, 200, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result domain.UploadResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.NotEmpty(t, result.Boxes)
	assert.Equal(t, base64.StdEncoding.EncodeToString(frame), result.Image)

	// The frame must now be served back as raw bytes.
	req := httptest.NewRequest(http.MethodGet, "/latest_image/u-admin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, frame, rec.Body.Bytes())
}

func TestLatestImage_Missing(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/latest_image/nobody", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImageHistory_NewestFirstAndBounded(t *testing.T) {
	router, tokens := newTestRouter(t)

	token, err := tokens.Generate(&domain.User{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		w := doJSON(router, http.MethodPost, "/upload", token, domain.UploadRequest{
			UserID:  "u-admin",
			DroneID: "d-1",
			Image:   base64.StdEncoding.EncodeToString([]byte{byte(i)}),
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(router, http.MethodGet, "/get_image_history?userId=u-admin&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.Equal(t, 200, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var records []domain.ImageRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.False(t, records[0].CreatedAt.Before(records[1].CreatedAt))
}

func TestDroneCRUD(t *testing.T) {
	router, tokens := newTestRouter(t)

	token, err := tokens.Generate(&domain.User{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)

	w := doJSON(router, http.MethodPost, "/createDrone", token, domain.Drone{
		UserID: "u-admin",
		Name:   "alpha",
		Model:  "X-200",
		Status: "idle",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 200, decodeResponse(t, w).Code)

	w = doJSON(router, http.MethodPost, "/droneInfo", token, map[string]string{"userId": "u-admin"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.Equal(t, 200, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var drone domain.Drone
	require.NoError(t, json.Unmarshal(data, &drone))
	assert.Equal(t, "alpha", drone.Name)
	assert.NotEmpty(t, drone.ID)
}
