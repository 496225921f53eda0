package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"netguard/internal/charts"
	"netguard/internal/handlers"
	"netguard/internal/middleware"
	"netguard/internal/ml"
	"netguard/internal/repositories"
	"netguard/internal/services"
	"netguard/web"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// guessForest predicts the class given by the "guess" column (1..5).
const guessForest = `{
  "classes": [1, 2, 3, 4, 5],
  "feature_importances": [0.9, 0.1],
  "trees": [{"nodes": [
    {"feature": 0, "threshold": 1.5, "left": 1, "right": 2},
    {"left": -1, "right": -1, "value": [1, 0, 0, 0, 0]},
    {"feature": 0, "threshold": 2.5, "left": 3, "right": 4},
    {"left": -1, "right": -1, "value": [0, 1, 0, 0, 0]},
    {"feature": 0, "threshold": 3.5, "left": 5, "right": 6},
    {"left": -1, "right": -1, "value": [0, 0, 1, 0, 0]},
    {"feature": 0, "threshold": 4.5, "left": 7, "right": 8},
    {"left": -1, "right": -1, "value": [0, 0, 0, 1, 0]},
    {"left": -1, "right": -1, "value": [0, 0, 0, 0, 1]}
  ]}]
}`

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) (*fiber.App, repositories.UserRepository) {
	t.Helper()
	logger := zap.NewNop()

	db, err := repositories.OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repositories.CloseDatabase(db) })
	userRepo := repositories.NewGORMUserRepository(db)

	features := []string{"guess", "noise"}
	scaler, err := ml.DecodeScaler(strings.NewReader(`{"mean":[0,0],"scale":[1,1]}`))
	require.NoError(t, err)
	forest, err := ml.DecodeRandomForest(strings.NewReader(guessForest), len(features))
	require.NoError(t, err)
	bundle := ml.NewBundle(features, scaler, forest, ml.DefaultLabelMapping())

	authService := services.NewAuthService(userRepo, services.PlaintextPolicy{}, logger)
	predictService := services.NewPredictService(bundle, charts.NewRenderer(), nil, logger)

	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(),
		ErrorHandler: middleware.ErrorHandler(logger),
	})
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(app)
	handlers.NewPageHandler().RegisterRoutes(app)
	handlers.NewPredictHandler(predictService, logger).RegisterRoutes(app)

	return app, userRepo
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func signupForm(name, email, password, confirm string) url.Values {
	return url.Values{
		"name":             {name},
		"email":            {email},
		"password":         {password},
		"confirm_password": {confirm},
	}
}

func TestSignupAndLogin(t *testing.T) {
	app, userRepo := setupApp(t)

	resp := postForm(t, app, "/signup", signupForm("Test User", "test@example.com", "password123", "password123"))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = postForm(t, app, "/login", url.Values{"email": {"test@example.com"}, "password": {"password123"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))

	resp = postForm(t, app, "/login", url.Values{"email": {"test@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Incorrect password")

	resp = postForm(t, app, "/login", url.Values{"email": {"ghost@example.com"}, "password": {"password123"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "User not registered")

	n, err := userRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSignupRejections(t *testing.T) {
	app, userRepo := setupApp(t)

	resp := postForm(t, app, "/signup", signupForm("Test User", "test@example.com", "password123", "password123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	// Duplicate email keeps the original record
	resp = postForm(t, app, "/signup", signupForm("Impostor", "test@example.com", "other", "other"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Email already registered")
	user, err := userRepo.GetByEmail("test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Test User", user.Name)

	// Mismatched confirmation writes nothing
	resp = postForm(t, app, "/signup", signupForm("New", "new@example.com", "abc", "abd"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Passwords do not match")

	// Missing field
	resp = postForm(t, app, "/signup", url.Values{"name": {"New"}, "email": {"new@example.com"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "All fields are required")

	n, err := userRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSignup_EmptyValuesReachAuthFlow(t *testing.T) {
	app, userRepo := setupApp(t)

	resp := postForm(t, app, "/signup", signupForm("New", "new@example.com", "abc", ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Passwords do not match")

	resp = postForm(t, app, "/signup", signupForm("", "blank-name@example.com", "abc", "abc"))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = postForm(t, app, "/signup", signupForm("Blank", "blank-pass@example.com", "", ""))
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	user, err := userRepo.GetByEmail("blank-name@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Empty(t, user.Name)

	n, err := userRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	resp = postForm(t, app, "/login", url.Values{"email": {"blank-pass@example.com"}, "password": {""}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))
}

func TestLogin_FormRejections(t *testing.T) {
	app, _ := setupApp(t)

	resp := postForm(t, app, "/login", url.Values{"email": {"test@example.com"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Email and password are required")

	resp = postForm(t, app, "/login", url.Values{"email": {strings.Repeat("a", 256)}, "password": {"x"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPages(t *testing.T) {
	app, _ := setupApp(t)

	for _, path := range []string{"/", "/login", "/signup", "/home", "/dataset", "/intrusiondetection", "/executivedashboard"} {
		t.Run(path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
			assert.Contains(t, readBody(t, resp), "<html")
		})
	}
}

func uploadCSV(t *testing.T, app *fiber.App, field, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type predictResponse struct {
	Error             string             `json:"error"`
	Result            map[string]float64 `json:"result"`
	ConfusionMatrix   string             `json:"confusion_matrix"`
	FeatureImportance string             `json:"feature_importance"`
}

func decodePredict(t *testing.T, resp *http.Response) predictResponse {
	t.Helper()
	defer resp.Body.Close()
	var out predictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func assertPNG(t *testing.T, encoded string) {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestPredict_AllBenign(t *testing.T) {
	app, _ := setupApp(t)

	resp := uploadCSV(t, app, "file", "noise,guess,Class\n0.3,1,1\n0.1,1,1\n0.9,1,1\n")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodePredict(t, resp)
	assert.Equal(t, map[string]float64{"Benign": 100.0}, out.Result)
	assertPNG(t, out.ConfusionMatrix)
	assertPNG(t, out.FeatureImportance)
}

func TestPredict_Mixed(t *testing.T) {
	app, _ := setupApp(t)

	resp := uploadCSV(t, app, "file", "guess,noise,Class\n1,0,1\n2,0,2\n3,0,3\n4,0,4\n5,0,4\n5,0,5\n")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodePredict(t, resp)
	assert.Equal(t, map[string]float64{
		"Benign":     16.67,
		"Adware":     16.67,
		"Riskware":   16.67,
		"Trojan":     16.67,
		"Ransomware": 33.33,
	}, out.Result)
}

func TestPredict_NoFile(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/predict", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file uploaded", decodePredict(t, resp).Error)

	resp = uploadCSV(t, app, "document", "guess,noise,Class\n1,0,1\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file uploaded", decodePredict(t, resp).Error)
}

func TestPredict_MissingFeatures(t *testing.T) {
	app, _ := setupApp(t)

	resp := uploadCSV(t, app, "file", "guess,Class\n1,1\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decodePredict(t, resp)
	assert.Equal(t, "Missing required features", out.Error)
	assert.Nil(t, out.Result)
}

func TestPredict_MalformedIsServerError(t *testing.T) {
	app, _ := setupApp(t)

	resp := uploadCSV(t, app, "file", "guess,noise,Class\nabc,0,1\n")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", decodePredict(t, resp).Error)
}

func TestHealth(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `"status":"healthy"`)
	assert.Contains(t, body, `"features":2`)
}
