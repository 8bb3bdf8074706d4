package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/core/ports"
	"github.com/ragul2105/plant-disease-api/internal/core/usecase"
)

type predictorFake struct {
	result  domain.DiagnosisResult
	err     error
	lastReq ports.PredictionRequest
}

func (f *predictorFake) Predict(_ context.Context, req ports.PredictionRequest) (domain.DiagnosisResult, error) {
	f.lastReq = req
	if f.err != nil {
		return domain.DiagnosisResult{}, f.err
	}
	return f.result, nil
}

type historyFake struct {
	records []domain.HistoryRecord
	err     error
}

func (f *historyFake) ListByUser(context.Context, string, int, int) ([]domain.HistoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type authFake struct {
	claims *domain.AuthClaims
	err    error
}

func (f *authFake) Verify(context.Context, string) (*domain.AuthClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func (f *authFake) Login(context.Context, string) (*domain.AuthClaims, *domain.UserProfile, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.claims, nil, nil
}

func (f *authFake) Register(_ context.Context, _ string, profile domain.UserProfile) (*domain.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	profile.UID = f.claims.UID
	profile.Email = f.claims.Email
	return &profile, nil
}

type readyEngineFake struct{ ready bool }

func (f *readyEngineFake) Ready() bool            { return f.ready }
func (f *readyEngineFake) InputSize() (int, error) { return 160, nil }
func (f *readyEngineFake) Infer(context.Context, domain.ImageTensor) ([]float32, error) {
	return nil, errors.New("not used")
}
func (f *readyEngineFake) Reload(context.Context) error { return nil }

type pingerFake struct{ err error }

func (f *pingerFake) Ping(context.Context) error { return f.err }

func testRouter(predictor *predictorFake, history *historyFake, auth *authFake) *Router {
	return NewRouter(
		predictor,
		history,
		auth,
		usecase.NewLookupUseCase(nil),
		&readyEngineFake{ready: true},
		&pingerFake{},
		&pingerFake{},
		nil,
		16<<20,
		0, 0,
	)
}

func multipartImage(t *testing.T, field, filename, plantType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if plantType != "" {
		if err := writer.WriteField("plant_type", plantType); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestPredictSuccess(t *testing.T) {
	predictor := &predictorFake{
		result: domain.DiagnosisResult{
			PlantName:   "Tomato",
			DiseaseType: "Late_blight",
			Confidence:  91.2,
			Severity:    domain.SeverityHigh,
		},
	}
	handler := testRouter(predictor, &historyFake{}, &authFake{}).Handler()

	body, contentType := multipartImage(t, "image", "leaf.jpg", "tomato", []byte{0xFF, 0xD8, 0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["success"] != true {
		t.Fatalf("expected success flag: %v", resp)
	}
	prediction := resp["prediction"].(map[string]any)
	if prediction["plant_name"] != "Tomato" || prediction["severity"] != "high" {
		t.Fatalf("unexpected prediction: %v", prediction)
	}
	if predictor.lastReq.PlantType != "tomato" {
		t.Fatalf("plant_type not forwarded: %q", predictor.lastReq.PlantType)
	}
	if predictor.lastReq.Claims != nil {
		t.Fatalf("anonymous request must carry no claims")
	}
}

func TestPredictMissingFile(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader("no file"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPredictUnsupportedPlantListsSupportedTypes(t *testing.T) {
	predictor := &predictorFake{
		err: domain.WrapError(domain.ErrUnsupportedPlant, "predict", errors.New(`plant type "banana"`)),
	}
	handler := testRouter(predictor, &historyFake{}, &authFake{}).Handler()

	body, contentType := multipartImage(t, "image", "leaf.jpg", "banana", []byte{0xFF, 0xD8})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	types, ok := resp["supported_types"].([]any)
	if !ok || len(types) != 5 {
		t.Fatalf("expected 5 supported types, got %v", resp["supported_types"])
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	predictor := &predictorFake{
		err: domain.WrapError(domain.ErrModelUnavailable, "predict", errors.New("no model file")),
	}
	handler := testRouter(predictor, &historyFake{}, &authFake{}).Handler()

	body, contentType := multipartImage(t, "image", "leaf.jpg", "", []byte{0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestPredictAuthenticatedCarriesClaims(t *testing.T) {
	predictor := &predictorFake{result: domain.DiagnosisResult{PlantName: "Apple"}}
	auth := &authFake{claims: &domain.AuthClaims{UID: "u-1", Email: "a@b.c"}}
	handler := testRouter(predictor, &historyFake{}, auth).Handler()

	body, contentType := multipartImage(t, "image", "leaf.png", "apple", []byte{0x89, 0x50})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if predictor.lastReq.Claims == nil || predictor.lastReq.Claims.UID != "u-1" {
		t.Fatalf("claims not forwarded: %+v", predictor.lastReq.Claims)
	}
}

func TestPredictInvalidTokenRejected(t *testing.T) {
	auth := &authFake{err: domain.WrapError(domain.ErrUnauthorized, "verify", errors.New("expired"))}
	handler := testRouter(&predictorFake{}, &historyFake{}, auth).Handler()

	body, contentType := multipartImage(t, "image", "leaf.jpg", "", []byte{0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHealthReportsModelState(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["status"] != "healthy" {
		t.Fatalf("unexpected status: %v", resp["status"])
	}
	if resp["model_loaded"] != true {
		t.Fatalf("expected model_loaded true, got %v", resp["model_loaded"])
	}
	if resp["database_connected"] != true || resp["identity_connected"] != true {
		t.Fatalf("expected collaborator flags true, got %v", resp)
	}
	if resp["total_disease_classes"] != float64(domain.ClassCount()) {
		t.Fatalf("unexpected class count: %v", resp["total_disease_classes"])
	}
}

func TestHealthReportsCollaboratorOutage(t *testing.T) {
	router := NewRouter(
		&predictorFake{},
		&historyFake{},
		&authFake{},
		usecase.NewLookupUseCase(nil),
		&readyEngineFake{ready: true},
		&pingerFake{err: errors.New("connection refused")},
		&pingerFake{},
		nil,
		16<<20,
		0, 0,
	)
	handler := router.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["database_connected"] != false {
		t.Fatalf("expected database_connected false, got %v", resp["database_connected"])
	}
	if resp["identity_connected"] != true {
		t.Fatalf("expected identity_connected true, got %v", resp["identity_connected"])
	}
}

func TestSupportedPlantsEndpoint(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/plants/supported", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["total_plants"] != float64(5) {
		t.Fatalf("expected 5 plants, got %v", resp["total_plants"])
	}
}

func TestRecommendEndpoint(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/recommend/tomato/Late_blight?severity=high", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	recs, ok := resp["recommendations"].([]any)
	if !ok || len(recs) == 0 {
		t.Fatalf("expected recommendations, got %v", resp)
	}
	if first, _ := recs[0].(string); !strings.HasPrefix(first, "URGENT") {
		t.Fatalf("expected urgent prefix for high severity, got %q", first)
	}
}

func TestRecommendUnsupportedPlant(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/recommend/banana/rot", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if _, ok := resp["supported_types"]; !ok {
		t.Fatalf("expected supported_types in body: %v", resp)
	}
}

func TestHistoryRequiresAuth(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/user/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHistoryReturnsRecords(t *testing.T) {
	history := &historyFake{records: []domain.HistoryRecord{
		{ID: "h-1", UserID: "u-1", PlantType: "tomato"},
	}}
	auth := &authFake{claims: &domain.AuthClaims{UID: "u-1"}}
	handler := testRouter(&predictorFake{}, history, auth).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/user/history?page=2&limit=5", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["page"] != float64(2) || resp["limit"] != float64(5) {
		t.Fatalf("pagination echo lost: %v", resp)
	}
	predictions, ok := resp["predictions"].([]any)
	if !ok || len(predictions) != 1 {
		t.Fatalf("expected 1 record, got %v", resp["predictions"])
	}
}

func TestLoginRequiresToken(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"token":""}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginReturnsUser(t *testing.T) {
	auth := &authFake{claims: &domain.AuthClaims{UID: "u-1", Email: "a@b.c", Name: "Asha"}}
	handler := testRouter(&predictorFake{}, &historyFake{}, auth).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"token":"tok"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	user := resp["user"].(map[string]any)
	if user["uid"] != "u-1" || user["email"] != "a@b.c" {
		t.Fatalf("unexpected user: %v", user)
	}
}

func TestRegisterReturnsProfile(t *testing.T) {
	auth := &authFake{claims: &domain.AuthClaims{UID: "u-1", Email: "a@b.c"}}
	handler := testRouter(&predictorFake{}, &historyFake{}, auth).Handler()

	payload := `{"token":"tok","userData":{"name":"Asha","phone":"123","location":"Chennai"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	user := resp["user"].(map[string]any)
	if user["uid"] != "u-1" || user["name"] != "Asha" {
		t.Fatalf("unexpected user: %v", user)
	}
}

func TestRootListsEndpoints(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["message"] != "Plant Disease Detection API" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestRequestIDEchoedBack(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id echo, got %q", got)
	}
}

func TestRateLimitRejectsBurst(t *testing.T) {
	router := NewRouter(
		&predictorFake{},
		&historyFake{},
		&authFake{},
		usecase.NewLookupUseCase(nil),
		&readyEngineFake{ready: true},
		&pingerFake{},
		&pingerFake{},
		nil,
		16<<20,
		1, 1,
	)
	handler := router.Handler()

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := testRouter(&predictorFake{}, &historyFake{}, &authFake{}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
