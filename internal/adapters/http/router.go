package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/core/ports"
	"github.com/ragul2105/plant-disease-api/internal/core/usecase"
	"github.com/ragul2105/plant-disease-api/internal/observability/metrics"
)

const serviceName = "plant-disease-api"

type Router struct {
	predictor ports.DiseasePredictor
	history   ports.HistoryService
	auth      ports.AuthService
	lookup    *usecase.LookupUseCase
	engine    ports.InferenceEngine
	database  ports.Pinger
	identity  ports.Pinger
	metrics   *metrics.HTTPServerMetrics

	maxUploadBytes int64
	rateLimitRPS   float64
	rateLimitBurst int
}

func NewRouter(
	predictor ports.DiseasePredictor,
	history ports.HistoryService,
	auth ports.AuthService,
	lookup *usecase.LookupUseCase,
	engine ports.InferenceEngine,
	database ports.Pinger,
	identity ports.Pinger,
	m *metrics.HTTPServerMetrics,
	maxUploadBytes int64,
	rateLimitRPS float64,
	rateLimitBurst int,
) *Router {
	return &Router{
		predictor:      predictor,
		history:        history,
		auth:           auth,
		lookup:         lookup,
		engine:         engine,
		database:       database,
		identity:       identity,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.root)
	mux.HandleFunc("/api/health", rt.health)
	mux.HandleFunc("/api/predict", rt.optionalAuth(rt.predict))
	mux.HandleFunc("/api/plants/supported", rt.supportedPlants)
	mux.HandleFunc("/api/plants/info", rt.plantsInfo)
	mux.HandleFunc("/api/disease-info", rt.diseaseInfo)
	mux.HandleFunc("/api/recommend/", rt.recommend)
	mux.HandleFunc("/api/auth/login", rt.login)
	mux.HandleFunc("/api/auth/register", rt.register)
	mux.HandleFunc("/api/user/history", rt.requireAuth(rt.userHistory))
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = rt.rateLimitMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Plant Disease Detection API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": map[string]string{
			"health":           "/api/health",
			"predict":          "/api/predict (POST)",
			"supported_plants": "/api/plants/supported",
			"plants_info":      "/api/plants/info",
			"disease_info":     "/api/disease-info",
			"recommendations":  "/api/recommend/{plant}/{disease}",
			"login":            "/api/auth/login (POST)",
			"register":         "/api/auth/register (POST)",
			"history":          "/api/user/history",
		},
	})
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	modelLoaded := rt.engine != nil && rt.engine.Ready()
	if rt.metrics != nil {
		rt.metrics.SetModelLoaded(modelLoaded)
	}

	probeCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	databaseConnected := rt.database != nil && rt.database.Ping(probeCtx) == nil
	identityConnected := rt.identity != nil && rt.identity.Ping(probeCtx) == nil

	writeJSON(w, http.StatusOK, map[string]any{
		"status":                "healthy",
		"model_loaded":          modelLoaded,
		"database_connected":    databaseConnected,
		"identity_connected":    identityConnected,
		"supported_plants":      domain.SupportedPlants(),
		"total_disease_classes": domain.ClassCount(),
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
	})
}

func (rt *Router) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if asMaxBytesError(err, &maxErr) {
			writeError(w, http.StatusBadRequest, "Image too large. Maximum size is 16MB", nil)
			return
		}
		writeError(w, http.StatusBadRequest, "No image file provided", nil)
		return
	}
	defer file.Close()

	if fileHeader.Filename == "" {
		writeError(w, http.StatusBadRequest, "No image selected", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if asMaxBytesError(err, &maxErr) {
			writeError(w, http.StatusBadRequest, "Image too large. Maximum size is 16MB", nil)
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read image", nil)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUploadSize(serviceName, len(data))
	}

	start := time.Now()
	result, err := rt.predictor.Predict(r.Context(), ports.PredictionRequest{
		Image:     data,
		Filename:  fileHeader.Filename,
		PlantType: r.FormValue("plant_type"),
		Claims:    claimsFromContext(r.Context()),
	})
	if err != nil {
		rt.writePredictionError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordPrediction(serviceName, result.PlantName, string(result.Severity), result.Confidence, time.Since(start))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"prediction": result,
	})
}

// writePredictionError keeps the unsupported-plant body self-describing:
// the caller learns which filters exist without a second round trip.
func (rt *Router) writePredictionError(w http.ResponseWriter, err error) {
	if rt.metrics != nil {
		rt.metrics.RecordPredictionError(serviceName, errorKindLabel(err))
	}

	if domain.IsKind(err, domain.ErrUnsupportedPlant) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":           "Unsupported plant type",
			"supported_types": domain.SupportedPlants(),
		})
		return
	}

	status := mapErrorToHTTPStatus(err)
	writeError(w, status, publicErrorMessage(err, status), err)
}

func (rt *Router) supportedPlants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	plants := rt.lookup.SupportedPlants()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"supported_plants": plants,
		"total_plants":     len(plants),
	})
}

func (rt *Router) plantsInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"plants":  rt.lookup.PlantsInfo(),
	})
}

func (rt *Router) diseaseInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"disease_database": rt.lookup.DiseaseDatabase(),
		"total_classes":    domain.ClassCount(),
	})
}

func (rt *Router) recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/recommend/")
	plant, disease, ok := strings.Cut(rest, "/")
	if !ok || plant == "" || disease == "" {
		writeError(w, http.StatusBadRequest, "plant and disease are required", nil)
		return
	}

	severity := r.URL.Query().Get("severity")
	if severity == "" {
		severity = "medium"
	}

	recommendations, tier, err := rt.lookup.RecommendFor(plant, disease, severity)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnsupportedPlant) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":           "Unsupported plant type",
				"supported_types": domain.SupportedPlants(),
			})
			return
		}
		status := mapErrorToHTTPStatus(err)
		writeError(w, status, publicErrorMessage(err, status), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"plant":           plant,
		"disease":         disease,
		"severity":        tier,
		"recommendations": recommendations,
	})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "Token is required", nil)
		return
	}

	claims, profile, err := rt.auth.Login(r.Context(), req.Token)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		writeError(w, status, publicErrorMessage(err, status), err)
		return
	}

	user := map[string]any{
		"uid":     claims.UID,
		"email":   claims.Email,
		"name":    claims.Name,
		"profile": profile,
	}
	if profile != nil && profile.Name != "" {
		user["name"] = profile.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	var req struct {
		Token    string `json:"token"`
		UserData struct {
			Name     string `json:"name"`
			Phone    string `json:"phone"`
			Location string `json:"location"`
		} `json:"userData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "Token is required", nil)
		return
	}

	profile, err := rt.auth.Register(r.Context(), req.Token, domain.UserProfile{
		Name:     req.UserData.Name,
		Phone:    req.UserData.Phone,
		Location: req.UserData.Location,
	})
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		writeError(w, status, publicErrorMessage(err, status), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User registered successfully",
		"user": map[string]any{
			"uid":   profile.UID,
			"email": profile.Email,
			"name":  profile.Name,
		},
	})
}

func (rt *Router) userHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	claims := claimsFromContext(r.Context())
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	records, err := rt.history.ListByUser(r.Context(), claims.UID, page, limit)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		writeError(w, status, publicErrorMessage(err, status), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"predictions": records,
		"page":        page,
		"limit":       limit,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"error": message}
	if err != nil && status < 500 {
		body["details"] = err.Error()
	}
	writeJSON(w, status, body)
}
