package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"medicare/predictor"
)

const maxHistoryLimit = 1000

type handlers struct {
	models  ModelService
	history HistoryStore
	logger  *zap.Logger
}

// PredictionResponse 预测响应
type PredictionResponse struct {
	Prediction string  `json:"prediction"`
	Risk       int     `json:"risk"`
	ModelUsed  string  `json:"model_used"`
	Accuracy   float64 `json:"accuracy"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status        string `json:"status"`
	HeartModel    string `json:"heart_model"`
	DiabetesModel string `json:"diabetes_model"`
}

func (h *handlers) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /info/{disease}", h.handleInfo)
	mux.HandleFunc("POST /predict/heart", h.handlePredictHeart)
	mux.HandleFunc("POST /predict/diabetes", h.handlePredictDiabetes)
	mux.HandleFunc("GET /history/training", h.handleTrainingHistory)
	mux.HandleFunc("GET /history/predictions", h.handlePredictionHistory)
}

func (h *handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "MediCare Backend is running"})
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		HeartModel:    h.models.ModelName(predictor.Heart.Key),
		DiabetesModel: h.models.ModelName(predictor.Diabetes.Key),
	})
}

func (h *handlers) handleInfo(w http.ResponseWriter, r *http.Request) {
	meta, err := h.models.Metadata(r.PathValue("disease"))
	if errors.Is(err, predictor.ErrUnknownDisease) {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (h *handlers) handlePredictHeart(w http.ResponseWriter, r *http.Request) {
	var req HeartRequest
	if err := decodeRequest(r, &req); err != nil {
		writeRequestError(w, err)
		return
	}
	h.predict(w, r, predictor.Heart, req.Features())
}

func (h *handlers) handlePredictDiabetes(w http.ResponseWriter, r *http.Request) {
	var req DiabetesRequest
	if err := decodeRequest(r, &req); err != nil {
		writeRequestError(w, err)
		return
	}
	h.predict(w, r, predictor.Diabetes, req.Features())
}

func (h *handlers) predict(w http.ResponseWriter, r *http.Request, d predictor.Disease, features []float64) {
	p, err := h.models.Predict(r.Context(), d.Key, features)
	switch {
	case errors.Is(err, predictor.ErrNotTrained):
		writeDetail(w, http.StatusServiceUnavailable, d.Title+" Model not trained")
		return
	case err != nil:
		h.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("disease", d.Key),
			zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PredictionResponse{
		Prediction: p.Text,
		Risk:       p.Label,
		ModelUsed:  p.ModelName,
		Accuracy:   p.Accuracy,
	})
}

func (h *handlers) handleTrainingHistory(w http.ResponseWriter, r *http.Request) {
	disease, limit, ok := h.historyQuery(w, r)
	if !ok {
		return
	}
	logs, err := h.history.LoadTrainingLog(r.Context(), disease, limit)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *handlers) handlePredictionHistory(w http.ResponseWriter, r *http.Request) {
	disease, limit, ok := h.historyQuery(w, r)
	if !ok {
		return
	}
	logs, err := h.history.LoadPredictions(r.Context(), disease, limit)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// historyQuery 校验 disease 与 limit 参数，失败时已写出响应
func (h *handlers) historyQuery(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	if h.history == nil {
		writeDetail(w, http.StatusServiceUnavailable, "History not available")
		return "", 0, false
	}

	query := r.URL.Query()
	disease := query.Get("disease")
	if disease != "" {
		if _, ok := predictor.Lookup(disease); !ok {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return "", 0, false
		}
	}

	limit := 100
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeRequestError(w, unprocessable(FieldError{
				Loc:  []any{"query", "limit"},
				Msg:  "Input should be an integer between 1 and 1000",
				Type: "int_parsing",
			}))
			return "", 0, false
		}
		limit = n
	}
	return disease, limit, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeRequestError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	if !errors.As(err, &reqErr) {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if len(reqErr.fields) > 0 {
		writeJSON(w, reqErr.status, map[string]any{"detail": reqErr.fields})
		return
	}
	writeDetail(w, reqErr.status, reqErr.Error())
}
