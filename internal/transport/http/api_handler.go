package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

// APIHandler exposes the quiz use cases as JSON endpoints.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

type jokerRequest struct {
	QuestionID string `json:"questionId"`
}

type eliminationResponse struct {
	EliminatedAnswerIDs []string `json:"eliminatedAnswerIds"`
}

type secondChanceResponse struct {
	Granted bool `json:"granted"`
}

func (h *APIHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *APIHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	player, _ := PlayerFrom(r.Context())
	name := player.Name
	if name == "" {
		name = player.ID
	}
	attempt, err := h.service.StartQuiz(r.Context(), player.ID, name, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *APIHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	player, _ := PlayerFrom(r.Context())
	var sub domain.AnswerSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || sub.QuestionID == "" || sub.AnswerID == "" {
		writeError(w, http.StatusBadRequest, "invalid answer payload")
		return
	}
	res, err := h.service.SubmitAnswer(r.Context(), player.ID, sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) JokerStatus(w http.ResponseWriter, r *http.Request) {
	player, _ := PlayerFrom(r.Context())
	status, err := h.service.JokerStatus(r.Context(), player.ID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *APIHandler) UseElimination(w http.ResponseWriter, r *http.Request) {
	player, _ := PlayerFrom(r.Context())
	req, ok := decodeJokerRequest(w, r)
	if !ok {
		return
	}
	ids, err := h.service.UseElimination(r.Context(), player.ID, mux.Vars(r)["id"], req.QuestionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eliminationResponse{EliminatedAnswerIDs: ids})
}

func (h *APIHandler) UseSecondChance(w http.ResponseWriter, r *http.Request) {
	player, _ := PlayerFrom(r.Context())
	req, ok := decodeJokerRequest(w, r)
	if !ok {
		return
	}
	if err := h.service.UseSecondChance(r.Context(), player.ID, mux.Vars(r)["id"], req.QuestionID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, secondChanceResponse{Granted: true})
}

func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func decodeJokerRequest(w http.ResponseWriter, r *http.Request) (jokerRequest, bool) {
	var req jokerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return req, false
	}
	return req, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrBoardNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrEmptyCategory):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrJokerUsed):
		return http.StatusConflict
	default:
		log.Printf("request failed: %v", err)
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
