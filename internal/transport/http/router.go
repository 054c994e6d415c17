package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"trivia-quiz/internal/app"
)

// NewRouter mounts the REST API, the leaderboard stream and the health check.
func NewRouter(service *app.QuizService, auth *Authenticator) http.Handler {
	r := mux.NewRouter()

	api := NewAPIHandler(service)
	ws := NewWSHandler(service)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(auth.Require)

	protected.HandleFunc("/api/categories/{id}", api.GetCategory).Methods(http.MethodGet)
	protected.HandleFunc("/api/categories/{id}/start", api.StartQuiz).Methods(http.MethodPost)
	protected.HandleFunc("/api/answers", api.SubmitAnswer).Methods(http.MethodPost)
	protected.HandleFunc("/api/categories/{id}/jokers", api.JokerStatus).Methods(http.MethodGet)
	protected.HandleFunc("/api/categories/{id}/jokers/elimination", api.UseElimination).Methods(http.MethodPost)
	protected.HandleFunc("/api/categories/{id}/jokers/second-chance", api.UseSecondChance).Methods(http.MethodPost)
	protected.HandleFunc("/api/categories/{id}/leaderboard", api.Leaderboard).Methods(http.MethodGet)
	protected.HandleFunc("/ws/leaderboard", ws.ServeWS).Methods(http.MethodGet)

	return r
}
