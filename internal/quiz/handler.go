// internal/quiz/handler.go
package quiz

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"quiz-player/internal/models"
)

type Handler struct {
	session *Session
}

func NewHandler(session *Session) *Handler {
	return &Handler{session: session}
}

type navigateRequest struct {
	Index int `json:"index"`
}

type jumpRequest struct {
	QuestionID int `json:"questionId"`
}

type answerRequest struct {
	QuestionID int                `json:"questionId"`
	Value      models.AnswerValue `json:"value"`
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

type stateResponse struct {
	Applied bool            `json:"applied"`
	State   models.Snapshot `json:"state"`
	Result  *models.Result  `json:"result,omitempty"`
}

// Register mounts the quiz routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/quiz", h.GetState).Methods("GET")
	r.HandleFunc("/quiz/navigate", h.Navigate).Methods("POST", "OPTIONS")
	r.HandleFunc("/quiz/next", h.Next).Methods("POST", "OPTIONS")
	r.HandleFunc("/quiz/previous", h.Previous).Methods("POST", "OPTIONS")
	r.HandleFunc("/quiz/jump", h.Jump).Methods("POST", "OPTIONS")
	r.HandleFunc("/quiz/answer", h.SetAnswer).Methods("POST", "OPTIONS")
	r.HandleFunc("/quiz/submit", h.Submit).Methods("POST", "OPTIONS")
	r.HandleFunc("/quiz/reset", h.Reset).Methods("POST", "OPTIONS")
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	applied := h.session.NavigateTo(r.Context(), req.Index)
	h.respond(w, applied, nil)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.session.NavigateRelative(r.Context(), 1), nil)
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.session.NavigateRelative(r.Context(), -1), nil)
}

func (h *Handler) Jump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	h.respond(w, h.session.JumpToQuestionByID(r.Context(), req.QuestionID), nil)
}

func (h *Handler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	h.respond(w, h.session.SetAnswer(r.Context(), req.QuestionID, req.Value), nil)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	result, applied := h.session.Submit(r.Context(), Confirmed(req.Confirm))
	if !applied {
		h.respond(w, false, nil)
		return
	}
	h.respond(w, true, &result)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	applied, err := h.session.Reset(r.Context(), Confirmed(req.Confirm))
	if err != nil {
		log.Printf("Error resetting quiz: %v", err)
		status := http.StatusBadGateway
		if errors.Is(err, ErrInitializing) {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	h.respond(w, applied, nil)
}

func (h *Handler) respond(w http.ResponseWriter, applied bool, result *models.Result) {
	writeJSON(w, http.StatusOK, stateResponse{
		Applied: applied,
		State:   h.session.Snapshot(),
		Result:  result,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
