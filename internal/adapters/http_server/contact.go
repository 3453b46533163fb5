package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type contactRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Subject   string `json:"subject" validate:"required,max=255"`
	Message   string `json:"message" validate:"required,min=10"`
	BookingID string `json:"bookingId" validate:"omitempty,max=64"`
}

type decisionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type messageView struct {
	ID                    string    `json:"_id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Subject               string    `json:"subject"`
	Message               string    `json:"message"`
	BookingID             *string   `json:"bookingId,omitempty"`
	IsRead                bool      `json:"isRead"`
	IsCancellationRequest bool      `json:"isCancellationRequest"`
	CancellationStatus    string    `json:"cancellationStatus,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func toMessageView(m domain.ContactMessage) messageView {
	return messageView{
		ID: m.ID, Name: m.Name, Email: m.Email, Subject: m.Subject, Message: m.Message,
		BookingID: m.BookingID, IsRead: m.IsRead, IsCancellationRequest: m.IsCancellationRequest,
		CancellationStatus: string(m.Status), CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func (h *Handlers) submitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.Contact.Submit(r.Context(), app.ContactRequest{
		Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message, BookingID: req.BookingID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := "Your message has been sent successfully."
	if m.IsCancellationRequest {
		msg = "Your cancellation request has been received and will be reviewed."
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":               msg,
		"id":                    m.ID,
		"isCancellationRequest": m.IsCancellationRequest,
	})
}

func (h *Handlers) listContact(w http.ResponseWriter, r *http.Request) {
	ms, err := h.Contact.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]messageView, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMessageView(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) markRead(w http.ResponseWriter, r *http.Request) {
	m, err := h.Contact.MarkRead(r.Context(), chi.URLParam(r, "messageId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageView(m))
}

func (h *Handlers) processCancellation(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.Contact.ProcessCancellation(r.Context(), chi.URLParam(r, "messageId"), domain.Decision(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
