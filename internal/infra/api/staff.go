package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/infra/web"
	"corporate-gifting/internal/usecase"
)

const maxUploadBytes = 4 << 20

type issueRequest struct {
	Recipients    []model.RecipientInput `json:"recipients"`
	LinkExpiresAt *time.Time             `json:"link_expires_at,omitempty"`
}

// handleIssueInvites accepts a JSON body or a text/csv upload; for CSV the
// expiry comes from the link_expires_at query parameter (RFC 3339).
func (s *Server) handleIssueInvites(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "text/csv":
		recipients, err := usecase.ParseRecipientsCSV(body)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		req.Recipients = recipients
		if v := r.URL.Query().Get("link_expires_at"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				s.writeError(w, r, fmt.Errorf("%w: link_expires_at must be RFC 3339", domain.ErrValidation))
				return
			}
			req.LinkExpiresAt = &t
		}
	default:
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
	}

	res, err := s.issuance.IssueInvites(r.Context(), web.CallerFrom(r.Context()), chi.URLParam(r, "campaignID"), req.Recipients, req.LinkExpiresAt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type rosterRequest struct {
	Department    string     `json:"department,omitempty"`
	LinkExpiresAt *time.Time `json:"link_expires_at,omitempty"`
}

func (s *Server) handleIssueFromRoster(w http.ResponseWriter, r *http.Request) {
	var req rosterRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
	}
	res, err := s.issuance.IssueFromRoster(r.Context(), web.CallerFrom(r.Context()), chi.URLParam(r, "campaignID"),
		usecase.RosterFilter{Department: req.Department}, req.LinkExpiresAt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleSendNotifications(w http.ResponseWriter, r *http.Request) {
	report, err := s.notifications.SendInviteNotifications(r.Context(), web.CallerFrom(r.Context()), chi.URLParam(r, "campaignID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type statusRowsResponse struct {
	Items []*model.GiftStatusRow `json:"items"`
}

func (s *Server) handleCampaignRecipients(w http.ResponseWriter, r *http.Request) {
	rows, err := s.status.ListForCampaign(r.Context(), web.CallerFrom(r.Context()), chi.URLParam(r, "campaignID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusRowsResponse{Items: rows})
}

func (s *Server) handleMyGifts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.status.ListForRecipient(r.Context(), web.CallerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusRowsResponse{Items: rows})
}

type orderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type orderResponse struct {
	ID          string            `json:"id"`
	OrderNumber string            `json:"order_number"`
	Status      model.OrderStatus `json:"status"`
	Total       int64             `json:"total"`
	Currency    string            `json:"currency"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	o, err := s.status.UpdateOrderStatus(r.Context(), web.CallerFrom(r.Context()), chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Total:       o.Total,
		Currency:    o.Currency,
		UpdatedAt:   o.UpdatedAt,
	})
}
