package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/usecase"
)

const maxBodyBytes = 1 << 16

func (s *Server) handleCatalogView(w http.ResponseWriter, r *http.Request) {
	view, err := s.redemption.BuildCatalogView(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type tokenStatusResponse struct {
	Recipient usecase.RecipientView `json:"recipient"`
	Claimable bool                  `json:"claimable"`
}

func (s *Server) handleTokenStatus(w http.ResponseWriter, r *http.Request) {
	inv, err := s.redemption.ResolveByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenStatusResponse{
		Recipient: usecase.RecipientView{
			ID:            inv.ID,
			Name:          inv.Name,
			Email:         inv.Email,
			LinkExpiresAt: inv.LinkExpiresAt,
		},
		Claimable: true,
	})
}

type selectRequest struct {
	ProductID           string          `json:"product_id"`
	ShippingAddress     json.RawMessage `json:"shipping_address"`
	SizeColorPreference *string         `json:"size_color_preference,omitempty"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		s.writeError(w, r, fmt.Errorf("%w: product_id is required", domain.ErrValidation))
		return
	}
	addr, err := decodeAddress(req.ShippingAddress)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.selection.CommitSelection(r.Context(), usecase.SelectionInput{
		Token:               chi.URLParam(r, "token"),
		ProductID:           strings.TrimSpace(req.ProductID),
		ShippingAddress:     addr,
		SizeColorPreference: req.SizeColorPreference,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// decodeAddress accepts only a JSON object; a free-text string is rejected
// rather than stored unparsed.
func decodeAddress(raw json.RawMessage) (model.ShippingAddress, error) {
	var a model.ShippingAddress
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return a, fmt.Errorf("%w: shipping_address is required", domain.ErrInvalidAddress)
	}
	if trimmed[0] != '{' {
		return a, fmt.Errorf("%w: shipping_address must be an object", domain.ErrInvalidAddress)
	}
	if err := json.Unmarshal(trimmed, &a); err != nil {
		return a, fmt.Errorf("%w: %v", domain.ErrInvalidAddress, err)
	}
	return a, nil
}
