package httpapi

import (
	"net/http"

	"storefront-be/internal/feedback"

	"github.com/go-chi/render"
)

type createFeedbackRequest struct {
	ProductID uint   `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *Handler) createFeedback(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid request body"})
		return
	}

	f, err := h.feedback.Create(r.Context(), feedback.CreateFeedbackInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, f)
}
