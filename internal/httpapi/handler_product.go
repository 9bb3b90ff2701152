package httpapi

import (
	"net/http"

	"storefront-be/internal/feedback"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(chi.URLParam(r, "productID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid product id"})
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, p)
}

func (h *Handler) listProductFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(chi.URLParam(r, "productID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid product id"})
		return
	}

	list, err := h.feedback.ListByProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if list == nil {
		list = []*feedback.Feedback{}
	}

	render.JSON(w, r, list)
}

func (h *Handler) canReview(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(chi.URLParam(r, "productID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid product id"})
		return
	}

	ok, err := h.feedback.CanReview(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]bool{"can_review": ok})
}
