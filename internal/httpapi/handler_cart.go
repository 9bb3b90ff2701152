package httpapi

import (
	"net/http"

	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type addItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.GetOrCreateOpenCart(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, c)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid request body"})
		return
	}

	item, err := h.carts.AddItem(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.ToUint(chi.URLParam(r, "itemID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid item id"})
		return
	}

	var req updateItemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid request body"})
		return
	}

	item, err := h.carts.UpdateItem(r.Context(), itemID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, item)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.ToUint(chi.URLParam(r, "itemID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid item id"})
		return
	}

	if err := h.carts.RemoveItem(r.Context(), itemID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) abandonCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Abandon(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Checkout(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, o)
}
