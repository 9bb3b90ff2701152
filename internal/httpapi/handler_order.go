package httpapi

import (
	"net/http"

	"storefront-be/internal/order"
	"storefront-be/internal/profile"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type supplyProfileRequest struct {
	Kind      string `json:"kind"`
	ProfileID string `json:"profile_id"`
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}

	render.JSON(w, r, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(chi.URLParam(r, "orderID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid order id"})
		return
	}

	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, o)
}

func (h *Handler) supplyProfile(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(chi.URLParam(r, "orderID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid order id"})
		return
	}

	var req supplyProfileRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid request body"})
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid profile id"})
		return
	}

	o, err := h.orders.SupplyMissingProfile(r.Context(), orderID, profile.Kind(req.Kind), profileID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, o)
}

func (h *Handler) capturePayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(chi.URLParam(r, "orderID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid order id"})
		return
	}

	o, err := h.orders.CapturePayment(r.Context(), orderID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, o)
}

func (h *Handler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(chi.URLParam(r, "orderID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid order id"})
		return
	}

	var req advanceStatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid request body"})
		return
	}

	o, err := h.orders.AdvanceShipmentStatus(r.Context(), orderID, order.Status(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.JSON(w, r, o)
}
