package httpapi

import (
	"net/http"
	"time"

	"storefront-be/internal/profile"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type createProfileRequest struct {
	Kind         string `json:"kind"`
	SetAsDefault bool   `json:"set_as_default"`

	CardNumber *string `json:"card_number,omitempty"`
	CardCVV    *string `json:"card_cvv,omitempty"`
	CardExpiry *string `json:"card_expiry,omitempty"`

	StreetAddress *string `json:"street_address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	ZipCode       *string `json:"zip_code,omitempty"`
}

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	kind := profile.Kind(r.URL.Query().Get("kind"))

	list, err := h.profiles.List(r.Context(), kind)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if list == nil {
		list = []*profile.Profile{}
	}

	render.JSON(w, r, list)
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid request body"})
		return
	}

	input := profile.CreateProfileInput{
		Kind:          profile.Kind(req.Kind),
		SetAsDefault:  req.SetAsDefault,
		CardNumber:    req.CardNumber,
		CardCVV:       req.CardCVV,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
	}

	if req.CardExpiry != nil {
		exp, err := time.Parse("2006-01", *req.CardExpiry)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errResponse{Error: "card_expiry must be YYYY-MM"})
			return
		}
		input.CardExpiry = &exp
	}

	p, err := h.profiles.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid profile id"})
		return
	}

	if err := h.profiles.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setDefaultProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid profile id"})
		return
	}

	kind := profile.Kind(r.URL.Query().Get("kind"))

	if err := h.profiles.SetDefault(r.Context(), kind, id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
