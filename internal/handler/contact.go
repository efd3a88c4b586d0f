package handler

import (
	"net/http"

	"github.com/msomdec/contacts-api/internal/service"
)

// ContactHandler serves the contact list.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// HandleList returns every contact.
// GET /contacts
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTOs(contacts))
}

// HandleGet returns a single contact by id.
// GET /contacts/{id}
func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contacts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(contact))
}

// HandleCreate validates and stores a new contact.
// POST /contacts
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := h.contacts.Create(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(contact))
}

// HandleUpdate replaces the fields of an existing contact.
// PUT /contacts/{id}
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := h.contacts.Update(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(contact))
}

// HandleUpdateFavorite sets only the favorite flag.
// PATCH /contacts/{id}/favorite
func (h *ContactHandler) HandleUpdateFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := h.contacts.UpdateFavorite(r.Context(), r.PathValue("id"), req.Favorite)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(contact))
}

// HandleDelete removes a contact and returns it.
// DELETE /contacts/{id}
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contacts.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(contact))
}

func (req contactRequest) input() service.ContactInput {
	return service.ContactInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Favorite: req.Favorite,
	}
}
