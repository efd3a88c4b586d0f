package handler

import (
	"net/http"

	"github.com/msomdec/contacts-api/internal/service"
)

// AvatarHandler accepts avatar uploads for the authenticated user.
type AvatarHandler struct {
	avatars  *service.AvatarService
	acceptor *uploadAcceptor
}

// NewAvatarHandler creates a new AvatarHandler. Uploads are staged in
// tempDir, which must exist, and rejected above maxBytes.
func NewAvatarHandler(avatars *service.AvatarService, tempDir string, maxBytes int64) *AvatarHandler {
	return &AvatarHandler{
		avatars: avatars,
		acceptor: &uploadAcceptor{
			field:    "avatar",
			tempDir:  tempDir,
			maxBytes: maxBytes,
			allowed:  service.AllowedAvatarTypes,
		},
	}
}

// HandleUpload replaces the user's avatar.
// PATCH /auth/avatars (multipart field "avatar")
// Response: {"avatarURL":"..."}
func (h *AvatarHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	upload, err := h.acceptor.accept(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	url, err := h.avatars.Upload(r.Context(), user.ID, upload)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarURL": url})
}
