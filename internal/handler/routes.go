package handler

import (
	"net/http"
	"os"

	"github.com/msomdec/contacts-api/internal/service"
)

// Deps are the services and settings the routes are built from.
type Deps struct {
	Auth     *service.AuthService
	Contacts *service.ContactService
	Avatars  *service.AvatarService
	Store    Pinger

	UploadTempDir  string
	AvatarMaxBytes int64
	// AvatarDir, when set, is served read-only under /avatars/.
	AvatarDir string
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, deps Deps) {
	authHandler := NewAuthHandler(deps.Auth)
	contactHandler := NewContactHandler(deps.Contacts)
	avatarHandler := NewAvatarHandler(deps.Avatars, deps.UploadTempDir, deps.AvatarMaxBytes)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(deps.Auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(deps.Store))

	mux.HandleFunc("POST /auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleLogin)
	mux.Handle("POST /auth/logout", protected(authHandler.HandleLogout))
	mux.Handle("GET /auth/current", protected(authHandler.HandleCurrent))
	mux.HandleFunc("GET /auth/verify/{verificationToken}", authHandler.HandleVerify)
	mux.HandleFunc("POST /auth/verify", authHandler.HandleResendVerification)
	mux.Handle("PATCH /auth/avatars", protected(avatarHandler.HandleUpload))

	mux.Handle("GET /contacts", protected(contactHandler.HandleList))
	mux.Handle("POST /contacts", protected(contactHandler.HandleCreate))
	mux.Handle("GET /contacts/{id}", protected(contactHandler.HandleGet))
	mux.Handle("PUT /contacts/{id}", protected(contactHandler.HandleUpdate))
	mux.Handle("DELETE /contacts/{id}", protected(contactHandler.HandleDelete))
	mux.Handle("PATCH /contacts/{id}/favorite", protected(contactHandler.HandleUpdateFavorite))

	if deps.AvatarDir != "" {
		mux.Handle("GET /avatars/", http.StripPrefix("/avatars/", http.FileServer(noDirFS{http.Dir(deps.AvatarDir)})))
	}
}

// noDirFS hides directory listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
