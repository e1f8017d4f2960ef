// Package api exposes the identity operations over HTTP. Every response uses
// the envelope format the existing mobile clients already speak.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/socialride/identity/internal/logging"
	"github.com/socialride/identity/internal/server/identity"
	"github.com/socialride/identity/internal/server/models"
	"github.com/socialride/identity/internal/server/policy"
)

// IdentityService is the slice of the identity core the transport needs.
type IdentityService interface {
	Authenticate(ctx context.Context, username, password string) (*identity.Session, error)
	AuthenticateExternal(ctx context.Context, ext models.ExternalIdentity) (*identity.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Register(ctx context.Context, user *models.User, username, password string) (*models.User, error)
	Available(ctx context.Context, username string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// AvatarService issues presigned URLs for avatar storage.
type AvatarService interface {
	UploadURL(ctx context.Context) (key string, url string, err error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

type Server struct {
	address  string
	identity IdentityService
	avatars  AvatarService
	policies *policy.Evaluator
	logger   logging.Logger
}

func NewServer(address string, l logging.Logger, is IdentityService, as AvatarService, pe *policy.Evaluator) *Server {
	return &Server{
		address:  address,
		identity: is,
		avatars:  as,
		policies: pe,
		logger:   l.With("module", "http_server"),
	}
}

// Routes builds the full route tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/authenticate", s.handleAuthenticate)
		r.Post("/social", s.handleSocial)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/availability", s.handleAvailability)
		r.Post("/register", s.handleRegister)

		r.With(s.require(policy.AdminOnly)).Get("/", s.handleList)
		r.With(s.require(policy.Authenticated)).Get("/{id}", s.handleGet)
		r.With(s.require(policy.AdminOnly)).Put("/{id}", s.handleUpdate)
		r.With(s.require(policy.AdminOnly)).Delete("/{id}", s.handleDelete)

		r.With(s.require(policy.Authenticated)).Post("/{id}/avatar", s.handleAvatarUpload)
		r.With(s.require(policy.Authenticated)).Get("/{id}/avatar", s.handleAvatarDownload)
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
