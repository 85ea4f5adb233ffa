// Package httpapi exposes the marketplace over HTTP with iris: public
// search sessions and categories, sign-in, and the admin panel.
package httpapi

import (
	"context"
	"fmt"
	"log"
	"rental-project/internal/core/port"
	"rental-project/internal/core/usecase"
	"rental-project/internal/locale"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// Deps are the collaborators the HTTP surface drives.
type Deps struct {
	Gateway  port.GatewayPort
	Auth     *usecase.AuthUseCase
	Curation *usecase.CurationUseCase
	Catalog  *usecase.AdminCatalog
	Strings  *locale.Catalog

	JWTSecret     string
	JWTTTL        time.Duration
	PageSize      int
	DefaultLocale locale.Locale
	// SearchIdleTTL is how long an untouched search session is kept.
	SearchIdleTTL time.Duration
}

type Server struct {
	app      *iris.Application
	deps     Deps
	tokens   *tokenIssuer
	searches *searchSessions
}

func NewServer(deps Deps) (*Server, error) {
	switch {
	case deps.Gateway == nil:
		return nil, fmt.Errorf("http server: gateway cannot be nil")
	case deps.Auth == nil:
		return nil, fmt.Errorf("http server: auth use case cannot be nil")
	case deps.Curation == nil:
		return nil, fmt.Errorf("http server: curation use case cannot be nil")
	case deps.Catalog == nil:
		return nil, fmt.Errorf("http server: admin catalog cannot be nil")
	case deps.Strings == nil:
		return nil, fmt.Errorf("http server: locale catalog cannot be nil")
	}
	if deps.DefaultLocale == "" {
		deps.DefaultLocale = locale.Default
	}
	if deps.SearchIdleTTL <= 0 {
		deps.SearchIdleTTL = 30 * time.Minute
	}

	tokens, err := newTokenIssuer(deps.JWTSecret, deps.JWTTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		app:      iris.New(),
		deps:     deps,
		tokens:   tokens,
		searches: newSearchSessions(deps.SearchIdleTTL),
	}
	s.app.Validator = validator.New()
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	app := s.app
	requireToken := s.tokens.verify()

	auth := app.Party("/api/auth")
	{
		auth.Post("/sign-in", s.signIn)
		auth.Get("/me", requireToken, s.me)
	}

	searches := app.Party("/api/searches")
	{
		searches.Post("/", s.createSearch)
		searches.Get("/{id}", s.getSearch)
		searches.Put("/{id}", s.replaceSearch)
		searches.Post("/{id}/next", s.nextSearchPage)
	}

	app.Get("/api/categories", s.listCategories)

	admin := app.Party("/api/admin", requireToken, s.adminOnly)
	{
		admin.Get("/listings", s.adminListings)
		admin.Post("/listings", s.createListing)
		admin.Get("/listings/{id}/form", s.listingForm)
		admin.Put("/listings/{id}", s.updateListing)
		admin.Patch("/listings/{id}/toggle", s.toggleListing)
		admin.Delete("/listings/{id}", s.deleteListing)
		admin.Get("/amenities", s.listAmenities)
	}
}

// Application is exposed for tests and for embedding in another router.
func (s *Server) Application() *iris.Application {
	return s.app
}

// Listen blocks serving addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	log.Printf("HTTPServer: Listening on %s\n", addr)
	return s.app.Listen(addr,
		iris.WithoutInterruptHandler,
		iris.WithoutServerError(iris.ErrServerClosed),
		iris.WithoutStartupLog,
	)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("HTTPServer: Shutting down...")
	return s.app.Shutdown(ctx)
}
