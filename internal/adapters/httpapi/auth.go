package httpapi

import (
	"fmt"
	"rental-project/internal/core/domain"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const actorKey = "actor"

// AccessToken is the claim set carried by a signed-in client.
type AccessToken struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type tokenIssuer struct {
	signer   *jwt.Signer
	verifier *jwt.Verifier
}

func newTokenIssuer(secret string, ttl time.Duration) (*tokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("http server: jwt secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("http server: jwt ttl must be positive, got %s", ttl)
	}
	return &tokenIssuer{
		signer:   jwt.NewSigner(jwt.HS256, []byte(secret), ttl),
		verifier: jwt.NewVerifier(jwt.HS256, []byte(secret)),
	}, nil
}

func (t *tokenIssuer) issue(p domain.Profile) (string, error) {
	token, err := t.signer.Sign(AccessToken{ID: p.ID, Email: p.Email, Role: string(p.Role)})
	if err != nil {
		return "", fmt.Errorf("sign access token for %s: %w", p.ID, err)
	}
	return string(token), nil
}

func (t *tokenIssuer) verify() iris.Handler {
	return t.verifier.Verify(func() interface{} {
		return new(AccessToken)
	})
}

func claimsProfile(ctx iris.Context) domain.Profile {
	claims := jwt.Get(ctx).(*AccessToken)
	return domain.Profile{ID: claims.ID, Email: claims.Email, Role: domain.Role(claims.Role)}
}

// adminOnly stops every request whose token does not carry the admin role.
func (s *Server) adminOnly(ctx iris.Context) {
	profile := claimsProfile(ctx)
	if !profile.IsAdmin() {
		s.writeError(ctx, domain.ErrNotAdmin)
		return
	}
	ctx.Values().Set(actorKey, profile)
	ctx.Next()
}

func actor(ctx iris.Context) domain.Profile {
	p, _ := ctx.Values().Get(actorKey).(domain.Profile)
	return p
}

type signInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) signIn(ctx iris.Context) {
	var input signInInput
	if err := ctx.ReadJSON(&input); err != nil {
		s.writeBindError(ctx, err)
		return
	}

	profile, err := s.deps.Auth.SignIn(ctx.Request().Context(), input.Email, input.Password)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	token, err := s.tokens.issue(profile)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{
		"token":   token,
		"profile": profile,
	})
}

func (s *Server) me(ctx iris.Context) {
	p := claimsProfile(ctx)
	ctx.JSON(iris.Map{
		"profile":  p,
		"is_admin": p.IsAdmin(),
	})
}
