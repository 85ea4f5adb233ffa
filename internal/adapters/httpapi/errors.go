package httpapi

import (
	"errors"
	"log"
	"rental-project/internal/core/domain"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

var errSearchNotFound = errors.New("search session not found")

func (s *Server) writeError(ctx iris.Context, err error) {
	var (
		fieldErrs  domain.ValidationErrors
		gatewayErr *domain.GatewayError
	)
	switch {
	case errors.As(err, &fieldErrs):
		s.writeFieldErrors(ctx, fieldErrs)
	case errors.As(err, &gatewayErr):
		log.Printf("HTTPServer: %s %s failed: %v\n", ctx.Method(), ctx.Path(), err)
		jsonError(ctx, iris.StatusBadGateway, "gateway_error", s.text(ctx, "load_failed"))
	case errors.Is(err, domain.ErrNotAdmin):
		jsonError(ctx, iris.StatusForbidden, "forbidden", s.text(ctx, "admin_required"))
	case errors.Is(err, domain.ErrInvalidCredentials):
		jsonError(ctx, iris.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, errSearchNotFound):
		jsonError(ctx, iris.StatusNotFound, "not_found", err.Error())
	default:
		log.Printf("HTTPServer: %s %s failed: %v\n", ctx.Method(), ctx.Path(), err)
		jsonError(ctx, iris.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}

// writeBindError answers a request body that could not be read or failed
// its struct tags.
func (s *Server) writeBindError(ctx iris.Context, err error) {
	var tagErrs validator.ValidationErrors
	if !errors.As(err, &tagErrs) {
		jsonError(ctx, iris.StatusBadRequest, "bad_request", err.Error())
		return
	}
	out := make(domain.ValidationErrors, 0, len(tagErrs))
	for _, fe := range tagErrs {
		out = append(out, domain.ValidationError{Field: fe.Field(), Message: "Failed the " + fe.Tag() + " check"})
	}
	s.writeFieldErrors(ctx, out)
}

func (s *Server) writeFieldErrors(ctx iris.Context, errs domain.ValidationErrors) {
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field] = e.Message
	}
	ctx.StatusCode(iris.StatusUnprocessableEntity)
	ctx.JSON(iris.Map{
		"error":   "validation_failed",
		"message": errs.Error(),
		"fields":  fields,
	})
}

func jsonError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}
