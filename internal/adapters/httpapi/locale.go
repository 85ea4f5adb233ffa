package httpapi

import (
	"rental-project/internal/locale"

	"github.com/kataras/iris/v12"
)

const langCookie = "lang"

// requestLocale honours ?lang=, then the lang cookie, then Accept-Language.
func (s *Server) requestLocale(ctx iris.Context) locale.Locale {
	if l, ok := locale.Parse(ctx.URLParam("lang")); ok {
		return l
	}
	if l, ok := locale.Parse(ctx.GetCookie(langCookie)); ok {
		return l
	}
	if header := ctx.GetHeader("Accept-Language"); header != "" {
		return locale.Match(header)
	}
	return s.deps.DefaultLocale
}

func (s *Server) text(ctx iris.Context, key string) string {
	return s.deps.Strings.Lookup(s.requestLocale(ctx), key)
}
