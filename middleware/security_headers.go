package middleware

import "github.com/labstack/echo/v4"

// apiHeaders suit a JSON-only API whose responses are never rendered or cached.
var apiHeaders = [][2]string{
	{echo.HeaderXContentTypeOptions, "nosniff"},
	{echo.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'; sandbox"},
	{echo.HeaderReferrerPolicy, "no-referrer"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders sets apiHeaders on every response, plus HSTS when the
// request arrived over HTTPS (directly or via X-Forwarded-Proto).
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range apiHeaders {
				h.Set(kv[0], kv[1])
			}
			if c.Scheme() == "https" {
				h.Set(echo.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains")
			}
			return next(c)
		}
	}
}
