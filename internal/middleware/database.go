package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/server"
)

const MsgDatabaseUnavailable = "Database connection failed"

type DatabaseMiddleware struct {
	server *server.Server
}

func NewDatabaseMiddleware(s *server.Server) *DatabaseMiddleware {
	return &DatabaseMiddleware{server: s}
}

// EnsureDatabase connects the document store before the handler runs.
// Failed connects are retried by the next request.
func (d *DatabaseMiddleware) EnsureDatabase(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := d.server.DB.Get(c.Request().Context()); err != nil {
			GetLogger(c).Error().Err(err).Msg("database unavailable")
			httpErr := errs.NewInternalServerError().
				WithMessage(MsgDatabaseUnavailable).
				WithDetail("DatabaseError", err.Error())
			httpErr.Override = true
			return httpErr
		}
		return next(c)
	}
}
