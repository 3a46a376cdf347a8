package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// RequestLogger writes one structured access log line per request.  The
// authenticated user id and email are included when JWTAuth ran for the
// route.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.LogAttrs(c.Request().Context(), requestLevel(v), "request", requestAttrs(c, v)...)
			return nil
		},
	})
}

func requestLevel(v echomw.RequestLoggerValues) slog.Level {
	if v.Error != nil || v.Status >= 500 {
		return slog.LevelError
	}
	return slog.LevelInfo
}

func requestAttrs(c echo.Context, v echomw.RequestLoggerValues) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("method", v.Method),
		slog.String("uri", v.URI),
		slog.Int("status", v.Status),
		slog.Duration("latency", v.Latency),
		slog.String("remote_ip", v.RemoteIP),
	}
	if v.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", v.RequestID))
	}
	if id, ok := UserID(c); ok {
		attrs = append(attrs, slog.Uint64("user_id", id))
	}
	if email := Email(c); email != "" {
		attrs = append(attrs, slog.String("email", email))
	}
	if v.Error != nil {
		attrs = append(attrs, slog.String("err", v.Error.Error()))
	}
	return attrs
}
