package middleware

import (
	"encoding/json"
	"errors"
	"time"

	"digital-advisor/internal/domain"
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// ErrorHandler returns the global error handler. Domain errors keep their
// status and message; everything else is a 500. Server errors are logged and
// appended to the Redis error log when rdb is set.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := errorStatus(err)
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			message = fe.Message
		} else if domain.IsDomainError(err) {
			message = err.Error()
		}

		if code >= fiber.StatusInternalServerError {
			traceID := GetTraceID(c)
			log.Error().Err(err).Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Int("status", code).Msg("request failed")
			if rdb != nil {
				entry, _ := json.Marshal(map[string]interface{}{
					"time":     time.Now().UTC(),
					"trace_id": traceID,
					"method":   c.Method(),
					"path":     c.OriginalURL(),
					"status":   code,
					"error":    err.Error(),
				})
				ctx := c.UserContext()
				pipe := rdb.TxPipeline()
				pipe.LPush(ctx, KeyErrorLog, entry)
				pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
				_, _ = pipe.Exec(ctx)
			}
		}

		return response.Error(c, message, code, nil)
	}
}

func errorStatus(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return response.StatusFor(err)
}
