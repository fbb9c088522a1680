// internal/interfaces/http/middleware/idempotency.go
package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	redisinfra "github.com/your-org/fitness-inventory/internal/infrastructure/database/redis"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
)

const (
	HeaderIdempotencyKey   = "Idempotency-Key"
	HeaderIdempotentReplay = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
)

// capturingWriter keeps a copy of the response body for storage
type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// mutating requests. Keys are scoped by user, method and path. A repeat whose
// body differs from the first request is refused with 422. Requests without
// the header pass straight through. If the store is unreachable the request runs
// without protection.
func Idempotency(store *redisinfra.IdempotencyStore, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			response.Abort(c, http.StatusBadRequest, response.CodeValidation, "Idempotency-Key is too long")
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			if body, err = io.ReadAll(c.Request.Body); err != nil {
				response.Abort(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge, "Request body could not be read")
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		fingerprint := redisinfra.Fingerprint(body)

		userID, _ := GetUserIDFromContext(c)
		scoped := fmt.Sprintf("%d:%s:%s:%s", userID, c.Request.Method, c.Request.URL.Path, key)
		log := logger.WithFields(logrus.Fields{
			"request_id":      c.GetString(ContextRequestID),
			"idempotency_key": key,
		})

		stored, reservation, err := store.Begin(c.Request.Context(), scoped)
		switch {
		case errors.Is(err, redisinfra.ErrIdempotencyInProgress):
			response.Abort(c, http.StatusConflict, response.CodeConflict,
				"A request with this Idempotency-Key is already in progress")
			return
		case err != nil:
			log.WithError(err).Warn("idempotency store unavailable, processing without replay protection")
			c.Next()
			return
		case stored != nil && stored.Fingerprint != fingerprint:
			response.Abort(c, http.StatusUnprocessableEntity, response.CodeIdempotencyReused,
				"Idempotency-Key was already used with a different request body")
			return
		case stored != nil:
			c.Header(HeaderIdempotentReplay, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		// The request context may already be cancelled
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 3*time.Second)
		defer cancel()

		// Server faults are not recorded so the client can retry them
		if writer.Status() >= http.StatusInternalServerError {
			if err := store.Abort(ctx, reservation); err != nil {
				log.WithError(err).Warn("failed to release idempotency key")
			}
			return
		}

		err = store.Complete(ctx, reservation, redisinfra.StoredResponse{
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
			Fingerprint: fingerprint,
		})
		if err != nil {
			log.WithError(err).Warn("failed to store idempotent response")
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
