package middleware

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/metrics"
	"alfredoptarigan/cv-project/internal/models"
)

// LocalsRequestStart holds the time.Time captured when the request arrived.
const LocalsRequestStart = "request_start"

// DefaultAuditWriteTimeout bounds how long a response waits on its audit write.
const DefaultAuditWriteTimeout = 250 * time.Millisecond

// Exchange is what the interceptor knows about one in-flight request.
type Exchange struct {
	Method       string
	Path         string
	QueryString  string
	RemoteAddr   string
	ForwardedFor string
	UserAgent    string
	UserID       *uint

	startedAt time.Time
}

func (ex *Exchange) StartedAt() time.Time {
	return ex.startedAt
}

// ClientIP prefers the first X-Forwarded-For entry, then the connection address.
func (ex *Exchange) ClientIP() string {
	if ex.ForwardedFor != "" {
		return strings.TrimSpace(strings.Split(ex.ForwardedFor, ",")[0])
	}
	if host, _, err := net.SplitHostPort(ex.RemoteAddr); err == nil {
		return host
	}
	return ex.RemoteAddr
}

// Interceptor observes a request before the handler runs and after the
// response is complete. It must never change the response.
type Interceptor interface {
	Before(ex *Exchange)
	After(ctx context.Context, ex *Exchange, status int)
}

type RequestLogWriter interface {
	Create(ctx context.Context, entry *models.RequestLog) error
}

type RequestAuditor struct {
	writer       RequestLogWriter
	log          *zap.Logger
	writeTimeout time.Duration
	now          func() time.Time
}

func NewRequestAuditor(writer RequestLogWriter, log *zap.Logger) *RequestAuditor {
	return &RequestAuditor{
		writer:       writer,
		log:          log,
		writeTimeout: DefaultAuditWriteTimeout,
		now:          time.Now,
	}
}

// WithWriteTimeout overrides the audit write deadline. Non-positive values are ignored.
func (a *RequestAuditor) WithWriteTimeout(d time.Duration) *RequestAuditor {
	if d > 0 {
		a.writeTimeout = d
	}
	return a
}

func (a *RequestAuditor) Before(ex *Exchange) {
	ex.startedAt = a.now()
}

// After persists one RequestLog row. Failures are logged and dropped.
func (a *RequestAuditor) After(ctx context.Context, ex *Exchange, status int) {
	now := a.now()

	elapsed := 0.0
	if !ex.startedAt.IsZero() {
		elapsed = now.Sub(ex.startedAt).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
	}

	entry := &models.RequestLog{
		Method:          ex.Method,
		Path:            ex.Path,
		QueryString:     ex.QueryString,
		RemoteIP:        ex.ClientIP(),
		UserAgent:       ex.UserAgent,
		ResponseStatus:  status,
		ResponseTime:    elapsed,
		Timestamp:       now.UTC(),
		UserID:          ex.UserID,
		IsAuthenticated: ex.UserID != nil,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, a.writeTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.AuditWriteFailures.Inc()
			a.log.Error("request log writer panicked", zap.Any("panic", r))
		}
	}()

	if err := a.writer.Create(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		a.log.Warn("failed to log request",
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Error(err),
		)
	}
}

// RequestAudit adapts an Interceptor to Fiber. It must be registered first so
// it wraps every route, and it resolves handler errors itself so the recorded
// status is the one the client receives.
func RequestAudit(interceptor Interceptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ex := &Exchange{
			Method:       utils.CopyString(c.Method()),
			Path:         utils.CopyString(c.Path()),
			QueryString:  string(c.Request().URI().QueryString()),
			RemoteAddr:   c.Context().RemoteAddr().String(),
			ForwardedFor: utils.CopyString(c.Get(fiber.HeaderXForwardedFor)),
			UserAgent:    utils.CopyString(c.Get(fiber.HeaderUserAgent)),
		}

		interceptor.Before(ex)
		c.Locals(LocalsRequestStart, ex.StartedAt())

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		ex.UserID = CurrentUserID(c)
		interceptor.After(c.UserContext(), ex, c.Response().StatusCode())
		return nil
	}
}
