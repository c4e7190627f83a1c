// Package errorware is the outermost guard of the request pipeline. It
// recovers panics, translates every failure into a structured JSON
// response, and tags each one with a short correlation id so operators
// can join a client report to the server-side log line. Response detail
// is gated by deployment environment: hardened deployments only ever see
// the generic message and the correlation id.
package errorware

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// Environment selects how much failure detail reaches the caller.
type Environment string

const (
	// EnvProduction is the hardened mode: generic message + error id only.
	EnvProduction Environment = "production"
	// EnvDevelopment reflects the underlying failure message to the caller.
	EnvDevelopment Environment = "development"
)

// Logger is the minimal logging surface the middleware writes to.
type Logger interface {
	Error(format string, args ...any)
}

// ErrorResponse is the failure envelope returned for translated errors.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ErrorID string `json:"error_id"`
	Detail  string `json:"detail,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

type Config struct {
	// Environment gates response detail. Defaults to EnvProduction so a
	// missing configuration can never leak diagnostics.
	Environment Environment

	// Verbose additionally includes a stack trace in development responses.
	Verbose bool

	Logger Logger
}

type defLogger struct{}

func (defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ERRORWARE "+format+"\n", args...)
}

// New wraps downstream handling so that no failure, panic included,
// escapes untranslated.
func New(config ...Config) router.MiddlewareFunc {
	cfg := getDefaultConfig(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = translate(ctx, cfg, fmt.Errorf("panic: %v", r), debug.Stack())
				}
			}()

			if err = hf(ctx); err != nil {
				return translate(ctx, cfg, err, nil)
			}

			return nil
		}
	}
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Environment == "" {
		cfg.Environment = EnvProduction
	}

	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	return cfg
}

func translate(ctx router.Context, cfg Config, err error, stack []byte) error {
	errorID := newErrorID()

	richErr := normalize(err)

	cfg.Logger.Error(
		"request failed error_id=%s category=%s %s %s origin=%s: %v metadata=%s",
		errorID,
		richErr.Category,
		ctx.Method(),
		ctx.Path(),
		clientOrigin(ctx),
		err,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	resp := ErrorResponse{
		Success: false,
		Message: clientMessage(cfg, richErr),
		ErrorID: errorID,
	}

	// The gate is absolute: hardened deployments never see detail, no
	// matter where the failure came from.
	if cfg.Environment == EnvDevelopment {
		resp.Detail = err.Error()
		if cfg.Verbose && stack != nil {
			resp.Stack = string(stack)
		}
	}

	return ctx.JSON(statusFor(richErr), resp)
}

// clientOrigin resolves the caller address from proxy headers. Behind a
// chain of proxies X-Forwarded-For carries the original client first.
func clientOrigin(ctx router.Context) string {
	if forwarded := ctx.GetString("X-Forwarded-For", ""); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := strings.TrimSpace(ctx.GetString("X-Real-IP", "")); realIP != "" {
		return realIP
	}

	return "unknown"
}

// normalize lifts arbitrary errors into the structured form the
// translation table operates on.
func normalize(err error) *goerrors.Error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
		WithCode(goerrors.CodeInternal)
}

// clientMessage picks the message reflected to the caller. Expected
// categories carry messages written for disclosure; everything else
// falls back to a generic line.
func clientMessage(cfg Config, richErr *goerrors.Error) string {
	switch richErr.Category {
	case goerrors.CategoryAuth,
		goerrors.CategoryAuthz,
		goerrors.CategoryConflict,
		goerrors.CategoryValidation,
		goerrors.CategoryBadInput,
		goerrors.CategoryNotFound,
		goerrors.CategoryRateLimit:
		return richErr.Message
	default:
		return "An unexpected server error occurred"
	}
}

func statusFor(richErr *goerrors.Error) int {
	switch richErr.Category {
	case goerrors.CategoryAuth:
		if richErr.Code == goerrors.CodeForbidden {
			return fiber.StatusForbidden
		}
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// newErrorID mints the short opaque id clients can quote back at support.
func newErrorID() string {
	return uuid.NewString()[:8]
}
