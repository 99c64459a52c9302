// Package server exposes the strategy catalog and execution pipeline over
// HTTP. Every error leaves through the same envelope: a status code plus a
// machine-readable code, message, and optional details.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"finplan/internal/domain"
	"finplan/internal/executor"
	"finplan/internal/plan"
	"finplan/internal/strategy"
)

// Config for the HTTP API handler.
type Config struct {
	Registry *strategy.Registry
	Executor *executor.Service
	Log      *slog.Logger
	BasePath string
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"strategy not found: unknown-id"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the strategy API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("server: registry is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("server: executor is required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	hcfg := huma.DefaultConfig("Finplan API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerStrategies(group, cfg.Registry)
	registerRun(group, cfg.Registry, cfg.Executor)
	registerCompose(group, cfg.Log)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, strategy.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "missing") || strings.Contains(lowered, "required"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "healthz",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerStrategies(api huma.API, reg *strategy.Registry) {
	huma.Register(api, huma.Operation{
		OperationID: "list-strategies",
		Method:      http.MethodGet,
		Path:        "/strategies",
		Summary:     "List the strategy catalog",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body StrategyListResponse `json:"body"`
	}, error) {
		out := StrategyListResponse{Strategies: []StrategyResponse{}}
		for _, s := range reg.All() {
			out.Strategies = append(out.Strategies, toStrategyResponse(s))
		}
		return &struct {
			Body StrategyListResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-strategy",
		Method:      http.MethodGet,
		Path:        "/strategies/{strategy_id}",
		Summary:     "Describe one strategy",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		StrategyID string `path:"strategy_id"`
	}) (*struct {
		Body StrategyResponse `json:"body"`
	}, error) {
		s, err := reg.ByID(input.StrategyID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StrategyResponse `json:"body"`
		}{Body: toStrategyResponse(s)}, nil
	})
}

func registerRun(api huma.API, reg *strategy.Registry, svc *executor.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "check-applicability",
		Method:      http.MethodPost,
		Path:        "/strategies/{strategy_id}/applicability",
		Summary:     "Check whether a strategy applies to a plan context",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		StrategyID string               `path:"strategy_id"`
		Body       ApplicabilityRequest `json:"body"`
	}) (*struct {
		Body domain.Applicability `json:"body"`
	}, error) {
		s, err := reg.ByID(input.StrategyID)
		if err != nil {
			return nil, handleError(err)
		}
		ec := input.Body.Context
		ec.Inputs = input.Body.Inputs
		app := s.CanApply(&ec)
		return &struct {
			Body domain.Applicability `json:"body"`
		}{Body: app}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "run-strategy",
		Method:      http.MethodPost,
		Path:        "/strategies/{strategy_id}/run",
		Summary:     "Execute a strategy against a plan context",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		StrategyID string     `path:"strategy_id"`
		Body       RunRequest `json:"body"`
	}) (*struct {
		Body domain.StrategyResult `json:"body"`
	}, error) {
		if _, err := reg.ByID(input.StrategyID); err != nil {
			return nil, handleError(err)
		}
		ec := input.Body.Context
		res := svc.Run(ctx, input.StrategyID, &ec, input.Body.Inputs)
		return &struct {
			Body domain.StrategyResult `json:"body"`
		}{Body: res}, nil
	})
}

func registerCompose(api huma.API, log *slog.Logger) {
	huma.Register(api, huma.Operation{
		OperationID: "compose-plan",
		Method:      http.MethodPost,
		Path:        "/plans/compose",
		Summary:     "Merge a strategy result into a plan's event ledger",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body ComposeRequest `json:"body"`
	}) (*struct {
		Body ComposeResponse `json:"body"`
	}, error) {
		merged := plan.Compose(input.Body.Events, input.Body.Result, log)
		return &struct {
			Body ComposeResponse `json:"body"`
		}{Body: ComposeResponse{Events: merged}}, nil
	})
}
