package frontend

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	emptyInputMessage = "Please enter an SMS to predict."
	failureMessage    = "Something went wrong while analyzing this message. Please try again."
)

// WebFrontend serves the HTML form and the JSON prediction API
type WebFrontend struct {
	service    *core.PredictionService
	logger     *zap.Logger
	echo       *echo.Echo
	templates  *template.Template
	listenAddr string
}

var _ ports.Frontend = (*WebFrontend)(nil)

type pageData struct {
	Message     string
	Unavailable string
	Warning     string
	Error       string
	Result      *resultView
}

type resultView struct {
	Spam       bool
	Normalized string
	Model      string
	Cached     bool
}

type predictRequest struct {
	Message string `json:"message" form:"message"`
}

type predictResponse struct {
	Verdict      string          `json:"verdict"`
	IsSpam       bool            `json:"is_spam"`
	Label        int             `json:"label"`
	Normalized   string          `json:"normalized"`
	Scores       map[int]float64 `json:"scores,omitempty"`
	Model        string          `json:"model"`
	Cached       bool            `json:"cached"`
	ProcessingID string          `json:"processing_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewWebFrontend creates a new web front end
func NewWebFrontend(service *core.PredictionService, logger *zap.Logger, cfg config.ServerConfig) *WebFrontend {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(middleware.Recover())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("Request handled",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	f := &WebFrontend{
		service:    service,
		logger:     logger,
		echo:       e,
		templates:  template.Must(template.ParseFS(templateFS, "templates/*.html")),
		listenAddr: cfg.ListenAddress,
	}
	f.routes()

	return f
}

func (f *WebFrontend) routes() {
	f.echo.GET("/", f.index)
	f.echo.POST("/predict", f.predictForm)
	f.echo.POST("/api/predict", f.predictAPI)
	f.echo.GET("/health", f.health)
}

// Handler exposes the HTTP handler, mainly for tests
func (f *WebFrontend) Handler() http.Handler {
	return f.echo
}

// Start starts the HTTP server in the background
func (f *WebFrontend) Start() error {
	f.logger.Info("Web front end starting",
		zap.String("address", f.listenAddr),
		zap.Bool("model_ready", f.service.Ready()))

	go func() {
		if err := f.echo.Start(f.listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the HTTP server down
func (f *WebFrontend) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return f.echo.Shutdown(ctx)
}

// ProcessMessage classifies a message without going through HTTP
func (f *WebFrontend) ProcessMessage(ctx context.Context, message string) (*core.Prediction, error) {
	return f.service.Predict(ctx, message)
}

func (f *WebFrontend) index(c echo.Context) error {
	return f.render(c, http.StatusOK, f.basePage(""))
}

func (f *WebFrontend) predictForm(c echo.Context) error {
	message := c.FormValue("message")
	data := f.basePage(message)

	p, err := f.service.Predict(c.Request().Context(), message)
	status := f.statusFor(err)
	switch {
	case err == nil:
		data.Result = &resultView{
			Spam:       p.IsSpam(),
			Normalized: p.Normalized,
			Model:      p.ModelUsed,
			Cached:     p.FromCache,
		}
	case errors.Is(err, core.ErrEmptyInput):
		data.Warning = emptyInputMessage
	case errors.Is(err, core.ErrArtifactsUnavailable):
		// banner already rendered by basePage
	default:
		data.Error = failureMessage
	}

	return f.render(c, status, data)
}

func (f *WebFrontend) predictAPI(c echo.Context) error {
	var req predictRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	p, err := f.service.Predict(c.Request().Context(), req.Message)
	if err != nil {
		status := f.statusFor(err)
		msg := failureMessage
		switch {
		case errors.Is(err, core.ErrEmptyInput):
			msg = core.ErrEmptyInput.Error()
		case errors.Is(err, core.ErrArtifactsUnavailable):
			msg = core.ErrArtifactsUnavailable.Error()
		}
		return c.JSON(status, errorResponse{Error: msg})
	}

	return c.JSON(http.StatusOK, predictResponse{
		Verdict:      p.Verdict.String(),
		IsSpam:       p.IsSpam(),
		Label:        p.Label,
		Normalized:   p.Normalized,
		Scores:       p.Scores,
		Model:        p.ModelUsed,
		Cached:       p.FromCache,
		ProcessingID: p.ProcessingID,
	})
}

func (f *WebFrontend) health(c echo.Context) error {
	if !f.service.Ready() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  f.service.LoadError().Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"model":  f.service.ModelName(),
	})
}

// statusFor maps prediction errors to HTTP status codes and logs the
// unexpected ones
func (f *WebFrontend) statusFor(err error) int {
	var inferenceErr *core.InferenceError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrArtifactsUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &inferenceErr):
		f.logger.Error("Prediction failed", zap.String("stage", inferenceErr.Stage), zap.Error(err))
		return http.StatusInternalServerError
	default:
		f.logger.Error("Prediction failed", zap.Error(err))
		return http.StatusInternalServerError
	}
}

func (f *WebFrontend) basePage(message string) pageData {
	data := pageData{Message: message}
	if !f.service.Ready() {
		data.Unavailable = f.service.LoadError().Error()
	}
	return data
}

func (f *WebFrontend) render(c echo.Context, status int, data pageData) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	if err := f.templates.ExecuteTemplate(c.Response(), "index", data); err != nil {
		f.logger.Error("Failed to render page", zap.Error(err))
		return err
	}
	return nil
}
