// Package httpapi maps multipart uploads onto the analysis pipeline and
// the resulting reports onto the JSON response contract.
package httpapi

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/kotonoha/talktrend/internal/config"
	"github.com/kotonoha/talktrend/pkg/talktrend"
	"github.com/kotonoha/talktrend/pkg/talktrend/count"
	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
)

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	app      *fiber.App
	analyzer *talktrend.Analyzer
	demo     *DemoService
	cfg      *config.Config
	log      zerolog.Logger
}

// NewServer wires handlers and middleware.
func NewServer(cfg *config.Config, analyzer *talktrend.Analyzer, demo *DemoService, log zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		BodyLimit:             cfg.MaxFileSizeBytes() + 1024*1024, // headroom for multipart framing
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          60 * time.Second,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
	}))

	srv := &Server{app: app, analyzer: analyzer, demo: demo, cfg: cfg, log: log}
	srv.registerRoutes()
	return srv
}

// Listen serves HTTP traffic on the configured address.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)

	api := s.app.Group("/api/v1")
	api.Get("/health", s.handleHealth)
	api.Post("/analyze", s.handleAnalyze)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "app": s.cfg.AppName})
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	if filepath.Ext(fh.Filename) != ".txt" {
		return badRequest(c, "invalid file type, a .txt export is required")
	}

	if s.demo.Matches(fh.Filename) {
		s.log.Info().Str("file", fh.Filename).Msg("serving demo response")
		data, err := s.demo.Response()
		if err != nil {
			s.log.Error().Err(err).Msg("demo response unavailable")
			return internalError(c)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(data)
	}

	if fh.Size == 0 {
		return badRequest(c, "uploaded file is empty")
	}
	if fh.Size > int64(s.cfg.MaxFileSizeBytes()) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(errorResponse{
			Status: "error",
			Detail: "file too large, limit is " + strconv.Itoa(s.cfg.MaxFileSizeMB) + "MB",
		})
	}

	f, err := fh.Open()
	if err != nil {
		s.log.Error().Err(err).Msg("open upload")
		return internalError(c)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		s.log.Error().Err(err).Msg("read upload")
		return internalError(c)
	}
	if !utf8.Valid(content) {
		return badRequest(c, "invalid file encoding, UTF-8 is required")
	}

	opts, err := s.requestOptions(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	rep, err := s.analyzer.Analyze(string(content), opts)
	if err != nil {
		if errors.Is(err, internalerr.ErrInvalidInput) {
			return badRequest(c, err.Error())
		}
		s.log.Error().Err(err).Msg("analysis failed")
		return internalError(c)
	}

	s.log.Info().
		Str("report", rep.ID).
		Int("messages", rep.TotalMessages).
		Int("authors", rep.TotalAuthors).
		Msg("analysis complete")
	return c.JSON(toResponse(rep))
}

// requestOptions maps form fields onto analysis options, falling back to
// the configured defaults.
func (s *Server) requestOptions(c *fiber.Ctx) (talktrend.Options, error) {
	opts := talktrend.Options{
		TopN:             s.cfg.DefaultTopN,
		MinWordLength:    s.cfg.MinWordLength,
		MinMessageLength: s.cfg.MinMessageLength,
		MinMessageCount:  s.cfg.MinMessageCount,
		CountMode:        count.ModeExact,
		PerAuthor:        true,
	}

	var err error
	if opts.TopN, err = formInt(c, "top_n", opts.TopN); err != nil {
		return opts, err
	}
	if opts.MinWordLength, err = formInt(c, "min_word_length", opts.MinWordLength); err != nil {
		return opts, err
	}
	if opts.MaxWordLength, err = formInt(c, "max_word_length", 0); err != nil {
		return opts, err
	}
	if opts.MinMessageLength, err = formInt(c, "min_message_length", opts.MinMessageLength); err != nil {
		return opts, err
	}
	if opts.MaxMessageLength, err = formInt(c, "max_message_length", 0); err != nil {
		return opts, err
	}
	if opts.MinMessageCount, err = formInt(c, "min_message_count", opts.MinMessageCount); err != nil {
		return opts, err
	}

	if v := strings.TrimSpace(c.FormValue("exclude_parts")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				opts.ExcludePOS = append(opts.ExcludePOS, p)
			}
		}
	}
	if v := strings.TrimSpace(c.FormValue("count_mode")); v == "partial" {
		opts.CountMode = count.ModeExactAndPartial
	}

	if opts.PeriodStart, err = formDate(c, "start_date"); err != nil {
		return opts, err
	}
	if opts.PeriodEnd, err = formDate(c, "end_date"); err != nil {
		return opts, err
	}
	return opts, nil
}

func formInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

func formDate(c *fiber.Ctx, key string) (time.Time, error) {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(time.DateTime, v, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New(key + " must be YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
}

func badRequest(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Status: "error", Detail: detail})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
		Status: "error",
		Detail: "internal server error",
	})
}
