// Package proxy exposes the IMAP session manager over HTTP for the TUI. The
// route shapes and status codes are part of the client contract: 400 for
// missing parameters, 401 for a missing session, 500 for upstream failures.
package proxy

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"inboxguardian/internal/imapsession"
	"inboxguardian/internal/model"
)

const ServerVersion = "1.0.0"

const defaultFetchLimit = 100

// MailboxService is the session-manager surface the routes need. The real
// implementation is *imapsession.Manager.
type MailboxService interface {
	Connect(email, appPassword string) error
	Disconnect(email string)
	IsConnected(email string) bool
	FetchEmails(email string, limit int) ([]model.Email, error)
	FetchEmailDetail(email, messageID string) (model.EmailDetail, error)
	TrashEmails(email string, messageIds []string) (model.TrashOutcome, error)
	SearchBySender(email, senderEmail string, limit int) ([]model.Email, error)
}

// Server wires the routes over a session manager.
type Server struct {
	svc MailboxService
	log logrus.FieldLogger
}

// NewApp builds the fiber application with all routes registered.
func NewApp(svc MailboxService, log logrus.FieldLogger) *fiber.App {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{svc: svc, log: log}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(fiberlog.New())

	app.Get("/api/health", s.handleHealth)

	yahoo := app.Group("/api/yahoo")
	yahoo.Post("/connect", s.handleConnect)
	yahoo.Get("/emails", s.handleFetchEmails)
	yahoo.Get("/email/:id", s.handleFetchEmailDetail)
	yahoo.Get("/search", s.handleSearch)
	yahoo.Post("/trash", s.handleTrash)
	yahoo.Post("/disconnect", s.handleDisconnect)
	yahoo.Get("/status", s.handleStatus)

	return app
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "inboxguardian-proxy",
		"version": ServerVersion,
	})
}

func (s *Server) handleConnect(c *fiber.Ctx) error {
	var body struct {
		Email       string `json:"email"`
		AppPassword string `json:"appPassword"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.AppPassword == "" {
		return fail(c, fiber.StatusBadRequest, "Email and app password are required")
	}

	s.log.WithField("email", imapsession.Identity(body.Email)).Info("connect request")
	if err := s.svc.Connect(body.Email, body.AppPassword); err != nil {
		s.log.WithError(err).Warn("connect failed")
		return fail(c, fiber.StatusUnauthorized, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "message": "Connected to Yahoo Mail"})
}

func (s *Server) handleFetchEmails(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return fail(c, fiber.StatusBadRequest, "Email parameter is required")
	}
	if !s.svc.IsConnected(email) {
		return fail(c, fiber.StatusUnauthorized, "Not connected. Please connect first.")
	}
	limit := c.QueryInt("limit", defaultFetchLimit)

	emails, err := s.svc.FetchEmails(email, limit)
	if err != nil {
		return s.upstreamError(c, err, "Failed to fetch emails")
	}
	if emails == nil {
		emails = []model.Email{}
	}
	return c.JSON(fiber.Map{"success": true, "emails": emails, "count": len(emails)})
}

func (s *Server) handleFetchEmailDetail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return fail(c, fiber.StatusBadRequest, "Email parameter is required")
	}
	messageID := c.Params("id")
	if messageID == "" {
		return fail(c, fiber.StatusBadRequest, "Message ID is required")
	}
	if !s.svc.IsConnected(email) {
		return fail(c, fiber.StatusUnauthorized, "Not connected. Please connect first.")
	}

	detail, err := s.svc.FetchEmailDetail(email, messageID)
	if err != nil {
		return s.upstreamError(c, err, "Failed to fetch email detail")
	}
	return c.JSON(fiber.Map{"success": true, "email": detail})
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	email := c.Query("email")
	sender := c.Query("sender")
	if email == "" || sender == "" {
		return fail(c, fiber.StatusBadRequest, "Email and sender parameters are required")
	}
	if !s.svc.IsConnected(email) {
		return fail(c, fiber.StatusUnauthorized, "Not connected. Please connect first.")
	}
	limit := c.QueryInt("limit", defaultFetchLimit)

	emails, err := s.svc.SearchBySender(email, sender, limit)
	if err != nil {
		return s.upstreamError(c, err, "Failed to search emails")
	}
	if emails == nil {
		emails = []model.Email{}
	}
	return c.JSON(fiber.Map{"success": true, "emails": emails, "count": len(emails)})
}

func (s *Server) handleTrash(c *fiber.Ctx) error {
	var body struct {
		Email      string   `json:"email"`
		MessageIDs []string `json:"messageIds"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.MessageIDs == nil {
		return fail(c, fiber.StatusBadRequest, "Email and messageIds array are required")
	}
	if !s.svc.IsConnected(body.Email) {
		return fail(c, fiber.StatusUnauthorized, "Not connected. Please connect first.")
	}

	s.log.WithFields(logrus.Fields{
		"email": imapsession.Identity(body.Email),
		"count": len(body.MessageIDs),
	}).Info("trash request")

	outcome, err := s.svc.TrashEmails(body.Email, body.MessageIDs)
	if err != nil {
		if errors.Is(err, imapsession.ErrNoSession) {
			return fail(c, fiber.StatusUnauthorized, "Not connected. Please connect first.")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":      false,
			"error":        err.Error(),
			"trashedCount": 0,
			"failedIds":    []string{},
		})
	}
	if outcome.FailedIDs == nil {
		outcome.FailedIDs = []string{}
	}
	return c.JSON(fiber.Map{
		"success":      outcome.Success,
		"trashedCount": outcome.TrashedCount,
		"failedIds":    outcome.FailedIDs,
	})
}

func (s *Server) handleDisconnect(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return fail(c, fiber.StatusBadRequest, "Email is required")
	}
	s.svc.Disconnect(body.Email)
	return c.JSON(fiber.Map{"success": true, "message": "Disconnected from Yahoo Mail"})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return fail(c, fiber.StatusBadRequest, "Email parameter is required")
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"connected": s.svc.IsConnected(email),
		"email":     email,
	})
}

func (s *Server) upstreamError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, imapsession.ErrNoSession) {
		return fail(c, fiber.StatusUnauthorized, "Not connected. Please connect first.")
	}
	s.log.WithError(err).Error(fallback)
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return fail(c, fiber.StatusInternalServerError, msg)
}
