package records

import (
	"context"
	"errors"
	"time"

	"record-sync/core/journal"
	"record-sync/core/logger"
	"record-sync/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for record sets.
type Handler struct {
	service *Service
	timeout time.Duration
}

// NewHandler creates a new HTTP handler. A zero timeout leaves runs unbounded.
func NewHandler(service *Service, timeout time.Duration) *Handler {
	return &Handler{service: service, timeout: timeout}
}

// RegisterRoutes registers the record set routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/records")
	group.Get("/", h.HandleListSets)
	group.Post("/:set/sync", h.HandleSync)
	group.Get("/:set/runs", h.HandleListRuns)
	group.Get("/:set/runs/:id", h.HandleGetRun)
}

// HandleListSets lists the record sets that have a snapshot.
func (h *Handler) HandleListSets(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	sets, err := h.service.Sets(c.UserContext())
	if err != nil {
		l.Error("Listing record sets failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sets": sets})
}

// HandleSync synchronizes a record set with its target file.
// Query: dry_run=true reports without writing.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	set := c.Params("set")
	dryRun := c.QueryBool("dry_run", false)

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	l.Info("Synchronizing record set", zap.String("set", set), zap.Bool("dry_run", dryRun))
	report, err := h.service.Sync(ctx, set, Options{DryRun: dryRun})
	if err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, ErrInvalidSet):
			status = fiber.StatusBadRequest
		case errors.Is(err, storage.ErrObjectNotFound):
			status = fiber.StatusNotFound
		}
		l.Error("Synchronization failed", zap.String("set", set), zap.Error(err))

		body := fiber.Map{"error": err.Error()}
		if report != nil {
			body["report"] = report
		}
		return c.Status(status).JSON(body)
	}

	return c.JSON(report)
}

// HandleListRuns lists the journaled runs of a set.
// Query: limit=n caps the number of runs.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.Runs(c.UserContext(), c.Params("set"), c.QueryInt("limit", 0))
	if err != nil {
		if errors.Is(err, ErrJournalDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Listing runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// HandleGetRun returns one journaled run with its decisions.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	run, decisions, err := h.service.Run(c.UserContext(), c.Params("id"))
	switch {
	case errors.Is(err, ErrJournalDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, journal.ErrRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Loading run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if run.RecordSet != c.Params("set") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run does not belong to this set"})
	}
	return c.JSON(fiber.Map{"run": run, "decisions": decisions})
}
