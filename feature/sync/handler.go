package sync

import (
	"errors"
	"net/url"

	"cvsync/core/logger"
	"cvsync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs and reports.
type Handler struct {
	service *Service
	archive *Archive
}

// NewHandler creates a new HTTP handler. archive may be nil when report
// archiving is disabled.
func NewHandler(service *Service, archive *Archive) *Handler {
	return &Handler{service: service, archive: archive}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/reports", h.HandleListReports)
	group.Get("/reports/:direction/:id", h.HandleGetReport)
	group.Get("/lookup/:side/:type/:key", h.HandleLookup)
	group.Post("/:direction", h.HandleRun)
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleRun runs one sync.
// @Summary Run Sync
// @Description Reconcile Nautobot and CloudVision in one direction. Concurrent requests for the same direction and mode share one run.
// @Tags sync
// @Produce json
// @Param direction path string true "Direction" Enums(from-cloudvision, to-cloudvision)
// @Param dry_run query bool false "Compute the diff without applying it"
// @Success 200 {object} Report "Run report"
// @Failure 400 {object} map[string]string "Unknown direction"
// @Failure 502 {object} map[string]string "A source could not be loaded"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/{direction} [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	dir, err := ParseDirection(c.Params("direction"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	report, err := h.service.Run(c.UserContext(), dir, RunOptions{DryRun: c.QueryBool("dry_run", false)})
	if err != nil {
		l.Error("Sync failed", zap.String("direction", string(dir)), zap.Error(err))
		if errors.Is(err, reconcile.ErrLoad) {
			return errorJSON(c, fiber.StatusBadGateway, err)
		}
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(report)
}

// HandleListReports lists archived reports.
// @Summary List Reports
// @Description List archived run reports, newest first.
// @Tags sync
// @Produce json
// @Param direction query string false "Only this direction" Enums(from-cloudvision, to-cloudvision)
// @Success 200 {array} ReportInfo "Reports"
// @Failure 400 {object} map[string]string "Unknown direction"
// @Failure 404 {object} map[string]string "Archiving disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	if h.archive == nil {
		return errorJSON(c, fiber.StatusNotFound, errors.New("report archive is disabled"))
	}
	dirs := Directions()
	if q := c.Query("direction"); q != "" {
		dir, err := ParseDirection(q)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
		dirs = []Direction{dir}
	}

	out := []ReportInfo{}
	for _, dir := range dirs {
		infos, err := h.archive.List(c.UserContext(), dir)
		if err != nil {
			logger.WithRayID(h.service.logger, c).Error("Listing reports failed", zap.Error(err))
			return errorJSON(c, fiber.StatusInternalServerError, err)
		}
		out = append(out, infos...)
	}
	return c.JSON(out)
}

// HandleGetReport returns one archived report.
// @Summary Get Report
// @Tags sync
// @Produce json
// @Param direction path string true "Direction" Enums(from-cloudvision, to-cloudvision)
// @Param id path string true "Report ID"
// @Success 200 {object} Report "Report"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/reports/{direction}/{id} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	if h.archive == nil {
		return errorJSON(c, fiber.StatusNotFound, errors.New("report archive is disabled"))
	}
	dir, err := ParseDirection(c.Params("direction"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	report, err := h.archive.Get(c.UserContext(), dir, c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return errorJSON(c, fiber.StatusNotFound, err)
		}
		logger.WithRayID(h.service.logger, c).Error("Reading report failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(report)
}

// HandleLookup resolves a record identity to the object behind it.
// @Summary Lookup Object
// @Description Resolve a record type and key to the Nautobot row or CloudVision object it identifies.
// @Tags sync
// @Produce json
// @Param side path string true "System" Enums(nautobot, cloudvision)
// @Param type path string true "Record type" Enums(device, cf, port, tag, tag_assignment)
// @Param key path string true "Record key, e.g. 'leaf1' or 'arista_bgp__leaf1'"
// @Success 200 {object} map[string]interface{} "Object"
// @Failure 400 {object} map[string]string "Unknown side"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 502 {object} map[string]string "CloudVision unreachable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/lookup/{side}/{type}/{key} [get]
func (h *Handler) HandleLookup(c *fiber.Ctx) error {
	side := c.Params("side")
	if side != SideNautobot && side != SideCloudVision {
		return errorJSON(c, fiber.StatusBadRequest, errors.New("side must be nautobot or cloudvision"))
	}
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	obj, err := h.service.Lookup(c.UserContext(), side, reconcile.Type(c.Params("type")), reconcile.Key(key))
	switch {
	case err == nil:
		return c.JSON(obj)
	case errors.Is(err, reconcile.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, err)
	case errors.Is(err, reconcile.ErrLoad):
		return errorJSON(c, fiber.StatusBadGateway, err)
	}
	logger.WithRayID(h.service.logger, c).Error("Lookup failed", zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, err)
}
