package maintenance

import (
	"errors"
	"fmt"
	"slices"

	"site-janitor/core/deleter"
	"site-janitor/core/logger"
	"site-janitor/core/reconcile"
	"site-janitor/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for maintenance operations.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the maintenance routes on the admin group.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/backup", h.HandleBackup)
	app.Get("/site-ids", h.HandleSiteIDs)

	scan := app.Group("/scan")
	scan.Post("/:policy", h.HandleScan)
	scan.Get("/:policy", h.HandleSnapshot)

	app.Post("/delete/:policy", h.HandleDelete)
}

type deleteRequest struct {
	Paths   []string `json:"paths"`
	Confirm bool     `json:"confirm"`
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleBackup streams a zip of every stored object and every backup table.
func (h *Handler) HandleBackup(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("Starting backup export")

	archive, err := h.service.Backup(c.UserContext())
	if err != nil {
		l.Error("Backup export failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, archive.Filename))
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(archive.Data)
}

// HandleSiteIDs lists every site id with its owner.
func (h *Handler) HandleSiteIDs(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	sites, err := h.service.Sites(c.UserContext())
	if err != nil {
		l.Error("Site listing failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"sites": sites})
}

// HandleScan runs a fresh scan of the policy in the path.
//
// Query parameters select the presentation order: sort=path|recent for
// objects, sort=<column> and dir=asc|desc for folders.
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	policy, err := reconcile.ParsePolicy(c.Params("policy"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, err)
	}
	order, err := parseOrder(c, policy)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	l.Info("Starting scan", zap.String("policy", string(policy)))
	report, err := h.service.Scan(c.UserContext(), policy)
	if err != nil {
		l.Error("Scan failed", zap.String("policy", string(policy)), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(order.apply(report))
}

// HandleSnapshot returns the state and latest report of a policy.
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	policy, err := reconcile.ParsePolicy(c.Params("policy"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, err)
	}
	order, err := parseOrder(c, policy)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	snap, err := h.service.Snapshot(policy)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	snap.Report = order.apply(snap.Report)
	return c.JSON(snap)
}

// HandleDelete deletes selected candidates of the policy in the path.
//
// The body must set confirm to true unless dry_run is set in the query.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	policy, err := reconcile.ParsePolicy(c.Params("policy"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, err)
	}

	var req deleteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
	}

	dryRun := utils.ToBool(c.Query("dry_run"))
	if !req.Confirm && !dryRun {
		return errorJSON(c, fiber.StatusBadRequest, errors.New("deletion must be confirmed"))
	}

	result, err := h.service.Delete(c.UserContext(), policy, req.Paths, dryRun)
	if err != nil {
		var unknown *reconcile.UnknownPathsError
		var chunkErr *deleter.ChunkError
		switch {
		case errors.Is(err, ErrNotReady):
			return errorJSON(c, fiber.StatusConflict, err)
		case errors.As(err, &unknown):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "paths": unknown.Paths})
		case errors.Is(err, reconcile.ErrEmptySelection):
			return errorJSON(c, fiber.StatusBadRequest, err)
		case errors.As(err, &chunkErr):
			l.Error("Deletion stopped", zap.Int("chunk", chunkErr.Index), zap.Int("chunks", chunkErr.Total), zap.Error(err))
			return errorJSON(c, fiber.StatusInternalServerError, err)
		default:
			l.Error("Deletion failed", zap.String("policy", string(policy)), zap.Error(err))
			return errorJSON(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.JSON(result)
}

// reportOrder is a presentation order requested by the caller.
type reportOrder struct {
	view   reconcile.ObjectView
	folder reconcile.FolderSortField
	desc   bool
}

func parseOrder(c *fiber.Ctx, policy reconcile.Policy) (reportOrder, error) {
	var o reportOrder
	var err error
	if policy == reconcile.PolicyObjects {
		o.view, err = reconcile.ParseObjectView(c.Query("sort"))
		return o, err
	}
	o.folder, err = reconcile.ParseFolderSortField(c.Query("sort"))
	o.desc = c.Query("dir") == "desc"
	return o, err
}

// apply returns a copy of report sorted in this order. The stored report is
// shared between callers and is never reordered.
func (o reportOrder) apply(report *reconcile.Report) *reconcile.Report {
	if report == nil {
		return nil
	}
	out := *report
	out.Matched = slices.Clone(report.Matched)
	out.Missing = slices.Clone(report.Missing)
	out.Redundant = slices.Clone(report.Redundant)

	reconcile.SortFolders(out.Matched, o.folder, o.desc)
	reconcile.SortFolders(out.Missing, o.folder, o.desc)
	reconcile.SortObjects(out.Redundant, o.view)
	return &out
}
