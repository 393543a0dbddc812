package handlers

import (
	"mime"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/middleware"
	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
	"alfredoptarigan/cv-project/internal/services"
)

const (
	baseLayout       = "layouts/base"
	cvPageSize       = 10
	skillPreviewSize = 3
)

// PageHandler renders the server-side HTML pages and the PDF download.
type PageHandler struct {
	cvRepo   repositories.CVRepository
	logRepo  repositories.RequestLogRepository
	renderer services.PDFRenderer
	log      *zap.Logger
}

func NewPageHandler(
	cvRepo repositories.CVRepository,
	logRepo repositories.RequestLogRepository,
	renderer services.PDFRenderer,
	log *zap.Logger,
) *PageHandler {
	return &PageHandler{
		cvRepo:   cvRepo,
		logRepo:  logRepo,
		renderer: renderer,
		log:      log,
	}
}

type cvCard struct {
	ID            uint
	FullName      string
	Bio           string
	SkillsPreview []string
	CreatedAt     string
}

type pagination struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

func newPagination(page int, count int64, pageSize int) pagination {
	pages := totalPages(count, pageSize)
	return pagination{
		Page:       page,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
}

// HandleCVList handles GET /
func (h *PageHandler) HandleCVList(c *fiber.Ctx) error {
	page := pageParam(c)

	cvs, total, err := h.cvRepo.List(page, cvPageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list CVs")
	}
	if page > totalPages(total, cvPageSize) {
		return h.renderNotFound(c)
	}

	cards := make([]cvCard, 0, len(cvs))
	for i := range cvs {
		cards = append(cards, cvCard{
			ID:            cvs[i].ID,
			FullName:      cvs[i].FullName(),
			Bio:           cvs[i].Bio,
			SkillsPreview: cvs[i].SkillsPreview(skillPreviewSize),
			CreatedAt:     cvs[i].CreatedAt.Format("Jan 2, 2006"),
		})
	}

	return c.Render("cv_list", fiber.Map{
		"Title":      "CV List",
		"CVs":        cards,
		"Total":      total,
		"Pagination": newPagination(page, total, cvPageSize),
		"User":       middleware.CurrentUser(c),
	}, baseLayout)
}

// HandleCVDetail handles GET /cv/:id/
func (h *PageHandler) HandleCVDetail(c *fiber.Ctx) error {
	cv, err := h.findCV(c)
	if err != nil {
		return err
	}
	if cv == nil {
		return h.renderNotFound(c)
	}

	return c.Render("cv_detail", fiber.Map{
		"Title":     cv.FullName(),
		"CV":        cv,
		"FullName":  cv.FullName(),
		"Skills":    models.SplitSkills(cv.Skills, 0),
		"Required":  services.LanguageCatalog()["required"],
		"Popular":   services.LanguageCatalog()["popular"],
		"Languages": services.Languages(),
		"User":      middleware.CurrentUser(c),
	}, baseLayout)
}

// HandlePDF handles GET /cv/:id/pdf/
func (h *PageHandler) HandlePDF(c *fiber.Ctx) error {
	cv, err := h.findCV(c)
	if err != nil {
		return err
	}
	if cv == nil {
		return h.renderNotFound(c)
	}

	data, err := h.renderer.Render(cv)
	if err != nil {
		h.log.Error("failed to render cv pdf", zap.Uint("cv_id", cv.ID), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate PDF")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, attachmentDisposition(cv.FullName()+"_CV.pdf"))
	return c.Send(data)
}

// HandleRecentLogs handles GET /logs/
func (h *PageHandler) HandleRecentLogs(c *fiber.Ctx) error {
	logs, err := h.logRepo.ListRecent(recentLogsLimit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list request logs")
	}

	return c.Render("logs", fiber.Map{
		"Title": "Recent Requests",
		"Logs":  logs,
		"Limit": recentLogsLimit,
		"User":  middleware.CurrentUser(c),
	}, baseLayout)
}

// HandleAllLogs handles GET /logs/all/?page=
func (h *PageHandler) HandleAllLogs(c *fiber.Ctx) error {
	page := pageParam(c)

	logs, total, err := h.logRepo.ListPage(page, logsPageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list request logs")
	}
	if page > totalPages(total, logsPageSize) {
		return h.renderNotFound(c)
	}

	return c.Render("logs_all", fiber.Map{
		"Title":      "All Requests",
		"Logs":       logs,
		"Total":      total,
		"Pagination": newPagination(page, total, logsPageSize),
		"User":       middleware.CurrentUser(c),
	}, baseLayout)
}

func (h *PageHandler) findCV(c *fiber.Ctx) (*models.CV, error) {
	id, ok := parseID(c)
	if !ok {
		return nil, nil
	}
	cv, err := h.cvRepo.FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load CV")
	}
	return cv, nil
}

func (h *PageHandler) renderNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
		"Title":   "Not Found",
		"Code":    fiber.StatusNotFound,
		"Message": "The page you requested does not exist.",
	}, baseLayout)
}

// attachmentDisposition quotes the filename, switching to the RFC 2231 form
// for non-ASCII names.
func attachmentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
