package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
	"github.com/rgpv-tpo/placement-api/pkg/spreadsheet"
)

// AdminStudentHandler wires the admin student filter and export endpoints.
type AdminStudentHandler struct {
	service service.AdminStudentService
	logger  zerolog.Logger
}

// NewAdminStudentHandler constructs the handler.
func NewAdminStudentHandler(service service.AdminStudentService, logger zerolog.Logger) *AdminStudentHandler {
	return &AdminStudentHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_student_handler").Logger(),
	}
}

// Register attaches student admin routes to the router group.
func (h *AdminStudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/export", h.export)
}

func (h *AdminStudentHandler) list(c *fiber.Ctx) error {
	req, err := h.filterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}

	req.Page = page
	req.PageSize = pageSize

	response, err := h.service.Filter(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendErrorDetails(c, fiber.StatusBadRequest, "invalid filters", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to filter students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to filter students")
	}

	return utils.SendSuccess(c, "students retrieved", response)
}

// export streams the filtered population as an XLSX workbook. The same filter
// parameters as the list endpoint apply; pagination does not.
func (h *AdminStudentHandler) export(c *fiber.Ctx) error {
	req, err := h.filterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	content, filename, err := h.service.Export(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendErrorDetails(c, fiber.StatusBadRequest, "invalid filters", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export students")
	}

	c.Set(fiber.HeaderContentType, spreadsheet.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}

func (h *AdminStudentHandler) filterFromQuery(c *fiber.Ctx) (dto.AdminStudentFilterRequest, error) {
	req := dto.AdminStudentFilterRequest{
		EnrollmentNo: c.Query("enrollment_no"),
		Department:   c.Query("department"),
		Name:         c.Query("name"),
		Sort:         c.Query("sort"),
	}

	minCGPA, err := parseQueryFloat(c, "min_cgpa")
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid min_cgpa")
	}
	req.MinCGPA = minCGPA

	minTenth, err := parseQueryFloat(c, "min_tenth_percent")
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid min_tenth_percent")
	}
	req.MinTenthPercent = minTenth

	minTwelfth, err := parseQueryFloat(c, "min_twelfth_percent")
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid min_twelfth_percent")
	}
	req.MinTwelfthPercent = minTwelfth

	return req, nil
}
