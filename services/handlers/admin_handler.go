package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/shared"
)

type AdminHandler struct {
	rateLimitSvc RateLimitServiceInterface
}

func NewAdminHandler(rateLimitSvc RateLimitServiceInterface) *AdminHandler {
	return &AdminHandler{
		rateLimitSvc: rateLimitSvc,
	}
}

// @Summary Rate limit statistics (Admin)
// @Description Configured surfaces and, for the in-memory backend, live entry counts
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Success 200 {object} shared.Response{data=dto.RateLimitStatsResponse}
// @Router /api/v1/admin/rate-limits [get]
func (h *AdminHandler) GetRateLimitStats(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Rate limit statistics retrieved", h.rateLimitSvc.Stats())
}

// @Summary Reset rate limit (Admin)
// @Description Clears the window and any block for an identifier on one surface
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param request body dto.RateLimitTargetRequest true "Surface and identifier"
// @Success 200 {object} shared.Response
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/v1/admin/rate-limits/reset [post]
func (h *AdminHandler) ResetRateLimit(c *fiber.Ctx) error {
	req, err := parseTarget(c)
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	if err := h.rateLimitSvc.ResetRateLimit(c.UserContext(), req.Surface, req.Identifier); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Rate limit reset", nil)
}

// @Summary Unblock identifier (Admin)
// @Description Lifts a DDoS block while keeping the current window count
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param request body dto.RateLimitTargetRequest true "Surface and identifier"
// @Success 200 {object} shared.Response
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/v1/admin/rate-limits/unblock [post]
func (h *AdminHandler) UnblockIdentifier(c *fiber.Ctx) error {
	req, err := parseTarget(c)
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	if err := h.rateLimitSvc.UnblockIdentifier(c.UserContext(), req.Surface, req.Identifier); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Identifier unblocked", nil)
}

// parseTarget writes the validation response itself and returns a nil
// request when the body is rejected.
func parseTarget(c *fiber.Ctx) (*dto.RateLimitTargetRequest, error) {
	var req dto.RateLimitTargetRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.CreateValidationErrorResponse(err))
	}
	return &req, nil
}
