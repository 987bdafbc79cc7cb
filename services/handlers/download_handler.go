package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/services/downloads"
	"github.com/lac-hong-legacy/footage_api/shared"
)

type DownloadHandler struct {
	downloadSvc DownloadServiceInterface
}

func NewDownloadHandler(downloadSvc DownloadServiceInterface) *DownloadHandler {
	return &DownloadHandler{
		downloadSvc: downloadSvc,
	}
}

// @Summary Get download usage
// @Description Current plan, usage and reset date for the caller's billing cycle
// @Tags downloads
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Bearer Token" default(Bearer <token>)
// @Success 200 {object} shared.Response{data=dto.DownloadUsage}
// @Failure 401 {object} shared.Response
// @Router /api/v1/downloads/usage [get]
func (h *DownloadHandler) GetUsage(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	usage, err := h.downloadSvc.GetUsage(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Usage retrieved successfully", usage)
}

// @Summary Get download history
// @Description Downloads counted against the caller's current billing cycle
// @Tags downloads
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Bearer Token" default(Bearer <token>)
// @Success 200 {object} shared.Response{data=dto.DownloadHistoryResponse}
// @Router /api/v1/downloads/history [get]
func (h *DownloadHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	history, err := h.downloadSvc.GetHistory(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "History retrieved successfully", history)
}

// @Summary Check download permission
// @Description Reports whether the caller may download the video and how close they are to their limit
// @Tags downloads
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Bearer Token" default(Bearer <token>)
// @Param videoId path string true "Video ID"
// @Success 200 {object} shared.Response{data=dto.DownloadPermission}
// @Failure 400 {object} shared.Response
// @Router /api/v1/downloads/{videoId}/permission [get]
func (h *DownloadHandler) CheckPermission(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}
	videoID, err := videoIDParam(c)
	if err != nil {
		return err
	}

	permission := h.downloadSvc.CheckPermission(c.UserContext(), userID, videoID)
	return shared.ResponseJSON(c, fiber.StatusOK, "Permission checked", permission)
}

// @Summary Download video
// @Description Records the download against the caller's quota and returns a short-lived URL. Re-downloads are free.
// @Tags downloads
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Bearer Token" default(Bearer <token>)
// @Param videoId path string true "Video ID"
// @Success 200 {object} shared.Response{data=dto.DownloadResult}
// @Failure 403 {object} shared.Response{data=dto.DownloadResult}
// @Failure 404 {object} shared.Response{data=dto.DownloadResult}
// @Failure 429 {object} shared.Response{data=dto.RateLimitInfo}
// @Failure 503 {object} shared.Response{data=dto.DownloadResult}
// @Router /api/v1/downloads/{videoId} [post]
func (h *DownloadHandler) Download(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}
	videoID, err := videoIDParam(c)
	if err != nil {
		return err
	}

	result := h.downloadSvc.Download(c.UserContext(), userID, videoID)
	if result.Success {
		return shared.ResponseJSON(c, fiber.StatusOK, "Download ready", result)
	}
	return shared.ResponseJSON(c, downloadFailureStatus(result), result.Error, result)
}

func downloadFailureStatus(result dto.DownloadResult) int {
	switch {
	case result.Error == downloads.MsgVideoNotFound:
		return fiber.StatusNotFound
	case result.Usage != nil && !result.Usage.CanDownload:
		return fiber.StatusForbidden
	default:
		return fiber.StatusServiceUnavailable
	}
}

// @Summary Change subscription plan (Admin)
// @Description Applied on behalf of billing. Upgrades apply immediately, downgrades at the next cycle reset
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param userId path string true "User ID"
// @Param request body dto.ChangePlanRequest true "Target plan"
// @Success 200 {object} shared.Response{data=dto.PlanChangeResult}
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 403 {object} shared.Response
// @Router /api/v1/admin/subscriptions/{userId}/plan [put]
func (h *DownloadHandler) ChangePlan(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if err := dto.ValidateID(userID); err != nil {
		return shared.NewBadRequestError(err, "Invalid user ID")
	}

	var req dto.ChangePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	result, err := h.downloadSvc.ChangePlan(c.UserContext(), userID, req.PlanID)
	if err != nil {
		return err
	}

	message := "Plan changed successfully"
	switch {
	case !result.Changed:
		message = "Plan unchanged"
	case result.EffectiveDate == shared.EffectiveNextCycle:
		message = "Plan change scheduled for the next billing cycle"
	}
	return shared.ResponseJSON(c, fiber.StatusOK, message, result)
}

// @Summary List plan changes
// @Description Most recent plan changes requested by the caller
// @Tags subscription
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Bearer Token" default(Bearer <token>)
// @Success 200 {object} shared.Response{data=[]dto.PlanChangeRecord}
// @Router /api/v1/subscription/plan-changes [get]
func (h *DownloadHandler) GetPlanChanges(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	changes, err := h.downloadSvc.GetPlanChanges(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Plan changes retrieved successfully", changes)
}
