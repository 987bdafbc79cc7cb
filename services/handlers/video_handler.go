package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/shared"
)

type VideoHandler struct {
	videoSvc VideoServiceInterface
}

func NewVideoHandler(videoSvc VideoServiceInterface) *VideoHandler {
	return &VideoHandler{
		videoSvc: videoSvc,
	}
}

// @Summary List videos
// @Description Published stock footage, newest first
// @Tags videos
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} shared.Response{data=dto.VideoListResponse}
// @Router /api/v1/videos [get]
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	videos, err := h.videoSvc.ListVideos(c.UserContext(), page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Videos retrieved successfully", videos)
}

// @Summary Get video
// @Tags videos
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} shared.Response{data=dto.VideoResponse}
// @Failure 404 {object} shared.Response
// @Router /api/v1/videos/{videoId} [get]
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	videoID, err := videoIDParam(c)
	if err != nil {
		return err
	}

	video, err := h.videoSvc.GetVideo(c.UserContext(), videoID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Video retrieved successfully", video)
}

// @Summary Upload video (Admin)
// @Description Upload a stock footage file (Admin only)
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param video formData file true "Video file (MP4, MOV, WEBM, MKV, AVI)"
// @Success 201 {object} shared.Response{data=dto.VideoUploadResponse}
// @Router /api/v1/admin/videos [post]
func (h *VideoHandler) UploadVideo(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	var req dto.VideoUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid upload request")
	}

	file, err := c.FormFile("video")
	if err != nil {
		return shared.NewBadRequestError(err, "No video file provided")
	}

	response, err := h.videoSvc.UploadVideo(c.UserContext(), userID, req, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Video uploaded successfully", response)
}

// @Summary Delete video (Admin)
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param videoId path string true "Video ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/videos/{videoId} [delete]
func (h *VideoHandler) DeleteVideo(c *fiber.Ctx) error {
	videoID, err := videoIDParam(c)
	if err != nil {
		return err
	}

	if err := h.videoSvc.DeleteVideo(c.UserContext(), videoID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Video deleted successfully", nil)
}

// @Summary Video statistics (Admin)
// @Description Catalogue size, storage and download totals (Admin only)
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Success 200 {object} shared.Response{data=map[string]interface{}}
// @Router /api/v1/admin/videos/stats [get]
func (h *VideoHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.videoSvc.GetStatistics(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Statistics retrieved successfully", stats)
}
