package http

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// InferenceHandler serves the tokenless inference surface: prediction,
// the latest frame per user, and the image history.
type InferenceHandler struct {
	history  ports.HistoryRepository
	detector Detector
}

func NewInferenceHandler(history ports.HistoryRepository, detector Detector) *InferenceHandler {
	if detector == nil {
		detector = StubDetector
	}
	return &InferenceHandler{
		history:  history,
		detector: detector,
	}
}

func (h *InferenceHandler) SetupRoutes(router *gin.Engine) {
	router.POST("/predict", h.Predict)
	router.GET("/latest_image/:userId", h.LatestImage)
	router.GET("/get_image_history", h.ImageHistory)
	router.POST("/delete_image", h.DeleteImage)
}

func (h *InferenceHandler) Predict(c *gin.Context) {
	var req domain.PredictRequest
	if err := c.BindJSON(&req); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondFail(c, 400, "image is not valid base64")
		return
	}

	respondOK(c, domain.PredictResult{Boxes: h.detector(raw)})
}

// LatestImage returns the raw frame bytes, not an envelope. A missing
// frame is a plain 404 so clients can poll without special casing.
func (h *InferenceHandler) LatestImage(c *gin.Context) {
	userID := domain.UserID(c.Param("userId"))

	image, err := h.history.Latest(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", image)
}

func (h *InferenceHandler) ImageHistory(c *gin.Context) {
	userID := domain.UserID(c.Query("userId"))
	if userID == "" {
		respondFail(c, 400, "userId required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondFail(c, 400, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.history.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondFail(c, 500, "failed to read image history")
		return
	}
	respondOK(c, records)
}

func (h *InferenceHandler) DeleteImage(c *gin.Context) {
	var req struct {
		UserID  domain.UserID `json:"userId" binding:"required"`
		ImageID string        `json:"imageId" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}

	if err := h.history.Delete(c.Request.Context(), req.UserID, req.ImageID); err != nil {
		if err == domain.ErrImageNotFound {
			respondFail(c, 404, "image not found")
			return
		}
		respondFail(c, 500, "failed to delete image")
		return
	}
	respondOK(c, nil)
}
