package http

import (
	"encoding/base64"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Detector produces detection boxes for one JPEG frame. The dev server
// ships a canned implementation; a real inference backend would sit here.
type Detector func(image []byte) []domain.DetectionBox

// StubDetector reports a single fixed detection so the console has
// something to draw.
func StubDetector(image []byte) []domain.DetectionBox {
	if len(image) == 0 {
		return []domain.DetectionBox{}
	}
	return []domain.DetectionBox{
		{Label: "drone", Confidence: 0.92, X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5},
	}
}

type DroneHandler struct {
	drones   ports.DroneRepository
	users    ports.UserRepository
	history  ports.HistoryRepository
	detector Detector
}

func NewDroneHandler(
	drones ports.DroneRepository,
	users ports.UserRepository,
	history ports.HistoryRepository,
	detector Detector,
) *DroneHandler {
	if detector == nil {
		detector = StubDetector
	}
	return &DroneHandler{
		drones:   drones,
		users:    users,
		history:  history,
		detector: detector,
	}
}

func (h *DroneHandler) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	protected := router.Group("/", auth)
	{
		protected.POST("/droneInfo", h.DroneInfo)
		protected.POST("/alldroneInfo", h.AllDroneInfo)
		protected.POST("/createDrone", h.CreateDrone)
		protected.PUT("/updateDrone", h.UpdateDrone)
		protected.POST("/upload", h.Upload)

		protected.POST("/userInfo", h.Users)
		protected.POST("/createUser", h.CreateUser)
		protected.PUT("/updateUser", h.UpdateUser)
		protected.DELETE("/deleteUser", h.DeleteUser)
	}
}

func (h *DroneHandler) DroneInfo(c *gin.Context) {
	var req struct {
		UserID domain.UserID `json:"userId" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}

	drone, err := h.drones.GetByUser(c.Request.Context(), req.UserID)
	if err != nil {
		respondFail(c, 404, "drone not found")
		return
	}
	respondOK(c, drone)
}

func (h *DroneHandler) AllDroneInfo(c *gin.Context) {
	drones, err := h.drones.List(c.Request.Context())
	if err != nil {
		respondFail(c, 500, "failed to list drones")
		return
	}
	respondOK(c, drones)
}

func (h *DroneHandler) CreateDrone(c *gin.Context) {
	var drone domain.Drone
	if err := c.BindJSON(&drone); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}
	if drone.ID == "" {
		drone.ID = domain.DroneID(uuid.New().String())
	}
	if err := h.drones.Create(c.Request.Context(), &drone); err != nil {
		respondFail(c, 500, "failed to create drone")
		return
	}
	respondOK(c, drone)
}

func (h *DroneHandler) UpdateDrone(c *gin.Context) {
	var drone domain.Drone
	if err := c.BindJSON(&drone); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}
	if err := h.drones.Update(c.Request.Context(), &drone); err != nil {
		if err == domain.ErrDroneNotFound {
			respondFail(c, 404, "drone not found")
			return
		}
		respondFail(c, 500, "failed to update drone")
		return
	}
	respondOK(c, nil)
}

// Upload accepts one base64-encoded frame, stores it as the user's
// latest image, and returns the detections plus the annotated image.
func (h *DroneHandler) Upload(c *gin.Context) {
	var req domain.UploadRequest
	if err := c.BindJSON(&req); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}
	if req.UserID == "" || req.Image == "" {
		respondFail(c, 400, "userId and image required")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondFail(c, 400, "image is not valid base64")
		return
	}

	if _, err := h.history.PutLatest(c.Request.Context(), req.UserID, raw); err != nil {
		respondFail(c, 500, "failed to store image")
		return
	}

	respondOK(c, domain.UploadResult{
		Boxes: h.detector(raw),
		Image: req.Image,
	})
}

func (h *DroneHandler) Users(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondFail(c, 500, "failed to list users")
		return
	}
	respondOK(c, users)
}

func (h *DroneHandler) CreateUser(c *gin.Context) {
	var req struct {
		domain.User
		Password string `json:"password"`
	}
	if err := c.BindJSON(&req); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondFail(c, 400, "username and password required")
		return
	}
	if req.ID == "" {
		req.ID = domain.UserID(uuid.New().String())
	}
	if _, err := domain.ParseRole(string(req.Role)); err != nil {
		req.Role = domain.RoleUser
	}

	user := req.User
	if err := h.users.Create(c.Request.Context(), &user, req.Password); err != nil {
		if err == domain.ErrUserExists {
			respondFail(c, 409, "username already taken")
			return
		}
		respondFail(c, 500, "failed to create user")
		return
	}
	respondOK(c, user)
}

func (h *DroneHandler) UpdateUser(c *gin.Context) {
	var user domain.User
	if err := c.BindJSON(&user); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}
	if err := h.users.Update(c.Request.Context(), &user); err != nil {
		if err == domain.ErrUserNotFound {
			respondFail(c, 404, "user not found")
			return
		}
		respondFail(c, 500, "failed to update user")
		return
	}
	respondOK(c, nil)
}

func (h *DroneHandler) DeleteUser(c *gin.Context) {
	var req struct {
		UserID domain.UserID `json:"userId" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}
	if err := h.users.Delete(c.Request.Context(), req.UserID); err != nil {
		if err == domain.ErrUserNotFound {
			respondFail(c, 404, "user not found")
			return
		}
		respondFail(c, 500, "failed to delete user")
		return
	}
	respondOK(c, nil)
}
