package http

import (
	"net/http"
	"time"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
	"droneview/internal/core/services"
	apperrors "droneview/pkg/errors"
	"droneview/pkg/frameres"

	"github.com/gin-gonic/gin"
)

// backendStatus maps a command-channel error onto an HTTP status for the
// viewer. Transport errors surface as 502; anything untyped too.
func backendStatus(err error) int {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr.HTTPStatus
	}
	return http.StatusBadGateway
}

// ConsoleHandler is the local viewer surface of the operator console.
// It exposes the client-side state over HTTP so a browser or curl can
// drive the session, navigation, stream and command channel.
type ConsoleHandler struct {
	store     ports.CredentialStore
	sessions  ports.SessionAuthority
	navigator *services.Navigator
	stream    ports.StreamController
	commands  *services.CommandService
	frames    *frameres.Registry
	interval  time.Duration
}

func NewConsoleHandler(
	store ports.CredentialStore,
	sessions ports.SessionAuthority,
	navigator *services.Navigator,
	stream ports.StreamController,
	commands *services.CommandService,
	frames *frameres.Registry,
	interval time.Duration,
) *ConsoleHandler {
	return &ConsoleHandler{
		store:     store,
		sessions:  sessions,
		navigator: navigator,
		stream:    stream,
		commands:  commands,
		frames:    frames,
		interval:  interval,
	}
}

func (h *ConsoleHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/state", h.State)
	router.POST("/navigate", h.Navigate)

	session := router.Group("/session")
	{
		session.POST("/login", h.Login)
		session.POST("/register", h.Register)
		session.POST("/logout", h.Logout)
	}

	stream := router.Group("/stream")
	{
		stream.POST("/start", h.StreamStart)
		stream.POST("/stop", h.StreamStop)
		stream.POST("/reset", h.StreamReset)
	}

	router.GET("/frame/current", h.CurrentFrame)

	view := router.Group("/view")
	{
		view.GET("/", h.View)
		view.POST("/refresh/drone", h.RefreshDrone)
		view.POST("/refresh/drones", h.RefreshAllDrones)
		view.POST("/refresh/users", h.RefreshUsers)
		view.POST("/refresh/history", h.RefreshHistory)
	}

	command := router.Group("/command")
	{
		command.POST("/upload", h.Upload)
		command.POST("/predict", h.Predict)
		command.POST("/createDrone", h.CreateDrone)
		command.PUT("/updateDrone", h.UpdateDrone)
		command.POST("/createUser", h.CreateUser)
		command.PUT("/updateUser", h.UpdateUser)
		command.DELETE("/deleteUser", h.DeleteUser)
		command.POST("/deleteImage", h.DeleteImage)
	}
}

func (h *ConsoleHandler) State(c *gin.Context) {
	snap := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"logged_in": snap.LoggedIn,
			"user_id":   snap.UserID,
			"username":  snap.Username,
			"role":      snap.Role,
		},
		"route": h.navigator.Current(),
		"stream": gin.H{
			"streaming":     h.stream.IsStreaming(),
			"last_delay_ms": h.stream.LastDelay().Milliseconds(),
			"frame_uri":     h.stream.CurrentFrame(),
			"live_handles":  h.frames.Live(),
		},
	})
}

func (h *ConsoleHandler) Navigate(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path required"})
		return
	}

	verdict, err := h.navigator.Navigate(req.Path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed":  verdict.Allow,
		"route":    h.navigator.Current(),
		"redirect": verdict.RedirectTo,
		"reason":   verdict.Reason.String(),
	})
}

func (h *ConsoleHandler) Login(c *gin.Context) {
	var creds domain.Credentials
	if err := c.BindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	ok, err := h.store.Login(c.Request.Context(), creds)
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"logged_in": false})
		return
	}

	// Mirror the post-login landing: straight to the flight view.
	h.navigator.Navigate("/flying")
	c.JSON(http.StatusOK, gin.H{"logged_in": true, "route": h.navigator.Current()})
}

func (h *ConsoleHandler) Register(c *gin.Context) {
	var reg domain.Registration
	if err := c.BindJSON(&reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ok, err := h.store.Register(c.Request.Context(), reg)
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"registered": ok})
}

func (h *ConsoleHandler) Logout(c *gin.Context) {
	h.stream.Reset()
	h.store.Logout()
	h.navigator.ForceHome()
	c.JSON(http.StatusOK, gin.H{"route": h.navigator.Current()})
}

func (h *ConsoleHandler) StreamStart(c *gin.Context) {
	snap := h.sessions.Snapshot()
	if !snap.LoggedIn {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login first"})
		return
	}

	h.stream.Start(snap.UserID, nil, h.interval)
	c.JSON(http.StatusOK, gin.H{"streaming": h.stream.IsStreaming()})
}

func (h *ConsoleHandler) StreamStop(c *gin.Context) {
	h.stream.Stop()
	c.JSON(http.StatusOK, gin.H{"streaming": h.stream.IsStreaming()})
}

func (h *ConsoleHandler) StreamReset(c *gin.Context) {
	h.stream.Reset()
	c.JSON(http.StatusOK, gin.H{"streaming": h.stream.IsStreaming()})
}

// CurrentFrame serves the bytes behind the live frame URI. A stopped or
// not-yet-started stream yields 404, as does a frame already released.
func (h *ConsoleHandler) CurrentFrame(c *gin.Context) {
	uri := h.stream.CurrentFrame()
	if uri == "" {
		c.Status(http.StatusNotFound)
		return
	}

	handle, ok := h.frames.Resolve(uri)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	data := handle.Bytes()
	if data == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, handle.ContentType(), data)
}

func (h *ConsoleHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"drone":   h.commands.CurrentDrone(),
		"drones":  h.commands.Drones(),
		"boxes":   h.commands.Boxes(),
		"image":   h.commands.CurrentImage(),
		"users":   h.commands.Users(),
		"history": h.commands.History(),
	})
}

func (h *ConsoleHandler) RefreshDrone(c *gin.Context) {
	snap := h.sessions.Snapshot()
	if !snap.LoggedIn {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login first"})
		return
	}

	drone, err := h.commands.GetDroneInfo(c.Request.Context(), snap.UserID)
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"drone": drone})
}

func (h *ConsoleHandler) RefreshAllDrones(c *gin.Context) {
	drones, err := h.commands.GetAllDroneInfo(c.Request.Context())
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"drones": drones})
}

func (h *ConsoleHandler) RefreshUsers(c *gin.Context) {
	users, err := h.commands.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *ConsoleHandler) RefreshHistory(c *gin.Context) {
	snap := h.sessions.Snapshot()
	if !snap.LoggedIn {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login first"})
		return
	}

	limit := 20
	records, err := h.commands.GetImageHistory(c.Request.Context(), snap.UserID, limit)
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

// Upload pushes one frame through the command channel; on success the
// cached view holds the detections and the annotated data URI.
func (h *ConsoleHandler) Upload(c *gin.Context) {
	var req domain.UploadRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.commands.UploadImage(c.Request.Context(), req); err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"boxes": h.commands.Boxes(),
		"image": h.commands.CurrentImage(),
	})
}

func (h *ConsoleHandler) Predict(c *gin.Context) {
	var req domain.PredictRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result, err := h.commands.Predict(c.Request.Context(), req)
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"boxes": result.Boxes})
}

func (h *ConsoleHandler) CreateDrone(c *gin.Context) {
	var drone domain.Drone
	if err := c.BindJSON(&drone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.commands.CreateDrone(c.Request.Context(), &drone); err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": true})
}

func (h *ConsoleHandler) UpdateDrone(c *gin.Context) {
	var drone domain.Drone
	if err := c.BindJSON(&drone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.commands.UpdateDrone(c.Request.Context(), &drone); err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *ConsoleHandler) CreateUser(c *gin.Context) {
	var req struct {
		domain.User
		Password string `json:"password"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user := req.User
	if err := h.commands.CreateUser(c.Request.Context(), &user, req.Password); err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": true})
}

func (h *ConsoleHandler) UpdateUser(c *gin.Context) {
	var user domain.User
	if err := c.BindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.commands.UpdateUser(c.Request.Context(), &user); err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *ConsoleHandler) DeleteUser(c *gin.Context) {
	var req struct {
		UserID domain.UserID `json:"userId" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}
	if err := h.commands.DeleteUser(c.Request.Context(), req.UserID); err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *ConsoleHandler) DeleteImage(c *gin.Context) {
	var req struct {
		UserID  domain.UserID `json:"userId" binding:"required"`
		ImageID string        `json:"imageId" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and imageId required"})
		return
	}
	if err := h.commands.DeleteImage(c.Request.Context(), req.UserID, req.ImageID); err != nil {
		c.JSON(backendStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
