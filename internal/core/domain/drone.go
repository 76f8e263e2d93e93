package domain

import "time"

type DroneID string

type Drone struct {
	ID       DroneID   `json:"droneId"`
	UserID   UserID    `json:"userId"`
	Name     string    `json:"name"`
	Model    string    `json:"model"`
	Status   string    `json:"status"`
	Battery  int       `json:"battery"`
	LastSeen time.Time `json:"lastSeen"`
}

// DetectionBox is one detection returned by the inference backend.
type DetectionBox struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// UploadRequest carries one JPEG frame, base64-encoded, to the backend.
type UploadRequest struct {
	UserID  UserID  `json:"userId"`
	DroneID DroneID `json:"droneId"`
	Image   string  `json:"image"`
}

// UploadResult is the data field of a successful upload envelope: the
// detections plus the annotated image, base64-encoded.
type UploadResult struct {
	Boxes []DetectionBox `json:"boxes"`
	Image string         `json:"image"`
}

type PredictRequest struct {
	UserID UserID `json:"userId"`
	Image  string `json:"image"`
}

type PredictResult struct {
	Boxes []DetectionBox `json:"boxes"`
}

// ImageRecord is one entry of a user's image history.
type ImageRecord struct {
	ID        string    `json:"imageId"`
	UserID    UserID    `json:"userId"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
