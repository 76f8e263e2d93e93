package services

import (
	"context"
	"errors"
	"testing"

	"droneview/internal/core/domain"
	"droneview/internal/infrastructure/monitoring"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

func newCommandFixture(t *testing.T) (*CommandService, *MockBackend) {
	backend := new(MockBackend)
	svc := NewCommandService(backend, monitoring.NewPrometheusCollector(prometheus.NewRegistry()), zaptest.NewLogger(t))
	return svc, backend
}

func TestUploadImage_RoundTrip(t *testing.T) {
	svc, backend := newCommandFixture(t)

	boxes := []domain.DetectionBox{
		{Label: "person", Confidence: 0.91, X: 10, Y: 20, Width: 30, Height: 40},
		{Label: "car", Confidence: 0.77, X: 50, Y: 60, Width: 70, Height: 80},
	}
	backend.On("UploadImage", mock.Anything, mock.Anything).
		Return(&domain.UploadResult{Boxes: boxes, Image: "QUJD"}, nil)

	err := svc.UploadImage(context.Background(), domain.UploadRequest{UserID: "1", Image: "x"})
	assert.NoError(t, err)
	assert.Equal(t, boxes, svc.Boxes())
	assert.Equal(t, "data:image/jpeg;base64,QUJD", svc.CurrentImage())
}

func TestUploadImage_NilBoxesBecomeEmpty(t *testing.T) {
	svc, backend := newCommandFixture(t)

	backend.On("UploadImage", mock.Anything, mock.Anything).
		Return(&domain.UploadResult{Image: "QUJD"}, nil)

	assert.NoError(t, svc.UploadImage(context.Background(), domain.UploadRequest{UserID: "1"}))
	assert.NotNil(t, svc.Boxes())
	assert.Len(t, svc.Boxes(), 0)
}

func TestUploadImage_FailureLeavesStateUntouched(t *testing.T) {
	svc, backend := newCommandFixture(t)

	backend.On("UploadImage", mock.Anything, mock.Anything).
		Return(&domain.UploadResult{Boxes: []domain.DetectionBox{{Label: "person"}}, Image: "QUJD"}, nil).Once()
	assert.NoError(t, svc.UploadImage(context.Background(), domain.UploadRequest{UserID: "1"}))

	backend.On("UploadImage", mock.Anything, mock.Anything).Return(nil, domain.ErrRejected)
	err := svc.UploadImage(context.Background(), domain.UploadRequest{UserID: "1"})
	assert.ErrorIs(t, err, domain.ErrRejected)

	// earlier results survive the failed call
	assert.Len(t, svc.Boxes(), 1)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", svc.CurrentImage())
}

func TestGetDroneInfo_CachesResult(t *testing.T) {
	svc, backend := newCommandFixture(t)

	drone := &domain.Drone{ID: "d1", UserID: "1", Name: "scout"}
	backend.On("DroneInfo", mock.Anything, domain.UserID("1")).Return(drone, nil)

	got, err := svc.GetDroneInfo(context.Background(), "1")
	assert.NoError(t, err)
	assert.Equal(t, drone, got)
	assert.Equal(t, drone, svc.CurrentDrone())
}

func TestGetDroneInfo_ErrorLeavesCache(t *testing.T) {
	svc, backend := newCommandFixture(t)

	drone := &domain.Drone{ID: "d1", UserID: "1"}
	backend.On("DroneInfo", mock.Anything, domain.UserID("1")).Return(drone, nil).Once()
	_, err := svc.GetDroneInfo(context.Background(), "1")
	assert.NoError(t, err)

	backend.On("DroneInfo", mock.Anything, domain.UserID("1")).Return(nil, errors.New("timeout"))
	_, err = svc.GetDroneInfo(context.Background(), "1")
	assert.Error(t, err)
	assert.Equal(t, drone, svc.CurrentDrone())
}

func TestClear_WipesViewState(t *testing.T) {
	svc, backend := newCommandFixture(t)

	backend.On("UploadImage", mock.Anything, mock.Anything).
		Return(&domain.UploadResult{Boxes: []domain.DetectionBox{{Label: "person"}}, Image: "QUJD"}, nil)
	backend.On("DroneInfo", mock.Anything, mock.Anything).
		Return(&domain.Drone{ID: "d1"}, nil)

	assert.NoError(t, svc.UploadImage(context.Background(), domain.UploadRequest{UserID: "1"}))
	_, err := svc.GetDroneInfo(context.Background(), "1")
	assert.NoError(t, err)

	svc.Clear()

	assert.Nil(t, svc.CurrentDrone())
	assert.Nil(t, svc.Boxes())
	assert.Equal(t, "", svc.CurrentImage())
}

func TestUserCRUD_UpdatesCachedList(t *testing.T) {
	svc, backend := newCommandFixture(t)

	users := []*domain.User{
		{ID: "1", Username: "alice", Role: domain.RoleAdmin},
		{ID: "2", Username: "bob", Role: domain.RoleUser},
	}
	backend.On("Users", mock.Anything).Return(users, nil)
	backend.On("DeleteUser", mock.Anything, domain.UserID("2")).Return(nil)
	backend.On("CreateUser", mock.Anything, mock.Anything, "pw").Return(nil)

	_, err := svc.GetAllUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, svc.Users(), 2)

	assert.NoError(t, svc.DeleteUser(context.Background(), "2"))
	assert.Len(t, svc.Users(), 1)
	assert.Equal(t, "alice", svc.Users()[0].Username)

	assert.NoError(t, svc.CreateUser(context.Background(), &domain.User{ID: "3", Username: "carol", Role: domain.RoleUser}, "pw"))
	assert.Len(t, svc.Users(), 2)
}

func TestDeleteImage_PrunesHistory(t *testing.T) {
	svc, backend := newCommandFixture(t)

	records := []domain.ImageRecord{{ID: "a", UserID: "1"}, {ID: "b", UserID: "1"}}
	backend.On("ImageHistory", mock.Anything, domain.UserID("1"), 10).Return(records, nil)
	backend.On("DeleteImage", mock.Anything, domain.UserID("1"), "a").Return(nil)

	_, err := svc.GetImageHistory(context.Background(), "1", 10)
	assert.NoError(t, err)

	assert.NoError(t, svc.DeleteImage(context.Background(), "1", "a"))
	assert.Len(t, svc.History(), 1)
	assert.Equal(t, "b", svc.History()[0].ID)
}
