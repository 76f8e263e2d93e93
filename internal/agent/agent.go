package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
	"droneview/pkg/retry"

	"go.uber.org/zap"
)

const (
	StatusIdle   = "idle"
	StatusFlying = "flying"
	StatusError  = "error"
)

// Config drives one uploader run: which account to fly under, which
// drone identity to report, and how often to send frames.
type Config struct {
	Username     string
	Password     string
	DroneID      domain.DroneID
	SendInterval time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

// Agent is the drone-side uploader. It logs in, announces its drone,
// then pushes one frame per interval until the context is cancelled.
type Agent struct {
	cfg     Config
	store   ports.CredentialStore
	backend ports.Backend
	source  FrameSource
	logger  *zap.Logger
}

func New(cfg Config, store ports.CredentialStore, backend ports.Backend, source FrameSource, logger *zap.Logger) *Agent {
	if cfg.SendInterval <= 0 {
		cfg.SendInterval = 500 * time.Millisecond
	}
	return &Agent{
		cfg:     cfg,
		store:   store,
		backend: backend,
		source:  source,
		logger:  logger,
	}
}

// Run executes the upload loop. It returns when the context is cancelled
// or login ultimately fails.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}

	cred := a.store.Credential()
	if cred.User == nil {
		return fmt.Errorf("login succeeded but no user profile returned")
	}
	userID := cred.User.ID

	a.announce(ctx, userID, StatusFlying)
	defer a.announce(context.Background(), userID, StatusIdle)

	a.logger.Info("upload loop started",
		zap.String("user_id", string(userID)),
		zap.String("drone_id", string(a.cfg.DroneID)),
		zap.Duration("interval", a.cfg.SendInterval),
	)

	ticker := time.NewTicker(a.cfg.SendInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.sendFrame(ctx, userID); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.announce(ctx, userID, StatusError)
				a.logger.Warn("frame upload failed", zap.Error(err))
				continue
			}
			a.announce(ctx, userID, StatusFlying)
		}
	}
}

func (a *Agent) login(ctx context.Context) error {
	cfg := retry.Config{
		MaxAttempts:  a.cfg.MaxRetries,
		InitialDelay: a.cfg.RetryDelay,
		MaxDelay:     a.cfg.RetryDelay,
		Multiplier:   1.0,
	}

	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		ok, err := a.store.Login(ctx, domain.Credentials{
			Username: a.cfg.Username,
			Password: a.cfg.Password,
		})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("credentials rejected for %q", a.cfg.Username)
		}
		return nil
	})
}

// announce reports the drone's current status, creating the drone record
// on first contact. Failures are logged and swallowed: status is cosmetic
// next to the frame stream.
func (a *Agent) announce(ctx context.Context, userID domain.UserID, status string) {
	drone := &domain.Drone{
		ID:       a.cfg.DroneID,
		UserID:   userID,
		Status:   status,
		LastSeen: time.Now(),
	}

	if _, err := a.backend.DroneInfo(ctx, userID); err != nil {
		if err := a.backend.CreateDrone(ctx, drone); err != nil {
			a.logger.Debug("failed to create drone record", zap.Error(err))
		}
		return
	}
	if err := a.backend.UpdateDrone(ctx, drone); err != nil {
		a.logger.Debug("failed to update drone status", zap.Error(err))
	}
}

func (a *Agent) sendFrame(ctx context.Context, userID domain.UserID) error {
	frame, err := a.source.Next(ctx)
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	result, err := a.backend.UploadImage(ctx, domain.UploadRequest{
		UserID:  userID,
		DroneID: a.cfg.DroneID,
		Image:   base64.StdEncoding.EncodeToString(frame),
	})
	if err != nil {
		return err
	}

	a.logger.Debug("frame uploaded",
		zap.Int("bytes", len(frame)),
		zap.Int("detections", len(result.Boxes)),
	)
	return nil
}
