package web

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-vibewave/pkg/aggregator"
	"github.com/teslashibe/go-vibewave/pkg/camera"
	"github.com/teslashibe/go-vibewave/pkg/hub"
	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// ScanRequest is the body of POST /api/scan/start. Zero seconds means the
// configured default.
type ScanRequest struct {
	Seconds int `json:"seconds" validate:"omitempty,gte=1,lte=60"`
}

// CameraResponse is the body of GET /api/camera.
type CameraResponse struct {
	Config  camera.Config `json:"config"`
	Presets []string      `json:"presets"`
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.engine.State())
}

func (s *Server) handleLive(c *fiber.Ctx) error {
	return c.JSON(s.engine.State().Live)
}

func (s *Server) handleMoods(c *fiber.Ctx) error {
	return c.JSON(mood.Catalog())
}

func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.engine.State().Config)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	if err := s.control(c, s.engine.Reset); err != nil {
		return s.controlError(c, err)
	}
	return c.JSON(s.engine.State())
}

func (s *Server) handleCapture(c *fiber.Ctx) error {
	return c.JSON(s.engine.State().Capture)
}

func (s *Server) handleCaptureHistory(c *fiber.Ctx) error {
	history := s.engine.State().Capture.History
	if history == nil {
		history = []mood.Captured{}
	}
	return c.JSON(history)
}

func (s *Server) handleCaptureStart(c *fiber.Ctx) error {
	if err := s.control(c, s.engine.StartCapture); err != nil {
		return s.controlError(c, err)
	}
	return c.JSON(s.engine.State().Capture)
}

func (s *Server) handleCaptureStop(c *fiber.Ctx) error {
	if err := s.control(c, s.engine.StopCapture); err != nil {
		return s.controlError(c, err)
	}
	return c.JSON(s.engine.State().Capture)
}

func (s *Server) handleScan(c *fiber.Ctx) error {
	return c.JSON(s.engine.State().Scan)
}

func (s *Server) handleScanStart(c *fiber.Ctx) error {
	var req ScanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
	}
	if err := s.validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	d := time.Duration(req.Seconds) * time.Second
	err := s.control(c, func(ctx context.Context) error {
		return s.engine.StartScan(ctx, d)
	})
	if err != nil {
		return s.controlError(c, err)
	}
	return c.JSON(s.engine.State().Scan)
}

func (s *Server) handleScanCancel(c *fiber.Ctx) error {
	if err := s.control(c, s.engine.CancelScan); err != nil {
		return s.controlError(c, err)
	}
	return c.JSON(s.engine.State().Scan)
}

func (s *Server) handleCameraGet(c *fiber.Ctx) error {
	if s.camera == nil {
		return errorJSON(c, fiber.StatusNotFound, errors.New("no camera attached"))
	}
	return c.JSON(CameraResponse{
		Config:  s.camera.GetConfig(),
		Presets: camera.PresetNames(),
	})
}

func (s *Server) handleCameraUpdate(c *fiber.Ctx) error {
	if s.camera == nil {
		return errorJSON(c, fiber.StatusNotFound, errors.New("no camera attached"))
	}

	var params map[string]any
	if err := c.BodyParser(&params); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	if err := s.camera.UpdateConfig(params); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	s.logger.Info("camera config updated", "config", s.camera.GetConfig())
	return c.JSON(s.camera.GetConfig())
}

func (s *Server) handleStateWS(conn *websocket.Conn) {
	hub.NewClient(s.states, conn).Run()
}

// control runs an engine command bounded by controlTimeout.
func (s *Server) control(c *fiber.Ctx, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), controlTimeout)
	defer cancel()
	return fn(ctx)
}

// controlError maps an engine error to a status and writes it.
func (s *Server) controlError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, aggregator.ErrScanInProgress):
		status = fiber.StatusConflict
	case errors.Is(err, aggregator.ErrInvalidConfig):
		status = fiber.StatusBadRequest
	case errors.Is(err, aggregator.ErrEngineStopped), errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusServiceUnavailable
	}
	s.logger.Warn("control failed", "path", c.Path(), "error", err)
	return errorJSON(c, status, err)
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return c.Status(status).JSON(fiber.Map{
			"error": "invalid " + verrs[0].Field(),
			"tag":   verrs[0].Tag(),
		})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
