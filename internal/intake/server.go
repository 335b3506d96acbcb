package intake

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/config"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/observation"
	"github.com/taoillium/bittensor-subnet-taoillium/pkg/signature"
)

// Server accepts signed observation batches and appends them to the buffer.
type Server struct {
	app    *fiber.App
	cfg    *config.IntakeEnvConfig
	buffer observation.Buffer
}

func NewServer(cfg *config.IntakeEnvConfig, buffer observation.Buffer, verifier signature.SignatureVerifier) *Server {
	app := fiber.New(fiber.Config{
		Prefork:     false,
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		BodyLimit:   cfg.IntakeBodyLimit,
	})

	app.Use(recover.New())

	whitelisted := []string{"/health"}
	app.Use(ZstdMiddleware(whitelisted))
	app.Use(SignatureMiddleware(verifier, whitelisted))

	s := &Server{app: app, cfg: cfg, buffer: buffer}
	app.Get("/health", s.handleHealth)
	app.Post("/observations", s.handleObservations)
	return s
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(createResponse(map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	}, nil))
}

func (s *Server) handleObservations(c *fiber.Ctx) error {
	var req ObservationRequest
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		log.Warn().Err(err).Msg("failed to unmarshal observation batch")
		return c.Status(fiber.StatusBadRequest).JSON(
			createResponse(map[string]interface{}{}, fmt.Errorf("invalid payload")))
	}
	if len(req.Observations) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(
			createResponse(map[string]interface{}{}, fmt.Errorf("empty observation batch")))
	}

	scorer := c.Get(HotkeyHeader)
	accepted := make([]observation.Observation, 0, len(req.Observations))
	for _, o := range req.Observations {
		if o.UID < 0 {
			log.Warn().Int64("uid", o.UID).Msg("negative uid in observation batch, dropping")
			continue
		}
		if math.IsNaN(o.Reward) || math.IsInf(o.Reward, 0) {
			log.Warn().Int64("uid", o.UID).Msg("non-finite reward in observation batch, dropping")
			continue
		}
		o.ScorerHotkey = scorer
		accepted = append(accepted, o)
	}

	if err := s.buffer.Add(c.Context(), accepted...); err != nil {
		log.Error().Err(err).Msg("failed to buffer observations")
		return c.Status(fiber.StatusInternalServerError).JSON(
			createResponse(map[string]interface{}{}, fmt.Errorf("failed to buffer observations")))
	}

	log.Info().Int("accepted", len(accepted)).Int("received", len(req.Observations)).Str("scorer", scorer).Msg("observation batch accepted")
	return c.Status(fiber.StatusOK).JSON(createResponse(map[string]interface{}{
		"accepted": len(accepted),
	}, nil))
}

// Start listens until ctx is canceled, then shuts the listener down.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.IntakeAddress, s.cfg.IntakePort)
	go func() {
		if err := s.app.Listen(addr); err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("intake server listen failed")
		}
	}()
	<-ctx.Done()
	return s.app.Shutdown()
}

// Test hook: fiber's app.Test drives handlers without a listener.
func (s *Server) App() *fiber.App {
	return s.app
}
