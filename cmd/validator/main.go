package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/config"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/intake"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/kami"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/observation"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/serviceapi"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/state"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/utils/logger"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/utils/redis"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/validator"
	"github.com/taoillium/bittensor-subnet-taoillium/pkg/signature"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}
	logger.Init()
	log.Info().Msg("Starting validator...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	k, err := kami.NewKami(&cfg.KamiEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init kami client")
	}

	// Observations flow through Redis when available so the intake server can
	// run out of process; otherwise an in-memory buffer serves a single process.
	var buffer observation.Buffer
	if r, err := redis.NewRedis(&cfg.RedisEnvConfig); err != nil {
		log.Warn().Err(err).Msg("failed to init redis client, using in-memory observation buffer")
		buffer = observation.NewMemoryBuffer()
	} else {
		buffer = observation.NewQueue(r, "")
	}

	var svc serviceapi.ServiceAPIInterface
	if cfg.ServiceAPIKey != "" {
		s, err := serviceapi.NewServiceAPI(&cfg.ServiceAPIEnvConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init service api client")
		}
		svc = s
	} else {
		log.Info().Msg("no service api key configured, relying on intake observations only")
	}

	store := state.NewStore(cfg.StateFile)

	v := validator.NewValidator(cfg, k, svc, buffer, store)
	if v == nil {
		log.Fatal().Msg("failed to construct validator")
	}

	intakeServer := intake.NewServer(&cfg.IntakeEnvConfig, buffer, signature.NewVerifier())
	go func() {
		if err := intakeServer.Start(v.Ctx); err != nil {
			log.Error().Err(err).Msg("intake server shutdown with error")
		}
	}()

	// setup signal handling for graceful shutdown before starting validator
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping validator")
		v.Stop()
	}()

	v.Start()

	// wait until validator context is cancelled (v.Stop will call Cancel())
	<-v.Ctx.Done()
	log.Info().Msg("validator stopped")
}
