package intake

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/pkg/signature"
)

// ZstdMiddleware decompresses request bodies sent with Content-Encoding: zstd.
func ZstdMiddleware(whitelistedRoutes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, route := range whitelistedRoutes {
			if c.Path() == route {
				return c.Next()
			}
		}

		if strings.Contains(strings.ToLower(c.Get("content-encoding")), "zstd") {
			body := c.Body()
			if len(body) > 0 {
				decoder, err := zstd.NewReader(nil)
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(
						createResponse(map[string]interface{}{}, fmt.Errorf("failed to create zstd decoder: %s", err.Error())))
				}
				defer decoder.Close()

				decompressed, err := decoder.DecodeAll(body, nil)
				if err != nil {
					log.Warn().Err(err).Msg("failed to decompress zstd request body")
					return c.Status(fiber.StatusBadRequest).JSON(
						createResponse(map[string]interface{}{}, fmt.Errorf("failed to decompress zstd data: %s", err.Error())))
				}

				c.Request().SetBody(decompressed)
				c.Request().Header.Del("content-encoding")
			}
		}

		return c.Next()
	}
}

// SignatureMiddleware authenticates requests by their sr25519 signature over
// "<timestamp>.<body>". The timestamp header bounds replay.
func SignatureMiddleware(verifier signature.SignatureVerifier, whitelistedRoutes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, route := range whitelistedRoutes {
			if c.Path() == route {
				return c.Next()
			}
		}

		sig := c.Get(SignatureHeader)
		hotkey := c.Get(HotkeyHeader)
		timestamp := c.Get(TimestampHeader)

		if hotkey == "" || sig == "" || timestamp == "" {
			return c.Status(fiber.StatusBadRequest).JSON(
				createResponse(map[string]interface{}{}, fmt.Errorf(
					"missing headers, expected: %s, %s, %s", SignatureHeader, HotkeyHeader, TimestampHeader)))
		}

		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(
				createResponse(map[string]interface{}{}, fmt.Errorf("invalid timestamp header: %s", timestamp)))
		}
		skew := time.Now().Unix() - ts
		if skew > maxTimestampSkew || skew < -maxTimestampSkew {
			return c.Status(fiber.StatusForbidden).JSON(
				createResponse(map[string]interface{}{}, fmt.Errorf("timestamp outside allowed skew")))
		}

		message := timestamp + "." + string(c.Body())
		valid, err := verifier.Verify(message, sig, hotkey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(
				createResponse(map[string]interface{}{}, fmt.Errorf("signature verification error: %s", err.Error())))
		}
		if !valid {
			return c.Status(fiber.StatusForbidden).JSON(
				createResponse(map[string]interface{}{}, fmt.Errorf("invalid signature")))
		}

		log.Debug().Str("hotkey", hotkey).Str("path", c.Path()).Msg("verified request signature")
		return c.Next()
	}
}
