package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestInitWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	log.Info().Str("app", "OA-1").Msg("created")
	log.Debug().Msg("hidden")

	assert.Contains(t, buf.String(), `"app":"OA-1"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestCtxUsesRequestLogger(t *testing.T) {
	var global, scoped bytes.Buffer
	Init(Config{Output: &global})

	l := zerolog.New(&scoped).With().Str("request_id", "r1").Logger()
	ctx := l.WithContext(context.Background())

	Ctx(ctx).Info().Msg("scoped")
	Ctx(context.Background()).Info().Msg("global")

	assert.Contains(t, scoped.String(), `"request_id":"r1"`)
	assert.Contains(t, global.String(), "global")
}
