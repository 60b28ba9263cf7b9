package logging_test

import (
	"testing"

	"github.com/septivank/attendance-ingestion-worker/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Level(t *testing.T) {
	logger, err := logging.NewLogger("attendance-ingestion-worker", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = logging.NewLogger("attendance-ingestion-worker", "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = logging.NewLogger("attendance-ingestion-worker", "loud")
	assert.Error(t, err)
}

func TestWithDelivery(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	logging.WithUserID(logging.WithDelivery(zap.New(core), 42, "m-1"), "u1").Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, uint64(42), fields["delivery_tag"])
	assert.Equal(t, "m-1", fields["message_id"])
	assert.Equal(t, "u1", fields["user_id"])
}
