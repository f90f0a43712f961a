package obs

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerUsesJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Info("booking cancelled", "booking_id", "bk-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "booking cancelled", entry["msg"])
	assert.Equal(t, "bk-1", entry["booking_id"])
}

func TestNewLoggerDevIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "dev")
	logger.Debug("offer expired", "offer_id", "of-1")

	assert.Contains(t, buf.String(), "offer expired")
	assert.Contains(t, buf.String(), "of-1")
}
