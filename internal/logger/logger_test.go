package logger

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithRequestIDKeepsParentFields(t *testing.T) {
	var buf strings.Builder
	base := zerolog.New(&buf).With().Str("component", "api").Logger()

	l := WithRequestID(base, "req-123")
	l.Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-123"`) {
		t.Errorf("output missing request_id: %s", out)
	}
	if !strings.Contains(out, `"component":"api"`) {
		t.Errorf("output missing component inherited from base: %s", out)
	}
}
