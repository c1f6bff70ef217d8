package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityGatesOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWriter(Config{Format: "console"}, &buf))
	t.Cleanup(func() { SetVerbosity(1) })

	SetVerbosity(1)
	Infof("npv=%.4f", 3.8443)
	Debugf("hidden")
	Tracef("hidden")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "npv=3.8443")
	assert.NotContains(t, out, "hidden")

	buf.Reset()
	SetVerbosity(3)
	Tracef("d1=%g", -0.1268)
	assert.Contains(t, buf.String(), "TRACE")
	assert.Contains(t, buf.String(), "d1=-0.1268")

	buf.Reset()
	SetVerbosity(0)
	Infof("quiet")
	Errorf("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetVerbosity(1) })

	require.NoError(t, SetLevel("debug"))
	assert.True(t, Enabled(zapcore.DebugLevel))
	assert.False(t, Enabled(TraceLevel))

	require.NoError(t, SetLevel("WARN"))
	assert.False(t, Enabled(zapcore.InfoLevel))
	assert.True(t, Enabled(zapcore.WarnLevel))

	assert.Error(t, SetLevel("verbose"))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWriter(Config{Format: "json", Level: "info"}, &buf))
	t.Cleanup(func() { SetVerbosity(1) })

	Infof("priced %s", "put")
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"msg":"priced put"`)
}
