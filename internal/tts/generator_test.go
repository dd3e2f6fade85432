package tts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ReturnsTimestampedFilename(t *testing.T) {
	clock := clockwork.NewFakeClock()
	gen, err := NewGenerator("true", t.TempDir(), clock)
	require.NoError(t, err)

	filename, err := gen.Generate(context.Background(), "order ready")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "tts_"))
	assert.True(t, strings.HasSuffix(filename, ".wav"))
}

func TestGenerate_CommandFailure(t *testing.T) {
	gen, err := NewGenerator("false", t.TempDir(), clockwork.NewFakeClock())
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "order ready")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesize speech")
}

func TestGenerate_CleansUpAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	dir := t.TempDir()
	gen, err := NewGenerator("true", dir, clock)
	require.NoError(t, err)

	filename, err := gen.Generate(context.Background(), "order ready")
	require.NoError(t, err)

	// Simulate the synthesizer output so removal is observable
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	clock.Advance(cleanupDelay + time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("audio file %s was not cleaned up", path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOutputFlagPerSynthesizer(t *testing.T) {
	clock := clockwork.NewFakeClock()

	espeak, err := NewGenerator("espeak", t.TempDir(), clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"-w", "/tmp/x.wav", "hello"}, espeak.args("/tmp/x.wav", "hello"))

	say, err := NewGenerator("/usr/bin/say", t.TempDir(), clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"-o", "/tmp/x.wav", "hello"}, say.args("/tmp/x.wav", "hello"))
}
