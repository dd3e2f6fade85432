// Package tts generates announcement audio by shelling out to a speech
// synthesizer. The queue screens on Android TV boxes cannot use the browser
// speech API, so the server renders wav files for them.
package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
)

const cleanupDelay = 5 * time.Minute

// Generator renders spoken messages to wav files under a public directory
// and removes each file a few minutes after creation.
type Generator struct {
	command string
	dir     string
	clock   clockwork.Clock
}

// NewGenerator creates the audio directory if needed. command is the
// synthesizer binary, e.g. "espeak" or macOS "say".
func NewGenerator(command, dir string, clock clockwork.Clock) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &Generator{command: command, dir: dir, clock: clock}, nil
}

// Dir returns the directory generated files are written to.
func (g *Generator) Dir() string { return g.dir }

// Generate synthesizes the message and returns the generated filename.
// The file is deleted automatically after five minutes.
func (g *Generator) Generate(ctx context.Context, message string) (string, error) {
	filename := fmt.Sprintf("tts_%d.wav", g.clock.Now().UnixMilli())
	path := filepath.Join(g.dir, filename)

	cmd := exec.CommandContext(ctx, g.command, g.args(path, message)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("synthesize speech with %s: %w: %s", g.command, err, out)
	}

	g.clock.AfterFunc(cleanupDelay, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Error("Failed to clean up audio file", "path", path, "error", err)
		}
	})

	return filename, nil
}

// args maps the output-file flag per synthesizer: espeak and festival-style
// tools take -w, macOS say takes -o.
func (g *Generator) args(path, message string) []string {
	if filepath.Base(g.command) == "say" {
		return []string{"-o", path, message}
	}
	return []string{"-w", path, message}
}
