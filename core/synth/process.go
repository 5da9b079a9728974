package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"Hummify/config"
	"Hummify/logger"
	"Hummify/model"
)

// processResult is the single JSON document the synthesizer process must
// print on stdout. Everything it writes to stderr is treated as log output.
type processResult struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Wav      string  `json:"wav"`
	Tempo    int     `json:"tempo"`
	Duration float64 `json:"duration"`
}

// ProcessEngine implements Engine by running an external synthesizer
// process (reference setup: a python script driving fluidsynth).
type ProcessEngine struct {
	command   string
	script    string
	soundFont string
	workDir   string
	timeout   time.Duration
}

// NewProcessEngine creates an engine from the synthesizer configuration.
func NewProcessEngine(cfg *config.Config) *ProcessEngine {
	return &ProcessEngine{
		command:   cfg.SynthCommand,
		script:    cfg.SynthScript,
		soundFont: cfg.SoundFontPath,
		workDir:   cfg.SynthWorkDir,
		timeout:   cfg.SynthTimeout,
	}
}

// Synthesize runs the synthesizer with the note sequence on stdin and the
// instrument plus a per-invocation output directory as arguments. The
// process must exit with a single JSON result on stdout; anything else is
// an engine failure. A run that exceeds the timeout is killed and reported
// as ErrTimeout.
func (e *ProcessEngine) Synthesize(ctx context.Context, instrument string, notes []model.Note) (*Result, error) {
	if err := os.MkdirAll(e.workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create synth work directory: %w", err)
	}
	outDir, err := os.MkdirTemp(e.workDir, "synth-")
	if err != nil {
		return nil, fmt.Errorf("failed to create synth output directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	input, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notes for synthesizer: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var args []string
	if e.script != "" {
		args = append(args, e.script)
	}
	args = append(args, instrument, outDir)

	cmd := exec.CommandContext(runCtx, e.command, args...)
	cmd.Env = append(os.Environ(), "SOUNDFONT_PATH="+e.soundFont)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Synthesizer timed out, process killed",
			logger.String("instrument", instrument),
			logger.Duration("timeout", e.timeout))
		return nil, fmt.Errorf("synthesizer exceeded %s: %w", e.timeout, ErrTimeout)
	}
	if runErr != nil {
		return nil, fmt.Errorf("synthesizer process failed: %w\nstderr: %s", runErr, stderr.String())
	}

	result, err := parseResult(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w\nstderr: %s", err, stderr.String())
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("synthesizer reported error: %s", result.Message)
	}

	wavPath := result.Wav
	if wavPath == "" {
		return nil, fmt.Errorf("synthesizer result is missing the wav path")
	}
	if !filepath.IsAbs(wavPath) {
		wavPath = filepath.Join(outDir, wavPath)
	}
	audio, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio %s: %w", wavPath, err)
	}

	logger.Info("Synthesis completed",
		logger.String("instrument", instrument),
		logger.Int("notes", len(notes)),
		logger.Int("bytes", len(audio)),
		logger.Duration("elapsed", time.Since(start)))

	return &Result{Audio: audio, Tempo: result.Tempo, Duration: result.Duration}, nil
}

// parseResult decodes the synthesizer's stdout. The decoder is strict: one
// JSON document, nothing before or after it.
func parseResult(out []byte) (*processResult, error) {
	dec := json.NewDecoder(bytes.NewReader(out))
	var result processResult
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("synthesizer produced invalid output: %q", truncate(out, 200))
	}
	if dec.More() {
		return nil, fmt.Errorf("synthesizer produced trailing output after result: %q", truncate(out, 200))
	}
	if result.Status == "" {
		return nil, fmt.Errorf("synthesizer result is missing a status: %q", truncate(out, 200))
	}
	return &result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
