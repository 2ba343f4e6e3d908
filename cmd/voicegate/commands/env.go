package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/echoos/voicegate/cmd/voicegate/internal/config"
	"github.com/echoos/voicegate/pkg/capture"
	"github.com/echoos/voicegate/pkg/kv"
	"github.com/echoos/voicegate/pkg/pcm"
	"github.com/echoos/voicegate/pkg/voicegate"
)

// gateEnv bundles the open store and Authenticator for one command run.
type gateEnv struct {
	cfg   *config.Config
	store *kv.Badger
	auth  *voicegate.Authenticator
	in    io.Closer // non-nil when --input names a file
}

func audioFormat(rate int) (pcm.Format, error) {
	switch rate {
	case 0, 16000:
		return pcm.L16Mono16K, nil
	case 44100:
		return pcm.L16Mono44K1, nil
	case 48000:
		return pcm.L16Mono48K, nil
	}
	return 0, fmt.Errorf("unsupported sample_rate %d (want 16000, 44100, or 48000)", rate)
}

// openGate opens the enrollment database and builds the Authenticator
// with the configured audio source.
func openGate(ctx context.Context) (*gateEnv, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}

	format, err := audioFormat(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	var (
		r      io.Reader = os.Stdin
		closer io.Closer
	)
	if inputPath != "" && inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("open audio input: %w", err)
		}
		r = f
		closer = f
	}

	store, err := kv.NewBadger(kv.BadgerOptions{Dir: filepath.Join(dir, "data")})
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("open database: %w", err)
	}

	auth, err := voicegate.New(ctx, voicegate.Config{
		Store:           store,
		Source:          capture.NewReaderSource(r, format),
		Announcer:       printAnnouncer(),
		CaptureDuration: cfg.CaptureDuration(),
		SessionTTL:      cfg.SessionTTL(),
		Lockout: voicegate.LockoutConfig{
			MaxFailedAttempts: cfg.MaxFailedAttempts,
			LockoutDuration:   cfg.LockoutDuration(),
			FailureWindow:     cfg.FailureWindow(),
		},
	})
	if err != nil {
		store.Close()
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	return &gateEnv{cfg: cfg, store: store, auth: auth, in: closer}, nil
}

func (e *gateEnv) close() {
	if e.in != nil {
		e.in.Close()
	}
	if err := e.store.Close(); err != nil {
		slog.Warn("voicegate: close database", "err", err)
	}
}
