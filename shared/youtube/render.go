package youtube

import (
	"context"
	"fmt"
	"time"

	"video-judge/shared/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// RodLoader renders pages in a headless Chromium so content injected by
// JavaScript is present. A browser is launched per Load.
type RodLoader struct {
	timeout time.Duration
	idle    time.Duration
	logger  *zap.SugaredLogger
}

func NewRodLoader(logger *zap.SugaredLogger) *RodLoader {
	return &RodLoader{
		timeout: defaultTimeout,
		idle:    3 * time.Second,
		logger:  logging.OrNop(logger),
	}
}

func (r *RodLoader) Load(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true).
		Set("disable-setuid-sandbox")

	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	start := time.Now()
	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("page load failed: %w", err)
	}
	_ = page.WaitIdle(r.idle)

	body, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read rendered page: %w", err)
	}

	r.logger.Debugw("Rendered page", "url", pageURL, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}
