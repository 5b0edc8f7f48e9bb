package browser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/premscan/premscan/config"
)

// Diagnostics captures page-state snapshots for post-hoc failure analysis.
// Snapshots are advisory: every error here is logged and swallowed so a
// failing disk never fails a quote.
type Diagnostics struct {
	cfg config.DiagnosticsConfig
}

// NewDiagnostics prepares the snapshot directory.
func NewDiagnostics(cfg config.DiagnosticsConfig) *Diagnostics {
	if cfg.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			slog.Warn("diagnostics dir unavailable, snapshots disabled",
				"dir", cfg.Dir, "error", err)
			cfg.Enabled = false
		}
	}
	return &Diagnostics{cfg: cfg}
}

// Snapshot writes a full-page screenshot and an HTML dump for the page and
// returns the artifact reference (the screenshot path). Returns "" when
// diagnostics are disabled or capture failed.
func (d *Diagnostics) Snapshot(page *rod.Page, label string) string {
	if !d.cfg.Enabled || page == nil {
		return ""
	}

	stem := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405.000"), label)
	shotPath := filepath.Join(d.cfg.Dir, stem+".png")

	shot, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		slog.Warn("diagnostic screenshot failed", "label", label, "error", err)
		return ""
	}
	if err := os.WriteFile(shotPath, shot, 0o644); err != nil {
		slog.Warn("diagnostic screenshot write failed", "path", shotPath, "error", err)
		return ""
	}

	if html, err := page.HTML(); err == nil {
		htmlPath := filepath.Join(d.cfg.Dir, stem+".html")
		if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
			slog.Warn("diagnostic HTML write failed", "path", htmlPath, "error", err)
		}
	}

	d.prune()
	slog.Info("diagnostic snapshot captured", "label", label, "artifact", shotPath)
	return shotPath
}

// prune removes the oldest snapshots beyond the configured cap.
func (d *Diagnostics) prune() {
	if d.cfg.MaxArtifacts <= 0 {
		return
	}
	entries, err := os.ReadDir(d.cfg.Dir)
	if err != nil {
		return
	}
	var shots []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".png" {
			shots = append(shots, e.Name())
		}
	}
	if len(shots) <= d.cfg.MaxArtifacts {
		return
	}
	// Names start with a UTC timestamp, so lexical order is capture order.
	sort.Strings(shots)
	for _, name := range shots[:len(shots)-d.cfg.MaxArtifacts] {
		stem := name[:len(name)-len(".png")]
		_ = os.Remove(filepath.Join(d.cfg.Dir, name))
		_ = os.Remove(filepath.Join(d.cfg.Dir, stem+".html"))
	}
}
