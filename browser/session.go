package browser

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/premscan/premscan/models"
)

// SessionOptions configures a per-request session.
type SessionOptions struct {
	// BlockAds blocks requests to known ad/tracking domains.
	BlockAds bool

	// LookupURLSubstring identifies the backend vehicle-lookup call.
	// Responses whose URL contains it are handed to OnLookupResponse.
	LookupURLSubstring string

	// OnLookupResponse receives the raw body of each observed
	// vehicle-lookup backend response. Called from the hijack goroutine;
	// must not block.
	OnLookupResponse func(body []byte)
}

// Session is one request's isolated browsing context: an incognito browser
// context with independent cookies/storage and exactly one page inside it.
// Close tears both down and must run on every exit path of the calling flow.
type Session struct {
	incognito *rod.Browser
	page      *rod.Page
	router    *rod.HijackRouter
}

// OpenSession creates the isolated context, its page, and mounts the hijack
// router (ad blocking + lookup-response interception) before any navigation
// so no request escapes it.
func OpenSession(r *Resource, opts SessionOptions) (*Session, error) {
	browser, err := r.Acquire()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeEngineUnavailable, "",
			"failed to create isolated browser context",
			err,
		)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		disposeContext(incognito)
		return nil, models.NewScrapeError(
			models.ErrCodeEngineUnavailable, "",
			"failed to create page in isolated context",
			err,
		)
	}

	// Stealth JS only takes effect for navigations after injection.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	router := mountHijack(page, opts)

	return &Session{incognito: incognito, page: page, router: router}, nil
}

// Page returns the session's single page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Close releases the page and disposes the incognito context. Safe to call
// exactly once; every error is swallowed because Close runs on all exit
// paths, including after faults.
func (s *Session) Close() {
	if s.router != nil {
		if err := s.router.Stop(); err != nil {
			slog.Debug("hijack router stop failed", "error", err)
		}
	}
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			slog.Debug("page close failed", "error", err)
		}
	}
	disposeContext(s.incognito)
}

// disposeContext tears down an incognito browser context. The shared engine
// connection stays up.
func disposeContext(incognito *rod.Browser) {
	if incognito == nil || incognito.BrowserContextID == "" {
		return
	}
	err := proto.TargetDisposeBrowserContext{
		BrowserContextID: incognito.BrowserContextID,
	}.Call(incognito)
	if err != nil {
		slog.Debug("browser context dispose failed", "error", err)
	}
}
