package browser

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// adDomains is a set of well-known ad and tracking domains blocked inside
// every session. The quote form loads a surprising amount of tracking which
// slows the flow down and trips the network-quiet waits.
var adDomains = map[string]struct{}{
	"doubleclick.net":        {},
	"googlesyndication.com":  {},
	"googleadservices.com":   {},
	"google-analytics.com":   {},
	"googletagmanager.com":   {},
	"googletagservices.com":  {},
	"facebook.net":           {},
	"connect.facebook.net":   {},
	"facebook.com":           {},
	"fbcdn.net":              {},
	"adnxs.com":              {},
	"adsrvr.org":             {},
	"amazon-adsystem.com":    {},
	"criteo.com":             {},
	"criteo.net":             {},
	"outbrain.com":           {},
	"taboola.com":            {},
	"moatads.com":            {},
	"pubmatic.com":           {},
	"rubiconproject.com":     {},
	"scorecardresearch.com":  {},
	"quantserve.com":         {},
	"hotjar.com":             {},
	"mixpanel.com":           {},
	"segment.io":             {},
	"segment.com":            {},
	"analytics.twitter.com":  {},
	"ads-twitter.com":        {},
	"static.ads-twitter.com": {},
	"chartbeat.com":          {},
	"chartbeat.net":          {},
	"optimizely.com":         {},
	"demdex.net":             {},
	"krxd.net":               {},
	"bluekai.com":            {},
	"mathtag.com":            {},
	"serving-sys.com":        {},
	"rlcdn.com":              {},
	"sharethis.com":          {},
	"addthis.com":            {},
	"consensu.org":           {},
}

// isAdDomain checks if a hostname (or any parent domain) is in the blocklist.
func isAdDomain(host string) bool {
	host = strings.ToLower(host)
	if _, ok := adDomains[host]; ok {
		return true
	}
	// Walk parent domains, e.g. "pagead2.googlesyndication.com" →
	// "googlesyndication.com".
	for {
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			break
		}
		host = host[idx+1:]
		if _, ok := adDomains[host]; ok {
			return true
		}
	}
	return false
}

// isLookupURL reports whether the request URL is the backend vehicle-lookup
// call the resolver fallback watches for.
func isLookupURL(rawURL, substring string) bool {
	return substring != "" && strings.Contains(rawURL, substring)
}

// mountHijack installs the session's request interceptor. It blocks
// ad/tracking requests and taps vehicle-lookup responses for the resolver
// fallback; everything else passes through unmodified.
//
// Returns the running HijackRouter so the caller can Stop it on teardown.
// Returns nil when there is nothing to intercept.
func mountHijack(page *rod.Page, opts SessionOptions) *rod.HijackRouter {
	if !opts.BlockAds && opts.OnLookupResponse == nil {
		return nil
	}

	router := page.HijackRequests()

	// Pattern "*" + empty resourceType = intercept ALL requests, then
	// decide per-request whether to block, tap, or continue.
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		reqURL := ctx.Request.URL()

		if opts.BlockAds && isAdDomain(reqURL.Hostname()) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}

		if opts.OnLookupResponse != nil && isLookupURL(reqURL.String(), opts.LookupURLSubstring) {
			// Load the real response so we can read the body; it is then
			// served to the page unchanged.
			if err := ctx.LoadResponse(http.DefaultClient, true); err != nil {
				slog.Debug("lookup response load failed", "url", reqURL.String(), "error", err)
				return
			}
			opts.OnLookupResponse([]byte(ctx.Response.Body()))
			return
		}

		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine.
	// It exits when router.Stop() is called.
	go router.Run()

	return router
}
