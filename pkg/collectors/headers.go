package collectors

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// defaultHeaders imitate a desktop browser; several sources refuse bare
// client requests.
var defaultHeaders = map[string]string{
	"User-Agent":                browserUserAgent,
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

// koreanHeaders carry a Korean Accept-Language, required by sedaily.
var koreanHeaders = map[string]string{
	"User-Agent":                browserUserAgent,
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Headers resolves the request headers for a source: language-specific
// defaults overlaid with per-source overrides.
func Headers(cfg Source) map[string]string {
	base := defaultHeaders
	if cfg.Language == "ko" {
		base = koreanHeaders
	}

	out := make(map[string]string, len(base)+len(cfg.Headers))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range cfg.Headers {
		out[k] = v
	}
	return out
}
