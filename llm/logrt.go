package llm

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httputil"
	"regexp"

	"github.com/sage-x-project/chat-router/logger"
)

var authRe = regexp.MustCompile(`(?i)Authorization:\s*Bearer\s+[A-Za-z0-9\-\._~+/=]+`)

// DebugTransport dumps model traffic at debug level with credentials
// redacted. Wire it into the client only when traffic logging is enabled.
type DebugTransport struct {
	Base http.RoundTripper
	Log  *logger.Logger
}

func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(b))
		req.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil }
		if dump, err := httputil.DumpRequestOut(req, true); err == nil {
			safe := authRe.ReplaceAll(dump, []byte("Authorization: Bearer ***REDACTED***"))
			t.Log.Debugf("llm outbound %s %s\n%s", req.Method, req.URL.String(), safe)
		}
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if resp != nil && resp.Body != nil {
		b, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewReader(b))
		if dump, err := httputil.DumpResponse(resp, true); err == nil {
			if len(dump) > 4096 { // truncate if too long
				dump = append(dump[:4096], []byte("\n... (truncated) ...")...)
			}
			t.Log.Debugf("llm inbound %s %s\n%s", req.Method, req.URL.String(), dump)
		}
	}
	return resp, nil
}
