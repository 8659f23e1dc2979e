package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/lvndry/clausea-backend/internal/email"
	"github.com/lvndry/clausea-backend/internal/metrics"
	"github.com/lvndry/clausea-backend/internal/rootdomain"
)

// defaultSupportSource labels requests arriving without an explicit source.
const defaultSupportSource = "browser_extension"

type requestSupportPayload struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

type requestSupportResponse struct {
	Success bool `json:"success"`
}

// extensionCheck reports whether a privacy analysis exists for the URL the
// extension is looking at.
func (s *Server) extensionCheck(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(s.logger, w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	result, err := s.service.CheckURL(r.Context(), rawURL)
	if err != nil {
		s.logger.Error("extension check failed", zap.String("url", rawURL), zap.Error(err))
		metrics.ObserveExtensionCheck("error")
		writeError(s.logger, w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if result.Found {
		metrics.ObserveExtensionCheck("found")
	} else {
		metrics.ObserveExtensionCheck("not_found")
	}
	writeJSON(s.logger, w, http.StatusOK, result)
}

// extensionDomains lists every domain with an existing analysis. Lookup
// failures degrade to an empty list so the extension popup never breaks on
// a backend hiccup.
func (s *Server) extensionDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.service.SupportedDomains(r.Context())
	if err != nil {
		s.logger.Error("supported domains lookup failed", zap.Error(err))
		writeJSON(s.logger, w, http.StatusOK, []string{})
		return
	}
	if domains == nil {
		domains = []string{}
	}
	writeJSON(s.logger, w, http.StatusOK, domains)
}

// extensionRequestSupport lets users ask for a new site to be analyzed.
// Nothing is persisted; the request is forwarded as a notification email
// and fails with a 500 if that email cannot be sent.
func (s *Server) extensionRequestSupport(w http.ResponseWriter, r *http.Request) {
	var payload requestSupportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !isAbsoluteHTTPURL(payload.URL) {
		writeError(s.logger, w, http.StatusBadRequest, "url must be a valid absolute URL")
		return
	}
	if payload.Source == "" {
		payload.Source = defaultSupportSource
	}

	domain := rootdomain.Extract(payload.URL)
	s.logger.Info("extension support request",
		zap.String("domain", domain),
		zap.String("url", payload.URL),
		zap.String("source", payload.Source),
		zap.String("ip", clientIP(r)),
	)

	err := s.notifier.SendSupportRequest(r.Context(), email.SupportRequest{
		Domain: domain,
		URL:    payload.URL,
		Source: payload.Source,
		Metadata: map[string]string{
			"ip":         clientIP(r),
			"user_agent": userAgent(r),
		},
	})
	if err != nil {
		var emailErr *email.Error
		detail := "failed to send support request email"
		if errors.As(err, &emailErr) {
			detail = emailErr.Error()
		}
		s.logger.Error("failed to send support request email",
			zap.String("domain", domain), zap.Error(err))
		metrics.ObserveSupportRequest("error")
		metrics.ObserveSupportEmail("failed")
		writeError(s.logger, w, http.StatusInternalServerError, detail)
		return
	}

	metrics.ObserveSupportRequest("ok")
	metrics.ObserveSupportEmail("sent")
	writeJSON(s.logger, w, http.StatusOK, requestSupportResponse{Success: true})
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userAgent(r *http.Request) string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return "unknown"
}
