package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lvndry/clausea-backend/internal/rootdomain"
)

// analysisURLFormat is where the extension sends users for the full report.
const analysisURLFormat = "https://clausea.co/products/%s"

// riskKeywords flag a keypoint as a concern when no explicit dangers exist.
// Substring match, so "advertis" covers advertise/advertising/advertisers.
var riskKeywords = []string{"share", "sell", "track", "collect", "third", "advertis", "retain"}

// maxTopConcerns caps the concern list shown in the extension popup.
const maxTopConcerns = 3

// CheckResult is what the extension learns about a visited URL.
type CheckResult struct {
	Found          bool     `json:"found"`
	Slug           string   `json:"slug,omitempty"`
	ProductName    string   `json:"product_name,omitempty"`
	Verdict        Verdict  `json:"verdict,omitempty"`
	RiskScore      *int     `json:"risk_score,omitempty"`
	OneLineSummary string   `json:"one_line_summary,omitempty"`
	TopConcerns    []string `json:"top_concerns,omitempty"`
	AnalysisURL    string   `json:"analysis_url,omitempty"`
}

// Service implements the extension-facing read operations over the store.
type Service struct {
	store     Store
	overviews OverviewSource
	logger    *zap.Logger
}

// NewService wires a Service.
func NewService(store Store, overviews OverviewSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, overviews: overviews, logger: logger}
}

// CheckURL reports whether a privacy analysis exists for the given URL.
// The lookup canonicalizes the URL to its root domain and falls back from
// subdomain to base domain, so "app.notion.so" finds a product registered
// under "notion.so".
func (s *Service) CheckURL(ctx context.Context, rawURL string) (CheckResult, error) {
	domain := rootdomain.Extract(rawURL)
	s.logger.Debug("extension check", zap.String("url", rawURL), zap.String("domain", domain))

	product, err := s.store.GetProductByDomain(ctx, domain)
	if errors.Is(err, ErrNotFound) {
		if base := rootdomain.Base(domain); base != domain {
			product, err = s.store.GetProductByDomain(ctx, base)
		}
	}
	if errors.Is(err, ErrNotFound) {
		return CheckResult{Found: false}, nil
	}
	if err != nil {
		return CheckResult{}, fmt.Errorf("lookup product for domain %s: %w", domain, err)
	}

	result := CheckResult{
		Found:       true,
		Slug:        product.Slug,
		ProductName: product.Name,
		AnalysisURL: fmt.Sprintf(analysisURLFormat, product.Slug),
	}

	overview, err := s.overviews.GetOverview(ctx, product.Slug)
	if errors.Is(err, ErrNotFound) {
		// Product exists but the pipeline has not analyzed it yet.
		return result, nil
	}
	if err != nil {
		return CheckResult{}, fmt.Errorf("lookup overview for %s: %w", product.Slug, err)
	}

	score := overview.RiskScore
	result.ProductName = overview.ProductName
	result.Verdict = overview.Verdict
	result.RiskScore = &score
	result.OneLineSummary = overview.OneLineSummary
	result.TopConcerns = topConcerns(overview)
	return result, nil
}

// topConcerns picks up to three concerns: explicit dangers win, otherwise
// keypoints matching a risk keyword, otherwise the leading keypoints.
func topConcerns(o Overview) []string {
	if len(o.Dangers) > 0 {
		return firstN(o.Dangers, maxTopConcerns)
	}
	if len(o.Keypoints) == 0 {
		return nil
	}
	var concerning []string
	for _, kp := range o.Keypoints {
		lower := strings.ToLower(kp)
		for _, word := range riskKeywords {
			if strings.Contains(lower, word) {
				concerning = append(concerning, kp)
				break
			}
		}
	}
	if len(concerning) > 0 {
		return firstN(concerning, maxTopConcerns)
	}
	return firstN(o.Keypoints, maxTopConcerns)
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}

// ProductsWithDocuments returns the products that have at least one
// analysis document.
func (s *Service) ProductsWithDocuments(ctx context.Context) ([]Product, error) {
	counts, err := s.store.CountDocumentsByProduct(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents by product: %w", err)
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var out []Product
	for _, p := range products {
		if counts[p.ID] > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// SupportedDomains returns the deduplicated union of domains across every
// product with at least one document. Order is not guaranteed.
func (s *Service) SupportedDomains(ctx context.Context) ([]string, error) {
	products, err := s.ProductsWithDocuments(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	domains := make([]string, 0, len(products))
	for _, p := range products {
		for _, d := range p.Domains {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			domains = append(domains, d)
		}
	}
	return domains, nil
}
