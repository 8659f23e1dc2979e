// Package catalog defines the product/document domain model and the
// persistence contract shared across subsystems.
package catalog

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Verdict grades how privacy-friendly a product's policies are.
type Verdict string

// Verdict values produced by the analysis pipeline.
const (
	VerdictVeryUserFriendly Verdict = "very_user_friendly"
	VerdictUserFriendly     Verdict = "user_friendly"
	VerdictModerate         Verdict = "moderate"
	VerdictPervasive        Verdict = "pervasive"
	VerdictVeryPervasive    Verdict = "very_pervasive"
)

// Product describes a company/site and its privacy-policy crawl targets.
// The storage-internal _id is never part of the model; Product.ID is the
// caller-generated identifier used everywhere.
type Product struct {
	ID            string   `json:"id" bson:"id"`
	Name          string   `json:"name" bson:"name"`
	CompanyName   string   `json:"company_name,omitempty" bson:"company_name,omitempty"`
	Slug          string   `json:"slug" bson:"slug"`
	Domains       []string `json:"domains" bson:"domains"`
	Categories    []string `json:"categories" bson:"categories"`
	CrawlBaseURLs []string `json:"crawl_base_urls" bson:"crawl_base_urls"`
}

// Document is an analysis artifact tied to a product by product_id.
// Its payload beyond the link fields is produced by the analysis pipeline
// and opaque to this service, so it is carried as-is.
type Document struct {
	ID        string `json:"id" bson:"id"`
	ProductID string `json:"product_id" bson:"product_id"`

	// Attrs holds the remaining pipeline-owned fields untouched.
	Attrs bson.M `json:"attrs,omitempty" bson:",inline"`
}

// Overview is the derived analysis summary for a product. It is read-only
// here: the analysis pipeline owns it, this service only reshapes it for
// the extension.
type Overview struct {
	ProductName    string   `json:"product_name" bson:"product_name"`
	Verdict        Verdict  `json:"verdict" bson:"verdict"`
	RiskScore      int      `json:"risk_score" bson:"risk_score"`
	OneLineSummary string   `json:"one_line_summary" bson:"one_line_summary"`
	Dangers        []string `json:"dangers" bson:"dangers"`
	Keypoints      []string `json:"keypoints" bson:"keypoints"`
}

// Validation errors surfaced to the product creation flow.
var (
	ErrNameRequired        = errors.New("product name is required")
	ErrCrawlTargetRequired = errors.New("at least one domain or crawl base URL is required")
)

// DeriveSlug builds the URL identifier from a product name: trimmed,
// lowercased, spaces to hyphens, "&" to "and". Other punctuation passes
// through untouched; existing product URLs depend on that.
func DeriveSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "&", "and")
	return slug
}

// Validate enforces the creation invariants: a non-empty name and at least
// one of domains/crawl base URLs.
func (p Product) Validate() []error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if len(trimNonEmpty(p.Domains)) == 0 && len(trimNonEmpty(p.CrawlBaseURLs)) == 0 {
		errs = append(errs, ErrCrawlTargetRequired)
	}
	return errs
}

// Normalize trims whitespace from every list field and the scalar inputs,
// dropping entries left empty.
func (p Product) Normalize() Product {
	p.Name = strings.TrimSpace(p.Name)
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.Slug = strings.TrimSpace(p.Slug)
	p.Domains = trimNonEmpty(p.Domains)
	p.Categories = trimNonEmpty(p.Categories)
	p.CrawlBaseURLs = trimNonEmpty(p.CrawlBaseURLs)
	return p
}

func trimNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
