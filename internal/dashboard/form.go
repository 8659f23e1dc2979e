// Package dashboard implements the admin product-creation flow.
//
// The flow is modeled as an explicit serializable view model rather than
// per-widget session state: resetting the form is replacing the whole Form
// value, so stale input cannot leak between instances.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lvndry/clausea-backend/internal/catalog"
	"github.com/lvndry/clausea-backend/internal/retry"
)

// State is the creation form lifecycle state.
type State string

// Form states. Success is computed on submit but only surfaced on the next
// render, mirroring how the admin UI sequences its success banner.
const (
	StateEditing        State = "editing"
	StatePendingSuccess State = "pending-success"
	StateSuccessShown   State = "success-shown"
)

// Input carries the raw form fields as submitted.
type Input struct {
	Name          string   `json:"name"`
	CompanyName   string   `json:"company_name"`
	Slug          string   `json:"slug"`
	Domains       []string `json:"domains"`
	Categories    []string `json:"categories"`
	CrawlBaseURLs []string `json:"crawl_base_urls"`
}

// Created summarizes the product a successful submission produced.
type Created struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Form is the serializable view model for one creation-form instance.
type Form struct {
	State   State    `json:"state"`
	Input   Input    `json:"input"`
	Errors  []string `json:"errors,omitempty"`
	Created *Created `json:"created,omitempty"`
}

// NewForm returns a fresh editing form.
func NewForm() Form {
	return Form{State: StateEditing}
}

// Render surfaces a computed success: pending-success becomes
// success-shown. Other states are unchanged.
func (f Form) Render() Form {
	if f.State == StatePendingSuccess {
		f.State = StateSuccessShown
	}
	return f
}

// CreateOther discards the form and starts over with empty fields.
func (f Form) CreateOther() Form {
	return NewForm()
}

// User-facing messages for the creation flow.
const (
	msgNameRequired   = "Product name is required!"
	msgTargetRequired = "At least one domain or crawl base URL is required!"
	msgCreateFailed   = "Failed to create product. Please try again."
)

// IDGenerator produces product IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Flow executes form submissions against the catalog store.
type Flow struct {
	store    catalog.Store
	idGen    IDGenerator
	retryCfg retry.Config
	logger   *zap.Logger
}

// NewFlow wires a Flow.
func NewFlow(store catalog.Store, idGen IDGenerator, retryCfg retry.Config, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{store: store, idGen: idGen, retryCfg: retryCfg, logger: logger}
}

// Submit validates the input, checks slug availability, persists the
// product and returns the next form state.
//
//	editing --submit(valid)-->     pending-success
//	editing --submit(invalid)-->   editing with field errors
//	editing --submit(duplicate)--> editing with a duplicate-slug error
//
// The uniqueness check and the insert are retried independently; the
// unique slug index in storage is the real guard against the
// check-then-insert race.
func (fl *Flow) Submit(ctx context.Context, form Form) (Form, error) {
	form.Errors = nil
	form.Created = nil
	form.State = StateEditing

	candidate := catalog.Product{
		Name:          form.Input.Name,
		CompanyName:   form.Input.CompanyName,
		Slug:          form.Input.Slug,
		Domains:       form.Input.Domains,
		Categories:    form.Input.Categories,
		CrawlBaseURLs: form.Input.CrawlBaseURLs,
	}.Normalize()

	if errs := candidate.Validate(); len(errs) > 0 {
		for _, err := range errs {
			switch {
			case errors.Is(err, catalog.ErrNameRequired):
				form.Errors = append(form.Errors, msgNameRequired)
			case errors.Is(err, catalog.ErrCrawlTargetRequired):
				form.Errors = append(form.Errors, msgTargetRequired)
			default:
				form.Errors = append(form.Errors, err.Error())
			}
		}
		return form, nil
	}

	if candidate.Slug == "" {
		candidate.Slug = catalog.DeriveSlug(candidate.Name)
	}

	exists, err := fl.slugExists(ctx, candidate.Slug)
	if err != nil {
		fl.logger.Error("slug existence check failed",
			zap.String("slug", candidate.Slug), zap.Error(err))
		form.Errors = append(form.Errors, msgCreateFailed)
		return form, nil
	}
	if exists {
		form.Errors = append(form.Errors, fmt.Sprintf(
			"Product with slug '%s' already exists. Please choose a different slug.", candidate.Slug))
		return form, nil
	}

	id, err := fl.idGen.NewID()
	if err != nil {
		return form, fmt.Errorf("generate product id: %w", err)
	}
	candidate.ID = id

	createErr := retry.Do(ctx, fl.retryCfg, func(ctx context.Context) error {
		return fl.store.CreateProduct(ctx, candidate)
	})
	if createErr != nil {
		fl.logger.Error("product creation failed",
			zap.String("slug", candidate.Slug), zap.Error(createErr))
		form.Errors = append(form.Errors, msgCreateFailed)
		return form, nil
	}

	form.State = StatePendingSuccess
	form.Created = &Created{ID: candidate.ID, Name: candidate.Name, Slug: candidate.Slug}
	return form, nil
}

func (fl *Flow) slugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := retry.Do(ctx, fl.retryCfg, func(ctx context.Context) error {
		_, err := fl.store.GetProductBySlug(ctx, slug)
		if errors.Is(err, catalog.ErrNotFound) {
			exists = false
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}
