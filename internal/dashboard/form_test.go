package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lvndry/clausea-backend/internal/dashboard"
	"github.com/lvndry/clausea-backend/internal/id/uuid"
	"github.com/lvndry/clausea-backend/internal/retry"
	"github.com/lvndry/clausea-backend/internal/storage/memory"
)

func newFlow(t *testing.T) (*dashboard.Flow, *memory.CatalogStore) {
	t.Helper()
	store := memory.NewCatalogStore()
	cfg := retry.Config{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	return dashboard.NewFlow(store, uuid.New(), cfg, zap.NewNop()), store
}

func TestSubmit_ValidInputReachesPendingSuccess(t *testing.T) {
	t.Parallel()

	flow, store := newFlow(t)
	form := dashboard.NewForm()
	form.Input = dashboard.Input{
		Name:    "Google Drive",
		Domains: []string{"drive.google.com"},
	}

	next, err := flow.Submit(context.Background(), form)
	require.NoError(t, err)
	require.Equal(t, dashboard.StatePendingSuccess, next.State)
	require.Empty(t, next.Errors)
	require.NotNil(t, next.Created)
	require.Equal(t, "google-drive", next.Created.Slug)
	require.NotEmpty(t, next.Created.ID)

	stored, err := store.GetProductBySlug(context.Background(), "google-drive")
	require.NoError(t, err)
	require.Equal(t, "Google Drive", stored.Name)

	shown := next.Render()
	require.Equal(t, dashboard.StateSuccessShown, shown.State)

	fresh := shown.CreateOther()
	require.Equal(t, dashboard.StateEditing, fresh.State)
	require.Empty(t, fresh.Input.Name)
	require.Nil(t, fresh.Created)
}

func TestSubmit_EmptyNameIsRejectedWithoutPersistence(t *testing.T) {
	t.Parallel()

	flow, store := newFlow(t)
	form := dashboard.NewForm()
	form.Input = dashboard.Input{Name: "   ", Domains: []string{"example.com"}}

	next, err := flow.Submit(context.Background(), form)
	require.NoError(t, err)
	require.Equal(t, dashboard.StateEditing, next.State)
	require.Contains(t, next.Errors, "Product name is required!")

	products, err := store.ListProducts(context.Background())
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestSubmit_RequiresDomainOrCrawlURL(t *testing.T) {
	t.Parallel()

	flow, _ := newFlow(t)
	form := dashboard.NewForm()
	form.Input = dashboard.Input{Name: "Example"}

	next, err := flow.Submit(context.Background(), form)
	require.NoError(t, err)
	require.Equal(t, dashboard.StateEditing, next.State)
	require.Contains(t, next.Errors, "At least one domain or crawl base URL is required!")
}

func TestSubmit_DuplicateSlugRejectedSequentially(t *testing.T) {
	t.Parallel()

	flow, _ := newFlow(t)
	ctx := context.Background()

	first := dashboard.NewForm()
	first.Input = dashboard.Input{Name: "Ben & Jerry", Domains: []string{"benjerry.com"}}
	next, err := flow.Submit(ctx, first)
	require.NoError(t, err)
	require.Equal(t, dashboard.StatePendingSuccess, next.State)

	// Same derived slug via a different display name spacing.
	second := dashboard.NewForm()
	second.Input = dashboard.Input{Name: "  Ben & Jerry ", Domains: []string{"other.com"}}
	next, err = flow.Submit(ctx, second)
	require.NoError(t, err)
	require.Equal(t, dashboard.StateEditing, next.State)
	require.Len(t, next.Errors, 1)
	require.Contains(t, next.Errors[0], "ben-and-jerry")
	require.Contains(t, next.Errors[0], "already exists")
}

func TestSubmit_ExplicitSlugWins(t *testing.T) {
	t.Parallel()

	flow, store := newFlow(t)
	form := dashboard.NewForm()
	form.Input = dashboard.Input{Name: "Example", Slug: "custom-slug", Domains: []string{"example.com"}}

	next, err := flow.Submit(context.Background(), form)
	require.NoError(t, err)
	require.Equal(t, dashboard.StatePendingSuccess, next.State)
	require.Equal(t, "custom-slug", next.Created.Slug)

	_, err = store.GetProductBySlug(context.Background(), "custom-slug")
	require.NoError(t, err)
}

func TestSubmit_StoreFailureSurfacesGenericError(t *testing.T) {
	t.Parallel()

	flow, store := newFlow(t)
	store.Err = context.DeadlineExceeded

	form := dashboard.NewForm()
	form.Input = dashboard.Input{Name: "Example", Domains: []string{"example.com"}}

	next, err := flow.Submit(context.Background(), form)
	require.NoError(t, err)
	require.Equal(t, dashboard.StateEditing, next.State)
	require.Contains(t, next.Errors, "Failed to create product. Please try again.")
}

func TestRender_IsIdempotentOutsidePendingSuccess(t *testing.T) {
	t.Parallel()

	form := dashboard.NewForm()
	require.Equal(t, dashboard.StateEditing, form.Render().State)

	form.State = dashboard.StateSuccessShown
	require.Equal(t, dashboard.StateSuccessShown, form.Render().State)
}
