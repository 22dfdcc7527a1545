package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"storefront/internal/infra/fulfillment"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProducts(pf *FulfillmentMock) *usecase.ProductUsecase {
	return usecase.NewProductUsecase(pf, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListProducts_FiltersIgnoredAndQuery(t *testing.T) {
	pf := new(FulfillmentMock)
	pf.On("ListStoreProducts", mock.Anything).Return([]fulfillment.StoreProduct{
		{ID: 1, Name: "Classic Tee"},
		{ID: 2, Name: "Hidden Tee", IsIgnored: true},
		{ID: 3, Name: "Mug"},
	}, nil)

	out, err := newProducts(pf).ListProducts(context.Background(), usecase.ListProductsInput{Q: " TEE "})

	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(1), out.Items[0].ID)
	assert.Equal(t, 1, out.Total)
}

func TestListProducts_NoQueryReturnsVisible(t *testing.T) {
	pf := new(FulfillmentMock)
	pf.On("ListStoreProducts", mock.Anything).Return([]fulfillment.StoreProduct{
		{ID: 1, Name: "Classic Tee"},
		{ID: 2, Name: "Hidden", IsIgnored: true},
		{ID: 3, Name: "Mug"},
	}, nil)

	out, err := newProducts(pf).ListProducts(context.Background(), usecase.ListProductsInput{})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
}

func TestListProducts_QueryTooLong(t *testing.T) {
	pf := new(FulfillmentMock)

	_, err := newProducts(pf).ListProducts(context.Background(), usecase.ListProductsInput{Q: strings.Repeat("a", 101)})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	pf.AssertNotCalled(t, "ListStoreProducts", mock.Anything)
}

func TestListProducts_UpstreamError(t *testing.T) {
	pf := new(FulfillmentMock)
	pf.On("ListStoreProducts", mock.Anything).Return(nil, &fulfillment.UpstreamError{Status: 500, Message: "store unavailable"})

	_, err := newProducts(pf).ListProducts(context.Background(), usecase.ListProductsInput{})

	assertHTTPStatus(t, err, http.StatusBadGateway)
	assertErrContains(t, err, "store unavailable")
}
