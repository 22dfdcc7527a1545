package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/infra/fulfillment"
)

// 商品はPrintfulのストアが正。ローカルには持たない。
type ProductUsecase struct {
	fulfillment FulfillmentGateway
	log         *slog.Logger
}

func NewProductUsecase(f FulfillmentGateway, logger *slog.Logger) *ProductUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductUsecase{fulfillment: f, log: logger}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Q string
}

type ProductListOutput struct {
	Items []fulfillment.StoreProduct `json:"items"`
	Total int                        `json:"total"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	q := strings.ToLower(strings.TrimSpace(in.Q))
	if len(q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	products, err := u.fulfillment.ListStoreProducts(ctx)
	if err != nil {
		u.log.ErrorContext(ctx, "list store products failed", "error", err)
		return ProductListOutput{}, providerError(err)
	}

	items := make([]fulfillment.StoreProduct, 0, len(products))
	for _, p := range products {
		//非表示は出さない
		if p.IsIgnored {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		items = append(items, p)
	}

	return ProductListOutput{Items: items, Total: len(items)}, nil
}
