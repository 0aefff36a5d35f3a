// Package catalog operaciones sobre el árbol de productos.
package catalog

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/domain"
	domcatalog "github.com/AstralMoonlight/torn/internal/domain/catalog"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/rs/zerolog"
)

// ProductUseCase desactivación explícita de un producto y todas sus variantes.
type ProductUseCase struct {
	tx  repository.TxRunner
	log zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx repository.TxRunner, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{tx: tx, log: log}
}

// Deactivate desactiva productID y sus descendientes en una transacción. No toca stock ni kardex.
func (uc *ProductUseCase) Deactivate(ctx context.Context, productID string) (*dto.DeactivateProductResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var ids []string
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		root, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if root == nil {
			return domain.NewNotFound("producto", productID)
		}
		ids, err = domcatalog.CollectSubtree(root.ID, func(parentID string) ([]string, error) {
			children, err := repos.Products.ListByParent(ctx, parentID)
			if err != nil {
				return nil, err
			}
			out := make([]string, 0, len(children))
			for _, c := range children {
				out = append(out, c.ID)
			}
			return out, nil
		})
		if err != nil {
			return err
		}
		_, err = repos.Products.SetActive(ctx, ids, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", productID).Int("count", len(ids)).Msg("producto y variantes desactivados")
	return &dto.DeactivateProductResponse{RootID: productID, Deactivated: ids}, nil
}
