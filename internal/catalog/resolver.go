package catalog

import (
	"context"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/planservice"
)

// RemoteResolver adapts a planning-service client into a LineResolver.
func RemoteResolver(client planservice.Client) LineResolver {
	return func(ctx context.Context, id string) (domain.BudgetLine, error) {
		rec, err := client.GetBudgetLine(ctx, id)
		if err != nil {
			return domain.BudgetLine{}, err
		}
		return rec.ToDomain(), nil
	}
}
