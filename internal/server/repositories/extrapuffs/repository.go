package extrapuffs

import (
	"context"

	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, puff *models.ExtraPuff) (*models.ExtraPuff, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]models.ExtraPuff, error)
}
