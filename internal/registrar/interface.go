package registrar

import (
	"context"

	"github.com/mauv0809/scorekeeper/internal/club"
)

// Store defines the database operations required by the registrar.
type Store interface {
	WithTx(ctx context.Context, fn func(tx club.Tx) error) error
}
