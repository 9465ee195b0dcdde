package app

import (
	"context"
	"fmt"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"
)

// StatusService answers client polling for transaction state. It is a pure
// read: repeated calls reflect the latest applied webhook transition and
// never mutate anything.
type StatusService struct {
	store ports.Store
}

func NewStatusService(store ports.Store) *StatusService {
	return &StatusService{store: store}
}

// Get resolves the payment status for an order reference.
// ports.ErrNotFound passes through so the handler can report a distinct
// "unknown" outcome instead of conflating it with a real status.
func (s *StatusService) Get(ctx context.Context, reference string) (domain.PaymentStatus, error) {
	status, err := s.store.StatusByReference(ctx, reference)
	if err != nil {
		return "", fmt.Errorf("status: %q: %w", reference, err)
	}
	return status, nil
}
