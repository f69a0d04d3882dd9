package usecase

import (
	"context"
	"time"

	"sales-segmentation/internal/domain"
)

// TransactionSource fetches raw sales rows for an inclusive date range.
// The usecase layer depends on this interface, not on a concrete backend.
//
//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go
type TransactionSource interface {
	Fetch(ctx context.Context, from, to time.Time) ([]domain.RawRow, error)
}

// ChannelLookup resolves the sales channel of a live-system customer.
// ok is false when the customer has no channel; that is not an error.
type ChannelLookup interface {
	LookupChannel(ctx context.Context, customerID string) (label string, ok bool, err error)
}
