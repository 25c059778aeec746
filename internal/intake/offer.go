package intake

import (
	"context"

	"loan-intake/internal/models"
)

// OfferSource produces the lenders and offer for a completed application.
type OfferSource interface {
	Offer(ctx context.Context, app *models.Application) ([]string, models.Offer, error)
}

// StaticOffers returns the same lenders and offer for every application.
type StaticOffers struct {
	Lenders []string
	Terms   models.Offer
}

// DefaultOffers is the stub offer used when configuration does not override it.
func DefaultOffers() StaticOffers {
	return StaticOffers{
		Lenders: []string{"HDFC", "ICICI"},
		Terms: models.Offer{
			Amount: 4000000,
			EMI:    42000,
			ROI:    8.1,
			Tenure: 20,
		},
	}
}

func (s StaticOffers) Offer(_ context.Context, _ *models.Application) ([]string, models.Offer, error) {
	return append([]string(nil), s.Lenders...), s.Terms, nil
}
