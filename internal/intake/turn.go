package intake

import (
	"context"

	"loan-intake/internal/common/metrics"
	"loan-intake/internal/models"
)

// OfferUnavailableReply is sent when the application is complete but the
// offer source failed. The next turn tries again.
const OfferUnavailableReply = "Your application is complete, but we could not prepare your offer right now. Please send any message to try again."

// TurnOutcome is what one turn produced.
type TurnOutcome struct {
	Reply       string `json:"reply"`
	Prompt      string `json:"prompt,omitempty"`
	Complete    bool   `json:"complete"`
	OfferIssued bool   `json:"offerIssued"`
	Changed     bool   `json:"changed"`
}

// Turn advances app with text, then either asks the next question or returns
// the offer. The offer is issued exactly once, on the turn the application
// first becomes complete.
func (e *Engine) Turn(ctx context.Context, app *models.Application, text string) TurnOutcome {
	out := TurnOutcome{Changed: e.Advance(ctx, app, text)}

	if prompt, missing := NextPrompt(app); missing {
		out.Prompt = prompt
		out.Reply = prompt
		metrics.IntakeTurns.WithLabelValues("prompted").Inc()
		return out
	}

	out.Complete = true
	if app.FinalOffer == nil {
		lenders, offer, err := e.offers.Offer(ctx, app)
		if err != nil {
			e.logger.Error("Offer source failed", map[string]interface{}{"error": err})
			out.Reply = OfferUnavailableReply
			metrics.IntakeTurns.WithLabelValues("offer_failed").Inc()
			return out
		}
		app.FilteredLenders = lenders
		app.FinalOffer = &offer
		out.OfferIssued = true
		metrics.OffersIssued.Inc()
		e.logger.Info("Loan offer issued", map[string]interface{}{
			"lenders": lenders,
			"amount":  offer.Amount,
		})
	}

	out.Reply = OfferSummary(app)
	metrics.IntakeTurns.WithLabelValues("completed").Inc()
	return out
}
