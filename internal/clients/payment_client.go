package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultDeclinedCards are card numbers the stub gateway always declines.
var DefaultDeclinedCards = []string{"4000000000000002"}

var _ domain.PaymentGateway = (*stubPaymentGateway)(nil)

// stubPaymentGateway stands in for a real payment provider. It approves
// everything except missing or declined card numbers.
type stubPaymentGateway struct {
	declined map[string]struct{}
	log      *logrus.Logger
}

func NewStubPaymentGateway(declinedCards []string, logger *logrus.Logger) domain.PaymentGateway {
	declined := make(map[string]struct{}, len(declinedCards))
	for _, c := range declinedCards {
		if c = normalizeCard(c); c != "" {
			declined[c] = struct{}{}
		}
	}
	return &stubPaymentGateway{
		declined: declined,
		log:      logger,
	}
}

func (g *stubPaymentGateway) Process(ctx context.Context, orderID int64, method domain.PaymentMethod, details domain.PaymentDetails) (*domain.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch method {
	case domain.PaymentCreditCard:
		card := normalizeCard(details.CardNumber)
		if card == "" {
			g.log.Warnf("PaymentGateway: Order %d has no card number", orderID)
			return &domain.PaymentResult{Success: false, Status: domain.PaymentFailed, Message: "card number is required"}, nil
		}
		if _, ok := g.declined[card]; ok {
			g.log.Warnf("PaymentGateway: Card ending %s declined for order %d", lastFour(card), orderID)
			return &domain.PaymentResult{Success: false, Status: domain.PaymentFailed, Message: "card declined"}, nil
		}
		return g.approve(orderID, "DEMO_", domain.PaymentCompleted), nil
	case domain.PaymentBankTransfer:
		return g.approve(orderID, "BT_", domain.PaymentPending), nil
	case domain.PaymentCOD:
		return g.approve(orderID, "COD_", domain.PaymentPending), nil
	default:
		return nil, fmt.Errorf("unsupported payment method %q: %w", method, domain.ErrInvalidInput)
	}
}

func (g *stubPaymentGateway) approve(orderID int64, prefix string, status domain.PaymentStatus) *domain.PaymentResult {
	txID := prefix + uuid.NewString()
	g.log.Infof("PaymentGateway: Order %d accepted with transaction %s (%s)", orderID, txID, status)
	return &domain.PaymentResult{Success: true, TransactionID: txID, Status: status}
}

func normalizeCard(n string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(n))
}

func lastFour(card string) string {
	if len(card) <= 4 {
		return card
	}
	return card[len(card)-4:]
}
