package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	application "shopstream/contexts/commerce/payments-service/application"
	"shopstream/contexts/commerce/payments-service/domain/entities"
	"shopstream/contexts/commerce/payments-service/ports"
)

// SimulatedClient stands in for the external payment provider. Charges and
// refunds succeed unless the payment method carries a "declined" marker,
// which lets tests and demo flows exercise the failure paths without a real
// provider account.
type SimulatedClient struct {
	Logger *slog.Logger

	// ChargeFn and RefundFn override the simulated behavior when set.
	ChargeFn func(ctx context.Context, payment entities.Payment) (ports.GatewayCharge, error)
	RefundFn func(ctx context.Context, payment entities.Payment, amount float64) (ports.GatewayRefund, error)
}

func (c *SimulatedClient) Charge(ctx context.Context, payment entities.Payment) (ports.GatewayCharge, error) {
	if c.ChargeFn != nil {
		return c.ChargeFn(ctx, payment)
	}

	if strings.Contains(payment.PaymentMethod, "declined") {
		return ports.GatewayCharge{Success: false, FailureReason: "card declined"}, nil
	}

	externalID := "ch_" + uuid.NewString()
	c.log("charge authorized",
		"event", "gateway_charge_authorized",
		"payment_id", payment.ID,
		"external_id", externalID,
		"amount", payment.Amount,
	)
	return ports.GatewayCharge{Success: true, ExternalID: externalID}, nil
}

func (c *SimulatedClient) Refund(ctx context.Context, payment entities.Payment, amount float64) (ports.GatewayRefund, error) {
	if c.RefundFn != nil {
		return c.RefundFn(ctx, payment, amount)
	}

	if payment.ExternalID == "" {
		return ports.GatewayRefund{Success: false, FailureReason: "no provider charge to refund"}, nil
	}
	if amount > payment.Amount {
		return ports.GatewayRefund{}, fmt.Errorf("refund of %.2f exceeds charge %.2f", amount, payment.Amount)
	}

	externalID := "re_" + uuid.NewString()
	c.log("refund issued",
		"event", "gateway_refund_issued",
		"payment_id", payment.ID,
		"external_id", externalID,
		"amount", amount,
	)
	return ports.GatewayRefund{Success: true, ExternalID: externalID}, nil
}

func (c *SimulatedClient) log(msg string, args ...any) {
	logger := application.ResolveLogger(c.Logger)
	args = append(args, "module", "commerce/payments-service", "layer", "adapter")
	logger.Info(msg, args...)
}
