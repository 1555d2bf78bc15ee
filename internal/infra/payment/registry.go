package payment

import (
	"log/slog"

	"parish/config"
	"parish/internal/domain/entity"
	"parish/internal/domain/service"
)

// Registry holds the gateways whose credentials are configured.
// Methods without credentials are absent, which the orchestrator surfaces as
// a temporarily unavailable payment method.
type Registry struct {
	gateways map[entity.PaymentMethod]service.PaymentGateway
}

// NewRegistry builds the gateway registry from configuration.
func NewRegistry(cfg *config.Config, logger *slog.Logger) service.GatewayRegistry {
	gateways := make(map[entity.PaymentMethod]service.PaymentGateway)

	if cfg.Payments != nil {
		if cfg.Payments.Paystack.IsConfigured() {
			gateways[entity.PaymentMethodPaystack] = NewPaystackGateway(cfg.Payments.Paystack)
		}
		if cfg.Payments.Fincra.IsConfigured() {
			gateways[entity.PaymentMethodFincra] = NewFincraGateway(cfg.Payments.Fincra)
		}
		if cfg.Payments.Stripe.IsConfigured() {
			gateways[entity.PaymentMethodStripe] = NewStripeGateway(cfg.Payments.Stripe)
		}
		if cfg.Payments.Flutterwave.IsConfigured() {
			gateways[entity.PaymentMethodFlutterwave] = NewFlutterwaveGateway(cfg.Payments.Flutterwave)
		}
	}

	for _, method := range []entity.PaymentMethod{
		entity.PaymentMethodPaystack,
		entity.PaymentMethodFincra,
		entity.PaymentMethodStripe,
		entity.PaymentMethodFlutterwave,
	} {
		if _, ok := gateways[method]; !ok {
			logger.Warn("payment gateway not configured",
				slog.String("method", method.String()),
			)
		}
	}

	return &Registry{gateways: gateways}
}

// Lookup returns the gateway for the method, or false when unconfigured.
func (r *Registry) Lookup(method entity.PaymentMethod) (service.PaymentGateway, bool) {
	gw, ok := r.gateways[method]

	return gw, ok
}
