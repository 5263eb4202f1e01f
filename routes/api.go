package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/globalfaces/phoenix-backend/environments"
	"github.com/globalfaces/phoenix-backend/handlers"
	"github.com/globalfaces/phoenix-backend/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	sessionHandler *handlers.SessionHandler,
	donorHandler *handlers.DonorHandler,
	productHandler *handlers.ProductHandler,
	verificationHandler *handlers.VerificationHandler,
	paymentHandler *handlers.PaymentHandler,
	signatureHandler *handlers.SignatureHandler,
	webhookHandler *handlers.WebhookHandler,
	eventHandler *handlers.EventHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/healthz", healthHandler.Healthz)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Provider callbacks authenticate with their own signatures, not ours.
	e.POST("/webhook/stripe", webhookHandler.Stripe)
	e.POST("/webhook/twilio", webhookHandler.TwilioInbound)

	// Everything the tablet calls sits behind the shared app key.
	api := e.Group("", middlewares.APIKeyAuth(cfg.Auth.AppAPIKey))

	api.POST("/fundraiser/login", sessionHandler.FundraiserLogin)

	api.POST("/donor/upsert", donorHandler.Upsert)
	api.POST("/donor/consent", donorHandler.UpdateConsent)
	api.GET("/donor/:donor_id", donorHandler.GetDonor)

	api.GET("/products/campaign/:campaign_id", productHandler.CampaignProducts)
	api.GET("/products/lookup", productHandler.Lookup)

	api.POST("/verification/sms/send", verificationHandler.SendSms)
	api.GET("/verification/sms/status", verificationHandler.Status)

	api.POST("/payment_intent", paymentHandler.CreatePaymentIntent)
	api.GET("/payment_intent/:payment_intent_id/payment_method", paymentHandler.PaymentMethodFromIntent)
	api.POST("/setup_intent", paymentHandler.CreateSetupIntent)
	api.POST("/subscriptions/create", paymentHandler.CreateSubscription)
	api.POST("/customer/upsert", paymentHandler.UpsertCustomer)
	api.POST("/payment_method/attach", paymentHandler.AttachPaymentMethod)

	api.POST("/terminal/connection_token", paymentHandler.ConnectionToken)
	api.GET("/terminal/location", paymentHandler.TerminalLocation)
	api.POST("/terminal/payment_intent", paymentHandler.CreateTerminalPaymentIntent)
	api.POST("/terminal/register_device", paymentHandler.RegisterReader)

	api.POST("/signature/upload", signatureHandler.Upload)

	api.POST("/log-event", eventHandler.LogEvent)
}
