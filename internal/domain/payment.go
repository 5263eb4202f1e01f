package domain

// Payment is the warehouse-side record of a Stripe subscription or charge;
// amount/currency stay null for subscriptions, whose price lives in Stripe.
type Payment struct {
	PaymentID            string  `db:"PAYMENT_ID" json:"payment_id"`
	SessionID            *string `db:"SESSION_ID" json:"session_id,omitempty"`
	DonorID              *string `db:"DONOR_ID" json:"donor_id,omitempty"`
	Type                 string  `db:"TYPE" json:"type"`
	Amount               *int64  `db:"AMOUNT" json:"amount,omitempty"`
	Currency             *string `db:"CURRENCY" json:"currency,omitempty"`
	StripeCustomerID     *string `db:"STRIPE_CUSTOMER_ID" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `db:"STRIPE_SUBSCRIPTION_ID" json:"stripe_subscription_id,omitempty"`
	Status               string  `db:"STATUS" json:"status"`
}

// PaymentMethodRow links a saved Stripe payment method to a donor.
type PaymentMethodRow struct {
	PMID                  string `db:"PM_ID" json:"pm_id"`
	DonorID               string `db:"DONOR_ID" json:"donor_id"`
	StripeCustomerID      string `db:"STRIPE_CUSTOMER_ID" json:"stripe_customer_id"`
	StripePaymentMethodID string `db:"STRIPE_PAYMENT_METHOD_ID" json:"stripe_payment_method_id"`
	Usage                 string `db:"USAGE" json:"usage"`
}
