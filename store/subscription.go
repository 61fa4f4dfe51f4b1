package store

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
)

// Subscription mirrors the payment processor's subscription object. ExternalID
// and CustomerID are the processor-side identifiers; webhook events keep this
// row in sync.
type Subscription struct {
	ID                int32
	UserID            int32
	ExternalID        string
	CustomerID        string
	Tier              Tier
	Status            SubscriptionStatus
	PeriodStartTs     int64
	PeriodEndTs       int64
	CancelAtPeriodEnd bool
	CreatedTs         int64
	UpdatedTs         int64
}

type FindSubscription struct {
	UserID     *int32
	ExternalID *string
}

type DeleteSubscription struct {
	ExternalID string
}
