package store

// Usage accumulates message/token/cost counters per user per billing period.
type Usage struct {
	ID            int32
	UserID        int32
	PeriodStartTs int64
	PeriodEndTs   int64
	MessagesCount int32
	TokensUsed    int32
	CostCents     int32
	Tier          Tier
}

type FindUsage struct {
	UserID        *int32
	PeriodStartTs *int64
}

// IncrementUsage adds the given deltas to the user's counters for the period,
// creating the row if it does not exist yet.
type IncrementUsage struct {
	UserID        int32
	PeriodStartTs int64
	PeriodEndTs   int64
	Messages      int32
	Tokens        int32
	CostCents     int32
	Tier          Tier
}
