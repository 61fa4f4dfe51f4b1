package store

// Tier is the subscription level gating message quota, retention window and
// model access.
type Tier string

const (
	TierTrial    Tier = "trial"
	TierSolo     Tier = "solo"
	TierPro      Tier = "pro"
	TierBusiness Tier = "business"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierTrial, TierSolo, TierPro, TierBusiness:
		return true
	}
	return false
}

type User struct {
	ID       int32
	Email    string
	Name     string
	GoogleID string
	Tier     Tier
	CreatedTs int64
	UpdatedTs int64
}

type FindUser struct {
	ID       *int32
	Email    *string
	GoogleID *string
}

type UpdateUser struct {
	ID        int32
	Name      *string
	Tier      *Tier
	UpdatedTs *int64
}

type DeleteUser struct {
	ID int32
}
