package domain

type CheckInStatus string

const (
	StatusClaimed        CheckInStatus = "claimed"
	StatusAlreadyClaimed CheckInStatus = "already_claimed"
	StatusError          CheckInStatus = "error"
)

type RewardItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Icon  string `json:"icon,omitempty"`
}

type CheckInOutcome struct {
	AccountID   AccountID     `json:"account_id"`
	AccountName string        `json:"account_name,omitempty"`
	Status      CheckInStatus `json:"status"`
	Rewards     []RewardItem  `json:"rewards,omitempty"`
	Error       string        `json:"error,omitempty"`
}
