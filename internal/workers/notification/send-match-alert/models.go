// internal/workers/notification/send-match-alert/models.go
package sendmatchalert

type Input struct {
	BuyerID   string     `json:"buyerId"`
	SignalID  string     `json:"signalId,omitempty"`
	AlertType string     `json:"alertType"`
	Priority  string     `json:"priority,omitempty"`
	TopMatch  *MatchInfo `json:"topMatch,omitempty"`
	Matches   int        `json:"totalMatches"`
}

// MatchInfo is the slice of a ranked result worth mentioning in an alert.
type MatchInfo struct {
	ListingID    string  `json:"id"`
	SellerID     string  `json:"sellerId"`
	Category     string  `json:"category"`
	Region       string  `json:"region,omitempty"`
	PricePerUnit float64 `json:"pricePerUnit"`
	MatchScore   float64 `json:"matchScore"`
	MatchQuality string  `json:"matchQuality"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Alert types
const (
	TypeMatchesFound   = "matches_found"
	TypeSignalResponse = "signal_response"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
