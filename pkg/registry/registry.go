// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByTaskType returns the activity registered for a Zeebe task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, error) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("activity not found for task type: %s", taskType)
}

// Default returns the built-in registry covering the matching and
// notification workers shipped with this service.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-01",
		Activities: []Activity{
			{
				ID:                   "rank-listings",
				DisplayName:          "Rank Listings",
				Description:          "Fetches candidate listings and signal responses, scores them against buyer criteria and returns a ranked result set",
				Category:             "matching",
				Version:              "1.0.0",
				TaskType:             "rank-listings",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"PARSE_ERROR", "CRITERIA_VALIDATION_FAILED", "RANKING_FAILED"},
				Timeout:              "30s",
				Retries:              3,
				Workflows:            []string{"buyer-match-discovery"},
				Tags:                 []string{"matching", "ranking", "listings"},
			},
			{
				ID:                   "rank-signal-responses",
				DisplayName:          "Rank Signal Responses",
				Description:          "Scores seller responses to a buy signal against the signal's criteria and returns them ranked",
				Category:             "matching",
				Version:              "1.0.0",
				TaskType:             "rank-signal-responses",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"PARSE_ERROR", "CRITERIA_VALIDATION_FAILED", "RANKING_FAILED"},
				Timeout:              "30s",
				Retries:              3,
				Workflows:            []string{"buy-signal-fulfilment"},
				Tags:                 []string{"matching", "ranking", "signals"},
			},
			{
				ID:                   "send-match-alert",
				DisplayName:          "Send Match Alert",
				Description:          "Notifies a buyer about new matches via email and, for high priority alerts, SMS",
				Category:             "notification",
				Version:              "1.0.0",
				TaskType:             "send-match-alert",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"PARSE_ERROR", "NOTIFICATION_SEND_FAILED"},
				Timeout:              "30s",
				Retries:              3,
				Workflows:            []string{"buyer-match-discovery", "buy-signal-fulfilment"},
				Tags:                 []string{"notification", "email", "sms"},
			},
		},
	}
}
