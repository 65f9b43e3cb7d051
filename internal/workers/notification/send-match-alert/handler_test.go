// internal/workers/notification/send-match-alert/handler_test.go
package sendmatchalert

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "alerts@marketplace.example",
		AWSRegion:    "af-south-1",
		Timeout:      30 * time.Second,
	}
}

func createTestInput(alertType string) *Input {
	return &Input{
		BuyerID:   "buyer-001",
		SignalID:  "sig-42",
		AlertType: alertType,
		Priority:  "high",
		Matches:   3,
		TopMatch: &MatchInfo{
			ListingID:    "lst-1",
			SellerID:     "seller-1",
			Category:     "cannabis flower",
			Region:       "Western Cape",
			PricePerUnit: 80,
			MatchScore:   0.82,
			MatchQuality: "excellent",
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		emailEnabled   bool
		smsEnabled     bool
		priority       string
		expectedStatus string
	}{
		{"email and SMS success", true, true, "high", StatusSent},
		{"email only success", true, false, "medium", StatusSent},
		{"SMS only for high priority", false, true, "high", StatusSent},
		{"no SMS for medium priority", false, true, "medium", StatusDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SELECT email, phone FROM users WHERE id = \$1`).
				WithArgs("buyer-001").
				WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
					AddRow("buyer@example.com", "+27821234567"))

			mockSES := &MockSESService{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					assert.Equal(t, "buyer@example.com", params.Destination.ToAddresses[0])
					assert.Equal(t, "alerts@marketplace.example", *params.Source)
					return &ses.SendEmailOutput{}, nil
				},
			}

			mockSNS := &MockSNSService{
				PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					assert.Equal(t, "+27821234567", *params.PhoneNumber)
					return &sns.PublishOutput{}, nil
				},
			}

			config := createTestConfig()
			config.EmailEnabled = tt.emailEnabled
			config.SMSEnabled = tt.smsEnabled

			handler := &Handler{
				config:    config,
				db:        db,
				logger:    logger.NewTestLogger(t),
				sesClient: mockSES,
				snsClient: mockSNS,
				templates: alertTemplates(),
			}

			input := createTestInput(TypeMatchesFound)
			input.Priority = tt.priority
			output, err := handler.Execute(context.Background(), input)

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.Equal(t, tt.expectedStatus, output.Status)
			assert.NotEmpty(t, output.NotificationID)
			assert.NotEmpty(t, output.SentAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_EmailFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM users WHERE id = \$1`).
		WithArgs("buyer-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("buyer@example.com", ""))

	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("SES throttled")
		},
	}

	handler := &Handler{
		config:    createTestConfig(),
		db:        db,
		logger:    logger.NewTestLogger(t),
		sesClient: mockSES,
		snsClient: &MockSNSService{},
		templates: alertTemplates(),
	}

	output, err := handler.Execute(context.Background(), createTestInput(TypeMatchesFound))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
}

func TestHandler_Execute_BuyerNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM users WHERE id = \$1`).
		WithArgs("ghost-buyer").
		WillReturnError(errors.New("no rows"))

	handler := &Handler{
		config:    createTestConfig(),
		db:        db,
		logger:    logger.NewTestLogger(t),
		sesClient: &MockSESService{},
		snsClient: &MockSNSService{},
		templates: alertTemplates(),
	}

	input := createTestInput(TypeMatchesFound)
	input.BuyerID = "ghost-buyer"
	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestHandler_Execute_UnknownAlertType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM users WHERE id = \$1`).
		WithArgs("buyer-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("buyer@example.com", ""))

	handler := &Handler{
		config:    createTestConfig(),
		db:        db,
		logger:    logger.NewTestLogger(t),
		sesClient: &MockSESService{},
		snsClient: &MockSNSService{},
		templates: alertTemplates(),
	}

	input := createTestInput("bogus-type")
	_, err = handler.Execute(context.Background(), input)
	assert.Error(t, err)
}

// ==========================
// Template Rendering Tests
// ==========================

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "string and int placeholders",
			tmpl:     "We found {{totalMatches}} matches in {{region}}",
			data:     map[string]interface{}{"totalMatches": 3, "region": "Gauteng"},
			expected: "We found 3 matches in Gauteng",
		},
		{
			name:     "missing placeholder removed",
			tmpl:     "Best offer: {{category}} at R{{pricePerUnit}}",
			data:     map[string]interface{}{"category": "hemp"},
			expected: "Best offer: hemp at R",
		},
		{
			name:     "no placeholders",
			tmpl:     "plain text",
			data:     map[string]interface{}{"unused": "x"},
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.tmpl, tt.data))
		})
	}
}
