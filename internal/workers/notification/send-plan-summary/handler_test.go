package sendplansummary

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"bulkbuddy-workers/internal/common/aws"
	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/nutrition"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockContacts struct{ mock.Mock }

func (m *mockContacts) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type mockEmail struct{ mock.Mock }

func (m *mockEmail) SendEmail(ctx context.Context, msg aws.Email) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

type fixture struct {
	contacts *mockContacts
	email    *mockEmail
	sms      *mockSMS
	handler  *Handler
}

func newFixture(t *testing.T, emailEnabled, smsEnabled bool) *fixture {
	f := &fixture{contacts: new(mockContacts), email: new(mockEmail), sms: new(mockSMS)}
	f.handler = NewHandler(HandlerOptions{
		Config: &Config{
			EmailEnabled: emailEnabled,
			SMSEnabled:   smsEnabled,
			FromEmail:    "plans@bulkbuddy.app",
			Timeout:      5 * time.Second,
		},
		Contacts: f.contacts,
		Email:    f.email,
		SMS:      f.sms,
		Logger:   logger.NewTestLogger(t),
	})
	return f
}

func testUser() *models.User {
	return &models.User{ID: "user-1", Email: "a@example.com", Phone: "+15550100"}
}

func testInput() *Input {
	return &Input{
		UserID:         "user-1",
		MealPlanID:     "plan-1",
		PlanName:       "Cut week 1",
		TargetCalories: 2000,
		Items: []models.MealPlanItem{
			{Slot: "breakfast", RecipeID: "r-oats", ServingGrams: 250},
		},
		Nutrition: nutrition.NutritionSummary{
			ItemCount: 3,
			Totals:    nutrition.NutritionTotals{Calories: 1996, Protein: 115, Carbs: 230, Fat: 62},
			Macros:    nutrition.MacroBreakdown{ProteinPercent: 23.52, CarbsPercent: 47.03, FatPercent: 28.53},
		},
		SendSMS: true,
	}
}

// ==========================
// Tests
// ==========================

func TestExecute_SendsEmailAndSMS(t *testing.T) {
	f := newFixture(t, true, true)
	f.contacts.On("GetByID", mock.Anything, "user-1").Return(testUser(), nil)
	f.email.On("SendEmail", mock.Anything, mock.MatchedBy(func(msg aws.Email) bool {
		return msg.From == "plans@bulkbuddy.app" &&
			msg.To == "a@example.com" &&
			msg.Subject == "Your BulkBuddy meal plan: Cut week 1" &&
			msg.HTMLBody != ""
	})).Return("ses-1", nil)
	f.sms.On("SendSMS", mock.Anything, "+15550100",
		"BulkBuddy: Cut week 1, 1996 of 2000 kcal. P 115.0g C 230.0g F 62.0g").Return("sns-1", nil)

	out, err := f.handler.Execute(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	require.Len(t, out.Notifications, 2)
	assert.Equal(t, ChannelEmail, out.Notifications[0].Channel)
	assert.Equal(t, "ses-1", out.Notifications[0].MessageID)
	assert.Equal(t, ChannelSMS, out.Notifications[1].Channel)
	_, parseErr := uuid.Parse(out.Notifications[0].ID)
	assert.NoError(t, parseErr)
	assert.NotEqual(t, out.Notifications[0].ID, out.Notifications[1].ID)
	f.email.AssertExpectations(t)
	f.sms.AssertExpectations(t)
}

func TestExecute_TextBodyListsMacrosAndItems(t *testing.T) {
	msg, err := render(testInput())
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "Target: 2000 kcal")
	assert.Contains(t, msg.Text, "Protein 115.0 g (23.52%)")
	assert.Contains(t, msg.Text, "- Breakfast: r-oats (250.0 g)")
	assert.Contains(t, msg.HTML, "<li>Breakfast: r-oats</li>")
}

func TestExecute_SMSOnlyWhenRequested(t *testing.T) {
	f := newFixture(t, true, true)
	f.contacts.On("GetByID", mock.Anything, "user-1").Return(testUser(), nil)
	f.email.On("SendEmail", mock.Anything, mock.Anything).Return("ses-1", nil)

	input := testInput()
	input.SendSMS = false

	out, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, out.Notifications, 1)
	f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_ChannelsDisabled(t *testing.T) {
	f := newFixture(t, false, false)
	f.contacts.On("GetByID", mock.Anything, "user-1").Return(testUser(), nil)

	out, err := f.handler.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	assert.Empty(t, out.Notifications)
}

func TestExecute_EmailFailureIsRetryable(t *testing.T) {
	f := newFixture(t, true, true)
	f.contacts.On("GetByID", mock.Anything, "user-1").Return(testUser(), nil)
	f.email.On("SendEmail", mock.Anything, mock.Anything).Return("", stderrors.New("throttled"))

	_, err := f.handler.Execute(context.Background(), testInput())

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_SMSFailureIsRecorded(t *testing.T) {
	f := newFixture(t, false, true)
	f.contacts.On("GetByID", mock.Anything, "user-1").Return(testUser(), nil)
	f.sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return("", stderrors.New("opted out"))

	out, err := f.handler.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	require.Len(t, out.Notifications, 1)
	assert.Empty(t, out.Notifications[0].SentAt)
}

func TestExecute_UnknownRecipient(t *testing.T) {
	f := newFixture(t, true, true)
	f.contacts.On("GetByID", mock.Anything, "ghost").Return(nil, errors.NewProfileNotFoundError("ghost"))

	input := testInput()
	input.UserID = "ghost"

	out, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	f.email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestExecute_LookupFailurePropagates(t *testing.T) {
	f := newFixture(t, true, true)
	f.contacts.On("GetByID", mock.Anything, "user-1").Return(nil, errors.NewQueryTimeoutError("user_profile"))

	_, err := f.handler.Execute(context.Background(), testInput())
	assert.Equal(t, errors.ErrCodeQueryTimeout, errors.CodeOf(err))
}
