package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	mock.Mock
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESClient_SendEmail(t *testing.T) {
	api := new(mockSES)
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return awssdk.ToString(in.Source) == "plans@bulkbuddy.app" &&
			in.Destination.ToAddresses[0] == "user@example.com" &&
			awssdk.ToString(in.Message.Subject.Data) == "Your meal plan" &&
			in.Message.Body.Html == nil
	})).Return(&ses.SendEmailOutput{MessageId: awssdk.String("msg-1")}, nil)

	id, err := NewSESClientWithAPI(api).SendEmail(context.Background(), Email{
		From:     "plans@bulkbuddy.app",
		To:       "user@example.com",
		Subject:  "Your meal plan",
		TextBody: "2100 kcal",
	})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	api.AssertExpectations(t)
}

func TestSESClient_SendEmailError(t *testing.T) {
	api := new(mockSES)
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := NewSESClientWithAPI(api).SendEmail(context.Background(), Email{To: "user@example.com"})

	assert.EqualError(t, err, "throttled")
}

func TestSNSClient_SendSMS(t *testing.T) {
	api := new(mockSNS)
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		_, hasSender := in.MessageAttributes["AWS.SNS.SMS.SenderID"]
		return awssdk.ToString(in.PhoneNumber) == "+15550100" && hasSender
	})).Return(&sns.PublishOutput{MessageId: awssdk.String("sms-1")}, nil)

	id, err := NewSNSClientWithAPI(api, "BulkBuddy").SendSMS(context.Background(), "+15550100", "plan ready")

	require.NoError(t, err)
	assert.Equal(t, "sms-1", id)
	api.AssertExpectations(t)
}
