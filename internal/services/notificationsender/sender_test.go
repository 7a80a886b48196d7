package notificationsender

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	smtplib "github.com/oficinacloud/oficina-backend/internal/lib/smtp"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

type ClientMock struct {
	mock.Mock
	buf bytes.Buffer
}

func (m *ClientMock) Mail(from string) error { return m.Called(from).Error(0) }
func (m *ClientMock) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *ClientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}
func (m *ClientMock) Quit() error  { return m.Called().Error(0) }
func (m *ClientMock) Close() error { return m.Called().Error(0) }

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

type TransportMock struct{ mock.Mock }

func (m *TransportMock) Connect() (smtplib.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtplib.Client), args.Error(1)
}
func (m *TransportMock) GetSMTPUser() string { return m.Called().String(0) }

func newTestService(transport *TransportMock) *SenderService {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewSenderService(transport, log)
}

func TestHandleMessage_SendsEmail(t *testing.T) {
	client := new(ClientMock)
	transport := new(TransportMock)

	transport.On("GetSMTPUser").Return("noreply@oficinacloud.com.br")
	transport.On("Connect").Return(client, nil)

	body := &bytes.Buffer{}
	client.On("Mail", "noreply@oficinacloud.com.br").Return(nil)
	client.On("Rcpt", "dono@oficina.com.br").Return(nil)
	client.On("Data").Return(nopWriteCloser{body}, nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	notice := models.ExpiryNotice{
		Kind:     models.NoticeKindSubscription,
		Email:    "dono@oficina.com.br",
		Username: "dono",
		PlanType: "premium_mensal",
		EndDate:  time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(notice)
	require.NoError(t, err)

	svc := newTestService(transport)
	require.NoError(t, svc.HandleMessage(raw))

	sent := body.String()
	assert.Contains(t, sent, "To: dono@oficina.com.br")
	assert.Contains(t, sent, "Sua assinatura expira amanhã")
	assert.Contains(t, sent, "premium_mensal")
	assert.Contains(t, sent, "21/05/2026")
	client.AssertExpectations(t)
}

func TestHandleMessage_TrialNotice(t *testing.T) {
	client := new(ClientMock)
	transport := new(TransportMock)

	transport.On("GetSMTPUser").Return("noreply@oficinacloud.com.br")
	transport.On("Connect").Return(client, nil)

	body := &bytes.Buffer{}
	client.On("Mail", mock.Anything).Return(nil)
	client.On("Rcpt", mock.Anything).Return(nil)
	client.On("Data").Return(nopWriteCloser{body}, nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	raw, err := json.Marshal(models.ExpiryNotice{
		Kind:    models.NoticeKindTrial,
		Email:   "novo@oficina.com.br",
		EndDate: time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	svc := newTestService(transport)
	require.NoError(t, svc.HandleMessage(raw))
	assert.Contains(t, body.String(), "Seu período de teste termina amanhã")
}

func TestHandleMessage_BadPayload(t *testing.T) {
	transport := new(TransportMock)
	svc := newTestService(transport)
	require.Error(t, svc.HandleMessage([]byte("{not json")))
	transport.AssertNotCalled(t, "Connect")
}

func TestHandleMessage_ConnectError(t *testing.T) {
	transport := new(TransportMock)
	transport.On("GetSMTPUser").Return("noreply@oficinacloud.com.br")
	transport.On("Connect").Return(nil, errors.New("dial tcp: refused"))

	raw, err := json.Marshal(models.ExpiryNotice{
		Kind:  models.NoticeKindSubscription,
		Email: "dono@oficina.com.br",
	})
	require.NoError(t, err)

	svc := newTestService(transport)
	require.Error(t, svc.HandleMessage(raw))
}
