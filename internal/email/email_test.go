package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPSender_Send(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPSender{from: "no-reply@clinica.local", dialer: d}

	err := s.Send(context.Background(), Message{To: "ana@example.com", Subject: "Cita reservada", Body: "Hola"})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"ana@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"no-reply@clinica.local"}, d.sent[0].GetHeader("From"))

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hola")
}

func TestSMTPSender_Errors(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	s := &SMTPSender{from: "x@y", dialer: d}

	err := s.Send(context.Background(), Message{To: "a@b", Subject: "s"})
	assert.ErrorContains(t, err, "connection refused")

	err = s.Send(context.Background(), Message{Subject: "s"})
	assert.Error(t, err)
	assert.Len(t, d.sent, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: "a@b", Subject: "s"}), context.Canceled)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), Message{To: "a@b", Subject: "s"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a@b", logs.All()[0].ContextMap()["to"])
}
