package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailService_Send(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailServiceWithSender(sender, "VENTECH <no-reply@ventech.id>")

	err := svc.Send(context.Background(), Mail{
		To:          "dana@example.com",
		ReplyTo:     "help@ventech.id",
		Subject:     "Your invoice",
		TextBody:    "Attached.",
		Attachments: []Attachment{{Filename: "INV-1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"dana@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"help@ventech.id"}, msg.GetHeader("Reply-To"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "INV-1.pdf")
	assert.Contains(t, buf.String(), "Attached.")
}

func TestMailService_Errors(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	svc := NewMailServiceWithSender(sender, "no-reply@ventech.id")
	err := svc.Send(context.Background(), Mail{To: "a@b.co", Subject: "x", HTMLBody: "<p>x</p>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a@b.co")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender.err = nil
	assert.ErrorIs(t, svc.Send(ctx, Mail{To: "a@b.co"}), context.Canceled)
	assert.Empty(t, sender.sent)
}
