package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/assets"
	"github.com/trezcool/darasa/core"
	logsvc "github.com/trezcool/darasa/services/logger"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:          "Darasa",
		DefaultFromEmail: mail.Address{Name: "Darasa", Address: "noreply@darasa.test"},
		SendgridAPIKey:   "SG.test",
	}
}

func promotionMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Ama Mensah", Address: "guardian@example.com"}},
		Subject:      "2024/2025 promotion results: Ama Mensah",
		TemplateName: "promotion_result",
		TemplateData: map[string]interface{}{
			"AcademicYear":    "2024/2025",
			"StudentName":     "Ama Mensah",
			"Status":          "Promoted",
			"PreviousGrade":   7,
			"NewGrade":        "8",
			"Reason":          "passed all core subjects",
			"Recommendations": []string{"Keep up the good work."},
		},
	}
}

func TestConsoleServiceMock(t *testing.T) {
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, true, logger)
	ClearSentMessages()
	defer ClearSentMessages()

	msg := promotionMessage()
	require.NoError(t, msg.Attach(bytes.NewReader([]byte("%PDF-1.3")), "report.pdf", "application/pdf"))

	NewConsoleServiceMock(testConfig(), logger).SendMessages(msg, &core.EmailMessage{Subject: "no recipient", BodyStr: "x"})

	sent := GetSentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Ama Mensah")
	assert.Contains(t, sent[0].TextContent, "Promoted")
	assert.Contains(t, sent[0].HTMLContent, "passed all core subjects")
	assert.Len(t, sent[0].Attachments, 1)
}

func TestConsoleService_send(t *testing.T) {
	svc := consoleService{
		defaultFromEmail: testConfig().DefaultFromEmail,
		subjPrefix:       "[Darasa] ",
		logger:           logsvc.NewNopLogger(),
		disableOutput:    true,
	}
	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "a@example.com"}},
		Subject:     "hi",
		TextContent: "hello",
	}
	assert.NoError(t, svc.send(msg))
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConfig(), logsvc.NewNopLogger()).(*sendgridService)

	msg := promotionMessage()
	msg.TextContent = "text"
	msg.HTMLContent = "<p>html</p>"
	msg.Cc = []mail.Address{{Address: "teacher@example.com"}}
	require.NoError(t, msg.Attach(strings.NewReader("%PDF-1.3"), "report.pdf", "application/pdf"))

	m := svc.prepare(*msg)
	assert.Equal(t, "noreply@darasa.test", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[Darasa] 2024/2025 promotion results: Ama Mensah", m.Personalizations[0].Subject)
	assert.Equal(t, "guardian@example.com", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "teacher@example.com", m.Personalizations[0].CC[0].Address)
	assert.Len(t, m.Content, 2)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "report.pdf", m.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", m.Attachments[0].Type)
}
