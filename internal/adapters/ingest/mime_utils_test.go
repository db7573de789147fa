package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ingestTime = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func TestParseEmailBasicHeaders(t *testing.T) {
	raw := "Message-Id: <abc123@mail.example.com>\r\n" +
		"From: Jane Doe <jane@client.net>\r\n" +
		"Subject: Quick question\r\n" +
		"Date: Mon, 17 Aug 2026 09:30:00 +0000\r\n" +
		"X-Labels: important, follow-up\r\n" +
		"\r\n" +
		"Could you confirm the numbers?\r\n"

	record, err := ParseEmail(strings.NewReader(raw), ingestTime)
	require.NoError(t, err)

	assert.Equal(t, "abc123@mail.example.com", record.MessageID)
	assert.Equal(t, "jane@client.net", record.Sender)
	assert.Equal(t, "Jane Doe", record.DisplayName)
	assert.Equal(t, "Quick question", record.Subject)
	assert.Equal(t, []string{"important", "follow-up"}, record.Labels)
	assert.Contains(t, record.Body, "Could you confirm the numbers?")
	assert.Equal(t, time.Date(2026, 8, 17, 9, 30, 0, 0, time.UTC), record.ReceivedAt.UTC())
}

func TestParseEmailSynthesizesMessageID(t *testing.T) {
	raw := "From: someone@example.com\r\n" +
		"Subject: no id\r\n" +
		"\r\n" +
		"body\r\n"

	record, err := ParseEmail(strings.NewReader(raw), ingestTime)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(record.MessageID, "ingest-"))
	// No Date header: the ingestion time stands in.
	assert.Equal(t, ingestTime, record.ReceivedAt)
}

func TestParseEmailEncodedSubject(t *testing.T) {
	raw := "From: someone@example.com\r\n" +
		"Subject: =?UTF-8?Q?Caf=C3=A9_update?=\r\n" +
		"\r\n" +
		"body\r\n"

	record, err := ParseEmail(strings.NewReader(raw), ingestTime)
	require.NoError(t, err)

	assert.Equal(t, "Café update", record.Subject)
}

func TestThreadIDFromHeaders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"references root wins",
			"References: <root@t> <mid@t>\r\nIn-Reply-To: <mid@t>\r\n\r\nbody",
			"root@t",
		},
		{
			"in-reply-to fallback",
			"In-Reply-To: <parent@t>\r\n\r\nbody",
			"parent@t",
		},
		{
			"no chain headers",
			"Subject: standalone\r\n\r\nbody",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := ParseEmail(strings.NewReader("From: a@b.com\r\n"+tt.raw), ingestTime)
			require.NoError(t, err)
			assert.Equal(t, tt.want, record.ThreadID)
		})
	}
}

func TestParseEmailMultipartCollectsTextPlain(t *testing.T) {
	raw := "From: someone@example.com\r\n" +
		"Subject: report\r\n" +
		"Content-Type: multipart/alternative; boundary=\"BOUNDARY\"\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"plain text part\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>html part</p>\r\n" +
		"--BOUNDARY--\r\n"

	record, err := ParseEmail(strings.NewReader(raw), ingestTime)
	require.NoError(t, err)

	assert.Contains(t, record.Body, "plain text part")
	assert.NotContains(t, record.Body, "html part")
}

func TestParseEmailEnvelopeSenderFallback(t *testing.T) {
	raw := "Subject: no from header\r\n\r\nbody\r\n"

	msg, err := ParseEmail(strings.NewReader(raw), ingestTime)
	require.NoError(t, err)
	assert.Empty(t, msg.Sender)
}

func TestParseEmailInvalidInput(t *testing.T) {
	_, err := ParseEmail(strings.NewReader("not an email at all"), ingestTime)
	assert.Error(t, err)
}
