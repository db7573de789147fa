package ingest

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
)

// ParseEmail reads one RFC 5322 message and normalizes it into an EmailRecord
func ParseEmail(r io.Reader, received time.Time) (*core.EmailRecord, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}
	return recordFromMessage(msg, "", received)
}

// recordFromMessage normalizes a parsed mail message into an EmailRecord.
// Missing identifiers are synthesized so downstream stages always have a
// stable key; a missing Date falls back to the ingestion time.
func recordFromMessage(msg *mail.Message, envelopeSender string, received time.Time) (*core.EmailRecord, error) {
	body, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	sender := envelopeSender
	displayName := ""
	if from := msg.Header.Get("From"); from != "" {
		if addr, err := mail.ParseAddress(from); err == nil {
			sender = addr.Address
			displayName = addr.Name
		}
	}

	messageID := strings.Trim(msg.Header.Get("Message-Id"), "<> ")
	if messageID == "" {
		messageID = fmt.Sprintf("ingest-%d", received.UnixNano())
	}

	if date, err := msg.Header.Date(); err == nil {
		received = date
	}

	return &core.EmailRecord{
		MessageID:   messageID,
		ThreadID:    threadIDFromHeaders(msg.Header),
		Sender:      sender,
		DisplayName: displayName,
		Subject:     decodeEncodedHeader(msg.Header.Get("Subject")),
		Body:        body,
		ReceivedAt:  received,
		Labels:      labelsFromHeaders(msg.Header),
	}, nil
}

// threadIDFromHeaders derives a thread key from the reply chain headers.
// The root of the chain is the first ID in References, falling back to
// In-Reply-To. A message with neither starts its own thread.
func threadIDFromHeaders(header mail.Header) string {
	if refs := header.Get("References"); refs != "" {
		if fields := strings.Fields(refs); len(fields) > 0 {
			return strings.Trim(fields[0], "<>")
		}
	}
	return strings.Trim(header.Get("In-Reply-To"), "<> ")
}

// labelsFromHeaders collects labels carried in the X-Labels header
func labelsFromHeaders(header mail.Header) []string {
	raw := header.Get("X-Labels")
	if raw == "" {
		return nil
	}
	var labels []string
	for _, label := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	return labels
}

// decodeEncodedHeader decodes RFC 2047 encoded-words in a header value,
// returning the raw value when decoding fails.
func decodeEncodedHeader(value string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// extractTextFromMessage extracts the text content from an email message.
// For multipart messages it collects the text/plain parts.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mr := multipart.NewReader(msg.Body, boundary)
	var textContent bytes.Buffer

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return what we have; a truncated multipart body still
			// gives the pipeline something to classify.
			break
		}

		partContentType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partContentType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
		// Attachments and nested multiparts are skipped.
	}

	if textContent.Len() > 0 {
		return textContent.String(), nil
	}
	return "", nil
}
