package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidWebhookSignature covers every webhook verification failure:
// missing headers, undecodable secret, stale timestamp, signature mismatch.
// Callers must reject the request before parsing the payload.
var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

// Svix-style signature headers used by Clerk webhook deliveries.
const (
	WebhookHeaderID        = "svix-id"
	WebhookHeaderTimestamp = "svix-timestamp"
	WebhookHeaderSignature = "svix-signature"
)

const webhookSecretPrefix = "whsec_"

// webhookTimestampTolerance bounds replay of captured deliveries.
const webhookTimestampTolerance = 5 * time.Minute

// VerifyWebhookSignature checks the HMAC-SHA256 signature over an inbound
// webhook delivery. The signed content is "<id>.<timestamp>.<body>" and the
// shared secret is stored base64-encoded behind a whsec_ prefix. The
// signature header may carry several space-separated "v1,<base64>"
// candidates; one constant-time match suffices.
func VerifyWebhookSignature(payload []byte, msgID, timestamp, signatureHeader, secret string) error {
	msgID = strings.TrimSpace(msgID)
	timestamp = strings.TrimSpace(timestamp)
	signatureHeader = strings.TrimSpace(signatureHeader)
	if msgID == "" || timestamp == "" || signatureHeader == "" {
		return ErrInvalidWebhookSignature
	}

	key, err := decodeWebhookSecret(secret)
	if err != nil {
		return ErrInvalidWebhookSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidWebhookSignature
	}
	if delta := time.Since(time.Unix(ts, 0)); delta > webhookTimestampTolerance || delta < -webhookTimestampTolerance {
		return ErrInvalidWebhookSignature
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			return nil
		}
	}
	return ErrInvalidWebhookSignature
}

func decodeWebhookSecret(secret string) ([]byte, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("webhook secret is empty")
	}
	trimmed = strings.TrimPrefix(trimmed, webhookSecretPrefix)
	return base64.StdEncoding.DecodeString(trimmed)
}
