package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the header the processor signs webhook deliveries with.
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance bounds the accepted age of a signed webhook timestamp.
const DefaultTolerance = 5 * time.Minute

var (
	// ErrInvalidSignatureHeader marks a missing or unparseable signature
	// header.
	ErrInvalidSignatureHeader = errors.New("webhook signature header is missing or malformed")
	// ErrNoValidSignature marks a header whose v1 signatures all fail the
	// HMAC check.
	ErrNoValidSignature = errors.New("no valid v1 signature for payload")
	// ErrTimestampOutsideTolerance marks a replayed or clock-skewed
	// delivery.
	ErrTimestampOutsideTolerance = errors.New("webhook timestamp outside of tolerance")
)

// Event is a signed webhook notification from the processor.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// EventTypes dispatched by the gateway.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// ConstructEvent verifies the payload's signature and timestamp with the
// default tolerance and decodes the event envelope.
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	return ConstructEventWithTolerance(payload, sigHeader, secret, DefaultTolerance)
}

// ConstructEventWithTolerance verifies that payload was signed by secret
// using the processor's v1 scheme: the header carries `t=<unix>,v1=<hex>`
// pairs and the MAC is HMAC-SHA256 over "<t>.<payload>". The event is only
// decoded once the signature and timestamp checks pass.
func ConstructEventWithTolerance(payload []byte, sigHeader, secret string, tolerance time.Duration) (Event, error) {
	var event Event

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return event, err
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	matched := false
	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return event, ErrNoValidSignature
	}

	signedAt := time.Unix(timestamp, 0)
	if age := time.Since(signedAt); age > tolerance || age < -tolerance {
		return event, ErrTimestampOutsideTolerance
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("decode webhook event: %w", err)
	}
	return event, nil
}

// PaymentIntentFromEvent decodes the event's inner object as a payment
// intent.
func PaymentIntentFromEvent(event Event) (PaymentIntent, error) {
	var intent PaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return PaymentIntent{}, fmt.Errorf("decode payment intent payload: %w", err)
	}
	return intent, nil
}

func parseSignatureHeader(header string) (int64, [][]byte, error) {
	if strings.TrimSpace(header) == "" {
		return 0, nil, ErrInvalidSignatureHeader
	}

	var timestamp int64 = -1
	var signatures [][]byte

	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return 0, nil, ErrInvalidSignatureHeader
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignatureHeader
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(parts[1])
			if err != nil {
				continue // ignore undecodable signatures, others may match
			}
			signatures = append(signatures, sig)
		default:
			// Unknown schemes (v0, future versions) are ignored.
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignatureHeader
	}
	return timestamp, signatures, nil
}
