package payments

import (
	"context"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// testCards decline deterministically; any other well-formed number is approved.
var testCards = map[string]DeclineReason{
	"4000000000000002": DeclineInsufficientFunds,
	"4000000000009995": DeclineInsufficientFunds,
	"4000000000009987": DeclineLostCard,
	"4000000000009979": DeclineStolenCard,
	"4000000000000069": DeclineExpiredCard,
	"4000000000000127": DeclineIncorrectCVC,
	"4000000000000119": DeclineProcessingError,
	"4000000000003220": DeclineAuthenticationRequired,
}

// NormalizeCardNumber strips every whitespace character from a card number.
func NormalizeCardNumber(number string) string {
	return strings.Join(strings.Fields(number), "")
}

// Fingerprint derives a stable keyed identifier for a card number so the raw number never
// leaves checkout.
func Fingerprint(key []byte, number string) string {
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// only reachable with an oversized key, handled above
		panic(err)
	}
	h.Write([]byte(NormalizeCardNumber(number)))
	return hex.EncodeToString(h.Sum(nil))
}

// MaskCard keeps only the last four digits.
func MaskCard(number string) string {
	n := NormalizeCardNumber(number)
	if len(n) < 4 {
		return "****"
	}
	return "**** **** **** " + n[len(n)-4:]
}

// TestCardAuthorizer approves or declines cards from their fingerprint alone.
type TestCardAuthorizer struct {
	declines map[string]DeclineReason
}

func NewTestCardAuthorizer(key []byte) *TestCardAuthorizer {
	declines := make(map[string]DeclineReason, len(testCards))
	for number, reason := range testCards {
		declines[Fingerprint(key, number)] = reason
	}
	return &TestCardAuthorizer{declines: declines}
}

func (a *TestCardAuthorizer) AuthorizeCard(_ context.Context, cardFingerprint string) (*Authorization, error) {
	if reason, ok := a.declines[cardFingerprint]; ok {
		return &Authorization{DeclineReason: reason}, nil
	}
	return &Authorization{Approved: true}, nil
}
