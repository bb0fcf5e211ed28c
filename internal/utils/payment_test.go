package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func futureExpiry() string {
	t := time.Now().AddDate(1, 0, 0)
	return fmt.Sprintf("%02d/%02d", int(t.Month()), t.Year()%100)
}

func pastExpiry() string {
	t := time.Now().AddDate(-1, 0, 0)
	return fmt.Sprintf("%02d/%02d", int(t.Month()), t.Year()%100)
}

func TestValidateCard(t *testing.T) {
	cases := []struct {
		name string
		card Card
		want error
	}{
		{"valid", Card{Number: "4242424242424242", Expiry: futureExpiry()}, nil},
		{"short number", Card{Number: "42424242", Expiry: futureExpiry()}, ErrInvalidCardNumber},
		{"letters in number", Card{Number: "42424242424242ab", Expiry: futureExpiry()}, ErrInvalidCardNumber},
		{"bad expiry shape", Card{Number: "4242424242424242", Expiry: "2027-01"}, ErrInvalidExpiry},
		{"month out of range", Card{Number: "4242424242424242", Expiry: "13/30"}, ErrInvalidExpiry},
		{"expired", Card{Number: "4242424242424242", Expiry: pastExpiry()}, ErrCardExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCard(tc.card)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ValidateCard(%+v) = %v, want %v", tc.card, err, tc.want)
			}
		})
	}
}

func TestValidateCardCurrentMonthIsAccepted(t *testing.T) {
	now := time.Now()
	exp := fmt.Sprintf("%02d/%02d", int(now.Month()), now.Year()%100)
	if err := ValidateCard(Card{Number: "4242424242424242", Expiry: exp}); err != nil {
		t.Fatalf("card expiring this month should be accepted, got %v", err)
	}
}
