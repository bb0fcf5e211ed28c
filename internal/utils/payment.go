package utils

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Card holds the payment details submitted at checkout. Numbers are
// validated for shape only; no charge is actually made.
type Card struct {
	Number string `json:"cardNumber"`
	Expiry string `json:"expiryDate"` // MM/YY
}

var (
	ErrInvalidCardNumber = errors.New("card number must be 16 digits")
	ErrInvalidExpiry     = errors.New("expiry date must be MM/YY")
	ErrCardExpired       = errors.New("card is expired")
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

// ValidateCard checks the card number shape and that the expiry date
// is not in the past.
func ValidateCard(c Card) error {
	if !cardNumberRe.MatchString(c.Number) {
		return ErrInvalidCardNumber
	}
	if !expiryRe.MatchString(c.Expiry) {
		return ErrInvalidExpiry
	}
	parts := strings.SplitN(c.Expiry, "/", 2)
	month, _ := strconv.Atoi(parts[0])
	year, _ := strconv.Atoi(parts[1])
	if month < 1 || month > 12 {
		return ErrInvalidExpiry
	}
	now := time.Now()
	curYear := now.Year() % 100
	curMonth := int(now.Month())
	if year < curYear || (year == curYear && month < curMonth) {
		return ErrCardExpired
	}
	return nil
}
