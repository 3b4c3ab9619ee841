package sms

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// FormatE164 converts a local or international number to E.164 using region as the
// default country. Numbers that cannot be parsed or are not valid are returned trimmed
// but otherwise unchanged, leaving the final decision to the gateway.
func FormatE164(phone, region string) string {
	phone = strings.TrimSpace(phone)
	if region == "" {
		return phone
	}

	num, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return phone
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}

// Mask hides the middle digits of a phone number for logs.
func Mask(phone string) string {
	if len(phone) < 7 {
		return "***"
	}
	return phone[:4] + strings.Repeat("*", len(phone)-7) + phone[len(phone)-3:]
}
