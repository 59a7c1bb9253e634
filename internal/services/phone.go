package services

import "strings"

const brazilCountryCode = "55"

// NormalizePhone keeps digits only and prefixes the Brazilian country code on
// 10 or 11 digit numbers. Numbers already carrying it (12+ digits) and any
// other length are returned as digits unchanged. Applying it twice is a no-op.
func NormalizePhone(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(cleaned, brazilCountryCode) && len(cleaned) >= 12 {
		return cleaned
	}
	if len(cleaned) == 10 || len(cleaned) == 11 {
		return brazilCountryCode + cleaned
	}
	return cleaned
}

