package utils

import (
	"math/rand"
)

var digits = "0123456789"

// GenerateRandomOTP returns the 6-digit one-time code used by the
// password-reset flow.
func GenerateRandomOTP() string {
	otp := make([]byte, 6)
	for i := range otp {
		otp[i] = digits[rand.Intn(len(digits))]
	}
	return string(otp)
}

// GenerateRandomServiceNo returns a service number for seeded soldiers,
// e.g. "SN-483920".
func GenerateRandomServiceNo() string {
	no := make([]byte, 6)
	for i := range no {
		no[i] = digits[rand.Intn(len(digits))]
	}
	return "SN-" + string(no)
}
