package kyc

import "time"

// Record is the per-user KYC state. IDNumber is only set by a successful
// verification; PhoneNumber is empty until the user binds one.
type Record struct {
	UserID      string    `json:"user_id"`
	IDNumber    string    `json:"id_number,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	UpdatedAt   time.Time `json:"-"`
}

// State is the onboarding stage derived from a Record.
type State string

const (
	StateRegistered State = "registered"
	StatePhoneBound State = "phone_bound"
	StateOTPIssued  State = "otp_issued"
	StateVerified   State = "verified"
)

// State derives the stage from the stored fields alone. It never reports
// StateOTPIssued, since OTPs live outside the record; see StateWith.
func (r Record) State() State {
	return r.StateWith(false)
}

// StateWith derives the stage given whether a live OTP exists for the bound
// phone.
func (r Record) StateWith(otpLive bool) State {
	switch {
	case r.IsVerified:
		return StateVerified
	case r.PhoneNumber != "" && otpLive:
		return StateOTPIssued
	case r.PhoneNumber != "":
		return StatePhoneBound
	default:
		return StateRegistered
	}
}
