// Package onboarding drives an account from registration through phone
// binding and OTP to a verified national ID.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raksha-app/raksha/internal/apperr"
	"github.com/raksha-app/raksha/internal/auth"
	"github.com/raksha-app/raksha/internal/dashboard"
	"github.com/raksha-app/raksha/internal/identity"
	"github.com/raksha-app/raksha/internal/idverify"
	"github.com/raksha-app/raksha/internal/kyc"
	"github.com/raksha-app/raksha/internal/metrics"
	"github.com/raksha-app/raksha/internal/otp"
)

const (
	maxPhoneLen    = 15
	maxIDNumberLen = 12
)

// Account is returned by Register.
type Account struct {
	UserID string
	Token  auth.Token
}

// Deps collects the collaborators of a Workflow.
type Deps struct {
	Identities *identity.Service
	Tokens     *auth.Service
	KYC        kyc.Repository
	Dashboards *dashboard.Service
	OTP        *otp.Service
	Verifier   idverify.Verifier
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Workflow sequences the KYC steps. Each step checks the state left by the
// previous one on the KYC record.
type Workflow struct {
	ids       *identity.Service
	tokens    *auth.Service
	records   kyc.Repository
	dashboard *dashboard.Service
	otp       *otp.Service
	verifier  idverify.Verifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(d Deps) *Workflow {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		ids:       d.Identities,
		tokens:    d.Tokens,
		records:   d.KYC,
		dashboard: d.Dashboards,
		otp:       d.OTP,
		verifier:  d.Verifier,
		metrics:   d.Metrics,
		logger:    logger,
	}
}

// Register creates the account, an empty KYC record and the dashboard, then
// issues an access token. A duplicate username touches nothing.
func (w *Workflow) Register(ctx context.Context, username, password string) (Account, error) {
	user, err := w.ids.Register(ctx, identity.Credentials{Username: username, Password: password})
	if err != nil {
		return Account{}, err
	}
	if _, err := w.records.Create(ctx, user.ID); err != nil {
		return Account{}, fmt.Errorf("create kyc record: %w", err)
	}
	if _, err := w.dashboard.Provision(ctx, user.ID); err != nil {
		return Account{}, fmt.Errorf("create dashboard: %w", err)
	}
	token, err := w.tokens.Issue(user)
	if err != nil {
		return Account{}, err
	}

	if w.metrics != nil {
		w.metrics.UsersRegistered.Inc()
	}
	w.logger.Info("account registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return Account{UserID: user.ID, Token: token}, nil
}

// BindPhone stores the phone number OTPs will be sent to. Binding a
// different number drops an earlier verification; the same number is a no-op.
func (w *Workflow) BindPhone(ctx context.Context, userID, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	var ve apperr.ValidationError
	ve.Required("phone_number", phone)
	ve.MaxLen("phone_number", phone, maxPhoneLen)
	if err := ve.Err(); err != nil {
		return "", err
	}

	rec, err := w.records.SetPhone(ctx, userID, phone)
	if err != nil {
		return "", recordErr(err)
	}
	return rec.PhoneNumber, nil
}

// RequestOTP issues a code to the bound phone and returns that phone.
func (w *Workflow) RequestOTP(ctx context.Context, userID string) (string, error) {
	rec, err := w.records.Get(ctx, userID)
	if err != nil {
		return "", recordErr(err)
	}
	if rec.PhoneNumber == "" {
		return "", apperr.ErrPhoneNotBound
	}
	if _, err := w.otp.Issue(ctx, rec.PhoneNumber); err != nil {
		return "", fmt.Errorf("issue otp: %w", err)
	}
	return rec.PhoneNumber, nil
}

// VerifyIdentity checks the OTP for the bound phone before consulting the
// ID verifier. Only when both pass are id_number and is_verified written.
func (w *Workflow) VerifyIdentity(ctx context.Context, userID, idNumber, code string) (kyc.Record, error) {
	idNumber = strings.TrimSpace(idNumber)
	var ve apperr.ValidationError
	ve.Required("aadhar_number", idNumber)
	ve.MaxLen("aadhar_number", idNumber, maxIDNumberLen)
	if err := ve.Err(); err != nil {
		return kyc.Record{}, err
	}

	rec, err := w.records.Get(ctx, userID)
	if err != nil {
		return kyc.Record{}, recordErr(err)
	}
	if rec.PhoneNumber == "" {
		return kyc.Record{}, apperr.ErrPhoneNotBound
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return kyc.Record{}, apperr.ErrInvalidOrExpiredOTP
	}
	ok, err := w.otp.Verify(ctx, rec.PhoneNumber, code)
	if err != nil {
		return kyc.Record{}, fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		return kyc.Record{}, apperr.ErrInvalidOrExpiredOTP
	}

	genuine, err := w.verifier.Verify(ctx, idNumber)
	if err != nil {
		return kyc.Record{}, fmt.Errorf("verify id: %w", err)
	}
	if w.metrics != nil {
		w.metrics.IdentityChecks.WithLabelValues(metrics.Outcome(genuine)).Inc()
	}
	if !genuine {
		w.logger.Info("id verification declined", slog.String("user_id", userID))
		return kyc.Record{}, apperr.ErrVerificationFailed
	}

	rec, err = w.records.MarkVerified(ctx, userID, idNumber)
	if err != nil {
		return kyc.Record{}, recordErr(err)
	}
	w.logger.Info("identity verified", slog.String("user_id", userID))
	return rec, nil
}

// Status returns the KYC record with its derived state.
func (w *Workflow) Status(ctx context.Context, userID string) (kyc.Record, kyc.State, error) {
	rec, err := w.records.Get(ctx, userID)
	if err != nil {
		return kyc.Record{}, "", recordErr(err)
	}
	if rec.IsVerified || rec.PhoneNumber == "" {
		return rec, rec.State(), nil
	}
	live, err := w.otp.Live(ctx, rec.PhoneNumber)
	if err != nil {
		return kyc.Record{}, "", fmt.Errorf("otp lookup: %w", err)
	}
	return rec, rec.StateWith(live), nil
}

func recordErr(err error) error {
	if errors.Is(err, kyc.ErrRecordNotFound) {
		return fmt.Errorf("kyc record: %w", apperr.ErrRecordNotFound)
	}
	return err
}
