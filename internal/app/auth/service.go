package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rfportal/internal/app/apperr"
	"rfportal/internal/domain/account"
	"rfportal/internal/platform/mq"
	"rfportal/internal/store"
)

const pinLength = 6

var (
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "Invalid username or password")
	ErrVerificationFailed = apperr.New(apperr.ErrUnauthorized, "Current PIN or password is incorrect")
	ErrAccountExists      = apperr.New(apperr.ErrConflict, "Account already exists")
)

type Accounts interface {
	InTx(ctx context.Context, fn func(store.AccountTx) error) error
	Authenticate(ctx context.Context, id, password []byte) (*account.Identity, error)
	RecordLogin(ctx context.Context, id []byte, ip string, at time.Time) error
}

type Service struct {
	accounts    Accounts
	sessions    *Sessions
	pub         mq.Publisher
	logger      zerolog.Logger
	promoWindow time.Duration
	now         func() time.Time
}

func NewService(accounts Accounts, sessions *Sessions, pub mq.Publisher, logger zerolog.Logger, promoWindow time.Duration) *Service {
	return &Service{
		accounts:    accounts,
		sessions:    sessions,
		pub:         pub,
		logger:      logger,
		promoWindow: promoWindow,
		now:         time.Now,
	}
}

func (s *Service) Sessions() *Sessions { return s.sessions }

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Pin      string `json:"pin"`
	OriginIP string `json:"-"`
}

type RegisterResult struct {
	Username string `json:"username"`
}

// Register creates the credential, login-audit and billing rows in one
// transaction, so a failure part way leaves no account behind.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	if in.Username == "" || in.Password == "" || in.Pin == "" {
		return RegisterResult{}, apperr.Validation("Username, Password, and PIN are required")
	}
	id, err := account.Encode(in.Username)
	if err != nil {
		return RegisterResult{}, apperr.Validation("Username must be at most %d characters", account.MaxLength)
	}
	pw, err := account.Encode(in.Password)
	if err != nil {
		return RegisterResult{}, apperr.Validation("Password must be at most %d characters", account.MaxLength)
	}
	if !validPin(in.Pin) {
		return RegisterResult{}, apperr.Validation("PIN must be exactly %d digits", pinLength)
	}

	now := s.now()
	reg := account.Registration{
		ID:          id,
		Password:    pw,
		Email:       in.Email,
		Pin:         in.Pin,
		OriginIP:    in.OriginIP,
		CreatedAt:   now,
		PremiumFrom: now,
		PremiumTo:   now.Add(s.promoWindow),
	}
	err = s.accounts.InTx(ctx, func(tx store.AccountTx) error {
		exists, err := tx.Exists(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			return ErrAccountExists
		}
		if err := tx.InsertAccount(ctx, reg); err != nil {
			return err
		}
		if err := tx.InsertAudit(ctx, reg); err != nil {
			return err
		}
		return tx.InsertBilling(ctx, reg)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return RegisterResult{}, ErrAccountExists
		}
		return RegisterResult{}, fmt.Errorf("register %s: %w", in.Username, err)
	}
	s.publish(ctx, mq.SubjectAccountRegistered, in.Username, map[string]any{"origin_ip": in.OriginIP})
	return RegisterResult{Username: in.Username}, nil
}

type LoginResult struct {
	account.Identity
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login never distinguishes an unknown username from a wrong password.
func (s *Service) Login(ctx context.Context, username, password, originIP string) (LoginResult, error) {
	if username == "" || password == "" {
		return LoginResult{}, apperr.New(apperr.ErrUnauthorized, "Username and Password are required")
	}
	id, err := account.Encode(username)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	pw, err := account.Encode(password)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	ident, err := s.accounts.Authenticate(ctx, id, pw)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login %s: %w", username, err)
	}
	if ident == nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := s.accounts.RecordLogin(ctx, id, originIP, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("record login failed")
	}
	token, exp, err := s.sessions.Issue(ident.Username)
	if err != nil {
		return LoginResult{}, err
	}
	s.publish(ctx, mq.SubjectAccountLogin, ident.Username, map[string]any{"origin_ip": originIP})
	return LoginResult{Identity: *ident, Token: token, ExpiresAt: exp}, nil
}

type ChangePinInput struct {
	Username        string `json:"username"`
	CurrentPin      string `json:"currentPin"`
	CurrentPassword string `json:"currentPassword"`
	NewPin          string `json:"newPin"`
}

// Validate checks presence and format without touching the database.
func (in ChangePinInput) Validate() error {
	if in.Username == "" || in.CurrentPin == "" || in.CurrentPassword == "" || in.NewPin == "" {
		return apperr.Validation("All fields are required")
	}
	if !validPin(in.NewPin) {
		return apperr.Validation("New PIN must be exactly %d digits", pinLength)
	}
	return nil
}

func (s *Service) ChangePin(ctx context.Context, in ChangePinInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	err := s.verifyThen(ctx, in.Username, in.CurrentPin, in.CurrentPassword, func(tx store.AccountTx, id []byte) error {
		return tx.UpdatePin(ctx, id, in.NewPin)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, mq.SubjectAccountPinChanged, in.Username, nil)
	return nil
}

type ChangePasswordInput struct {
	Username        string `json:"username"`
	CurrentPin      string `json:"currentPin"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (in ChangePasswordInput) Validate() error {
	if in.Username == "" || in.CurrentPin == "" || in.CurrentPassword == "" || in.NewPassword == "" {
		return apperr.Validation("All fields are required")
	}
	if len(in.NewPassword) > account.MaxLength {
		return apperr.Validation("New password must be at most %d characters", account.MaxLength)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	newPw, err := account.Encode(in.NewPassword)
	if err != nil {
		return apperr.Validation("New password must be at most %d characters", account.MaxLength)
	}
	err = s.verifyThen(ctx, in.Username, in.CurrentPin, in.CurrentPassword, func(tx store.AccountTx, id []byte) error {
		return tx.UpdatePassword(ctx, id, newPw)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, mq.SubjectAccountPasswordChanged, in.Username, nil)
	return nil
}

// verifyThen locks the credential row matching username, PIN and password and
// applies update inside the same transaction.
func (s *Service) verifyThen(ctx context.Context, username, pin, password string, update func(store.AccountTx, []byte) error) error {
	id, err := account.Encode(username)
	if err != nil {
		return ErrVerificationFailed
	}
	pw, err := account.Encode(password)
	if err != nil {
		return ErrVerificationFailed
	}
	err = s.accounts.InTx(ctx, func(tx store.AccountTx) error {
		ok, err := tx.VerifyForUpdate(ctx, id, pin, pw)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVerificationFailed
		}
		return update(tx, id)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("update credentials %s: %w", username, err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, subject, username string, extra map[string]any) {
	payload := map[string]any{"username": username, "at": s.now().UTC()}
	for k, v := range extra {
		payload[k] = v
	}
	if err := mq.PublishJSON(ctx, s.pub, subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("publish account event failed")
	}
}

func validPin(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
