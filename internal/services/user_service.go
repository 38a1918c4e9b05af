package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/metrics"
	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/repositories"
	"github.com/ArowuTest/outline-analytics-backend/internal/utils"
	"github.com/ArowuTest/outline-analytics-backend/pkg/mailer"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	subjectVerify = "Verify your email"
	subjectLogin  = "OTP for login"
)

var otpRecipients = []models.UserStatus{models.UserStatusUnverified, models.UserStatusActive}

// UserPolicy holds the OTP and trial settings
type UserPolicy struct {
	OTPLength      int
	OTPExpiry      time.Duration
	MaxOTPAttempts int
	TrialDuration  time.Duration
	TrialEvents    int64
}

// UserService runs the account lifecycle: registration, OTP delivery and
// verification, profile reads and updates.
type UserService struct {
	userRepo repositories.UserRepository
	mailer   mailer.Mailer
	policy   UserPolicy
	now      func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, m mailer.Mailer, policy UserPolicy) *UserService {
	return &UserService{
		userRepo: userRepo,
		mailer:   m,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an UNVERIFIED account and mails it a code. Registering
// again before verification replaces the code instead of failing.
func (s *UserService) Register(ctx context.Context, name, email string) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if name != "" {
		var ok bool
		if name, ok = cleanName(name); !ok {
			return nil, ErrInvalidName
		}
	}

	user, err := s.registerOnce(ctx, name, email)
	if errors.Is(err, repositories.ErrDuplicate) {
		// a concurrent registration inserted the same email first
		user, err = s.registerOnce(ctx, name, email)
	}
	if err != nil {
		return nil, err
	}

	if err := s.sendOTP(ctx, user.Email, user.OTP.Value, subjectVerify, "register"); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) registerOnce(ctx context.Context, name, email string) (*models.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Status != models.UserStatusUnverified {
			return nil, ErrUserAlreadyExists
		}
		user, err := s.issueOTP(ctx, existing.ID, []models.UserStatus{models.UserStatusUnverified})
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserAlreadyExists
		}
		return user, err
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	otp, err := s.newOTP()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:  email,
		Name:   name,
		OTP:    &otp,
		Status: models.UserStatusUnverified,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// VerifyOTP checks code for email. The first successful verification
// activates the account and starts its trial. The code is single use.
func (s *UserService) VerifyOTP(ctx context.Context, email, code string) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validOTPFormat(code, s.policy.OTPLength) {
		return nil, ErrInvalidOTPFormat
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.Status == models.UserStatusSuspended {
		return nil, ErrUserNotFound
	}

	now := s.now()
	switch err := user.OTP.Check(code, now, s.policy.MaxOTPAttempts); {
	case errors.Is(err, models.ErrOTPExpired):
		return nil, ErrOTPExpired
	case errors.Is(err, models.ErrOTPAttemptsExceeded):
		return nil, ErrOTPAttemptsExceeded
	case errors.Is(err, models.ErrOTPMismatch):
		err := s.userRepo.IncrementOTPAttempts(ctx, user.ID, user.OTP.Value, s.policy.MaxOTPAttempts)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("count otp attempt: %w", err)
		}
		return nil, ErrIncorrectOTP
	}

	var trial *models.Trial
	if user.Status == models.UserStatusUnverified {
		trial = &models.Trial{
			Start:       now,
			End:         now.Add(s.policy.TrialDuration),
			TotalEvents: s.policy.TrialEvents,
		}
	}
	verified, err := s.userRepo.ConsumeOTP(ctx, user.ID, code, s.policy.MaxOTPAttempts, trial)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// the code was used or replaced concurrently
			return nil, ErrIncorrectOTP
		}
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	log.Ctx(ctx).Info().Str("user", verified.ID.Hex()).Bool("activated", trial != nil).Msg("otp verified")
	return verified, nil
}

// ResendOTP mails the outstanding code again, or a fresh one when the
// outstanding code is missing, expired or out of attempts.
func (s *UserService) ResendOTP(ctx context.Context, email string) (*models.User, error) {
	user, err := s.findOTPRecipient(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.OTP.Reusable(s.now(), s.policy.MaxOTPAttempts) {
		if user, err = s.issueOTP(ctx, user.ID, otpRecipients); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}
	if err := s.sendOTP(ctx, user.Email, user.OTP.Value, subjectVerify, "resend"); err != nil {
		return nil, err
	}
	return user, nil
}

// Login always mints a fresh code, replacing any outstanding one
func (s *UserService) Login(ctx context.Context, email string) (*models.User, error) {
	user, err := s.findOTPRecipient(ctx, email)
	if err != nil {
		return nil, err
	}
	if user, err = s.issueOTP(ctx, user.ID, otpRecipients); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.sendOTP(ctx, user.Email, user.OTP.Value, subjectLogin, "login"); err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns an UNVERIFIED or ACTIVE account
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.FindVisibleByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateName changes the display name
func (s *UserService) UpdateName(ctx context.Context, userID, name string) (*models.User, error) {
	name, ok := cleanName(name)
	if !ok {
		return nil, ErrInvalidName
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.UpdateName(ctx, id, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// SetStatus changes the account status. Administrative use only.
func (s *UserService) SetStatus(ctx context.Context, userID string, status models.UserStatus) (*models.User, error) {
	if !status.Valid() {
		return nil, ErrInvalidUserStatus
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user status: %w", err)
	}
	return user, nil
}

func (s *UserService) findOTPRecipient(ctx context.Context, email string) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Status.CanReceiveOTP() {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) issueOTP(ctx context.Context, id primitive.ObjectID, statuses []models.UserStatus) (*models.User, error) {
	otp, err := s.newOTP()
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.ReplaceOTP(ctx, id, otp, statuses)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("replace otp: %w", err)
	}
	return user, nil
}

func (s *UserService) newOTP() (models.OTP, error) {
	code, err := utils.GenerateOTP(s.policy.OTPLength)
	if err != nil {
		return models.OTP{}, fmt.Errorf("generate otp: %w", err)
	}
	return models.OTP{Value: code, ExpiresAt: s.now().Add(s.policy.OTPExpiry)}, nil
}

func (s *UserService) sendOTP(ctx context.Context, to, code, subject, purpose string) error {
	err := s.mailer.Send(ctx, mailer.Message{
		To:      to,
		Subject: subject,
		Text:    "Your OTP is " + code,
	})
	metrics.OTPMailsSent.WithLabelValues(purpose, metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("send %s otp: %w", purpose, err)
	}
	return nil
}
