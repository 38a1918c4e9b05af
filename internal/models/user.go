package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStatus is the lifecycle state of an account
type UserStatus string

const (
	UserStatusUnverified UserStatus = "UNVERIFIED"
	UserStatusActive     UserStatus = "ACTIVE"
	UserStatusSuspended  UserStatus = "SUSPENDED"
)

// Valid reports whether s is a known status
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusUnverified, UserStatusActive, UserStatusSuspended:
		return true
	}
	return false
}

// CanReceiveOTP reports whether an account in this state may request a code
func (s UserStatus) CanReceiveOTP() bool {
	return s == UserStatusUnverified || s == UserStatusActive
}

// User represents an account owning apps
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	Picture      string             `bson:"picture,omitempty" json:"picture,omitempty"`
	OTP          *OTP               `bson:"otp,omitempty" json:"-"`
	Status       UserStatus         `bson:"status" json:"status"`
	Trial        *Trial             `bson:"trial,omitempty" json:"trial,omitempty"`
	Subscription *Subscription      `bson:"subscription,omitempty" json:"subscription,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OTP is the outstanding one-time code of an account
type OTP struct {
	Value     string    `bson:"value"`
	ExpiresAt time.Time `bson:"exp"`
	Attempts  int       `bson:"attempts"`
}

var (
	ErrOTPExpired          = errors.New("otp expired")
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	ErrOTPMismatch         = errors.New("otp mismatch")
)

// Check evaluates code against the stored OTP. Expiry is checked before
// exhausted attempts, which is checked before a value mismatch.
func (o *OTP) Check(code string, now time.Time, maxAttempts int) error {
	if o == nil || now.After(o.ExpiresAt) {
		return ErrOTPExpired
	}
	if o.Attempts >= maxAttempts {
		return ErrOTPAttemptsExceeded
	}
	if o.Value != code {
		return ErrOTPMismatch
	}
	return nil
}

// Reusable reports whether the code can be sent again instead of minting a new one
func (o *OTP) Reusable(now time.Time, maxAttempts int) bool {
	return o != nil && !now.After(o.ExpiresAt) && o.Attempts < maxAttempts
}

// Trial is the free usage window stamped on first verification
type Trial struct {
	Start       time.Time `bson:"start" json:"start"`
	End         time.Time `bson:"end" json:"end"`
	TotalEvents int64     `bson:"totalEvents" json:"totalEvents"`
}

// Subscription holds billing state; it is maintained outside this service
type Subscription struct {
	Period             string    `bson:"period,omitempty" json:"period,omitempty"`
	PeriodStart        time.Time `bson:"periodStart,omitempty" json:"periodStart,omitempty"`
	PeriodEnd          time.Time `bson:"periodEnd,omitempty" json:"periodEnd,omitempty"`
	InvoiceID          string    `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`
	TotalMonthlyEvents int64     `bson:"totalMonthlyEvents,omitempty" json:"totalMonthlyEvents,omitempty"`
	MonthStart         time.Time `bson:"monthStart,omitempty" json:"monthStart,omitempty"`
	MonthEnd           time.Time `bson:"monthEnd,omitempty" json:"monthEnd,omitempty"`
}

// Profile is the public view returned by /user/me
type Profile struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	Picture   string     `json:"picture,omitempty"`
	Status    UserStatus `json:"status"`
	TrialEnd  *time.Time `json:"trialEnd,omitempty"`
	PeriodEnd *time.Time `json:"periodEnd,omitempty"`
}

// Profile builds the public view of u
func (u *User) Profile() Profile {
	p := Profile{
		ID:      u.ID.Hex(),
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
		Status:  u.Status,
	}
	if u.Trial != nil {
		end := u.Trial.End
		p.TrialEnd = &end
	}
	if u.Subscription != nil && !u.Subscription.PeriodEnd.IsZero() {
		end := u.Subscription.PeriodEnd
		p.PeriodEnd = &end
	}
	return p
}
