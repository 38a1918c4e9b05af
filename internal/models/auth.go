package models

// RegisterRequest is the body of POST /user/register
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EmailRequest is the body of otp/resend and login
type EmailRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest is the body of otp/verify
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// UpdateUserRequest is the body of PATCH /user/update
type UpdateUserRequest struct {
	Name string `json:"name"`
}

// UserStatusRequest is the body of the admin status change
type UserStatusRequest struct {
	Status UserStatus `json:"status" binding:"required"`
}

// CreateAppRequest is the body of POST /app/create
type CreateAppRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// UpdateAppRequest is the body of PATCH /app/:id/update
type UpdateAppRequest struct {
	Name   *string `json:"name"`
	Domain *string `json:"domain"`
}

// EventDefinitionRequest is the body of event add and update
type EventDefinitionRequest struct {
	Event        *string `json:"event"`
	SelectorType *string `json:"selector_type"`
	Selector     *string `json:"selector"`
	Text         *string `json:"text"`
	Trigger      *string `json:"trigger"`
	Page         *string `json:"page"`
}

// DeleteEventsRequest is the body of PUT /app/:id/events/delete
type DeleteEventsRequest struct {
	EventIDs []string `json:"eventIds" binding:"required"`
}

// PageRequest is the page section of a beacon
type PageRequest struct {
	Fullpath string            `json:"fullpath" binding:"required"`
	Title    string            `json:"title"`
	Meta     map[string]string `json:"meta"`
	Referrer string            `json:"referrer"`
}

// BeaconRequest is the body of the event and session beacons
type BeaconRequest struct {
	UID       string       `json:"uid" binding:"required,max=128"`
	Event     string       `json:"event" binding:"max=128"`
	EventType string       `json:"eventType"`
	Page      *PageRequest `json:"page"`
	Data      RawJSON      `json:"data"`
	SessionID string       `json:"sessionId" binding:"max=128"`
	VisitedAt int64        `json:"visitedAt"`
	LeftAt    int64        `json:"leftAt"`
}

// RawJSON keeps a JSON value undecoded until the payload rules are applied
type RawJSON []byte

// UnmarshalJSON stores a copy of data
func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}
