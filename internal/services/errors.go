package services

import (
	ae "github.com/ArowuTest/outline-analytics-backend/internal/apperror"
)

// Identity failures
var (
	ErrInvalidEmail        = ae.New(ae.ErrValidation, ae.CodeInvalidEmail, "Please provide a valid email address")
	ErrInvalidName         = ae.New(ae.ErrValidation, ae.CodeInvalidName, "Name must be between 1 and 100 characters")
	ErrInvalidOTPFormat    = ae.New(ae.ErrValidation, ae.CodeInvalidOTP, "OTP must be a 6 digit code")
	ErrUserAlreadyExists   = ae.New(ae.ErrConflict, ae.CodeUserAlreadyExists, "An account with this email already exists")
	ErrUserNotFound        = ae.New(ae.ErrNotFound, ae.CodeUserNotFound, "Account does not exist")
	ErrIncorrectOTP        = ae.New(ae.ErrValidation, ae.CodeIncorrectOTP, "Incorrect OTP")
	ErrOTPExpired          = ae.New(ae.ErrValidation, ae.CodeOTPExpired, "OTP has expired, please request a new one")
	ErrOTPAttemptsExceeded = ae.New(ae.ErrValidation, ae.CodeOTPAttemptsExceeded, "Too many incorrect attempts, please request a new OTP")
	ErrInvalidUserStatus   = ae.New(ae.ErrValidation, ae.CodeInvalidUserStatus, "Invalid account status")
)

// App registry failures
var (
	ErrInvalidAppID        = ae.New(ae.ErrValidation, ae.CodeInvalidAppID, "Invalid app id")
	ErrAppNameRequired     = ae.New(ae.ErrValidation, ae.CodeAppNameRequired, "App name is required")
	ErrAppNameInvalid      = ae.New(ae.ErrValidation, ae.CodeAppNameInvalid, "App name must be at most 100 characters")
	ErrInvalidAppDomain    = ae.New(ae.ErrValidation, ae.CodeInvalidAppDomain, "Domain must be an http or https URL without query or fragment")
	ErrMaxAppsReached      = ae.New(ae.ErrForbidden, ae.CodeMaxAppsReached, "Maximum apps limit exceeded")
	ErrAppNotFound         = ae.New(ae.ErrNotFound, ae.CodeAppNotFound, "App not found")
	ErrEventRequired       = ae.New(ae.ErrValidation, ae.CodeEventRequired, "Event name is required")
	ErrSelectorTypeMissing = ae.New(ae.ErrValidation, ae.CodeSelectorTypeRequired, "Selector type is required")
	ErrSelectorTypeInvalid = ae.New(ae.ErrValidation, ae.CodeSelectorTypeInvalid, "Selector type must be one of id, class, attribute, text, selector")
	ErrSelectorRequired    = ae.New(ae.ErrValidation, ae.CodeSelectorRequired, "Selector is required")
	ErrTriggerRequired     = ae.New(ae.ErrValidation, ae.CodeTriggerRequired, "Trigger is required")
	ErrInvalidText         = ae.New(ae.ErrValidation, ae.CodeInvalidText, "Text must be at most 500 characters")
	ErrInvalidPage         = ae.New(ae.ErrValidation, ae.CodeInvalidPage, "Page must be an absolute URL")
	ErrInvalidEventIDs     = ae.New(ae.ErrValidation, ae.CodeInvalidEventIDs, "Event ids must be a list of valid ids")
	ErrInvalidEventID      = ae.New(ae.ErrValidation, ae.CodeInvalidEventID, "Invalid event id")
	ErrEventAlreadyExists  = ae.New(ae.ErrConflict, ae.CodeEventAlreadyExists, "An event with this name already exists")
	ErrEventNotFound       = ae.New(ae.ErrNotFound, ae.CodeEventNotFound, "Event not found")
	ErrStatusTransition    = ae.New(ae.ErrConflict, ae.CodeInvalidAppStatusTransition, "App cannot move to the requested status")
	ErrEmptyUpdate         = ae.New(ae.ErrValidation, ae.CodeInvalidRequest, "Nothing to update")
)

// Tracking failures
var (
	ErrInvalidAnalyticsID = ae.New(ae.ErrValidation, ae.CodeInvalidAnalyticsID, "Invalid analytics id")
	ErrInvalidBeacon      = ae.New(ae.ErrValidation, ae.CodeInvalidBeacon, "Invalid beacon")
	ErrInvalidPagination  = ae.New(ae.ErrValidation, ae.CodeInvalidPagination, "Invalid page or limit")
)
