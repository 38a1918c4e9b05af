package apperror

// CodeInvalidRequest is the generic code for malformed bodies
const CodeInvalidRequest = 400

// App registry codes
const (
	CodeInvalidAppID               = 1000
	CodeAppNameRequired            = 1001
	CodeAppNameInvalid             = 1002
	CodeInvalidAppDomain           = 1003
	CodeMaxAppsReached             = 1004
	CodeAppNotFound                = 1005
	CodeEventRequired              = 1006
	CodeSelectorTypeRequired       = 1007
	CodeSelectorTypeInvalid        = 1008
	CodeSelectorRequired           = 1009
	CodeTriggerRequired            = 1010
	CodeInvalidText                = 1011
	CodeInvalidPage                = 1012
	CodeInvalidEventIDs            = 1013
	CodeEventAlreadyExists         = 1014
	CodeEventNotFound              = 1015
	CodeInvalidEventID             = 1016
	CodeInvalidAppStatusTransition = 1017
)

// Identity codes
const (
	CodeInvalidEmail        = 2000
	CodeUserAlreadyExists   = 2001
	CodeInvalidOTP          = 2002
	CodeIncorrectOTP        = 2003
	CodeOTPExpired          = 2004
	CodeOTPAttemptsExceeded = 2005
	CodeUserNotFound        = 2006
	CodeInvalidName         = 2007
	CodeInvalidUserStatus   = 2008
)

// Tracking codes
const (
	CodeInvalidAnalyticsID = 3000
	CodeInvalidBeacon      = 3001
	CodeInvalidPagination  = 3002
)

// Codes is the table served by GET /error_codes
func Codes() map[string]map[string]int {
	return map[string]map[string]int{
		"app": {
			"INVALID_APP_ID":                CodeInvalidAppID,
			"APP_NAME_REQUIRED":             CodeAppNameRequired,
			"APP_NAME_INVALID":              CodeAppNameInvalid,
			"INVALID_APP_DOMAIN":            CodeInvalidAppDomain,
			"MAX_APPS_REACHED":              CodeMaxAppsReached,
			"APP_NOT_FOUND":                 CodeAppNotFound,
			"EVENT_REQUIRED":                CodeEventRequired,
			"SELECTOR_TYPE_REQUIRED":        CodeSelectorTypeRequired,
			"SELECTOR_TYPE_INVALID":         CodeSelectorTypeInvalid,
			"SELECTOR_REQUIRED":             CodeSelectorRequired,
			"TRIGGER_REQUIRED":              CodeTriggerRequired,
			"INVALID_TEXT":                  CodeInvalidText,
			"INVALID_PAGE":                  CodeInvalidPage,
			"INVALID_EVENT_IDS":             CodeInvalidEventIDs,
			"EVENT_ALREADY_EXISTS":          CodeEventAlreadyExists,
			"EVENT_NOT_FOUND":               CodeEventNotFound,
			"INVALID_EVENT_ID":              CodeInvalidEventID,
			"INVALID_APP_STATUS_TRANSITION": CodeInvalidAppStatusTransition,
		},
		"user": {
			"INVALID_EMAIL":         CodeInvalidEmail,
			"USER_ALREADY_EXISTS":   CodeUserAlreadyExists,
			"INVALID_OTP":           CodeInvalidOTP,
			"INCORRECT_OTP":         CodeIncorrectOTP,
			"OTP_EXPIRED":           CodeOTPExpired,
			"OTP_ATTEMPTS_EXCEEDED": CodeOTPAttemptsExceeded,
			"USER_NOT_FOUND":        CodeUserNotFound,
			"INVALID_NAME":          CodeInvalidName,
			"INVALID_USER_STATUS":   CodeInvalidUserStatus,
		},
		"tracking": {
			"INVALID_ANALYTICS_ID": CodeInvalidAnalyticsID,
			"INVALID_BEACON":       CodeInvalidBeacon,
			"INVALID_PAGINATION":   CodeInvalidPagination,
		},
	}
}
