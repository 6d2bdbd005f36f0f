package utils

import (
	"errors"
	"net/http"
)

// Common application errors used across services.
var (
	ErrDealNotFound        = errors.New("DEAL_NOT_FOUND")
	ErrDealProductNotFound = errors.New("DEAL_PRODUCT_NOT_FOUND")
	ErrProductNotFound     = errors.New("PRODUCT_NOT_FOUND")
	ErrSettingNotFound     = errors.New("SETTING_NOT_FOUND")
	ErrInvoiceNotFound     = errors.New("INVOICE_NOT_FOUND")
	ErrInvalidDeal         = errors.New("INVALID_DEAL")
	ErrInvalidDealProduct  = errors.New("INVALID_DEAL_PRODUCT")
	ErrInvalidSetting      = errors.New("INVALID_SETTING")
	ErrInvalidInvoice      = errors.New("INVALID_INVOICE")
	ErrInvalidCredentials  = errors.New("INVALID_CREDENTIALS")
	ErrInvalidSignupKey    = errors.New("INVALID_SIGNUP_KEY")
	ErrInvalidSignup       = errors.New("INVALID_SIGNUP")
	ErrEmailTaken          = errors.New("EMAIL_TAKEN")
	ErrAccountDisabled     = errors.New("ACCOUNT_DISABLED")
	ErrInvalidToken        = errors.New("INVALID_TOKEN")
	ErrExpiredToken        = errors.New("TOKEN_EXPIRED")
)

var errorStatus = map[error]int{
	ErrDealNotFound:        http.StatusNotFound,
	ErrDealProductNotFound: http.StatusNotFound,
	ErrProductNotFound:     http.StatusNotFound,
	ErrSettingNotFound:     http.StatusNotFound,
	ErrInvoiceNotFound:     http.StatusNotFound,
	ErrInvalidDeal:         http.StatusBadRequest,
	ErrInvalidDealProduct:  http.StatusBadRequest,
	ErrInvalidSetting:      http.StatusBadRequest,
	ErrInvalidInvoice:      http.StatusBadRequest,
	ErrInvalidCredentials:  http.StatusUnauthorized,
	ErrInvalidSignupKey:    http.StatusForbidden,
	ErrInvalidSignup:       http.StatusBadRequest,
	ErrEmailTaken:          http.StatusConflict,
	ErrAccountDisabled:     http.StatusForbidden,
	ErrInvalidToken:        http.StatusUnauthorized,
	ErrExpiredToken:        http.StatusUnauthorized,
}

// StatusFor maps a (possibly wrapped) application error to an HTTP status
// and envelope error code. Unknown errors map to 500 INTERNAL_ERROR.
func StatusFor(err error) (int, string) {
	for sentinel, status := range errorStatus {
		if errors.Is(err, sentinel) {
			return status, sentinel.Error()
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
