package cache

import "fmt"

// Cache key layout. Kept in one place so services and tests agree.

// PreviousShiftKey caches the latest submitted reading per tank, used by
// the carryover fetch.
func PreviousShiftKey(tankID string) string {
	return fmt.Sprintf("reading:previous:%s", tankID)
}

// CustomersKey caches the active customer directory for allocation forms.
func CustomersKey() string {
	return "customers:active"
}

// AuthUserKey caches the user record behind a validated token so every
// request does not hit the database.
func AuthUserKey(userID string) string {
	return fmt.Sprintf("auth:user:%s", userID)
}
