package app

import (
	"context"
	"fmt"
	"time"
)

// tokenExpiryWindow is how close to expiry an access token may get before it
// is refreshed ahead of use.
const tokenExpiryWindow = 5 * time.Minute

// credentialOwner names the row a refreshed token is persisted against.
// Exactly one of the two IDs is set.
type credentialOwner struct {
	workshopID string
	employeeID string
}

// freshAccessToken returns an access token that is valid for at least the
// expiry window, refreshing and persisting it first when needed. The persist
// happens before the token is used so a crash mid-request never strands an
// unrecorded credential. On any failure the calling source must fail closed.
func (a *App) freshAccessToken(ctx context.Context, owner credentialOwner, binding CalendarBinding) (string, error) {
	if binding.TokenExpiry != nil && time.Until(*binding.TokenExpiry) > tokenExpiryWindow {
		return binding.AccessToken, nil
	}

	creds, err := a.Calendar.RefreshCredentials(ctx, binding.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh credentials: %w", err)
	}

	// Single UPDATE per owning row: concurrent refreshes for the same
	// binding race as last-writer-wins, never as a partial write.
	if owner.employeeID != "" {
		err = a.Store.SaveEmployeeCredentials(ctx, owner.employeeID, creds.AccessToken, creds.RefreshToken, creds.Expiry)
	} else {
		err = a.Store.SaveWorkshopCredentials(ctx, owner.workshopID, creds.AccessToken, creds.RefreshToken, creds.Expiry)
	}
	if err != nil {
		return "", fmt.Errorf("persist credentials: %w", err)
	}

	return creds.AccessToken, nil
}
