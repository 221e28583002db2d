//go:build windows

package config

import (
	"errors"
	"fmt"

	"github.com/danieljoos/wincred"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// loadToken reads "<app>/feed_token" from Windows Credential Manager.
// A missing credential yields an empty token.
func loadToken(appName string) (string, error) {
	targetName := appName + "/feed_token"

	cred, err := wincred.GetGenericCredential(targetName)
	if err != nil {
		if errors.Is(err, wincred.ErrElementNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("error retrieving credential '%s': %w", targetName, err)
	}

	// Decode the token from UTF-16LE (as stored by Windows) to UTF-8
	utf16leDecoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	token, _, err := transform.Bytes(utf16leDecoder, cred.CredentialBlob)
	if err != nil {
		return "", fmt.Errorf("error decoding token from UTF-16LE to UTF-8: %w", err)
	}
	return string(token), nil
}
