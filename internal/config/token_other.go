//go:build !windows

package config

import "os"

const tokenEnv = "APPSHELL_FEED_TOKEN"

func loadToken(string) (string, error) {
	return os.Getenv(tokenEnv), nil
}
