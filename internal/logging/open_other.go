//go:build !windows

package logging

func showOpenFailure(string) {}
