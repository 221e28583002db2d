//go:build !windows

package power

func platformSetAwake(bool) error {
	return nil
}
