package install

import (
	"errors"
	"fmt"

	ole "github.com/go-ole/go-ole"
)

// HRESULTs CoInitializeEx reports through an *ole.OleError.
const (
	hrSFalse         = 0x00000001
	hrRPCChangedMode = 0x80010106
)

// comInitResult classifies the error from CoInitializeEx. release reports
// whether the call took a reference that needs a matching CoUninitialize.
// S_FALSE (already initialised) takes one; RPC_E_CHANGED_MODE does not but
// COM is still usable.
func comInitResult(err error) (release bool, _ error) {
	if err == nil {
		return true, nil
	}
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		switch oleErr.Code() {
		case hrSFalse:
			return true, nil
		case hrRPCChangedMode:
			return false, nil
		}
	}
	return false, fmt.Errorf("initialise COM: %w", err)
}
