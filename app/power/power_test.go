package power

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeState(t *testing.T, err error) *[]bool {
	var calls []bool
	prev := setAwake
	t.Cleanup(func() {
		setAwake = prev
		holds = 0
	})
	setAwake = func(awake bool) error {
		calls = append(calls, awake)
		return err
	}
	return &calls
}

func TestHoldNests(t *testing.T) {
	calls := fakeState(t, nil)

	first := Hold("download")
	second := Hold("apply")
	assert.Equal(t, []bool{true}, *calls)

	first()
	first()
	assert.Equal(t, []bool{true}, *calls)

	second()
	assert.Equal(t, []bool{true, false}, *calls)
	assert.Zero(t, holds)
}

func TestHoldIgnoresFailures(t *testing.T) {
	calls := fakeState(t, errors.New("access denied"))

	release := Hold("download")
	release()
	assert.Equal(t, []bool{true, false}, *calls)
	assert.Zero(t, holds)
}
