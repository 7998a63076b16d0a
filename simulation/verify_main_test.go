package simulation

import (
	"testing"

	"github.com/robotics-cluedo/cluedo/testutils"
)

func TestMain(m *testing.M) {
	testutils.VerifyTestMain(m)
}
