package nodefs

import (
	"testing"

	"go.uber.org/goleak"
)

// Every test shuts its FS down, so no loop, timer or watcher goroutine may
// survive the package.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
