package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.log")
	appender := NewFileAppender(path, 1)

	logger := NewBlankLogger("mission")
	logger.AddAppender(appender)
	logger.Sublogger("sensorhub").Infow("stream started", "stream", "frames")
	logger.Debug("tick")
	test.That(t, appender.Close(), test.ShouldBeNil)

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 2)

	cols := strings.Split(lines[0], "\t")
	test.That(t, cols[1], test.ShouldEqual, "INFO")
	test.That(t, cols[2], test.ShouldEqual, "mission.sensorhub")
	test.That(t, cols[len(cols)-2], test.ShouldEqual, "stream started")
	test.That(t, cols[len(cols)-1], test.ShouldEqual, `{"stream":"frames"}`)
	test.That(t, lines[1], test.ShouldContainSubstring, "DEBUG\tmission\t")
}
