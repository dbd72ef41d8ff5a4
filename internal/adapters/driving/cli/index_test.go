package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driving"
)

func TestIndexCmd_PrintsReport(t *testing.T) {
	index := &mockIndex{
		report: &driving.ScanReport{
			FilesSeen:  12,
			Indexed:    3,
			Removed:    1,
			Skipped:    2,
			ChunkCount: 88,
		},
	}
	restore := withServices(&mockPipeline{}, index)
	defer restore()
	appSettings.WatchFolder = "/home/user/notes"

	out, err := execute("index")

	assert.NoError(t, err)
	assert.Contains(t, out, "/home/user/notes")
	assert.Contains(t, out, "Files seen: 12")
	assert.Contains(t, out, "Indexed:    3")
	assert.Contains(t, out, "Removed:    1")
	assert.Contains(t, out, "Skipped:    2")
	assert.Contains(t, out, "Chunks:     88")
}

func TestIndexCmd_NoFolderConfigured(t *testing.T) {
	restore := withServices(&mockPipeline{}, &mockIndex{})
	defer restore()
	appSettings.WatchFolder = ""

	_, err := execute("index")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no document folder configured")
}

func TestIndexCmd_ScanError(t *testing.T) {
	restore := withServices(&mockPipeline{}, &mockIndex{err: errMock})
	defer restore()
	appSettings.WatchFolder = "/home/user/notes"

	_, err := execute("index")

	assert.ErrorIs(t, err, errMock)
}
