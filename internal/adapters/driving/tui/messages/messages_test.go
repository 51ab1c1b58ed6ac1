package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewQueue, "queue"},
		{ViewAddPath, "add_path"},
		{ViewOutput, "output"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewQueue_IsZeroValue(t *testing.T) {
	var v ViewType

	assert.Equal(t, ViewQueue, v)
}

func TestFilesAdded_CarriesResult(t *testing.T) {
	msg := FilesAdded{Result: &driving.AddResult{Added: []string{"/scans/a.tif"}}}

	assert.Equal(t, []string{"/scans/a.tif"}, msg.Result.Added)
	assert.NoError(t, msg.Err)
}

func TestConversionProgress_CarriesEvent(t *testing.T) {
	event := domain.BatchEvent{
		Index:    1,
		Outcome:  domain.Success("/scans/b.tif", "/out/b.heic"),
		Progress: domain.Progress{Completed: 2, Total: 4},
	}

	msg := ConversionProgress{Event: event}

	assert.InDelta(t, 0.5, msg.Event.Progress.Fraction(), 1e-9)
}

func TestConversionFinished_Error(t *testing.T) {
	msg := ConversionFinished{Err: errors.New("batch in progress")}

	assert.Nil(t, msg.Summary)
	assert.EqualError(t, msg.Err, "batch in progress")
}
