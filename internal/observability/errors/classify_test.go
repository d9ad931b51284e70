package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	apperrors "github.com/image-captioner/captioner/internal/errors"
	"github.com/stretchr/testify/assert"
)

type upstreamFailure struct{}

func (*upstreamFailure) Error() string { return "boom" }

func TestClassify(t *testing.T) {
	assert.Equal(t, "", Classify(nil))
	assert.Equal(t, "conflict", Classify(fmt.Errorf("start: %w", apperrors.Conflict("busy"))))
	assert.Equal(t, "timeout", Classify(fmt.Errorf("poll: %w", context.DeadlineExceeded)))
	assert.Equal(t, "canceled", Classify(context.Canceled))
	assert.Equal(t, "errors_upstreamfailure", Classify(fmt.Errorf("wrap: %w", &upstreamFailure{})))
	assert.Equal(t, "errors_errorstring", Classify(goerrors.New("plain")))
}
