package tripbook

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrSchemaViolation means the model response did not carry a structured
	// invocation whose arguments match ContentSchema. It is terminal for the
	// request: no partial content is ever returned alongside it.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrInvalidTripParameters is returned by TripParameters.Validate.
	ErrInvalidTripParameters = errors.New("invalid trip parameters")

	ErrInvalidTool      = errors.New("invalid tool specification")
	ErrInvalidParameter = errors.New("invalid parameter")

	ErrUnsupportedType = errors.New("unsupported type for schema conversion")
)

// ErrTagTokenExceeded tags provider errors caused by the prompt exceeding the
// model context window. Check with goerr.HasTag.
var ErrTagTokenExceeded = goerr.NewTag("token_exceeded")

// ErrTagProhibitedContent tags provider errors where the model refused to
// answer because of its content policy.
var ErrTagProhibitedContent = goerr.NewTag("prohibited_content")
