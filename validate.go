package tripbook

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateResponse extracts the content fields from the first structured
// invocation of resp. Later invocations are ignored. Any absence or mismatch
// against ContentSchema is reported as ErrSchemaViolation.
func ValidateResponse(resp *Response) (*HandbookFields, error) {
	if resp == nil || len(resp.FunctionCalls) == 0 {
		return nil, goerr.Wrap(ErrSchemaViolation, "model did not produce structured output")
	}

	call := resp.FunctionCalls[0]
	if call == nil {
		return nil, goerr.Wrap(ErrSchemaViolation, "model did not produce structured output")
	}
	eb := goerr.NewBuilder(goerr.V("call", call))

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(call.Arguments))
	if err != nil {
		return nil, eb.Wrap(ErrSchemaViolation, "arguments are not valid JSON", goerr.V("cause", err.Error()))
	}
	if err := contentValidator.Validate(inst); err != nil {
		return nil, eb.Wrap(ErrSchemaViolation, "arguments do not match content schema", goerr.V("cause", err.Error()))
	}

	var fields HandbookFields
	if err := json.Unmarshal(call.Arguments, &fields); err != nil {
		return nil, eb.Wrap(ErrSchemaViolation, "failed to decode arguments", goerr.V("cause", err.Error()))
	}

	return &fields, nil
}
