package tripbook

var (
	CtxWithLogger   = ctxWithLogger
	FieldParameters = fieldParameters
)
