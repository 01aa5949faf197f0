package pdf

var (
	CollapseSpace = collapseSpace
	FindTitle     = findTitle
)
