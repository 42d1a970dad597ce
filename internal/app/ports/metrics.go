package ports

import "gallerywalk/internal/domain/world"

type StreamMetrics interface {
	RecordSpawn(kind world.VariantKind)
	RecordDeferred(n int)
	RecordOffLimitsSkip()
	RecordFailure()
}
