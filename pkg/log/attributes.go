package log

// Attribute keys shared by all estimators so that log output stays
// machine-filterable. Use them as the key half of a key/value field pair.
const (
	// ModelNameKey identifies the estimator emitting the record.
	ModelNameKey = "model"

	// OperationKey identifies the phase: "fit", "predict", "transform",
	// "cross_validate", "search".
	OperationKey = "operation"

	// SamplesKey carries the number of rows seen.
	SamplesKey = "n_samples"

	// FeaturesKey carries the number of columns seen.
	FeaturesKey = "n_features"

	// IterationKey carries the boosting iteration number.
	IterationKey = "iteration"

	// FoldKey carries the cross-validation fold index.
	FoldKey = "fold"

	// MetricKey names the metric a value belongs to.
	MetricKey = "metric"

	// ScoreKey carries a metric value.
	ScoreKey = "score"

	// LossKey carries a training loss value.
	LossKey = "loss"

	// DurationMsKey carries elapsed wall time in milliseconds.
	DurationMsKey = "duration_ms"

	// StepKey names a pipeline step.
	StepKey = "step"
)
