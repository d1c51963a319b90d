package performance

const (
	UnknownDepartment = "Unknown"

	NeutralAttendanceScore = 50.0
	AttendanceWeight       = 0.6
	PunctualityWeight      = 0.4
	LatePenalty            = 10.0

	ProjectionMonths = 6

	// MinTrainingSamples is the smallest feed the efficiency model is fitted on.
	MinTrainingSamples = 10
)

const (
	projectionDamping = 0.85
	projectionPace    = 1.5
	minDivisor        = 1e-6

	constantColumnTolerance = 1e-9
	singularTolerance       = 1e-9
)
