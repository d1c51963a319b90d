package performance

import "math"

// Model features, in order: tasks assigned, attendance %, basic salary,
// progress %.
const featureCount = 4

func features(s EfficiencySnapshot) [featureCount]float64 {
	return [featureCount]float64{s.TasksCompleted + s.TasksPending, s.Attendance, s.BasicSalary, s.Progress()}
}

// EfficiencyModel is an ordinary least-squares fit of efficiency on the
// snapshot features, with an intercept.
type EfficiencyModel struct {
	Intercept    float64               `json:"intercept"`
	Coefficients [featureCount]float64 `json:"coefficients"`
}

// TrainEfficiencyModel fits a model on samples. It reports false when there
// are fewer than MinTrainingSamples or the features are linearly dependent.
func TrainEfficiencyModel(samples []EfficiencySnapshot) (EfficiencyModel, bool) {
	n := len(samples)
	if n < MinTrainingSamples {
		return EfficiencyModel{}, false
	}

	xs := make([][featureCount]float64, n)
	var meanX [featureCount]float64
	var meanY float64
	for i, s := range samples {
		xs[i] = features(s)
		for j, v := range xs[i] {
			meanX[j] += v / float64(n)
		}
		meanY += s.Efficiency / float64(n)
	}
	if !finite(meanY) {
		return EfficiencyModel{}, false
	}

	// Constant columns carry no signal and keep a zero coefficient.
	var scale [featureCount]float64
	var cols []int
	for j := 0; j < featureCount; j++ {
		var ss float64
		for i := range xs {
			d := xs[i][j] - meanX[j]
			ss += d * d
		}
		scale[j] = math.Sqrt(ss / float64(n))
		if finite(scale[j]) && scale[j] > constantColumnTolerance {
			cols = append(cols, j)
		}
	}

	m := EfficiencyModel{Intercept: meanY}
	if len(cols) == 0 {
		return m, true
	}

	// Normal equations on centred, unit-variance features.
	k := len(cols)
	a := make([][]float64, k)
	for r := range a {
		a[r] = make([]float64, k+1)
	}
	for i, s := range samples {
		y := s.Efficiency - meanY
		for r, jr := range cols {
			zr := (xs[i][jr] - meanX[jr]) / scale[jr]
			for c, jc := range cols {
				a[r][c] += zr * (xs[i][jc] - meanX[jc]) / scale[jc]
			}
			a[r][k] += zr * y
		}
	}
	gamma, ok := solve(a)
	if !ok {
		return EfficiencyModel{}, false
	}
	for r, j := range cols {
		m.Coefficients[j] = gamma[r] / scale[j]
		m.Intercept -= m.Coefficients[j] * meanX[j]
	}
	return m, true
}

// Predict returns the raw model output, unclamped.
func (m EfficiencyModel) Predict(s EfficiencySnapshot) float64 {
	x := features(s)
	y := m.Intercept
	for j, c := range m.Coefficients {
		y += c * x[j]
	}
	return y
}

// solve runs Gauss-Jordan elimination with partial pivoting on an augmented
// k x (k+1) matrix.
func solve(a [][]float64) ([]float64, bool) {
	k := len(a)
	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < singularTolerance {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c <= k; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	out := make([]float64, k)
	for r := 0; r < k; r++ {
		out[r] = a[r][k] / a[r][r]
		if !finite(out[r]) {
			return nil, false
		}
	}
	return out, true
}

// Forecaster predicts next month's efficiency with a trained model when one
// is available and with the proportional heuristic otherwise.
type Forecaster struct {
	model   EfficiencyModel
	trained bool
}

// NewForecaster trains on samples, typically every row of one feed.
func NewForecaster(samples []EfficiencySnapshot) Forecaster {
	m, ok := TrainEfficiencyModel(samples)
	return Forecaster{model: m, trained: ok}
}

func (f Forecaster) Trained() bool {
	return f.trained
}

// Forecast applies the attendance and completed-task adjustments, in percent,
// then predicts. Model output is clamped to [0,100]; a non-finite prediction
// falls back to the current efficiency.
func (f Forecaster) Forecast(s EfficiencySnapshot, attendanceAdjPct, tasksCompletedAdjPct float64) float64 {
	if !f.trained {
		return ForecastEfficiency(s, attendanceAdjPct, tasksCompletedAdjPct)
	}
	adjusted := s
	adjusted.Attendance = math.Max(0, s.Attendance*(1+attendanceAdjPct/100))
	adjusted.TasksCompleted = math.Max(0, s.TasksCompleted*(1+tasksCompletedAdjPct/100))
	pred := f.model.Predict(adjusted)
	if !finite(pred) {
		return s.Efficiency
	}
	return clampPercent(pred)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
