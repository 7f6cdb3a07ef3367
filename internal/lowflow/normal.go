package lowflow

// Normal fits the annual minima directly: estimate = mean + z_p·std.
type Normal struct{}

func (Normal) Name() string { return NameNormal }

func (Normal) Fit(sample []float64) (Model, error) {
	if err := checkSampleSize(NameNormal, len(sample)); err != nil {
		return nil, err
	}
	moments := Summarize(sample)
	if err := checkMoments(NameNormal, moments); err != nil {
		return nil, err
	}
	return normalModel{name: NameNormal, moments: moments}, nil
}

// LogNormal fits the natural logarithms of the annual minima and
// exponentiates the estimate and its bounds.
type LogNormal struct{}

func (LogNormal) Name() string { return NameLogNormal }

func (LogNormal) Fit(sample []float64) (Model, error) {
	if err := checkSampleSize(NameLogNormal, len(sample)); err != nil {
		return nil, err
	}
	if err := checkPositive(NameLogNormal, sample); err != nil {
		return nil, err
	}
	moments := Summarize(logSample(sample))
	if err := checkMoments(NameLogNormal, moments); err != nil {
		return nil, err
	}
	return normalModel{name: NameLogNormal, moments: moments, logSpace: true}, nil
}

type normalModel struct {
	name     string
	moments  Summary
	logSpace bool
}

func (m normalModel) Name() string       { return m.name }
func (m normalModel) Moments() Summary   { return m.moments }
func (m normalModel) Shape() ShapeParams { return ShapeParams{} }

func (m normalModel) Quantile(p float64) (Estimate, error) {
	z, err := NormalQuantile(p)
	if err != nil {
		return Estimate{}, err
	}
	center := m.moments.Mean + z*m.moments.StdDev
	se := normalStandardError(m.moments.StdDev, m.moments.N, z)
	return interval(p, center, z, se, m.logSpace), nil
}
