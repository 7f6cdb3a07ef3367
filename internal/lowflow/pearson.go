package lowflow

// PearsonIII fits a three-parameter gamma distribution by the method of
// moments: α = 4/γ², β = σγ/2, ξ = μ − 2σ/γ.
type PearsonIII struct{}

func (PearsonIII) Name() string { return NamePearsonIII }

func (PearsonIII) Fit(sample []float64) (Model, error) {
	m, err := newPearsonModel(NamePearsonIII, Summarize(sample), false)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LogPearsonIII is Pearson III on the natural logarithms of the sample.
type LogPearsonIII struct{}

func (LogPearsonIII) Name() string { return NameLogPearsonIII }

func (LogPearsonIII) Fit(sample []float64) (Model, error) {
	if err := checkPositive(NameLogPearsonIII, sample); err != nil {
		return nil, err
	}
	m, err := newPearsonModel(NameLogPearsonIII, Summarize(logSample(sample)), true)
	if err != nil {
		return nil, err
	}
	return m, nil
}

type pearsonModel struct {
	name     string
	moments  Summary
	alpha    float64
	beta     float64
	xi       float64
	logSpace bool
}

func newPearsonModel(name string, s Summary, logSpace bool) (pearsonModel, error) {
	if err := checkMoments(name, s); err != nil {
		return pearsonModel{}, err
	}
	if !s.HasSkewness {
		return pearsonModel{}, infeasible(name, "skewness undefined for %d values with std %v", s.N, s.StdDev)
	}
	g := s.Skewness
	m := pearsonModel{
		name:     name,
		moments:  s,
		alpha:    4 / (g * g),
		beta:     s.StdDev * g / 2,
		xi:       s.Mean - 2*s.StdDev/g,
		logSpace: logSpace,
	}
	check := checkPearsonShape
	if logSpace {
		check = checkLogPearsonShape
	}
	if err := check(name, m.alpha, m.beta, m.xi); err != nil {
		return pearsonModel{}, err
	}
	return m, nil
}

// checkPearsonShape requires finite α, β, ξ. Skewness of exactly zero sends
// α and ξ to infinity.
func checkPearsonShape(name string, alpha, beta, xi float64) error {
	if !finite(alpha) || !finite(beta) || !finite(xi) {
		return infeasible(name, "non-finite parameters alpha=%v beta=%v xi=%v", alpha, beta, xi)
	}
	return nil
}

// checkLogPearsonShape additionally requires α > 0 and β > 0, which rules out
// negative skewness of the logarithms.
func checkLogPearsonShape(name string, alpha, beta, xi float64) error {
	if err := checkPearsonShape(name, alpha, beta, xi); err != nil {
		return err
	}
	if !(alpha > 0) || !(beta > 0) {
		return infeasible(name, "non-positive parameters alpha=%v beta=%v", alpha, beta)
	}
	return nil
}

func (m pearsonModel) Name() string     { return m.name }
func (m pearsonModel) Moments() Summary { return m.moments }

func (m pearsonModel) Shape() ShapeParams {
	return ShapeParams{Alpha: ptr(m.alpha), Beta: ptr(m.beta), Xi: ptr(m.xi)}
}

func (m pearsonModel) Quantile(p float64) (Estimate, error) {
	z, err := NormalQuantile(p)
	if err != nil {
		return Estimate{}, err
	}
	k := PearsonFrequencyFactor(m.moments.Skewness, z)
	center := m.moments.Mean + k*m.moments.StdDev
	se := pearsonStandardError(m.moments.StdDev, m.moments.N, k, m.alpha)
	return interval(p, center, k, se, m.logSpace), nil
}
