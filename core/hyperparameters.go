package core

// Hyperparameters configures a training run. It is built once and validated
// before any update is applied.
type Hyperparameters struct {
	Episodes     int     `yaml:"episodes" json:"episodes"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
	Discount     float64 `yaml:"discount" json:"discount"`
	MaxEpsilon   float64 `yaml:"max_epsilon" json:"max_epsilon"`
	MinEpsilon   float64 `yaml:"min_epsilon" json:"min_epsilon"`
	DecayRate    float64 `yaml:"decay_rate" json:"decay_rate"`
	MaxSteps     int     `yaml:"max_steps" json:"max_steps"`
}

func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Episodes:     100000,
		LearningRate: 0.5,
		Discount:     0.95,
		MaxEpsilon:   1.0,
		MinEpsilon:   0.005,
		DecayRate:    0.00005,
		MaxSteps:     99,
	}
}

// Validate returns an error wrapping ErrConfig for the first invalid field.
// Negated comparisons also reject NaN.
func (h Hyperparameters) Validate() error {
	if h.Episodes <= 0 {
		return configError("episodes must be positive, got %d", h.Episodes)
	}
	if h.MaxSteps <= 0 {
		return configError("max steps must be positive, got %d", h.MaxSteps)
	}
	if !(h.LearningRate > 0 && h.LearningRate <= 1) {
		return configError("learning rate %v outside (0, 1]", h.LearningRate)
	}
	if !(h.Discount >= 0 && h.Discount < 1) {
		return configError("discount %v outside [0, 1)", h.Discount)
	}
	if !(h.MinEpsilon >= 0 && h.MaxEpsilon <= 1) {
		return configError("epsilon bounds [%v, %v] outside [0, 1]", h.MinEpsilon, h.MaxEpsilon)
	}
	if !(h.MinEpsilon <= h.MaxEpsilon) {
		return configError("min epsilon %v greater than max epsilon %v", h.MinEpsilon, h.MaxEpsilon)
	}
	if !(h.DecayRate > 0) {
		return configError("decay rate must be positive, got %v", h.DecayRate)
	}
	return nil
}
