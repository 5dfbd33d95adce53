package tci

import (
	"math"
	"sort"
)

// DrugModel describes the compartmental pharmacokinetic/pharmacodynamic
// parameters of a drug, as owned by an external collaborator (a drug
// parameter table, typically). Rate constants are supplied in per-minute
// units, matching the collaborator's convention, and converted to
// per-second on NewCoefficients.
//
// Anthropometric metadata (age, weight, sex, height, validated ranges)
// belongs to that collaborator and is never read here; callers that need
// to round-trip it should keep it alongside a DrugModel value, not inside
// it. The unit labels and the collaborator's Warning text are the
// exception: they ride along as opaque fields the core never interprets.
type DrugModel struct {
	Compartments int // 1, 2, or 3

	V1  float64 // volume of central compartment, L
	K10 float64 // per minute
	K12 float64 // per minute
	K21 float64 // per minute
	K13 float64 // per minute, ignored unless Compartments == 3
	K31 float64 // per minute, ignored unless Compartments == 3
	K20 float64 // per minute, optional, Compartments == 2 only

	Ke0 float64 // per minute, effect-compartment equilibration rate

	// Opaque pass-through metadata, never interpreted by the core.
	ConcentrationUnit string
	TargetUnit        string
	Warning           string
}

// Coefficients are the analytic bolus-response phase coefficients and
// rate constants derived once from a DrugModel.
type Coefficients struct {
	A, B, C          float64
	Alpha, Beta, Gamma float64

	// Ke0 is carried alongside the phase coefficients (already converted
	// to per second) since ForwardPd needs it on every call.
	Ke0 float64
}

// NewCoefficients derives the phase coefficients (A,B,C,alpha,beta,gamma)
// for the given drug model. Rate constants are converted from per-minute
// to per-second before the algebra in spec.md §4.1 is applied.
func NewCoefficients(m DrugModel) (Coefficients, error) {
	if m.V1 <= 0 {
		return Coefficients{}, ErrInvalidModel
	}

	const perMinuteToPerSecond = 1.0 / 60.0

	k10 := m.K10 * perMinuteToPerSecond
	k12 := m.K12 * perMinuteToPerSecond
	k21 := m.K21 * perMinuteToPerSecond
	k13 := m.K13 * perMinuteToPerSecond
	k31 := m.K31 * perMinuteToPerSecond
	k20 := m.K20 * perMinuteToPerSecond
	ke0 := m.Ke0 * perMinuteToPerSecond

	switch m.Compartments {
	case 1:
		return oneCompartment(m.V1, k10, ke0)
	case 2:
		return twoCompartment(m.V1, k10, k12, k21, k20, ke0)
	case 3:
		return threeCompartment(m.V1, k10, k12, k21, k13, k31, ke0)
	default:
		return Coefficients{}, ErrInvalidModel
	}
}

func oneCompartment(v1, k10, ke0 float64) (Coefficients, error) {
	if k10 <= 0 {
		return Coefficients{}, ErrInvalidModel
	}
	return Coefficients{
		A: 1 / v1, B: 0, C: 0,
		Alpha: k10, Beta: 1, Gamma: 1,
		Ke0: ke0,
	}, nil
}

func twoCompartment(v1, k10, k12, k21, k20, ke0 float64) (Coefficients, error) {
	a1 := k21*k10 + k12*k20 + k10*k20
	a2 := k12 + k21 + k10 + k20

	disc := a2*a2 - 4*a1
	if disc < 0 {
		return Coefficients{}, ErrInvalidModel
	}
	sqrtDisc := math.Sqrt(disc)

	beta := 0.5 * (a2 - sqrtDisc)
	if beta <= 0 {
		return Coefficients{}, ErrInvalidModel
	}
	alpha := a1 / beta
	if alpha <= 0 {
		return Coefficients{}, ErrInvalidModel
	}

	a := (alpha - k21 - k20) / (v1 * (alpha - beta))
	b := (beta - k21 - k20) / (v1 * (beta - alpha))

	return Coefficients{
		A: a, B: b, C: 0,
		Alpha: alpha, Beta: beta, Gamma: 1,
		Ke0: ke0,
	}, nil
}

func threeCompartment(v1, k10, k12, k21, k13, k31, ke0 float64) (Coefficients, error) {
	a0 := k10 * k21 * k31
	a1 := k10*k31 + k21*k31 + k21*k13 + k10*k21 + k31*k12
	a2 := k10 + k12 + k13 + k21 + k31

	p := a1 - a2*a2/3
	q := 2*a2*a2*a2/27 - a1*a2/3 + a0

	if p >= 0 {
		return Coefficients{}, ErrInvalidModel
	}

	r1 := math.Sqrt(-p * p * p / 27)
	r2 := 2 * math.Cbrt(r1)

	cosArg := -q / (2 * r1)
	if cosArg > 1 {
		cosArg = 1
	} else if cosArg < -1 {
		cosArg = -1
	}
	theta := math.Acos(cosArg) / 3

	const twoPiThird = 2 * math.Pi / 3

	roots := []float64{
		-(math.Cos(theta)*r2 - a2/3),
		-(math.Cos(theta+twoPiThird)*r2 - a2/3),
		-(math.Cos(theta+2*twoPiThird)*r2 - a2/3),
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(roots)))
	alpha, beta, gamma := roots[0], roots[1], roots[2]

	if alpha <= 0 || beta <= 0 || gamma <= 0 {
		return Coefficients{}, ErrInvalidModel
	}

	a := (1 / v1) * (k21 - alpha) / (alpha - beta) * (k31 - alpha) / (alpha - gamma)
	b := (1 / v1) * (k21 - beta) / (beta - alpha) * (k31 - beta) / (beta - gamma)
	c := (1 / v1) * (k21 - gamma) / (gamma - alpha) * (k31 - gamma) / (gamma - beta)

	return Coefficients{
		A: a, B: b, C: c,
		Alpha: alpha, Beta: beta, Gamma: gamma,
		Ke0: ke0,
	}, nil
}
