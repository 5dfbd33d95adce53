package tci

// DoseWeightInterval selects the time unit of a DoseWeightArray row,
// replacing the original's loosely-typed `interval string` parameter
// with a fixed Go type (spec.md §6, §9).
type DoseWeightInterval int

const (
	PerMinute DoseWeightInterval = iota
	PerHour
)

// RatesArray returns a step array of [time, rate] pairs in ml/hr, one pair
// per second over [0, endTime), covering only infusions not present in
// userInfusions (spec.md §6, per generate_rates_array).
func RatesArray(infusions, userInfusions []Infusion, drugConcentration, endTime float64) [][2]float64 {
	excluded := make(map[Infusion]bool, len(userInfusions))
	for _, u := range userInfusions {
		excluded[u] = true
	}

	n := int(endTime)
	out := make([][2]float64, 0, n)
	for t := 0; t < n; t++ {
		var dose float64
		tf := float64(t)
		for _, inf := range infusions {
			if excluded[inf] {
				continue
			}
			if tf >= inf.Start && tf < inf.End() {
				dose += inf.Dose
			}
		}
		rate := dose / drugConcentration * 3600
		out = append(out, [2]float64{tf, rate})
	}
	return out
}

// DoseWeightArray returns one [bucketStart, dose/weight, cumulative
// dose/weight] row per bucket (60 s for PerMinute, 3600 s for PerHour),
// from t=0 to the end of the last infusion, per
// generate_dose_weight_array. Every row has all three columns for either
// interval. bolusTime and maintenanceDuration are not used: every infusion
// contributes to the bucket totals in the same way, with no separation of
// boluses from maintenance doses.
func DoseWeightArray(infusions []Infusion, weight, bolusTime, maintenanceDuration float64, interval DoseWeightInterval) [][3]float64 {
	if weight <= 0 || len(infusions) == 0 {
		return nil
	}

	bucket := 60.0
	if interval == PerHour {
		bucket = 3600.0
	}

	var end float64
	for _, inf := range infusions {
		if e := inf.End(); e > end {
			end = e
		}
	}

	n := int(end/bucket) + 1
	out := make([][3]float64, n)
	var cumulative float64

	for i := 0; i < n; i++ {
		bucketStart := float64(i) * bucket
		bucketEnd := bucketStart + bucket

		var doseInBucket float64
		for _, inf := range infusions {
			if inf.Start >= bucketEnd || inf.End() <= bucketStart {
				continue
			}
			overlap := minFloat(inf.End(), bucketEnd) - maxFloat(inf.Start, bucketStart)
			doseInBucket += inf.Dose * overlap
		}

		cumulative += doseInBucket
		out[i] = [3]float64{bucketStart, doseInBucket / weight, cumulative / weight}
	}

	return out
}

// TargetsArray returns a step array of [time, target] pairs covering
// [0, endTime), one pair per second, per generate_targets_array.
func TargetsArray(targets []Target, endTime float64) [][2]float64 {
	n := int(endTime)
	out := make([][2]float64, 0, n)
	for t := 0; t < n; t++ {
		tf := float64(t)
		var value float64
		for _, tg := range targets {
			if tf >= tg.Start && tf <= tg.End {
				value = tg.Target
				break
			}
		}
		out = append(out, [2]float64{tf, value})
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
