package projection

// Project converts one raw model output into a revenue projection.
// Above target the current revenue is scaled inside a ±10% band keyed by raw;
// otherwise raw interpolates linearly from current revenue toward the target.
func Project(raw, current, target float64) float64 {
	if current > target {
		return current * (0.9 + raw*0.2)
	}
	return current + (target-current)*raw
}

// ProjectAll applies Project elementwise with the same current revenue and target.
func ProjectAll(raw []float64, current, target float64) []float64 {
	out := make([]float64, len(raw))
	for i, r := range raw {
		out[i] = Project(r, current, target)
	}
	return out
}
