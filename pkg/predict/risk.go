package predict

// Risk level labels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RiskLevel buckets a cancellation probability. The buckets partition
// [0,1] without overlap: Low [0,0.3), Medium [0.3,0.7), High [0.7,1].
func RiskLevel(probability float64) string {
	switch {
	case probability < 0.3:
		return RiskLow
	case probability < 0.7:
		return RiskMedium
	default:
		return RiskHigh
	}
}
