package pricing

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// RiskBand mirrors the rate tiers.
func RiskBand(creditScore int) Risk {
	switch BaseRate(creditScore) {
	case 8:
		return RiskLow
	case 10:
		return RiskMedium
	default:
		return RiskHigh
	}
}
