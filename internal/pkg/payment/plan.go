package payment

import (
	"strings"

	"github.com/rachitpednekar/cloudshare/app/models"
)

// CreditsForPlan maps a client-supplied plan identifier to the credit amount
// and ledger tier it purchases. Unrecognized plans map to zero credits and
// the BASIC tier, which the reconciler treats as a failed purchase.
func CreditsForPlan(planID string) (int, string) {
	switch strings.ToLower(strings.TrimSpace(planID)) {
	case "premium":
		return 500, models.PlanPremium
	case "ultimate":
		return 5000, models.PlanUltimate
	default:
		return 0, models.PlanBasic
	}
}
