package payment

import (
	"testing"

	"github.com/rachitpednekar/cloudshare/app/models"
)

func TestCreditsForPlan(t *testing.T) {
	tests := []struct {
		planID      string
		wantCredits int
		wantPlan    string
	}{
		{planID: "premium", wantCredits: 500, wantPlan: models.PlanPremium},
		{planID: "Premium", wantCredits: 500, wantPlan: models.PlanPremium},
		{planID: " premium ", wantCredits: 500, wantPlan: models.PlanPremium},
		{planID: "ultimate", wantCredits: 5000, wantPlan: models.PlanUltimate},
		{planID: "ULTIMATE", wantCredits: 5000, wantPlan: models.PlanUltimate},
		{planID: "gold", wantCredits: 0, wantPlan: models.PlanBasic},
		{planID: "basic", wantCredits: 0, wantPlan: models.PlanBasic},
		{planID: "", wantCredits: 0, wantPlan: models.PlanBasic},
	}

	for _, tt := range tests {
		credits, plan := CreditsForPlan(tt.planID)
		if credits != tt.wantCredits || plan != tt.wantPlan {
			t.Fatalf("CreditsForPlan(%q) = (%d, %q), want (%d, %q)",
				tt.planID, credits, plan, tt.wantCredits, tt.wantPlan)
		}
	}
}
