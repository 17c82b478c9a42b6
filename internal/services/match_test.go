package services

import (
	"testing"

	"cctv-survey/internal/strapi"
)

func TestMatchStrategy(t *testing.T) {
	tests := []struct {
		strategy MatchStrategy
		stored   string
		want     string
		match    bool
	}{
		{MatchExactNormalized, "Swargate  Station", " swargate station ", true},
		{MatchExactNormalized, "Swargate Station", "Swargate", false},
		{MatchExactTrimmed, "Pune", " Pune ", true},
		{MatchExactTrimmed, "Pune", "pune", false},
		{MatchContainsFold, "Stand A (Swargate - Station)", "stand a", true},
		{MatchContainsFold, "Stand A (Swargate - Station)", "Stand B", false},
	}
	for _, tt := range tests {
		t.Run(tt.strategy.String()+"/"+tt.want, func(t *testing.T) {
			if got := tt.strategy.Match(tt.stored, tt.want); got != tt.match {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.stored, tt.want, got, tt.match)
			}
		})
	}
}

func TestMatchStrategyFilter(t *testing.T) {
	f := MatchContainsFold.Filter("name", " Stand A ")
	if f.Op != strapi.OpContainsI || f.Values[0] != "Stand A" {
		t.Errorf("unexpected filter: %+v", f)
	}
	f = MatchExactTrimmed.Filter("name", " Pune")
	if f.Op != strapi.OpEq || f.Values[0] != "Pune" {
		t.Errorf("unexpected filter: %+v", f)
	}
}

func TestHierarchyAndBOQStrategiesDiffer(t *testing.T) {
	if hierarchyLevelMatch["busStand"] != MatchContainsFold {
		t.Error("bus stand lookups during location import must be contains-fold")
	}
	if boqFieldMatch["busstand"] != MatchExactNormalized {
		t.Error("bus stand resolution during BOQ import must be exact-normalized")
	}
}
