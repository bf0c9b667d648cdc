package domain

import "testing"

func TestNewReview_Validate(t *testing.T) {
	t.Parallel()

	valid := NewReview{ReviewerName: "Asha", Rating: 5, Comment: "Great"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rating := range []int{0, 6, -1} {
		in := valid
		in.Rating = rating
		if err := in.Validate(); err == nil {
			t.Errorf("rating %d accepted", rating)
		}
	}
}

func TestReview_Approve(t *testing.T) {
	t.Parallel()

	old := "pending"
	r := Review{Rating: 4, AdminResponse: &old}

	out := r.Approve(ptr("thanks"))
	if !out.IsApproved || out.AdminResponse == nil || *out.AdminResponse != "thanks" {
		t.Fatalf("approve did not set both fields: %+v", out)
	}
	if r.IsApproved || *r.AdminResponse != "pending" {
		t.Error("original review mutated")
	}

	kept := r.Approve(nil)
	if !kept.IsApproved || *kept.AdminResponse != "pending" {
		t.Error("nil response must keep the existing one")
	}
}

func TestNewInquiry_Validate(t *testing.T) {
	t.Parallel()

	if err := (NewInquiry{Name: "V", Email: "v@example.com", Message: "hi"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (NewInquiry{Name: "V", Email: "not-an-email", Message: "hi"}).Validate(); err == nil {
		t.Error("invalid email accepted")
	}
}

func TestSettings_Apply(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	out := s.Apply(SettingsPatch{TariffPerKWh: ptr(9.5), MapZoom: ptr(8)})
	if out.TariffPerKWh != 9.5 || out.MapZoom != 8 || out.ID != SettingsID {
		t.Errorf("unexpected settings: %+v", out)
	}
	if out.CompanyName != s.CompanyName {
		t.Error("untouched field changed")
	}

	if err := (SettingsPatch{SubsidyPercentage: ptr(120.0)}).Validate(); err == nil {
		t.Error("subsidy above 100 accepted")
	}
}
