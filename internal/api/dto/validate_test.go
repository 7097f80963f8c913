package dto

import (
	"testing"

	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	lat := 120.0
	err := Validate(&CreateComplaintRequest{Description: "d", CategoryID: "c", Lat: &lat})
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != "VALIDATION_FAILED" {
		t.Fatalf("err = %v", err)
	}
	if de.Details["title"] != "required" {
		t.Errorf("title detail = %v", de.Details["title"])
	}
	if de.Details["lat"] != "max=90" {
		t.Errorf("lat detail = %v", de.Details["lat"])
	}
}

func TestValidateAcceptsGoodPayload(t *testing.T) {
	phone := "+15550100"
	if err := Validate(&RegisterRequest{Email: "a@b.co", Phone: &phone, Password: "longenough"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
