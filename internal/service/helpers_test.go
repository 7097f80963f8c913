package service

import (
	"errors"
	"testing"

	"github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

func errorCodeOf(err error) string {
	var de *errorutil.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestNormalizePaging(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{-1, 0, 0, 20},
		{2, 10, 2, 10},
		{0, 1000, 0, 100},
	}
	for _, tt := range tests {
		page, size := normalizePaging(tt.page, tt.size, 20, 100)
		if page != tt.wantPage || size != tt.wantSize {
			t.Errorf("normalizePaging(%d, %d) = %d, %d", tt.page, tt.size, page, size)
		}
	}
}

func TestTrimmedOrNil(t *testing.T) {
	blank := "   "
	padded := "  ok "
	if trimmedOrNil(nil) != nil || trimmedOrNil(&blank) != nil {
		t.Fatal("nil and blank must collapse to nil")
	}
	if got := trimmedOrNil(&padded); got == nil || *got != "ok" {
		t.Fatalf("trimmedOrNil = %v", got)
	}
}
