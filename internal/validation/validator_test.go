// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package validation

import (
	"strings"
	"testing"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	req := models.RatingRequest{UserID: 1, ContentID: 10, Value: 4.5}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct(valid rating) = %v, want nil", err)
	}
}

func TestValidateStructFieldErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{
			name:      "missing content id",
			input:     &models.RatingRequest{UserID: 1, Value: 3},
			wantField: "ContentID",
			wantTag:   "required",
		},
		{
			name:      "rating above range",
			input:     &models.RatingRequest{UserID: 1, ContentID: 1, Value: 6},
			wantField: "Value",
			wantTag:   "lte",
		},
		{
			name:      "rating below range",
			input:     &models.RatingRequest{UserID: 1, ContentID: 1, Value: 0.5},
			wantField: "Value",
			wantTag:   "gte",
		},
		{
			name:      "negative content id",
			input:     &models.WatchEventRequest{UserID: 1, ContentID: -4},
			wantField: "ContentID",
			wantTag:   "gt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("len(errors) = %d, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&models.RatingRequest{UserID: 1, ContentID: 1, Value: 9})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "less than or equal to 5") {
		t.Errorf("Message = %q, want range message", apiErr.Message)
	}
	if apiErr.Details["field"] != "Value" {
		t.Errorf("Details[field] = %v, want Value", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&models.RatingRequest{})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(err.Errors()) < 2 {
		t.Fatalf("len(errors) = %d, want >= 2", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("Details missing fields list for multi-error response")
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("Message = %q, want joined messages", apiErr.Message)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}
