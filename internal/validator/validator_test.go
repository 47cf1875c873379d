package validator

import (
	"strings"
	"testing"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

func TestValidateJoinSessionRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     JoinSessionRequest
		wantErr bool
	}{
		{"valid", JoinSessionRequest{PinCode: "123456", Nickname: "aruzhan"}, false},
		{"pin too short", JoinSessionRequest{PinCode: "12345", Nickname: "aruzhan"}, true},
		{"pin with letters", JoinSessionRequest{PinCode: "12a456", Nickname: "aruzhan"}, true},
		{"missing pin", JoinSessionRequest{Nickname: "aruzhan"}, true},
		{"missing nickname", JoinSessionRequest{PinCode: "123456"}, true},
		{"blank nickname", JoinSessionRequest{PinCode: "123456", Nickname: "   "}, true},
		{"cyrillic nickname", JoinSessionRequest{PinCode: "123456", Nickname: "Әсел Қызғалдақ"}, false},
		{"nickname with dots and dashes", JoinSessionRequest{PinCode: "123456", Nickname: "A. O'Neil-2"}, false},
		{"nickname at 20 characters", JoinSessionRequest{PinCode: "123456", Nickname: strings.Repeat("a", 20)}, false},
		{"nickname over 20 characters", JoinSessionRequest{PinCode: "123456", Nickname: strings.Repeat("a", 25)}, true},
		{"nickname with markup", JoinSessionRequest{PinCode: "123456", Nickname: "Ali<script>!@#$"}, true},
		{"nickname with parentheses", JoinSessionRequest{PinCode: "123456", Nickname: "Ali (2)"}, true},
		{"nickname with control char", JoinSessionRequest{PinCode: "123456", Nickname: "a\x00b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionCreate(t *testing.T) {
	v := New()
	bv := v.GetBusinessValidator()

	tests := []struct {
		name    string
		req     SessionCreateRequest
		wantErr bool
	}{
		{
			"valid limited speed",
			SessionCreateRequest{GameTaskID: 1, PlayMode: models.PlayModeSpeed, Limit: models.SessionLimited, Duration: 120},
			false,
		},
		{
			"valid limitless classic",
			SessionCreateRequest{GameTaskID: 1, PlayMode: models.PlayModeClassic, Limit: models.SessionLimitless},
			false,
		},
		{
			"limited without duration",
			SessionCreateRequest{GameTaskID: 1, PlayMode: models.PlayModeSpeed, Limit: models.SessionLimited},
			true,
		},
		{
			"limitless with duration",
			SessionCreateRequest{GameTaskID: 1, PlayMode: models.PlayModeSpeed, Limit: models.SessionLimitless, Duration: 60},
			true,
		},
		{
			"unknown play mode",
			SessionCreateRequest{GameTaskID: 1, PlayMode: "turbo", Limit: models.SessionLimitless},
			true,
		},
		{
			"duration too short",
			SessionCreateRequest{GameTaskID: 1, PlayMode: models.PlayModeSpeed, Limit: models.SessionLimited, Duration: 5},
			true,
		},
		{
			"missing game task",
			SessionCreateRequest{PlayMode: models.PlayModeSpeed, Limit: models.SessionLimitless},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateSessionCreate(&tt.req)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateSessionCreate() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidateStatusTransition(t *testing.T) {
	bv := New().GetBusinessValidator()

	tests := []struct {
		name    string
		from    models.SessionStatus
		to      models.SessionStatus
		wantErr bool
	}{
		{"pending to active", models.SessionPending, models.SessionActive, false},
		{"pending to finished", models.SessionPending, models.SessionFinished, false},
		{"active to finished", models.SessionActive, models.SessionFinished, false},
		{"active to pending", models.SessionActive, models.SessionPending, true},
		{"finished to active", models.SessionFinished, models.SessionActive, true},
		{"finished to pending", models.SessionFinished, models.SessionPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateStatusTransition(tt.from, tt.to)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateStatusTransition(%s, %s) errors = %v, wantErr %v", tt.from, tt.to, errs, tt.wantErr)
			}
		})
	}
}

func TestValidateDeletePermission(t *testing.T) {
	bv := New().GetBusinessValidator()

	if errs := bv.ValidateDeletePermission(models.SessionPending, 0); len(errs) > 0 {
		t.Errorf("deleting a pending session should be allowed, got %v", errs)
	}
	if errs := bv.ValidateDeletePermission(models.SessionActive, 3); len(errs) == 0 {
		t.Error("deleting a running session should be rejected")
	}
	if errs := bv.ValidateDeletePermission(models.SessionFinished, 3); len(errs) == 0 {
		t.Error("deleting a finished session with results should be rejected")
	}
	if errs := bv.ValidateDeletePermission(models.SessionFinished, 0); len(errs) > 0 {
		t.Errorf("deleting an empty finished session should be allowed, got %v", errs)
	}
}
