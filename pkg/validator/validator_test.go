package validator

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name string `validate:"required"`
	Size int    `validate:"max=3"`
}

// TestValidateStructAndMessages tests struct validation and message flattening
func TestValidateStructAndMessages(t *testing.T) {
	v := New()

	if err := v.ValidateStruct(sample{Name: "ok", Size: 1}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	err := v.ValidateStruct(sample{Size: 9})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msgs := Messages(err)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "sample.Name failed on required") {
		t.Errorf("unexpected first message: %s", msgs[0])
	}
	if !strings.Contains(msgs[1], "max=3") {
		t.Errorf("unexpected second message: %s", msgs[1])
	}
}

// TestValidateVar tests single value validation
func TestValidateVar(t *testing.T) {
	v := New()
	if err := v.ValidateVar("abc123", "required,max=128"); err != nil {
		t.Errorf("expected valid var, got %v", err)
	}
	if err := v.ValidateVar("", "required"); err == nil {
		t.Error("expected empty value to fail required")
	}
}

// TestMessagesPassesThroughPlainErrors tests non-validation errors
func TestMessagesPassesThroughPlainErrors(t *testing.T) {
	msgs := Messages(errors.New("plain"))
	if len(msgs) != 1 || msgs[0] != "plain" {
		t.Errorf("expected plain error message, got %v", msgs)
	}
}
