package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestMockLLMService(t *testing.T) {
	mockService := NewMockLLMAPI()

	// Test InitModel
	err := mockService.InitModel(context.Background(), "test-model")
	if err != nil {
		t.Errorf("InitModel failed: %v", err)
	}

	if len(mockService.InitModelCalls) != 1 {
		t.Errorf("Expected 1 InitModel call, got %d", len(mockService.InitModelCalls))
	}

	if mockService.InitModelCalls[0] != "test-model" {
		t.Errorf("Expected model name 'test-model', got '%s'", mockService.InitModelCalls[0])
	}

	// Test Generate default
	response, err := mockService.Generate(context.Background(), "what happens next?")
	if err != nil {
		t.Errorf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(response, "## ") {
		t.Errorf("Expected a headed default response, got '%s'", response)
	}

	calls := mockService.GetGenerateCalls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 Generate call, got %d", len(calls))
	}
	if calls[0] != "what happens next?" {
		t.Errorf("Expected recorded prompt, got '%s'", calls[0])
	}
}

func TestMockLLMService_ErrorHandling(t *testing.T) {
	mockService := NewMockLLMAPI()

	expectedErr := fmt.Errorf("generation failed")
	mockService.SetGenerateError(expectedErr)

	_, err := mockService.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if err.Error() != expectedErr.Error() {
		t.Errorf("Expected error '%s', got '%s'", expectedErr.Error(), err.Error())
	}
}

func TestMockLLMService_ResponseSequence(t *testing.T) {
	mockService := NewMockLLMAPI()
	mockService.SetGenerateResponses("first", "second")

	for i, want := range []string{"first", "second", "second"} {
		got, err := mockService.Generate(context.Background(), "p")
		if err != nil {
			t.Fatalf("Generate %d failed: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: expected '%s', got '%s'", i, want, got)
		}
	}

	mockService.Reset()
	if len(mockService.GetGenerateCalls()) != 0 {
		t.Error("Expected no recorded calls after Reset")
	}
}
