package telemetry

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "test"}, zap.NewNop())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetupWithEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{
		ServiceName: "test",
		Environment: "test",
		Endpoint:    "localhost:4318",
		Insecure:    true,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	// nothing was recorded, so shutdown has nothing to flush
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
