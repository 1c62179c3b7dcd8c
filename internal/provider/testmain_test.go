package provider

import (
	"context"
	"errors"
	"os"
	"testing"
)

type stubModel struct {
	name string
}

func (s *stubModel) Name() string { return s.name }

func (s *stubModel) Complete(ctx context.Context, req *Request) (*Response, error) {
	return &Response{Model: req.Model}, nil
}

func TestMain(m *testing.M) {
	ClearFactories()
	// Register minimal stub factories so the registry can be tested without real backends.
	RegisterFactory(Factory{
		Type:        "openai",
		Description: "stub openai",
		Create: func(cfg Config) (ChatModel, error) {
			return &stubModel{name: "openai"}, nil
		},
		ValidateConfig: func(cfg Config) error {
			if cfg.APIKey == "" {
				return errors.New("api_key is required")
			}
			return nil
		},
	})
	RegisterFactory(Factory{
		Type:        "gemini",
		Description: "stub gemini",
		Create: func(cfg Config) (ChatModel, error) {
			return &stubModel{name: "gemini"}, nil
		},
	})
	os.Exit(m.Run())
}
