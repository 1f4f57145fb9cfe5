package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/common"
	"whisper-transcribe/internal/app/model"
)

// MockEngine is a mock implementation of api.Engine
type MockEngine struct {
	mock.Mock
	ProviderInfo common.ProviderInfo
}

// NewMockEngine creates a MockEngine that reports itself as name.
func NewMockEngine(name string) *MockEngine {
	return &MockEngine{ProviderInfo: common.ProviderInfo{
		Name:        name,
		DisplayName: "mock " + name,
		Type:        common.ProviderTypeLocal,
	}}
}

func (m *MockEngine) Info() common.ProviderInfo {
	return m.ProviderInfo
}

func (m *MockEngine) LoadModel(ctx context.Context, name string) (api.Model, error) {
	args := m.Called(ctx, name)
	if mdl, ok := args.Get(0).(api.Model); ok {
		return mdl, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockModel is a mock implementation of api.Model
type MockModel struct {
	mock.Mock
}

func (m *MockModel) Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error) {
	args := m.Called(ctx, audioPath)
	if t, ok := args.Get(0).(*model.Transcription); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModel) Close() error {
	args := m.Called()
	return args.Error(0)
}

// TextResult is a convenience Transcription holding only text.
func TextResult(text string) *model.Transcription {
	return &model.Transcription{Text: text, Engine: "mock", Model: "mock"}
}
