// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clipforge/internal/types"
)

// MockTranscriber is a mock implementation of types.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioFile string) ([]types.TranscriptSegment, error) {
	args := m.Called(ctx, audioFile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TranscriptSegment), args.Error(1)
}

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(systemPrompt, userPrompt string) (string, error) {
	args := m.Called(systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockClipUploader is a mock implementation of types.ClipUploader
type MockClipUploader struct {
	mock.Mock
}

func (m *MockClipUploader) UploadClip(ctx context.Context, localPath, objectKey string) (string, error) {
	args := m.Called(ctx, localPath, objectKey)
	return args.String(0), args.Error(1)
}
