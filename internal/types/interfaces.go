package types

import "context"

// Transcriber produces timed transcript segments from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioFile string) ([]TranscriptSegment, error)
}

// ChatCompleter is the LLM collaborator used for moment selection.
type ChatCompleter interface {
	ChatCompletion(systemPrompt, userPrompt string) (string, error)
}

// ClipUploader pushes a finished clip to object storage and returns its
// public URL.
type ClipUploader interface {
	UploadClip(ctx context.Context, localPath, objectKey string) (string, error)
}
