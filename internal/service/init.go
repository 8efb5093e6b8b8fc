package service

import (
	"sync"

	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/appdirs"
	"clipforge/internal/broadcast"
	"clipforge/internal/ffmpeg"
	"clipforge/internal/types"
	"clipforge/log"
	"clipforge/pkg/openai"
	"clipforge/pkg/oss"
	"clipforge/pkg/transcribe"
)

type Service struct {
	Invoker       *ffmpeg.Invoker
	ChatCompleter types.ChatCompleter
	Transcriber   types.Transcriber
	Uploader      types.ClipUploader
	Broadcaster   *broadcast.Broadcaster

	UploadRoot string
	TempRoot   string
	ClipRoot   string

	mu         sync.Mutex
	activeJobs map[string]func() // jobId -> cancel
}

func NewService() *Service {
	paths, err := appdirs.Resolve()
	if err != nil {
		log.GetLogger().Error("failed to resolve application paths", zap.Error(err))
		return nil
	}

	policy := config.Conf.Policy

	svc := &Service{
		Invoker: ffmpeg.NewInvoker(policy.FfmpegPath, policy.FfprobePath, policy.MaxConcurrentRenders),
		ChatCompleter: openai.NewClient(
			config.Conf.Llm.BaseUrl,
			config.Conf.Llm.ApiKey,
			config.Conf.Llm.Model),
		Broadcaster: broadcast.New(),
		UploadRoot:  appdirs.UploadRootFor(paths),
		TempRoot:    appdirs.TempRootFor(paths),
		ClipRoot:    appdirs.ClipRootFor(paths),
		activeJobs:  make(map[string]func()),
	}

	if config.Conf.Transcribe.Enabled {
		svc.Transcriber = transcribe.NewClient(
			config.Conf.Transcribe.BaseUrl,
			config.Conf.Transcribe.ApiKey,
			config.Conf.Transcribe.Model)
		log.GetLogger().Info("speech-to-text collaborator enabled")
	}

	if config.Conf.Oss.Enabled {
		svc.Uploader = oss.NewClient(
			config.Conf.Oss.Region,
			config.Conf.Oss.Bucket,
			config.Conf.Oss.AccessKeyId,
			config.Conf.Oss.AccessKeySecret,
			config.Conf.Oss.PathPrefix)
		log.GetLogger().Info("clip upload to object storage enabled",
			zap.String("bucket", config.Conf.Oss.Bucket))
	}

	return svc
}

func (s *Service) registerJob(jobId string, cancel func()) {
	s.mu.Lock()
	s.activeJobs[jobId] = cancel
	s.mu.Unlock()
}

func (s *Service) unregisterJob(jobId string) {
	s.mu.Lock()
	delete(s.activeJobs, jobId)
	s.mu.Unlock()
}

func (s *Service) cancelFuncFor(jobId string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeJobs[jobId]
}
