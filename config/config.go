package config

import (
	"os"
	"path/filepath"
	"time"

	"clipforge/internal/appdirs"

	"github.com/BurntSushi/toml"
)

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type App struct {
	// Queue selects how render jobs are executed: "memory" runs the
	// in-process worker pool, "redis" submits to an asynq server.
	Queue        string `toml:"queue"`
	Workers      int    `toml:"workers"`
	RedisAddr    string `toml:"redis_addr"`
	RedisPass    string `toml:"redis_pass"`
	QueueBacklog int    `toml:"queue_backlog"`
}

type Llm struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type Transcribe struct {
	Enabled bool   `toml:"enabled"`
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type Policy struct {
	MaxSourceDurationSeconds int    `toml:"max_source_duration_seconds"`
	MaxSourceHeight          int    `toml:"max_source_height"`
	MinClipSeconds           int    `toml:"min_clip_seconds"`
	MaxClipSeconds           int    `toml:"max_clip_seconds"`
	MaxCaptionLength         int    `toml:"max_caption_length"`
	ProbeTimeoutSeconds      int    `toml:"probe_timeout_seconds"`
	RenderTimeoutSeconds     int    `toml:"render_timeout_seconds"`
	MaxConcurrentRenders     int64  `toml:"max_concurrent_renders"`
	FfmpegPath               string `toml:"ffmpeg_path"`
	FfprobePath              string `toml:"ffprobe_path"`
}

func (p Policy) ProbeTimeout() time.Duration {
	return time.Duration(p.ProbeTimeoutSeconds) * time.Second
}

func (p Policy) RenderTimeout() time.Duration {
	return time.Duration(p.RenderTimeoutSeconds) * time.Second
}

type Cleanup struct {
	UploadMaxAgeMinutes  int `toml:"upload_max_age_minutes"`
	TempMaxAgeMinutes    int `toml:"temp_max_age_minutes"`
	ClipMaxAgeMinutes    int `toml:"clip_max_age_minutes"`
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
}

func (c Cleanup) UploadMaxAge() time.Duration {
	return time.Duration(c.UploadMaxAgeMinutes) * time.Minute
}

func (c Cleanup) TempMaxAge() time.Duration {
	return time.Duration(c.TempMaxAgeMinutes) * time.Minute
}

func (c Cleanup) ClipMaxAge() time.Duration {
	return time.Duration(c.ClipMaxAgeMinutes) * time.Minute
}

func (c Cleanup) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

type Oss struct {
	Enabled         bool   `toml:"enabled"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	AccessKeyId     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	PathPrefix      string `toml:"path_prefix"`
}

type Config struct {
	Server     Server     `toml:"server"`
	App        App        `toml:"app"`
	Llm        Llm        `toml:"llm"`
	Transcribe Transcribe `toml:"transcribe"`
	Policy     Policy     `toml:"policy"`
	Cleanup    Cleanup    `toml:"cleanup"`
	Oss        Oss        `toml:"oss"`
}

var Conf Config

// resolveConfigPath is a variable so tests can point the package at a
// temporary file.
var resolveConfigPath = ResolveConfigPath

func ResolveConfigPath() (string, error) {
	paths, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		App: App{
			Queue:        "memory",
			Workers:      2,
			RedisAddr:    "127.0.0.1:6379",
			QueueBacklog: 64,
		},
		Llm: Llm{
			Model: "gpt-4o-mini",
		},
		Policy: Policy{
			MaxSourceDurationSeconds: 600,
			MaxSourceHeight:          1080,
			MinClipSeconds:           1,
			MaxClipSeconds:           8,
			MaxCaptionLength:         100,
			ProbeTimeoutSeconds:      15,
			RenderTimeoutSeconds:     300,
			MaxConcurrentRenders:     2,
			FfmpegPath:               "ffmpeg",
			FfprobePath:              "ffprobe",
		},
		Cleanup: Cleanup{
			UploadMaxAgeMinutes:  60,
			TempMaxAgeMinutes:    120,
			ClipMaxAgeMinutes:    180,
			SweepIntervalMinutes: 30,
		},
	}
}

// LoadOrCreateConfig loads the config file into Conf, writing a default
// file first when none exists. It reports whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err := SaveConfig(); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err := toml.DecodeFile(configPath, &Conf); err != nil {
		return false, err
	}
	return false, nil
}

// SaveConfig writes whatever Conf currently contains to the config file,
// creating parent directories as needed.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}
