package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/artspace-backend/internal/data/db"
	"github.com/yungbote/artspace-backend/internal/jobs/worker"
	"github.com/yungbote/artspace-backend/internal/modules/docent"
	"github.com/yungbote/artspace-backend/internal/observability"
	"github.com/yungbote/artspace-backend/internal/platform/envutil"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/platform/openai"
	"github.com/yungbote/artspace-backend/internal/platform/tts"
	"github.com/yungbote/artspace-backend/internal/platform/videogen"
)

type Config struct {
	Port        string
	CORSOrigins []string

	DB db.Config

	MediaRoot          string
	MediaPublicBaseURL string
	MediaBucket        string
	MediaCDNDomain     string
	StorageEmulator    string
	GCPCredentials     string
	DownloadTimeout    time.Duration
	DownloadMaxBytes   int64

	TTS      tts.Config
	VideoGen videogen.Config
	OpenAI   openai.Config
	Docent   docent.Config

	RedisAddr  string
	PosterFont string

	JWTSecretKey string

	Worker worker.Config
	OTel   observability.OtelConfig
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(log *logger.Logger) Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded", "error", err)
	}

	return Config{
		Port:        envutil.String("PORT", "8080"),
		CORSOrigins: splitList(envutil.String("CORS_ORIGINS", "")),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "artspace"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "artspace.db"),
		},

		MediaRoot:          envutil.String("MEDIA_ROOT", "media"),
		MediaPublicBaseURL: envutil.String("MEDIA_PUBLIC_BASE_URL", "http://localhost:8080/media"),
		MediaBucket:        envutil.String("MEDIA_GCS_BUCKET", ""),
		MediaCDNDomain:     envutil.String("MEDIA_CDN_DOMAIN", ""),
		StorageEmulator:    envutil.String("STORAGE_EMULATOR_HOST", ""),
		GCPCredentials:     firstEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS"),
		DownloadTimeout:    envutil.Seconds("DOWNLOAD_TIMEOUT_SECONDS", 120*time.Second),
		DownloadMaxBytes:   int64(envutil.Int("DOWNLOAD_MAX_MB", 512)) << 20,

		TTS: tts.Config{
			APIKey:      envutil.String("TTS_API_KEY", ""),
			Credentials: firstEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS"),
			Endpoint:    envutil.String("TTS_ENDPOINT", ""),
			Voice: tts.VoiceConfig{
				LanguageCode:  envutil.String("TTS_LANGUAGE_CODE", "ko-KR"),
				Name:          envutil.String("TTS_VOICE_NAME", ""),
				AudioEncoding: envutil.String("TTS_AUDIO_ENCODING", "MP3"),
			},
			Timeout: envutil.Seconds("TTS_TIMEOUT_SECONDS", 60*time.Second),
		},
		VideoGen: videogen.Config{
			APIKey:      envutil.String("VIDEOGEN_API_KEY", ""),
			BaseURL:     envutil.String("VIDEOGEN_BASE_URL", ""),
			ModelID:     envutil.String("VIDEOGEN_MODEL_ID", ""),
			Resolution:  envutil.String("VIDEOGEN_RESOLUTION", ""),
			AspectRatio: envutil.String("VIDEOGEN_ASPECT_RATIO", ""),
			Timeout:     envutil.Seconds("VIDEOGEN_TIMEOUT_SECONDS", 120*time.Second),
		},
		OpenAI: openai.Config{
			APIKey:     envutil.String("OPENAI_API_KEY", ""),
			BaseURL:    envutil.String("OPENAI_BASE_URL", ""),
			Model:      envutil.String("OPENAI_MODEL", ""),
			ImageModel: envutil.String("OPENAI_IMAGE_MODEL", ""),
			ImageSize:  envutil.String("OPENAI_IMAGE_SIZE", ""),
			Timeout:    envutil.Seconds("OPENAI_TIMEOUT_SECONDS", 0),
			MaxRetries: envutil.Int("OPENAI_MAX_RETRIES", -1),
		},
		Docent: docent.Config{
			PollInterval:    envutil.Seconds("DOCENT_POLL_INTERVAL_SECONDS", docent.DefaultPollInterval),
			PollMaxAttempts: envutil.Int("DOCENT_POLL_MAX_ATTEMPTS", docent.DefaultPollMaxAttempts),
			PreviewRunes:    envutil.Int("DOCENT_PROMPT_PREVIEW_CHARS", 80),
			AvatarMaxSide:   envutil.Int("DOCENT_AVATAR_MAX_SIDE", 1024),
			LockTTL:         envutil.Seconds("DOCENT_LOCK_TTL_SECONDS", 15*time.Minute),
		},

		RedisAddr:  envutil.String("REDIS_ADDR", ""),
		PosterFont: envutil.String("POSTER_FONT", ""),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),

		Worker: worker.Config{
			Concurrency: envutil.Int("WORKER_CONCURRENCY", 2),
			MaxAttempts: envutil.Int("WORKER_MAX_ATTEMPTS", 1),
		},
		OTel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "artspace-backend"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := envutil.String(k, ""); v != "" {
			return v
		}
	}
	return ""
}
