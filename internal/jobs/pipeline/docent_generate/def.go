package docent_generate

import (
	"context"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/modules/docent"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type Runner interface {
	Run(ctx context.Context, req docent.Request, onStage docent.StageFunc) (*docent.Result, error)
}

type URLResolver interface {
	PublicURL(rel string) string
}

type Pipeline struct {
	log    *logger.Logger
	runner Runner
	urls   URLResolver
}

func New(baseLog *logger.Logger, runner Runner, urls URLResolver) *Pipeline {
	return &Pipeline{
		log:    baseLog.With("job", types.JobTypeDocentGenerate),
		runner: runner,
		urls:   urls,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeDocentGenerate }
