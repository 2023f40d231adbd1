package docent_generate

import (
	"fmt"

	jobrt "github.com/yungbote/artspace-backend/internal/jobs/runtime"
	"github.com/yungbote/artspace-backend/internal/modules/docent"
)

type Result struct {
	Mode      string `json:"mode"`
	AudioPath string `json:"audio_path"`
	AudioURL  string `json:"audio_url"`
	VideoPath string `json:"video_path,omitempty"`
	VideoURL  string `json:"video_url,omitempty"`
	Script    string `json:"script"`
}

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	artID, ok := jc.PayloadUint("art_id")
	if !ok {
		jc.Fail("validate", fmt.Errorf("missing art_id"))
		return nil
	}
	req := docent.Request{
		ArtID:       artID,
		Mode:        jc.PayloadString("mode"),
		Script:      jc.PayloadString("script"),
		AvatarImage: jc.PayloadString("avatar_image"),
		DisplayName: jc.PayloadString("display_name"),
	}

	jc.Progress("start", 1)
	res, err := p.runner.Run(jc.Ctx, req, func(stage docent.Stage, pct int) {
		jc.Progress(string(stage), pct)
	})
	if err != nil {
		jc.Fail("docent", err)
		return nil
	}

	out := Result{
		Mode:      res.Mode,
		AudioPath: res.AudioPath,
		AudioURL:  p.urls.PublicURL(res.AudioPath),
		Script:    res.Script,
	}
	if res.VideoPath != "" {
		out.VideoPath = res.VideoPath
		out.VideoURL = p.urls.PublicURL(res.VideoPath)
	}
	jc.Succeed(string(docent.StageDone), out)
	p.log.Info("Docent job done", "job_id", jc.Job.ID, "art_id", artID, "mode", res.Mode)
	return nil
}
