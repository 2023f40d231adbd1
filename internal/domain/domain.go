package domain

import (
	"github.com/yungbote/artspace-backend/internal/domain/exhibit"
	"github.com/yungbote/artspace-backend/internal/domain/jobs"
)

type (
	Gallery        = exhibit.Gallery
	Exhibition     = exhibit.Exhibition
	ExhibitionLike = exhibit.ExhibitionLike
	Art            = exhibit.Art
	DocentRecord   = exhibit.DocentRecord
	JobRun         = jobs.JobRun
)

const (
	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed

	JobTypeDocentGenerate = jobs.TypeDocentGenerate
	EntityTypeArt         = jobs.EntityTypeArt
)
