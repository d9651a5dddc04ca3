package analysis

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/code-verdict/internal/application"
	domain "github.com/bryanwahyu/code-verdict/internal/domain/analysis"
	"github.com/bryanwahyu/code-verdict/internal/infra/ai/prompt"
)

// Service runs one request through prompt → model → validation.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	Model       domain.ModelClient
	Clock       application.Clock
	DefaultMode domain.Mode
	Strict      bool
	Log         *logrus.Logger
}

func NewService(model domain.ModelClient, clock application.Clock, mode domain.Mode, strict bool, log *logrus.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if mode == "" {
		mode = domain.ModeWholeProgram
	}
	return &Service{Model: model, Clock: clock, DefaultMode: mode, Strict: strict, Log: log}
}

// Analyze validates req, calls the model exactly once, and parses the answer.
// Errors: domain.ErrNoCodeFiles, domain.ErrInvalidMode, domain.ErrModelUnavailable
// or *domain.FormatError.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (domain.Verdict, error) {
	if err := req.Validate(); err != nil {
		return domain.Verdict{}, err
	}
	mode, err := domain.ParseMode(req.Mode, s.DefaultMode)
	if err != nil {
		return domain.Verdict{}, err
	}

	s.Log.WithFields(logrus.Fields{
		"title": req.ProgramMeta.Title,
		"files": len(req.CodeFiles),
		"mode":  mode,
	}).Info("analysis request received")

	p := prompt.Build(mode, req.ProgramMeta.Title, req.CodeFiles, s.Clock.Now())

	raw, err := s.Model.Complete(ctx, p)
	if err != nil {
		if !errors.Is(err, domain.ErrModelUnavailable) {
			s.Log.WithError(err).Error("model call failed")
		}
		return domain.Verdict{}, domain.ErrModelUnavailable
	}

	v, err := domain.ParseVerdict(raw, mode, s.Strict)
	if err != nil {
		s.Log.WithError(err).Error("model response parse failed")
		return domain.Verdict{}, err
	}
	if !v.Recognized() {
		s.Log.WithField("mode", mode).Warn("model response does not match the report schema, relaying as-is")
	}
	return v, nil
}
