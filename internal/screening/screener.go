// Package screening runs the optional two-stage check on a draft incident
// before it is persisted. Screening is advisory: only an explicit flagged or
// invalid verdict blocks a submission, and any malfunction of the checks
// themselves lets the submission through.
package screening

import (
	"context"

	"cake-tracker/internal/config"

	"go.uber.org/zap"
)

const (
	ModerationBlockedMessage = "This submission was flagged as inappropriate and cannot be recorded."
	ValidationBlockedMessage = "Please enter a real person's name and notes about the incident."
)

// Reason identifies why a submission was blocked.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonFlagged Reason = "flagged"
	ReasonInvalid Reason = "invalid"
)

// Verdict 筛查结果
type Verdict struct {
	Allowed bool
	Reason  Reason
	Message string
}

var pass = Verdict{Allowed: true}

// Checker is implemented by Client.
type Checker interface {
	Flagged(ctx context.Context, name, notes string) (bool, error)
	Validate(ctx context.Context, name, notes string) (Validation, error)
}

// Screener 内容筛查；未配置凭证时所有检查直接通过
type Screener struct {
	checker Checker
	logger  *zap.Logger
}

// New returns a Screener backed by the moderation API, or a pass-through
// Screener when no API key is configured.
func New(cfg config.ScreeningConfig, logger *zap.Logger) *Screener {
	if !cfg.Enabled() {
		logger.Info("Content screening disabled: no API key configured")
		return &Screener{logger: logger}
	}
	return NewWithChecker(NewClient(cfg, logger), logger)
}

func NewWithChecker(checker Checker, logger *zap.Logger) *Screener {
	return &Screener{checker: checker, logger: logger}
}

// Enabled reports whether checks are actually performed.
func (s *Screener) Enabled() bool { return s.checker != nil }

// Screen runs the flag check, then structured validation.
func (s *Screener) Screen(ctx context.Context, name, notes string) Verdict {
	if s.checker == nil {
		return pass
	}

	flagged, err := s.checker.Flagged(ctx, name, notes)
	if err != nil {
		s.logger.Warn("Moderation check failed, allowing submission", zap.Error(err))
		flagged = false
	}
	if flagged {
		s.logger.Info("Submission blocked by moderation", zap.String("person_name", name))
		return Verdict{Reason: ReasonFlagged, Message: ModerationBlockedMessage}
	}

	v, err := s.checker.Validate(ctx, name, notes)
	if err != nil {
		s.logger.Warn("Validation check failed, allowing submission", zap.Error(err))
		v = Validation{ValidName: true, Relevant: true}
	}
	if !v.ValidName || !v.Relevant {
		s.logger.Info("Submission blocked by validation",
			zap.String("person_name", name),
			zap.Bool("valid_name", v.ValidName),
			zap.Bool("relevant", v.Relevant),
		)
		return Verdict{Reason: ReasonInvalid, Message: ValidationBlockedMessage}
	}

	return pass
}
