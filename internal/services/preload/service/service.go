// Package service serves the selected URL file to cache warmers
package service

import (
	"context"
	"strconv"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
	catdom "preloadassist/internal/services/catalog/domain"
	fdom "preloadassist/internal/services/files/domain"
	"preloadassist/internal/services/preload/domain"
)

// Service defines the service contract for the preload integration
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	files    fdom.ReaderPort
	settings catdom.SettingsPort
	warmer   domain.Warmer

	// enabledDefault applies until the integration flag is first saved
	enabledDefault bool
}

var _ Service = (*Svc)(nil)

// New creates a new preload service; warmer may be nil
func New(files fdom.ReaderPort, settings catdom.SettingsPort, warmer domain.Warmer, enabledDefault bool) *Svc {
	if files == nil {
		panic("preload.Service requires a file reader")
	}
	if settings == nil {
		panic("preload.Service requires a settings store")
	}
	return &Svc{files: files, settings: settings, warmer: warmer, enabledDefault: enabledDefault}
}

func (s *Svc) enabled(ctx context.Context) (bool, error) {
	v, err := s.settings.GetSetting(ctx, domain.SettingIntegrationEnabled, strconv.FormatBool(s.enabledDefault))
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return s.enabledDefault, nil
	}
	return b, nil
}

// selected returns the selected file when it is still on disk
func (s *Svc) selected(ctx context.Context) (fdom.File, bool, error) {
	f, err := s.files.Selected(ctx)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return fdom.File{}, false, nil
	}
	if err != nil {
		return fdom.File{}, false, err
	}
	return f, s.files.Exists(f), nil
}

// Publish appends the selected file's URLs to existing when the integration is on
// With the integration off, or no usable file, existing comes back unchanged
func (s *Svc) Publish(ctx context.Context, existing []string) ([]string, error) {
	on, err := s.enabled(ctx)
	if err != nil || !on {
		return existing, err
	}
	f, ok, err := s.selected(ctx)
	if err != nil || !ok {
		return existing, err
	}
	lines, err := s.files.Lines(ctx, f.ID)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return existing, nil
	}
	if err != nil {
		return existing, err
	}
	return append(existing, lines...), nil
}

// Status reports the integration state
func (s *Svc) Status(ctx context.Context) (domain.Status, error) {
	on, err := s.enabled(ctx)
	if err != nil {
		return domain.Status{}, err
	}
	st := domain.Status{
		IntegrationEnabled: on,
		WarmerConfigured:   s.warmer != nil && s.warmer.Configured(),
	}
	f, exists, err := s.selected(ctx)
	if err != nil {
		return domain.Status{}, err
	}
	if f.ID != 0 {
		st.FileSelected, st.FileExists, st.File = true, exists, &f
	}
	return st, nil
}

// SetIntegrationEnabled persists the integration flag
func (s *Svc) SetIntegrationEnabled(ctx context.Context, enabled bool) (domain.Status, error) {
	if err := s.settings.SaveSetting(ctx, domain.SettingIntegrationEnabled, strconv.FormatBool(enabled)); err != nil {
		return domain.Status{}, err
	}
	logger.C(ctx).Info().Bool("enabled", enabled).Msg("preload integration toggled")
	return s.Status(ctx)
}

// Trigger pushes the selected file to the cache warmer webhook
func (s *Svc) Trigger(ctx context.Context) (domain.TriggerResult, error) {
	if s.warmer == nil || !s.warmer.Configured() {
		return domain.TriggerResult{}, perr.Unavailablef("cache warmer webhook is not configured")
	}
	f, ok, err := s.selected(ctx)
	if err != nil {
		return domain.TriggerResult{}, err
	}
	if !ok {
		return domain.TriggerResult{}, perr.NotFoundf("no file selected or file not found")
	}
	lines, err := s.files.Lines(ctx, f.ID)
	if err != nil {
		return domain.TriggerResult{}, err
	}
	if err := s.warmer.Warm(ctx, lines); err != nil {
		return domain.TriggerResult{}, err
	}
	logger.C(ctx).Info().Int64("file_id", f.ID).Int("urls", len(lines)).Msg("cache warmer triggered")
	return domain.TriggerResult{FileID: f.ID, FileName: f.FileName, URLs: len(lines)}, nil
}
