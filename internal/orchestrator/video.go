package orchestrator

import (
	"context"
	"fmt"

	"server/internal/asyncjob"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/persist"
	"server/internal/providers/avatar"
)

// VideoTask produces the narrated avatar video. It is the only task using
// the asynchronous job protocol: validate the presenter, submit, poll,
// persist.
type VideoTask struct {
	Avatar      *avatar.Client
	Catalog     *catalog.Cache
	Jobs        *asyncjob.Client
	Persistor   *persist.Persistor
	PresenterID string
	VoiceID     string
}

func (t *VideoTask) Format() domain.FormatKey { return domain.FormatAvatarVideo }

func (t *VideoTask) Run(ctx context.Context, req domain.GenerationRequest) domain.ArtifactResult {
	profile, abort := gate(t.Format(), req)
	if abort != nil {
		return *abort
	}

	presenter := t.PresenterID
	usedFallback := false
	if !t.Catalog.IsValid(ctx, presenter) {
		candidate := t.Catalog.Fallback(ctx, presenter)
		if candidate == nil {
			return skipped(t.Format(), domain.ReasonNoAvailableResource,
				fmt.Sprintf("presenter %q is unavailable and no eligible fallback exists", presenter))
		}
		presenter = candidate.ID
		usedFallback = true
	}

	handle, err := t.Jobs.Submit(ctx, func(ctx context.Context) (string, error) {
		return t.Avatar.CreateTalk(ctx, avatar.TalkRequest{
			Title:       req.Title,
			PresenterID: presenter,
			Script:      clipRunes(req.Prompt, maxNarrationRunes),
			VoiceID:     t.VoiceID,
			Language:    profile.Code,
		})
	})
	if err != nil {
		if asyncjob.IsNotFound(err) {
			// The provider intentionally no longer offers the resource;
			// sibling tasks are unaffected.
			return skipped(t.Format(), domain.CodeResourceNotFound, err.Error())
		}
		return providerFailed(t.Format(), err)
	}

	poll := t.Jobs.Poll(ctx, handle, t.Avatar.TalkStatus)
	switch poll.State {
	case asyncjob.StateFailed:
		code := poll.ErrCode
		if code == "" {
			code = domain.CodeProviderError
		}
		message := poll.ErrMessage
		if poll.ErrDetail != "" {
			message = fmt.Sprintf("%s (%s)", message, poll.ErrDetail)
		}
		return failed(t.Format(), code, message)

	case asyncjob.StateCompleted:
		stored, err := t.Persistor.Persist(ctx, poll.URL, artifactKey(req, "avatar.mp4"), "video")
		if err != nil {
			return providerFailed(t.Format(), err)
		}
		stored.Fallback = stored.Fallback || poll.ShareFallback
		return succeeded(t.Format(), "avatar", stored, map[string]any{
			"job_id":             handle.ProviderJobID,
			"poll_attempts":      handle.Attempts,
			"presenter_id":       presenter,
			"presenter_fallback": usedFallback,
		})

	case asyncjob.StateTimedOut:
		if poll.URL == "" {
			return failed(t.Format(), domain.CodePollTimeout,
				fmt.Sprintf("job %s still processing after %d attempts", handle.ProviderJobID, handle.Attempts))
		}
		// Best effort: the job may still finish remotely; hand the caller
		// the last reference URL instead of discarding the work.
		stored := persist.Stored{URL: poll.URL, Fallback: true}
		result := succeeded(t.Format(), "avatar", stored, map[string]any{
			"job_id":             handle.ProviderJobID,
			"poll_attempts":      handle.Attempts,
			"presenter_id":       presenter,
			"presenter_fallback": usedFallback,
			"timed_out":          true,
		})
		return result

	default:
		return failed(t.Format(), domain.CodeInternalError,
			fmt.Sprintf("unexpected job state %q", poll.State))
	}
}
