// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	podcastrv1 "github.com/osa030/podcastr/internal/api/podcastr/v1"
	"github.com/osa030/podcastr/internal/api/podcastr/v1/podcastrv1connect"
	"github.com/osa030/podcastr/internal/app/catalog"
	"github.com/osa030/podcastr/internal/app/player"
	"github.com/osa030/podcastr/internal/app/session"
	"github.com/osa030/podcastr/internal/infra/config"
)

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	session *session.Manager
	config  *config.Config
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(session *session.Manager, cfg *config.Config) *PlayerService {
	return &PlayerService{
		session: session,
		config:  cfg,
	}
}

// Ensure PlayerService implements the interface.
var _ podcastrv1connect.PlayerServiceHandler = (*PlayerService)(nil)

// GetState returns the current playback state.
func (s *PlayerService) GetState(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.GetStateResponse], error) {
	return connect.NewResponse(&podcastrv1.GetStateResponse{
		State: podcastrv1.FromSnapshot(s.session.Player().Snapshot()),
	}), nil
}

// PlayEpisode plays a single episode.
func (s *PlayerService) PlayEpisode(
	ctx context.Context,
	req *connect.Request[podcastrv1.PlayEpisodeRequest],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	if req.Msg.EpisodeID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("episode_id is required"))
	}
	return s.respond(s.session.PlayEpisodeByID(ctx, req.Msg.EpisodeID))
}

// PlayList replaces the queue with the given episodes.
func (s *PlayerService) PlayList(
	ctx context.Context,
	req *connect.Request[podcastrv1.PlayListRequest],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.PlayIDs(ctx, req.Msg.EpisodeIDs, req.Msg.Index))
}

// PlayHome plays the homepage queue from a row of a section.
func (s *PlayerService) PlayHome(
	ctx context.Context,
	req *connect.Request[podcastrv1.PlayHomeRequest],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.PlayHome(ctx, catalog.Section(req.Msg.Section), req.Msg.Index))
}

// TogglePlay flips play/pause.
func (s *PlayerService) TogglePlay(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().TogglePlay(), nil)
}

// ToggleLoop flips looping.
func (s *PlayerService) ToggleLoop(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().ToggleLoop(), nil)
}

// ToggleShuffle flips shuffling.
func (s *PlayerService) ToggleShuffle(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().ToggleShuffle(), nil)
}

// SetPlaying mirrors the transport's play state.
func (s *PlayerService) SetPlaying(
	ctx context.Context,
	req *connect.Request[podcastrv1.SetPlayingRequest],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().SetIsPlaying(req.Msg.Playing), nil)
}

// PlayNext advances the queue.
func (s *PlayerService) PlayNext(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().PlayNext())
}

// PlayPrevious steps back in the queue.
func (s *PlayerService) PlayPrevious(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().PlayPrevious())
}

// Seek moves the playback position.
func (s *PlayerService) Seek(
	ctx context.Context,
	req *connect.Request[podcastrv1.SeekRequest],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().Seek(req.Msg.Seconds))
}

// Ended reports that the current episode finished playing.
func (s *PlayerService) Ended(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().HandleEnded(), nil)
}

// Clear empties the queue.
func (s *PlayerService) Clear(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.PlayerResponse], error) {
	return s.respond(s.session.Player().ClearPlayerState(), nil)
}

// Subscribe streams the current state followed by every change.
// Notifications never go backwards in state version.
func (s *PlayerService) Subscribe(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
	stream *connect.ServerStream[podcastrv1.Notification],
) error {
	notifManager := s.session.GetNotificationManager()

	subscriptionID, err := notifManager.Subscribe(stream, func() *podcastrv1.Notification {
		return &podcastrv1.Notification{
			Type:  podcastrv1.NotificationTypeInitialState,
			State: podcastrv1.FromSnapshot(s.session.Player().Snapshot()),
		}
	})
	if err != nil {
		return err
	}
	// The stream must not be touched after the handler returns
	defer notifManager.Unsubscribe(subscriptionID)

	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}

	return nil
}

// respond turns an action result into a PlayerResponse. Informational
// no-ops are reported with success=false; bad input and unknown episodes
// become RPC errors.
func (s *PlayerService) respond(snap player.Snapshot, err error) (*connect.Response[podcastrv1.PlayerResponse], error) {
	if err == nil {
		return connect.NewResponse(&podcastrv1.PlayerResponse{
			Success: true,
			Message: s.config.GetMessage("success"),
			State:   podcastrv1.FromSnapshot(snap),
		}), nil
	}

	if code := noopCode(err); code != "" {
		return connect.NewResponse(&podcastrv1.PlayerResponse{
			Success: false,
			Message: s.config.GetMessage(code),
			Code:    code,
			State:   podcastrv1.FromSnapshot(snap),
		}), nil
	}

	return nil, toConnectError(err)
}

// noopCode returns the message code of an informational no-op, or "".
func noopCode(err error) string {
	switch {
	case errors.Is(err, player.ErrEmptyQueue):
		return "empty_queue"
	case errors.Is(err, player.ErrNoNextEpisode):
		return "no_next_episode"
	case errors.Is(err, player.ErrNoPreviousEpisode):
		return "no_previous_episode"
	}
	return ""
}

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, player.ErrInvalidIndex),
		errors.Is(err, session.ErrInvalidQueue),
		errors.Is(err, catalog.ErrInvalidSection):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, catalog.ErrEpisodeNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrNotPlayable):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	zlog.Error().Err(err).Msg("connect: request failed")
	return connect.NewError(connect.CodeInternal, err)
}
