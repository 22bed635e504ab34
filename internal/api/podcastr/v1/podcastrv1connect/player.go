// Package podcastrv1connect wires the podcastr.v1 services to Connect
// handlers and clients.
package podcastrv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/osa030/podcastr/internal/api/podcastr/v1"
)

// PlayerServiceName is the fully-qualified name of the PlayerService service.
const PlayerServiceName = "podcastr.v1.PlayerService"

// These constants are the fully-qualified names of the RPCs defined in
// PlayerService. They are used as the HTTP route of each RPC.
const (
	PlayerServiceGetStateProcedure      = "/podcastr.v1.PlayerService/GetState"
	PlayerServicePlayEpisodeProcedure   = "/podcastr.v1.PlayerService/PlayEpisode"
	PlayerServicePlayListProcedure      = "/podcastr.v1.PlayerService/PlayList"
	PlayerServicePlayHomeProcedure      = "/podcastr.v1.PlayerService/PlayHome"
	PlayerServiceTogglePlayProcedure    = "/podcastr.v1.PlayerService/TogglePlay"
	PlayerServiceToggleLoopProcedure    = "/podcastr.v1.PlayerService/ToggleLoop"
	PlayerServiceToggleShuffleProcedure = "/podcastr.v1.PlayerService/ToggleShuffle"
	PlayerServiceSetPlayingProcedure    = "/podcastr.v1.PlayerService/SetPlaying"
	PlayerServicePlayNextProcedure      = "/podcastr.v1.PlayerService/PlayNext"
	PlayerServicePlayPreviousProcedure  = "/podcastr.v1.PlayerService/PlayPrevious"
	PlayerServiceSeekProcedure          = "/podcastr.v1.PlayerService/Seek"
	PlayerServiceEndedProcedure         = "/podcastr.v1.PlayerService/Ended"
	PlayerServiceClearProcedure         = "/podcastr.v1.PlayerService/Clear"
	PlayerServiceSubscribeProcedure     = "/podcastr.v1.PlayerService/Subscribe"
)

// IsPlayerMutation reports whether the procedure changes the playback state.
func IsPlayerMutation(procedure string) bool {
	switch procedure {
	case PlayerServiceGetStateProcedure, PlayerServiceSubscribeProcedure:
		return false
	}
	return strings.HasPrefix(procedure, "/"+PlayerServiceName+"/")
}

// PlayerServiceHandler is implemented by the player service.
type PlayerServiceHandler interface {
	GetState(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.GetStateResponse], error)
	PlayEpisode(context.Context, *connect.Request[v1.PlayEpisodeRequest]) (*connect.Response[v1.PlayerResponse], error)
	PlayList(context.Context, *connect.Request[v1.PlayListRequest]) (*connect.Response[v1.PlayerResponse], error)
	PlayHome(context.Context, *connect.Request[v1.PlayHomeRequest]) (*connect.Response[v1.PlayerResponse], error)
	TogglePlay(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	ToggleLoop(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	ToggleShuffle(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	SetPlaying(context.Context, *connect.Request[v1.SetPlayingRequest]) (*connect.Response[v1.PlayerResponse], error)
	PlayNext(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	PlayPrevious(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	Seek(context.Context, *connect.Request[v1.SeekRequest]) (*connect.Response[v1.PlayerResponse], error)
	Ended(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	Clear(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	Subscribe(context.Context, *connect.Request[v1.Empty], *connect.ServerStream[v1.Notification]) error
}

// NewPlayerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewPlayerServiceHandler(svc PlayerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(v1.JSONCodec{})}, opts...)

	routes := map[string]http.Handler{
		PlayerServiceGetStateProcedure:      connect.NewUnaryHandler(PlayerServiceGetStateProcedure, svc.GetState, opts...),
		PlayerServicePlayEpisodeProcedure:   connect.NewUnaryHandler(PlayerServicePlayEpisodeProcedure, svc.PlayEpisode, opts...),
		PlayerServicePlayListProcedure:      connect.NewUnaryHandler(PlayerServicePlayListProcedure, svc.PlayList, opts...),
		PlayerServicePlayHomeProcedure:      connect.NewUnaryHandler(PlayerServicePlayHomeProcedure, svc.PlayHome, opts...),
		PlayerServiceTogglePlayProcedure:    connect.NewUnaryHandler(PlayerServiceTogglePlayProcedure, svc.TogglePlay, opts...),
		PlayerServiceToggleLoopProcedure:    connect.NewUnaryHandler(PlayerServiceToggleLoopProcedure, svc.ToggleLoop, opts...),
		PlayerServiceToggleShuffleProcedure: connect.NewUnaryHandler(PlayerServiceToggleShuffleProcedure, svc.ToggleShuffle, opts...),
		PlayerServiceSetPlayingProcedure:    connect.NewUnaryHandler(PlayerServiceSetPlayingProcedure, svc.SetPlaying, opts...),
		PlayerServicePlayNextProcedure:      connect.NewUnaryHandler(PlayerServicePlayNextProcedure, svc.PlayNext, opts...),
		PlayerServicePlayPreviousProcedure:  connect.NewUnaryHandler(PlayerServicePlayPreviousProcedure, svc.PlayPrevious, opts...),
		PlayerServiceSeekProcedure:          connect.NewUnaryHandler(PlayerServiceSeekProcedure, svc.Seek, opts...),
		PlayerServiceEndedProcedure:         connect.NewUnaryHandler(PlayerServiceEndedProcedure, svc.Ended, opts...),
		PlayerServiceClearProcedure:         connect.NewUnaryHandler(PlayerServiceClearProcedure, svc.Clear, opts...),
		PlayerServiceSubscribeProcedure:     connect.NewServerStreamHandler(PlayerServiceSubscribeProcedure, svc.Subscribe, opts...),
	}

	return "/" + PlayerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// PlayerServiceClient is a client for the podcastr.v1.PlayerService service.
type PlayerServiceClient interface {
	GetState(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.GetStateResponse], error)
	PlayEpisode(context.Context, *connect.Request[v1.PlayEpisodeRequest]) (*connect.Response[v1.PlayerResponse], error)
	PlayList(context.Context, *connect.Request[v1.PlayListRequest]) (*connect.Response[v1.PlayerResponse], error)
	PlayHome(context.Context, *connect.Request[v1.PlayHomeRequest]) (*connect.Response[v1.PlayerResponse], error)
	TogglePlay(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	ToggleLoop(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	ToggleShuffle(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	SetPlaying(context.Context, *connect.Request[v1.SetPlayingRequest]) (*connect.Response[v1.PlayerResponse], error)
	PlayNext(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	PlayPrevious(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	Seek(context.Context, *connect.Request[v1.SeekRequest]) (*connect.Response[v1.PlayerResponse], error)
	Ended(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	Clear(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error)
	Subscribe(context.Context, *connect.Request[v1.Empty]) (*connect.ServerStreamForClient[v1.Notification], error)
}

// NewPlayerServiceClient constructs a client for the podcastr.v1.PlayerService
// service. baseURL is the server root, e.g. http://localhost:8080.
func NewPlayerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PlayerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(v1.JSONCodec{})}, opts...)

	mutation := func(procedure string) *connect.Client[v1.Empty, v1.PlayerResponse] {
		return connect.NewClient[v1.Empty, v1.PlayerResponse](httpClient, baseURL+procedure, opts...)
	}

	return &playerServiceClient{
		getState:      connect.NewClient[v1.Empty, v1.GetStateResponse](httpClient, baseURL+PlayerServiceGetStateProcedure, opts...),
		playEpisode:   connect.NewClient[v1.PlayEpisodeRequest, v1.PlayerResponse](httpClient, baseURL+PlayerServicePlayEpisodeProcedure, opts...),
		playList:      connect.NewClient[v1.PlayListRequest, v1.PlayerResponse](httpClient, baseURL+PlayerServicePlayListProcedure, opts...),
		playHome:      connect.NewClient[v1.PlayHomeRequest, v1.PlayerResponse](httpClient, baseURL+PlayerServicePlayHomeProcedure, opts...),
		togglePlay:    mutation(PlayerServiceTogglePlayProcedure),
		toggleLoop:    mutation(PlayerServiceToggleLoopProcedure),
		toggleShuffle: mutation(PlayerServiceToggleShuffleProcedure),
		setPlaying:    connect.NewClient[v1.SetPlayingRequest, v1.PlayerResponse](httpClient, baseURL+PlayerServiceSetPlayingProcedure, opts...),
		playNext:      mutation(PlayerServicePlayNextProcedure),
		playPrevious:  mutation(PlayerServicePlayPreviousProcedure),
		seek:          connect.NewClient[v1.SeekRequest, v1.PlayerResponse](httpClient, baseURL+PlayerServiceSeekProcedure, opts...),
		ended:         mutation(PlayerServiceEndedProcedure),
		clear:         mutation(PlayerServiceClearProcedure),
		subscribe:     connect.NewClient[v1.Empty, v1.Notification](httpClient, baseURL+PlayerServiceSubscribeProcedure, opts...),
	}
}

// playerServiceClient implements PlayerServiceClient.
type playerServiceClient struct {
	getState      *connect.Client[v1.Empty, v1.GetStateResponse]
	playEpisode   *connect.Client[v1.PlayEpisodeRequest, v1.PlayerResponse]
	playList      *connect.Client[v1.PlayListRequest, v1.PlayerResponse]
	playHome      *connect.Client[v1.PlayHomeRequest, v1.PlayerResponse]
	togglePlay    *connect.Client[v1.Empty, v1.PlayerResponse]
	toggleLoop    *connect.Client[v1.Empty, v1.PlayerResponse]
	toggleShuffle *connect.Client[v1.Empty, v1.PlayerResponse]
	setPlaying    *connect.Client[v1.SetPlayingRequest, v1.PlayerResponse]
	playNext      *connect.Client[v1.Empty, v1.PlayerResponse]
	playPrevious  *connect.Client[v1.Empty, v1.PlayerResponse]
	seek          *connect.Client[v1.SeekRequest, v1.PlayerResponse]
	ended         *connect.Client[v1.Empty, v1.PlayerResponse]
	clear         *connect.Client[v1.Empty, v1.PlayerResponse]
	subscribe     *connect.Client[v1.Empty, v1.Notification]
}

func (c *playerServiceClient) GetState(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.GetStateResponse], error) {
	return c.getState.CallUnary(ctx, req)
}

func (c *playerServiceClient) PlayEpisode(ctx context.Context, req *connect.Request[v1.PlayEpisodeRequest]) (*connect.Response[v1.PlayerResponse], error) {
	return c.playEpisode.CallUnary(ctx, req)
}

func (c *playerServiceClient) PlayList(ctx context.Context, req *connect.Request[v1.PlayListRequest]) (*connect.Response[v1.PlayerResponse], error) {
	return c.playList.CallUnary(ctx, req)
}

func (c *playerServiceClient) PlayHome(ctx context.Context, req *connect.Request[v1.PlayHomeRequest]) (*connect.Response[v1.PlayerResponse], error) {
	return c.playHome.CallUnary(ctx, req)
}

func (c *playerServiceClient) TogglePlay(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error) {
	return c.togglePlay.CallUnary(ctx, req)
}

func (c *playerServiceClient) ToggleLoop(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error) {
	return c.toggleLoop.CallUnary(ctx, req)
}

func (c *playerServiceClient) ToggleShuffle(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error) {
	return c.toggleShuffle.CallUnary(ctx, req)
}

func (c *playerServiceClient) SetPlaying(ctx context.Context, req *connect.Request[v1.SetPlayingRequest]) (*connect.Response[v1.PlayerResponse], error) {
	return c.setPlaying.CallUnary(ctx, req)
}

func (c *playerServiceClient) PlayNext(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error) {
	return c.playNext.CallUnary(ctx, req)
}

func (c *playerServiceClient) PlayPrevious(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error) {
	return c.playPrevious.CallUnary(ctx, req)
}

func (c *playerServiceClient) Seek(ctx context.Context, req *connect.Request[v1.SeekRequest]) (*connect.Response[v1.PlayerResponse], error) {
	return c.seek.CallUnary(ctx, req)
}

func (c *playerServiceClient) Ended(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error) {
	return c.ended.CallUnary(ctx, req)
}

func (c *playerServiceClient) Clear(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.PlayerResponse], error) {
	return c.clear.CallUnary(ctx, req)
}

func (c *playerServiceClient) Subscribe(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.ServerStreamForClient[v1.Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}
