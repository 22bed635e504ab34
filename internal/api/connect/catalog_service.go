package connect

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	podcastrv1 "github.com/osa030/podcastr/internal/api/podcastr/v1"
	"github.com/osa030/podcastr/internal/api/podcastr/v1/podcastrv1connect"
	"github.com/osa030/podcastr/internal/app/session"
)

// CatalogService implements the CatalogService RPC.
type CatalogService struct {
	session *session.Manager
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(session *session.Manager) *CatalogService {
	return &CatalogService{session: session}
}

// Ensure CatalogService implements the interface.
var _ podcastrv1connect.CatalogServiceHandler = (*CatalogService)(nil)

// GetHome returns the homepage listing.
func (s *CatalogService) GetHome(
	ctx context.Context,
	req *connect.Request[podcastrv1.Empty],
) (*connect.Response[podcastrv1.GetHomeResponse], error) {
	home, err := s.session.Catalog().Home(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	return connect.NewResponse(&podcastrv1.GetHomeResponse{
		Latest:    podcastrv1.FromList(home.Latest, false),
		All:       podcastrv1.FromList(home.All, false),
		FetchedAt: home.FetchedAt.Format(time.RFC3339),
	}), nil
}

// GetEpisode returns one episode with its description.
func (s *CatalogService) GetEpisode(
	ctx context.Context,
	req *connect.Request[podcastrv1.GetEpisodeRequest],
) (*connect.Response[podcastrv1.GetEpisodeResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}

	e, err := s.session.Catalog().Episode(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&podcastrv1.GetEpisodeResponse{
		Episode: podcastrv1.FromEpisode(e, true),
	}), nil
}
