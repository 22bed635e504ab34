package podcastrv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/osa030/podcastr/internal/api/podcastr/v1"
)

// CatalogServiceName is the fully-qualified name of the CatalogService service.
const CatalogServiceName = "podcastr.v1.CatalogService"

const (
	CatalogServiceGetHomeProcedure    = "/podcastr.v1.CatalogService/GetHome"
	CatalogServiceGetEpisodeProcedure = "/podcastr.v1.CatalogService/GetEpisode"
)

// CatalogServiceHandler is implemented by the catalog service.
type CatalogServiceHandler interface {
	GetHome(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.GetHomeResponse], error)
	GetEpisode(context.Context, *connect.Request[v1.GetEpisodeRequest]) (*connect.Response[v1.GetEpisodeResponse], error)
}

// NewCatalogServiceHandler builds an HTTP handler from the service implementation.
func NewCatalogServiceHandler(svc CatalogServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(v1.JSONCodec{})}, opts...)

	getHome := connect.NewUnaryHandler(CatalogServiceGetHomeProcedure, svc.GetHome, opts...)
	getEpisode := connect.NewUnaryHandler(CatalogServiceGetEpisodeProcedure, svc.GetEpisode, opts...)

	return "/" + CatalogServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CatalogServiceGetHomeProcedure:
			getHome.ServeHTTP(w, r)
		case CatalogServiceGetEpisodeProcedure:
			getEpisode.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// CatalogServiceClient is a client for the podcastr.v1.CatalogService service.
type CatalogServiceClient interface {
	GetHome(context.Context, *connect.Request[v1.Empty]) (*connect.Response[v1.GetHomeResponse], error)
	GetEpisode(context.Context, *connect.Request[v1.GetEpisodeRequest]) (*connect.Response[v1.GetEpisodeResponse], error)
}

// NewCatalogServiceClient constructs a client for the podcastr.v1.CatalogService service.
func NewCatalogServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CatalogServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(v1.JSONCodec{})}, opts...)
	return &catalogServiceClient{
		getHome:    connect.NewClient[v1.Empty, v1.GetHomeResponse](httpClient, baseURL+CatalogServiceGetHomeProcedure, opts...),
		getEpisode: connect.NewClient[v1.GetEpisodeRequest, v1.GetEpisodeResponse](httpClient, baseURL+CatalogServiceGetEpisodeProcedure, opts...),
	}
}

type catalogServiceClient struct {
	getHome    *connect.Client[v1.Empty, v1.GetHomeResponse]
	getEpisode *connect.Client[v1.GetEpisodeRequest, v1.GetEpisodeResponse]
}

func (c *catalogServiceClient) GetHome(ctx context.Context, req *connect.Request[v1.Empty]) (*connect.Response[v1.GetHomeResponse], error) {
	return c.getHome.CallUnary(ctx, req)
}

func (c *catalogServiceClient) GetEpisode(ctx context.Context, req *connect.Request[v1.GetEpisodeRequest]) (*connect.Response[v1.GetEpisodeResponse], error) {
	return c.getEpisode.CallUnary(ctx, req)
}
