// Package main provides the player CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/jaytaylor/html2text"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/podcastr/internal/api/connect"
	podcastrv1 "github.com/osa030/podcastr/internal/api/podcastr/v1"
	"github.com/osa030/podcastr/internal/api/podcastr/v1/podcastrv1connect"
)

var (
	app    = kingpin.New("podcastr-cli", "podcastr player client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Control token (or set PODCASTR_CONTROL_TOKEN env)").Envar("PODCASTR_CONTROL_TOKEN").String()

	// catalog commands
	homeCmd    = app.Command("home", "Show the homepage listing")
	episodeCmd = app.Command("episode", "Show an episode")
	episodeID  = episodeCmd.Arg("id", "Episode ID").Required().String()

	// player commands
	playCmd         = app.Command("play", "Play a single episode")
	playID          = playCmd.Arg("id", "Episode ID").Required().String()
	playHomeCmd     = app.Command("play-home", "Play the homepage from a row")
	playHomeSection = playHomeCmd.Arg("section", "Section (latest or all)").Required().Enum("latest", "all")
	playHomeIndex   = playHomeCmd.Arg("index", "Row within the section").Required().Int()
	toggleCmd       = app.Command("toggle", "Toggle play/pause")
	loopCmd         = app.Command("loop", "Toggle looping")
	shuffleCmd      = app.Command("shuffle", "Toggle shuffling")
	nextCmd         = app.Command("next", "Play the next episode")
	prevCmd         = app.Command("prev", "Play the previous episode")
	seekCmd         = app.Command("seek", "Seek within the current episode")
	seekSeconds     = seekCmd.Arg("seconds", "Position in seconds").Required().Int()
	endedCmd        = app.Command("ended", "Report that the current episode finished")
	clearCmd        = app.Command("clear", "Clear the queue")
	statusCmd       = app.Command("status", "Show the player state")
	subscribeCmd    = app.Command("subscribe", "Subscribe to player notifications")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	opts := []connect.ClientOption{}
	if *token != "" {
		opts = append(opts, connect.WithInterceptors(tokenInterceptor(*token)))
	}
	playerClient := podcastrv1connect.NewPlayerServiceClient(http.DefaultClient, *server, opts...)
	catalogClient := podcastrv1connect.NewCatalogServiceClient(http.DefaultClient, *server)

	ctx := context.Background()

	switch command {
	case homeCmd.FullCommand():
		home(ctx, catalogClient)
	case episodeCmd.FullCommand():
		showEpisode(ctx, catalogClient, *episodeID)
	case playCmd.FullCommand():
		printResponse(playerClient.PlayEpisode(ctx, connect.NewRequest(&podcastrv1.PlayEpisodeRequest{EpisodeID: *playID})))
	case playHomeCmd.FullCommand():
		printResponse(playerClient.PlayHome(ctx, connect.NewRequest(&podcastrv1.PlayHomeRequest{
			Section: *playHomeSection,
			Index:   *playHomeIndex,
		})))
	case toggleCmd.FullCommand():
		printResponse(playerClient.TogglePlay(ctx, empty()))
	case loopCmd.FullCommand():
		printResponse(playerClient.ToggleLoop(ctx, empty()))
	case shuffleCmd.FullCommand():
		printResponse(playerClient.ToggleShuffle(ctx, empty()))
	case nextCmd.FullCommand():
		printResponse(playerClient.PlayNext(ctx, empty()))
	case prevCmd.FullCommand():
		printResponse(playerClient.PlayPrevious(ctx, empty()))
	case seekCmd.FullCommand():
		printResponse(playerClient.Seek(ctx, connect.NewRequest(&podcastrv1.SeekRequest{Seconds: *seekSeconds})))
	case endedCmd.FullCommand():
		printResponse(playerClient.Ended(ctx, empty()))
	case clearCmd.FullCommand():
		printResponse(playerClient.Clear(ctx, empty()))
	case statusCmd.FullCommand():
		status(ctx, playerClient)
	case subscribeCmd.FullCommand():
		subscribe(ctx, playerClient)
	}
}

func empty() *connect.Request[podcastrv1.Empty] {
	return connect.NewRequest(&podcastrv1.Empty{})
}

// tokenInterceptor attaches the control token to every unary call.
func tokenInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set(apiconnect.ControlTokenHeader, token)
			return next(ctx, req)
		}
	}
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}

func home(ctx context.Context, client podcastrv1connect.CatalogServiceClient) {
	resp, err := client.GetHome(ctx, empty())
	if err != nil {
		fail(err)
	}

	fmt.Println("=== LATEST ===")
	for i, e := range resp.Msg.Latest {
		printEpisodeRow(i, e)
	}
	fmt.Println("\n=== ALL ===")
	for i, e := range resp.Msg.All {
		printEpisodeRow(i, e)
	}
	fmt.Printf("\nFetched at: %s\n", resp.Msg.FetchedAt)
}

func printEpisodeRow(i int, e *podcastrv1.Episode) {
	fmt.Printf("  [%d] %s  %s  %s  (%s)\n", i, e.ID, e.PublishedLabel, e.Title, e.DurationAsString)
}

func showEpisode(ctx context.Context, client podcastrv1connect.CatalogServiceClient, id string) {
	resp, err := client.GetEpisode(ctx, connect.NewRequest(&podcastrv1.GetEpisodeRequest{ID: id}))
	if err != nil {
		fail(err)
	}

	e := resp.Msg.Episode
	fmt.Printf("\n%s\n", e.Title)
	fmt.Printf("  Members: %s\n", e.Members)
	fmt.Printf("  Published: %s\n", e.PublishedLabel)
	fmt.Printf("  Duration: %s\n", e.DurationAsString)
	fmt.Printf("  Thumbnail: %s\n", e.Thumbnail)
	fmt.Printf("  URL: %s\n", e.URL)

	text, err := html2text.FromString(e.Description, html2text.Options{OmitLinks: true})
	if err != nil {
		// Fall back to the raw markup
		text = e.Description
	}
	fmt.Printf("\n%s\n", text)
}

func printResponse(resp *connect.Response[podcastrv1.PlayerResponse], err error) {
	if err != nil {
		fail(err)
	}

	if resp.Msg.Success {
		fmt.Printf("Success: %s\n", resp.Msg.Message)
	} else {
		fmt.Printf("No change [%s]: %s\n", resp.Msg.Code, resp.Msg.Message)
	}
	printState(resp.Msg.State)
}

func status(ctx context.Context, client podcastrv1connect.PlayerServiceClient) {
	resp, err := client.GetState(ctx, empty())
	if err != nil {
		fail(err)
	}

	fmt.Println("\n=== PLAYER STATE ===")
	printState(resp.Msg.State)
}

func subscribe(ctx context.Context, client podcastrv1connect.PlayerServiceClient) {
	stream, err := client.Subscribe(ctx, empty())
	if err != nil {
		fail(err)
	}

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		os.Exit(0)
	}()

	for stream.Receive() {
		printNotification(stream.Msg())
	}

	if err := stream.Err(); err != nil {
		fmt.Printf("Stream error: %v\n", err)
	}
}

func printNotification(n *podcastrv1.Notification) {
	fmt.Printf("\n[Sequence: %d] === %s ===\n", n.SequenceNo, strings.ToUpper(strings.ReplaceAll(string(n.Type), "_", " ")))
	printState(n.State)
}

func printState(s *podcastrv1.PlayerState) {
	if s == nil {
		return
	}

	fmt.Printf("  Status: %s\n", s.Status)
	fmt.Printf("  Loop: %v  Shuffle: %v\n", s.IsLooping, s.IsShuffling)
	fmt.Printf("  Has next: %v  Has previous: %v\n", s.HasNext, s.HasPrevious)

	if s.CurrentEpisode != nil {
		fmt.Println("\nCurrently Playing:")
		fmt.Printf("  Episode ID: %s\n", s.CurrentEpisode.ID)
		fmt.Printf("  Title: %s\n", s.CurrentEpisode.Title)
		fmt.Printf("  Members: %s\n", s.CurrentEpisode.Members)
		fmt.Printf("  Progress: %d/%d seconds\n", s.Progress, s.CurrentEpisode.Duration)
		fmt.Printf("  URL: %s\n", s.CurrentEpisode.URL)
	}

	if len(s.Episodes) > 0 {
		fmt.Printf("\nQueue (%d):\n", len(s.Episodes))
		for i, e := range s.Episodes {
			marker := " "
			if i == s.CurrentIndex {
				marker = ">"
			}
			fmt.Printf("  %s %d. %s (%s)\n", marker, i, e.Title, e.DurationAsString)
		}
	}
}
