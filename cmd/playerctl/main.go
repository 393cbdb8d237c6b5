// Package main provides the remote control CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/hifigo/hifigo/internal/api/connect"
	"github.com/hifigo/hifigo/internal/app/protocol"
)

var (
	app    = kingpin.New("playerctl", "hifigo remote control")
	server = app.Flag("server", "Server address").Default("http://localhost:9888").String()
	token  = app.Flag("token", "API token for mutating commands").Envar("API_TOKEN").String()

	playCmd     = app.Command("play", "Start or resume playback")
	pauseCmd    = app.Command("pause", "Pause playback")
	toggleCmd   = app.Command("toggle", "Toggle play/pause")
	stopCmd     = app.Command("stop", "Stop playback")
	nextCmd     = app.Command("next", "Skip to the next track")
	previousCmd = app.Command("previous", "Go back to the previous track")
	quitCmd     = app.Command("quit", "Shut the player down")

	skipCmd = app.Command("skip", "Skip to a queue position")
	skipPos = skipCmd.Arg("position", "Queue position (1-based)").Required().Int()

	forwardCmd  = app.Command("forward", "Jump forward within the current track")
	backwardCmd = app.Command("backward", "Jump backward within the current track")

	albumCmd = app.Command("album", "Play an album")
	albumID  = albumCmd.Arg("id", "Album ID").Required().String()

	trackCmd = app.Command("track", "Play a single track")
	trackID  = trackCmd.Arg("id", "Track ID").Required().Uint()

	playlistCmd = app.Command("playlist", "Play a playlist")
	playlistID  = playlistCmd.Arg("id", "Playlist ID").Required().Int64()

	uriCmd = app.Command("uri", "Play a raw stream URI")
	uriArg = uriCmd.Arg("uri", "Stream URI").Required().String()

	searchCmd   = app.Command("search", "Search the catalog")
	searchQuery = searchCmd.Arg("query", "Search query").Required().String()

	artistAlbumsCmd = app.Command("artist-albums", "List an artist's albums")
	artistID        = artistAlbumsCmd.Arg("id", "Artist ID").Required().Int()

	playlistTracksCmd = app.Command("playlist-tracks", "List a playlist's tracks")
	playlistTracksID  = playlistTracksCmd.Arg("id", "Playlist ID").Required().Int64()

	playlistsCmd = app.Command("playlists", "List the user's playlists")

	statusCmd = app.Command("status", "Show the current player state")
	watchCmd  = app.Command("watch", "Stream notifications as JSON lines")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	ctx := context.Background()

	switch command {
	case playCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionPlay})
	case pauseCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionPause})
	case toggleCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionPlayPause})
	case stopCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionStop})
	case nextCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionNext})
	case previousCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionPrevious})
	case quitCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionQuit})
	case skipCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionSkipTo, Position: *skipPos})
	case forwardCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionJumpForward})
	case backwardCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionJumpBackward})
	case albumCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionPlayAlbum, AlbumID: *albumID})
	case trackCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionPlayTrack, TrackID: *trackID})
	case playlistCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionPlayPlaylist, PlaylistID: *playlistID})
	case uriCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionPlayURI, URI: *uriArg})
	case searchCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionSearch, Query: *searchQuery})
	case artistAlbumsCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionFetchArtistAlbums, ArtistID: *artistID})
	case playlistTracksCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionFetchPlaylistTracks, PlaylistID: *playlistTracksID})
	case playlistsCmd.FullCommand():
		dispatch(ctx, protocol.Action{Type: protocol.ActionFetchUserPlaylists})
	case statusCmd.FullCommand():
		status(ctx)
	case watchCmd.FullCommand():
		watch(ctx)
	}
}

func dispatch(ctx context.Context, action protocol.Action) {
	client := apiconnect.NewDispatchClient(http.DefaultClient, *server)

	req := connect.NewRequest(&action)
	if *token != "" {
		req.Header().Set(apiconnect.TokenHeader, *token)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := client.CallUnary(ctx, req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if resp.Msg.Results != nil {
		printJSON(resp.Msg.Results)
		return
	}
	fmt.Println("OK")
}

func status(ctx context.Context) {
	client := apiconnect.NewSnapshotClient(http.DefaultClient, *server)

	resp, err := client.CallUnary(ctx, connect.NewRequest(&apiconnect.SnapshotRequest{}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	printJSON(resp.Msg)
}

func watch(ctx context.Context) {
	client := apiconnect.NewSubscribeClient(http.DefaultClient, *server)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stream, err := client.CallServerStream(ctx, connect.NewRequest(&apiconnect.SubscribeRequest{}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer stream.Close()

	for stream.Receive() {
		printJSON(stream.Msg())
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		fmt.Printf("Stream error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
