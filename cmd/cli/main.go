package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v2"

	"bookswap/internal/confirm"
	"bookswap/internal/logger"
	"bookswap/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	logger.Setup(logger.Config{Level: "info", Format: logger.FormatConsole, Output: os.Stderr})

	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		logger.Get().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	client := func(c *cli.Context) *apiClient { return newAPIClient(c.String("api")) }

	return &cli.App{
		Name:      "bookswap",
		Usage:     "Manage your book listings and wishlist",
		Writer:    out,
		Reader:    in,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "API base URL",
				Value:   defaultBaseURL,
				EnvVars: []string{"BOOKSWAP_API"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "listings",
				Usage: "Books you posted for sale or donation",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "Show your listings",
						Action: func(c *cli.Context) error {
							books, err := client(c).listings(c.Context)
							if err != nil {
								return err
							}
							printBooks(out, books, true, "No listings yet\nYou can add a listing using 'listings add'")
							return nil
						},
					},
					{
						Name:      "show",
						Usage:     "Show one listing in full",
						ArgsUsage: "<id>",
						Action: func(c *cli.Context) error {
							id, err := requireID(c)
							if err != nil {
								return err
							}
							b, err := client(c).listing(c.Context, id)
							if err != nil {
								return err
							}
							return printJSON(out, b)
						},
					},
					{
						Name:  "add",
						Usage: "Post a new listing",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Required: true},
							&cli.StringFlag{Name: "author"},
							&cli.StringFlag{Name: "category"},
							&cli.StringFlag{Name: "condition", Value: "Good"},
							&cli.Float64Flag{Name: "price"},
							&cli.StringFlag{Name: "type", Usage: "Sale or Donation", Value: "Sale"},
							&cli.StringFlag{Name: "contact"},
						},
						Action: func(c *cli.Context) error {
							b, err := client(c).addListing(c.Context, map[string]any{
								"title":        c.String("title"),
								"author":       c.String("author"),
								"category":     c.String("category"),
								"condition":    c.String("condition"),
								"price":        c.Float64("price"),
								"listing_type": c.String("type"),
								"contact":      c.String("contact"),
							})
							if err != nil {
								return err
							}
							fmt.Fprintf(out, "listed %s (%s)\n", b.Title, b.ID)
							return nil
						},
					},
					{
						Name:      "toggle",
						Usage:     "Mark a listing sold or available",
						ArgsUsage: "<id>",
						Action: func(c *cli.Context) error {
							id, err := requireID(c)
							if err != nil {
								return err
							}
							books, err := client(c).toggle(c.Context, id)
							if err != nil {
								return err
							}
							printBooks(out, books, true, "No listings yet")
							return nil
						},
					},
					{
						Name:      "delete",
						Usage:     "Delete a listing after confirmation",
						ArgsUsage: "<id>",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "confirm without asking"},
						},
						Action: func(c *cli.Context) error {
							id, err := requireID(c)
							if err != nil {
								return err
							}
							var gate confirm.Confirmer = confirm.Terminal{In: in, Out: out}
							if c.Bool("yes") {
								gate = confirm.Accept
							}
							deleted, err := client(c).deleteListing(c.Context, id, gate)
							if err != nil {
								return err
							}
							if deleted {
								fmt.Fprintf(out, "deleted listing %s\n", id)
							} else {
								fmt.Fprintln(out, "nothing deleted")
							}
							return nil
						},
					},
				},
			},
			{
				Name:  "wishlist",
				Usage: "Books you bookmarked from other users",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "Show your wishlist",
						Action: func(c *cli.Context) error {
							books, err := client(c).wishlist(c.Context)
							if err != nil {
								return err
							}
							printBooks(out, books, false, "Your wishlist is empty\nBrowse books and add your favorites here")
							return nil
						},
					},
					{
						Name:      "remove",
						Usage:     "Remove a book from your wishlist",
						ArgsUsage: "<id>",
						Action: func(c *cli.Context) error {
							id, err := requireID(c)
							if err != nil {
								return err
							}
							books, err := client(c).removeWish(c.Context, id)
							if err != nil {
								return err
							}
							printBooks(out, books, false, "Your wishlist is empty")
							return nil
						},
					},
				},
			},
			{
				Name:  "sync",
				Usage: "Follow live collection snapshots",
				Subcommands: []*cli.Command{
					{
						Name:  "listen",
						Usage: "Print snapshot events as they arrive",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "ws", Usage: "WebSocket URL (defaults to /ws on the API host)"},
						},
						Action: func(c *cli.Context) error {
							endpoint := c.String("ws")
							if endpoint == "" {
								var err error
								if endpoint, err = websocketURL(c.String("api"), "/ws"); err != nil {
									return err
								}
							}
							return listen(endpoint, out)
						},
					},
				},
			},
		},
	}
}

func requireID(c *cli.Context) (string, error) {
	id := c.Args().First()
	if id == "" {
		return "", fmt.Errorf("%s: id is required", c.Command.FullName())
	}
	return id, nil
}

func printBooks(w io.Writer, books []models.Book, withStatus bool, empty string) {
	if len(books) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, b := range books {
		price := "free"
		if b.HasPrice() {
			price = "₹" + strconv.FormatFloat(b.Price, 'f', -1, 64)
		}
		line := fmt.Sprintf("%-6s %-32s %-20s %-9s %-8s", b.ID, b.Title, b.Author, b.ListingType, price)
		if withStatus {
			line += fmt.Sprintf(" %-9s (%s)", b.Status, b.Status.ToggleLabel())
		}
		fmt.Fprintln(w, line)
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func listen(wsURL string, out io.Writer) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	logger.Component("sync").Info().Str("url", wsURL).Msg("connected")
	seen := versionFilter{}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if !seen.fresh(msg) {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			fmt.Fprintln(out, string(msg))
			continue
		}
		_ = printJSON(out, obj)
	}
}

// versionFilter remembers the newest snapshot version per collection. A
// client can receive a version twice when it connects during a change.
type versionFilter map[string]uint64

func (f versionFilter) fresh(msg []byte) bool {
	var head struct {
		Collection string `json:"collection"`
		Version    uint64 `json:"version"`
	}
	if err := json.Unmarshal(msg, &head); err != nil || head.Collection == "" {
		return true
	}
	if last, ok := f[head.Collection]; ok && head.Version <= last {
		return false
	}
	f[head.Collection] = head.Version
	return true
}
