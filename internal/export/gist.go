package export

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// GistDescription is the description set on published transcripts.
const GistDescription = "Ensemble conversation transcript"

// Publisher uploads transcripts as GitHub gists.
type Publisher struct {
	client *github.Client
	log    zerolog.Logger
	now    func() time.Time
}

// PublisherOpts holds parameters for creating a Publisher.
type PublisherOpts struct {
	Token   string // GitHub token with the gist scope
	BaseURL string // optional API base, e.g. for GitHub Enterprise or tests
	Logger  *zerolog.Logger
	Now     func() time.Time
}

// NewPublisher creates a Publisher authenticated with opts.Token.
func NewPublisher(ctx context.Context, opts PublisherOpts) (*Publisher, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("export: github token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("export: parse base url: %w", err)
		}
		client.BaseURL = u
	}

	p := &Publisher{client: client, log: zerolog.Nop(), now: opts.Now}
	if opts.Logger != nil {
		p.log = *opts.Logger
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Publish creates a gist holding markdown and returns its HTML URL.
func (p *Publisher) Publish(ctx context.Context, markdown string, public bool) (string, error) {
	name := Filename(p.now())
	gist := &github.Gist{
		Description: github.Ptr(GistDescription),
		Public:      github.Ptr(public),
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(name): {Filename: github.Ptr(name), Content: github.Ptr(markdown)},
		},
	}
	created, _, err := p.client.Gists.Create(ctx, gist)
	if err != nil {
		return "", fmt.Errorf("export: create gist: %w", err)
	}
	p.log.Info().Str("gist", created.GetID()).Bool("public", public).Msg("transcript published")
	return created.GetHTMLURL(), nil
}
