package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/bobesa/go-domain-util/domainutil"
	"github.com/lucperkins/rek"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/comicmeta/cmi/pkg/httputils"
	"github.com/comicmeta/cmi/pkg/staff"
)

const (
	DefaultEndpoint = "https://graphql.anilist.co"
	DefaultPerPage  = 6

	coverTimeout = 30 * time.Second
)

const searchQuery = `
query ($search: String, $page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(search: $search, type: MANGA) {
      id
      title { romaji english native }
      startDate { year }
      description(asHtml: false)
      genres
      coverImage { large extraLarge }
      staff {
        edges {
          role
          node {
            name { full }
            primaryOccupations
          }
        }
      }
    }
  }
}
`

const lookupQuery = `
query ($id: Int) {
  Media(id: $id, type: MANGA) {
    id
    title { romaji english native }
    startDate { year }
    description(asHtml: false)
    genres
    coverImage { large extraLarge }
    staff {
      edges {
        role
        node {
          name { full }
          primaryOccupations
        }
      }
    }
  }
}
`

var mediaURLPattern = regexp.MustCompile(`anilist\.co/manga/(\d+)`)

// Client talks to the AniList GraphQL endpoint. Responses carry contributor
// lists already filtered by the staff classifier.
type Client struct {
	endpoint string
	perPage  int
	http     *http.Client
	log      *logrus.Entry
}

func New(endpoint string, perPage int, timeout time.Duration, log *logrus.Entry) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	return &Client{
		endpoint: endpoint,
		perPage:  perPage,
		http:     httputils.NewRetryableHttpClient(timeout, ratelimit.New(1, ratelimit.WithoutSlack)),
		log:      log,
	}
}

/* Wire types */

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type mediaPayload struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	StartDate struct {
		Year int `json:"year"`
	} `json:"startDate"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	CoverImage  struct {
		Large      string `json:"large"`
		ExtraLarge string `json:"extraLarge"`
	} `json:"coverImage"`
	Staff struct {
		Edges []struct {
			Role string `json:"role"`
			Node struct {
				Name struct {
					Full string `json:"full"`
				} `json:"name"`
				PrimaryOccupations []string `json:"primaryOccupations"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"staff"`
}

type searchResponse struct {
	Data struct {
		Page struct {
			Media []mediaPayload `json:"media"`
		} `json:"Page"`
	} `json:"data"`
}

type lookupResponse struct {
	Data struct {
		Media *mediaPayload `json:"Media"`
	} `json:"data"`
}

/* Public */

// Search queries AniList for manga matching the term. Transport and parse
// failures surface as errors; callers degrade them to zero candidates.
func (c *Client) Search(ctx context.Context, term string) ([]Media, error) {
	req := graphqlRequest{
		Query: searchQuery,
		Variables: map[string]any{
			"search":  term,
			"page":    1,
			"perPage": c.perPage,
		},
	}

	c.log.Debugf("Searching AniList for %q (perPage: %d)", term, c.perPage)

	var res searchResponse
	if err := c.post(ctx, req, &res); err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}

	media := make([]Media, 0, len(res.Data.Page.Media))
	for _, m := range res.Data.Page.Media {
		media = append(media, fromPayload(m))
	}

	return media, nil
}

// FetchByID retrieves a single record by its AniList identifier.
// A missing record returns nil, nil.
func (c *Client) FetchByID(ctx context.Context, id int) (*Media, error) {
	req := graphqlRequest{
		Query:     lookupQuery,
		Variables: map[string]any{"id": id},
	}

	c.log.Debugf("Fetching AniList media by id: %d", id)

	var res lookupResponse
	if err := c.post(ctx, req, &res); err != nil {
		return nil, fmt.Errorf("lookup id %d: %w", id, err)
	}

	if res.Data.Media == nil {
		return nil, nil
	}

	m := fromPayload(*res.Data.Media)
	return &m, nil
}

// DownloadImage fetches raw image bytes. Absence and failure both return a
// nil slice with the error for observability.
func (c *Client) DownloadImage(_ context.Context, imageURL string) ([]byte, error) {
	if imageURL == "" {
		return nil, nil
	}

	res, err := rek.Get(imageURL, rek.Timeout(coverTimeout))
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", imageURL, err)
	}
	defer res.Body().Close()

	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		return nil, fmt.Errorf("fetch image %s: unexpected status %d", imageURL, res.StatusCode())
	}

	data, err := io.ReadAll(res.Body())
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", imageURL, err)
	}

	return data, nil
}

// ParseMediaURL extracts the numeric record identifier from a pasted
// anilist.co manga URL.
func ParseMediaURL(raw string) (int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("parse url: %w", err)
	}

	if host := u.Hostname(); host != "" && domainutil.Domain(host) != "anilist.co" {
		return 0, fmt.Errorf("not an anilist.co url: %q", raw)
	}

	m := mediaURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, fmt.Errorf("no manga id in url: %q", raw)
	}

	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parse manga id: %w", err)
	}

	return id, nil
}

/* Private */

func (c *Client) post(ctx context.Context, req graphqlRequest, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}

	return httputils.MakeAPIRequest(ctx, c.http, http.MethodPost, c.endpoint, bytes.NewReader(body), headers, out)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// stripHTML removes markup from AniList descriptions, which arrive with
// embedded tags even when asHtml is false.
func stripHTML(text string) string {
	if text == "" {
		return ""
	}
	return htmlTagPattern.ReplaceAllString(text, "")
}

func fromPayload(p mediaPayload) Media {
	edges := make([]staff.Edge, 0, len(p.Staff.Edges))
	for _, e := range p.Staff.Edges {
		edges = append(edges, staff.Edge{
			Name:        e.Node.Name.Full,
			Role:        e.Role,
			Occupations: e.Node.PrimaryOccupations,
		})
	}

	return Media{
		ID:           p.ID,
		TitleRomaji:  p.Title.Romaji,
		TitleEnglish: p.Title.English,
		TitleNative:  p.Title.Native,
		Year:         p.StartDate.Year,
		Description:  stripHTML(p.Description),
		Genres:       p.Genres,
		CoverLarge:   p.CoverImage.Large,
		CoverXL:      p.CoverImage.ExtraLarge,
		Staff:        staff.FilterNames(edges),
	}
}
