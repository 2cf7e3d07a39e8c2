package trellosvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/board"
)

const serviceName = "trello"

type (
	trelloBoard struct {
		ID       string `json:"id"`
		URL      string `json:"url"`
		ShortURL string `json:"shortUrl"`
	}

	trelloList struct {
		ID    string       `json:"id"`
		Name  string       `json:"name"`
		Cards []trelloCard `json:"cards"`
	}

	trelloCard struct {
		ID string `json:"id"`
	}

	trelloMember struct {
		ID string `json:"id"`
	}
)

// Client is a thin wrapper over the Trello REST API, exposing only the
// board-creation surface the orchestration needs.
type Client struct {
	baseURL string
	key     string
	token   string
	client  *http.Client
	logger  core.Logger
}

var _ board.Provider = (*Client)(nil)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Trello.BaseURL, "/"),
		key:     conf.Trello.Key,
		token:   conf.Trello.Token,
		client:  &http.Client{Timeout: conf.Trello.Timeout},
		logger:  logger,
	}
}

// CreateBoard creates the board, its lists and cards, then invites team
// members. Board/list/card failures abort with an UpstreamError; a failed
// invitation only removes that member from the reported invited list.
func (c *Client) CreateBoard(ctx context.Context, req board.ProviderBoard) (board.ProviderResult, error) {
	params := url.Values{}
	params.Set("name", req.Name)
	params.Set("desc", req.Description)
	params.Set("defaultLists", "false")

	var brd trelloBoard
	if err := c.do(ctx, http.MethodPost, "/1/boards/", params, &brd); err != nil {
		return board.ProviderResult{}, err
	}
	if brd.ID == "" {
		return board.ProviderResult{}, core.NewUpstreamError(serviceName, errors.New("board creation returned no id"))
	}

	listIDs, err := c.createLists(ctx, brd.ID, req.Lists)
	if err != nil {
		return board.ProviderResult{}, err
	}
	if err = c.createCards(ctx, listIDs, req.Cards); err != nil {
		return board.ProviderResult{}, err
	}

	boardURL := brd.ShortURL
	if boardURL == "" {
		boardURL = brd.URL
	}
	return board.ProviderResult{
		ID:             brd.ID,
		URL:            boardURL,
		InvitedMembers: c.inviteMembers(ctx, brd.ID, req.Team),
	}, nil
}

func (c *Client) GetBoardStats(ctx context.Context, boardID string) (board.Stats, error) {
	params := url.Values{}
	params.Set("cards", "open")
	params.Set("card_fields", "id")

	var lists []trelloList
	if err := c.do(ctx, http.MethodGet, "/1/boards/"+boardID+"/lists", params, &lists); err != nil {
		return board.Stats{}, err
	}

	var members []trelloMember
	if err := c.do(ctx, http.MethodGet, "/1/boards/"+boardID+"/members", nil, &members); err != nil {
		return board.Stats{}, err
	}

	stats := board.Stats{Lists: len(lists), Members: len(members)}
	for _, l := range lists {
		stats.Cards += len(l.Cards)
	}
	return stats, nil
}

// createLists creates one list per sprint in ordinal order and returns a
// list-name -> trello list id mapping for card creation.
func (c *Client) createLists(ctx context.Context, boardID string, lists []board.List) (map[string]string, error) {
	ordered := make([]board.List, len(lists))
	copy(ordered, lists)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	ids := make(map[string]string, len(ordered))
	for _, l := range ordered {
		params := url.Values{}
		params.Set("idBoard", boardID)
		params.Set("name", l.Name)
		params.Set("pos", strconv.Itoa(l.Position))

		var created trelloList
		if err := c.do(ctx, http.MethodPost, "/1/lists", params, &created); err != nil {
			return nil, err
		}
		ids[l.Name] = created.ID
	}
	return ids, nil
}

func (c *Client) createCards(ctx context.Context, listIDs map[string]string, cards []board.Card) error {
	for i, card := range cards {
		listID, ok := listIDs[card.ListName]
		if !ok {
			return core.NewUpstreamError(serviceName, fmt.Errorf("card %q references unknown list %q", card.Title, card.ListName))
		}

		params := url.Values{}
		params.Set("idList", listID)
		params.Set("name", card.Title)
		params.Set("desc", cardDesc(card))
		params.Set("pos", strconv.Itoa(i+1))
		if !card.Due.IsZero() {
			params.Set("due", card.Due.Format(time.RFC3339))
		}

		var created trelloCard
		if err := c.do(ctx, http.MethodPost, "/1/cards", params, &created); err != nil {
			return err
		}
	}
	return nil
}

// inviteMembers invites each team member to the board and returns the
// emails that were accepted; failed invitations are logged only.
func (c *Client) inviteMembers(ctx context.Context, boardID string, team []board.TeamMember) []string {
	invited := make([]string, 0, len(team))
	for _, m := range team {
		params := url.Values{}
		params.Set("email", m.Email)
		params.Set("fullName", m.Name)
		params.Set("type", "normal")

		if err := c.do(ctx, http.MethodPut, "/1/boards/"+boardID+"/members", params, nil); err != nil {
			c.logger.Warn(fmt.Sprintf("inviting %s to board %s: %v", m.Email, boardID, err), err)
			continue
		}
		invited = append(invited, m.Email)
	}
	return invited
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.key)
	params.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrapf(err, "building %s %s request", method, path)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return core.NewUpstreamError(serviceName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return core.NewUpstreamError(serviceName, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.NewUpstreamError(serviceName, errors.Wrapf(err, "decoding %s %s response", method, path))
	}
	return nil
}

func cardDesc(card board.Card) string {
	desc := card.Description
	if card.Role != "" {
		desc += "\n\nRole: " + card.Role
	}
	if card.Priority != "" {
		desc += "\nPriority: " + card.Priority
	}
	return strings.TrimSpace(desc)
}
