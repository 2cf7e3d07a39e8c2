package trellosvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/board"
	logsvc "github.com/trezcool/miradi/services/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := core.NewConfig()
	conf.Trello.BaseURL = srv.URL
	conf.Trello.Key = "k"
	conf.Trello.Token = "t"
	return NewClient(conf, logsvc.NewStdLogger(log.New(io.Discard, "", 0)))
}

func TestClient_CreateBoard(t *testing.T) {
	var (
		createdLists []string
		createdCards []string
		invited      []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/1/boards/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "t", r.URL.Query().Get("token"))
		assert.Equal(t, "false", r.URL.Query().Get("defaultLists"))
		_ = json.NewEncoder(w).Encode(trelloBoard{ID: "B1", ShortURL: "https://trello.com/b/B1"})
	})
	mux.HandleFunc("/1/lists", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		createdLists = append(createdLists, name)
		_ = json.NewEncoder(w).Encode(trelloList{ID: "L-" + name})
	})
	mux.HandleFunc("/1/cards", func(w http.ResponseWriter, r *http.Request) {
		createdCards = append(createdCards, r.URL.Query().Get("idList")+"/"+r.URL.Query().Get("name"))
		_ = json.NewEncoder(w).Encode(trelloCard{ID: "C1"})
	})
	mux.HandleFunc("/1/boards/B1/members", func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "rejected@school.io" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		invited = append(invited, email)
		w.WriteHeader(http.StatusOK)
	})
	client := newTestClient(t, mux)

	due := time.Date(2021, time.February, 15, 0, 0, 0, 0, time.UTC)
	res, err := client.CreateBoard(context.Background(), board.ProviderBoard{
		Name:        "Attendance App",
		Description: "Track class attendance",
		Team: []board.TeamMember{
			{Name: "Amani", Email: "amani@school.io"},
			{Name: "Rejected", Email: "rejected@school.io"},
			{Name: "Zawadi", Email: "zawadi@school.io"},
		},
		// deliberately out of order; creation must follow Position
		Lists: []board.List{
			{Name: "Sprint 2", Position: 2},
			{Name: "Sprint 1", Position: 1},
		},
		Cards: []board.Card{
			{ListName: "Sprint 1", Title: "T1", Due: due},
			{ListName: "Sprint 2", Title: "T2"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "B1", res.ID)
	assert.Equal(t, "https://trello.com/b/B1", res.URL)
	assert.Equal(t, []string{"Sprint 1", "Sprint 2"}, createdLists)
	assert.Equal(t, []string{"L-Sprint 1/T1", "L-Sprint 2/T2"}, createdCards)

	// failed invitation is skipped, not fatal
	assert.Equal(t, []string{"amani@school.io", "zawadi@school.io"}, res.InvitedMembers)
	assert.Equal(t, []string{"amani@school.io", "zawadi@school.io"}, invited)
}

func TestClient_CreateBoard_noBoardID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))

	_, err := client.CreateBoard(context.Background(), board.ProviderBoard{Name: "X"})
	assert.True(t, core.IsUpstream(err), "want UpstreamError, got %v", err)
}

func TestClient_CreateBoard_unknownList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1/boards/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(trelloBoard{ID: "B1", URL: "https://x/B1"})
	})
	client := newTestClient(t, mux)

	_, err := client.CreateBoard(context.Background(), board.ProviderBoard{
		Name:  "X",
		Cards: []board.Card{{ListName: "nope", Title: "T1"}},
	})
	assert.True(t, core.IsUpstream(err), "want UpstreamError, got %v", err)
}

func TestClient_GetBoardStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1/boards/B1/lists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("cards"))
		_ = json.NewEncoder(w).Encode([]trelloList{
			{ID: "L1", Cards: []trelloCard{{ID: "C1"}, {ID: "C2"}}},
			{ID: "L2", Cards: []trelloCard{{ID: "C3"}}},
		})
	})
	mux.HandleFunc("/1/boards/B1/members", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]trelloMember{{ID: "M1"}, {ID: "M2"}})
	})
	client := newTestClient(t, mux)

	stats, err := client.GetBoardStats(context.Background(), "B1")
	assert.NoError(t, err)
	assert.Equal(t, board.Stats{Lists: 2, Cards: 3, Members: 2}, stats)
}

func TestClient_GetBoardStats_upstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))

	_, err := client.GetBoardStats(context.Background(), "B1")
	assert.True(t, core.IsUpstream(err), "want UpstreamError, got %v", err)
}

func Test_cardDesc(t *testing.T) {
	tests := []struct {
		card board.Card
		want string
	}{
		{card: board.Card{Description: "do it"}, want: "do it"},
		{card: board.Card{Description: "do it", Role: "QA Engineer"}, want: "do it\n\nRole: QA Engineer"},
		{card: board.Card{Role: "QA Engineer", Priority: "high"}, want: "Role: QA Engineer\nPriority: high"},
		{card: board.Card{}, want: ""},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			assert.Equal(t, tt.want, cardDesc(tt.card))
		})
	}
}
