package conversations_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/config"
	"chatsync/internal/service/conversations"
)

func newClient(t *testing.T, handler http.HandlerFunc) *conversations.Service {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := conversations.NewService(&config.Config{}, log)
	svc.BaseURL = ts.URL
	svc.Token = "secret-token"
	return svc
}

func TestFetchConversationsParsesEnvelope(t *testing.T) {
	svc := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/conversations", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "c1", "customer_id": "cust-1", "status": "open"},
				{"id": "c2", "customer_id": "cust-2", "status": "open"},
			},
		})
	})

	convs, err := svc.FetchConversations(context.Background(), "open")
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "c1", convs[0].ID)
	assert.Equal(t, "cust-2", convs[1].CustomerID)
}

func TestFetchMessages(t *testing.T) {
	svc := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/conversations/c1/messages", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "m1", "conversation_id": "c1", "body": "hello"},
			},
		})
	})

	msgs, err := svc.FetchMessages(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Body)
}

func TestCloseConversationHitsEndpoint(t *testing.T) {
	var gotPath, gotMethod string
	svc := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "c1"}})
	})

	require.NoError(t, svc.CloseConversation(context.Background(), "c1"))
	assert.Equal(t, "/api/conversations/c1/close", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestRemovePriorityUsesDelete(t *testing.T) {
	var gotMethod string
	svc := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}})
	})

	require.NoError(t, svc.RemovePriority(context.Background(), "c1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestServerErrorSurfacesToCaller(t *testing.T) {
	svc := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := svc.CloseConversation(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestCreateCustomerReturnsID(t *testing.T) {
	svc := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customers", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"id": "cust-9"},
		})
	})

	id, err := svc.CreateCustomer(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "cust-9", id)
}

func TestAssignUserSendsBody(t *testing.T) {
	var gotBody map[string]string
	svc := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}})
	})

	require.NoError(t, svc.AssignUser(context.Background(), "c1", "agent-1"))
	assert.Equal(t, map[string]string{"user_id": "agent-1"}, gotBody)
}
