package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
)

type ownedSurveys map[string]string // surveyID -> authorID

func (o ownedSurveys) Get(_ context.Context, authorID, id string) (*model.Survey, error) {
	owner, ok := o[id]
	if !ok {
		return nil, service.ErrSurveyNotFound
	}
	if owner != authorID {
		return nil, service.ErrForbidden
	}
	return &model.Survey{ID: id, AuthorID: owner}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub, string) {
	t.Helper()
	auth := service.NewAuthService("secret", "admin", "pw")
	login, err := auth.Login("admin", "pw")
	require.NoError(t, err)

	hub := NewHub()
	t.Cleanup(hub.Stop)

	r := mux.NewRouter()
	h := NewHandler(hub, auth, ownedSurveys{"s1": login.AuthorID, "s2": "author_other"})
	r.HandleFunc("/v1/ws/surveys/{surveyId}", h.SurveyWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, login.Token
}

func wsURL(srv *httptest.Server, surveyID, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/surveys/" + surveyID + "?token=" + token
}

func TestSurveyWS_ReceivesBroadcasts(t *testing.T) {
	srv, hub, token := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "s1", token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Watchers("s1") == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToAuthors("s2", service.EventSessionStarted, map[string]string{"sessionId": "other"})
	hub.BroadcastToAuthors("s1", service.EventSessionProgress, map[string]interface{}{"sessionId": "s_1", "progress": 0.5})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageType(service.EventSessionProgress), msg.Type)
	assert.JSONEq(t, `{"sessionId":"s_1","progress":0.5}`, string(msg.Payload))
}

func TestSurveyWS_Rejects(t *testing.T) {
	srv, _, token := newTestServer(t)

	tests := []struct {
		name     string
		surveyID string
		token    string
		status   int
	}{
		{"missing token", "s1", "", http.StatusUnauthorized},
		{"bad token", "s1", "garbage", http.StatusUnauthorized},
		{"unknown survey", "nope", token, http.StatusNotFound},
		{"other author", "s2", token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.surveyID, tt.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	srv, hub, token := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "s1", token), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Watchers("s1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Watchers("s1") == 0 }, 2*time.Second, 10*time.Millisecond)
}
