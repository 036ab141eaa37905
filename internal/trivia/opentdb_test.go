package trivia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenTDBServer(t *testing.T, status int, body string) (*httptest.Server, chan url.Values) {
	t.Helper()
	seen := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case seen <- r.URL.Query():
		default:
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestOpenTDBFetch(t *testing.T) {
	srv, seen := newOpenTDBServer(t, http.StatusOK, `{
		"response_code": 0,
		"results": [{
			"question": "Who wrote &quot;Hamlet&quot;?",
			"correct_answer": "Shakespeare",
			"incorrect_answers": ["Marlowe", "Jonson &amp; Co", "Kyd"]
		}]
	}`)
	client := NewOpenTDBClient(OpenTDBOptions{BaseURL: srv.URL, Category: "10", Difficulty: "easy"})

	questions, err := client.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, `Who wrote "Hamlet"?`, questions[0].Text)
	assert.Equal(t, "Shakespeare", questions[0].CorrectAnswer)
	assert.Equal(t, []string{"Marlowe", "Jonson & Co", "Kyd"}, questions[0].IncorrectAnswers)

	query := <-seen
	assert.Equal(t, "1", query.Get("amount"))
	assert.Equal(t, "multiple", query.Get("type"))
	assert.Equal(t, "10", query.Get("category"))
	assert.Equal(t, "easy", query.Get("difficulty"))
}

func TestOpenTDBFetchErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, `{}`},
		{"bad json", http.StatusOK, `{"results": [`},
		{"response code", http.StatusOK, `{"response_code": 1, "results": []}`},
		{"missing answer", http.StatusOK, `{"response_code": 0, "results": [{"question": "q"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newOpenTDBServer(t, tc.status, tc.body)
			client := NewOpenTDBClient(OpenTDBOptions{BaseURL: srv.URL})

			questions, err := client.Fetch(context.Background(), 5)
			assert.Error(t, err)
			assert.Nil(t, questions)
		})
	}
}

func TestOpenTDBFetchHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	client := NewOpenTDBClient(OpenTDBOptions{BaseURL: srv.URL, Timeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Fetch(ctx, 1)
	assert.Error(t, err)
}

func TestNewOpenTDBClientDefaults(t *testing.T) {
	client := NewOpenTDBClient(OpenTDBOptions{})
	assert.Equal(t, DefaultOpenTDBURL, client.baseURL)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
}
