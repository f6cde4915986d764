package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *Credentials) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	creds := NewCredentials("secret")
	return New(srv.URL+"/api", creds), creds
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestListTasksSendsFilterAndToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "login", r.URL.Query().Get("search"))
		assert.Equal(t, "1,2", r.URL.Query().Get("labels"))
		writeJSON(w, http.StatusOK, `{"count":2,"results":{"success":true,"data":[
			{"id":1,"title":"Fix login","status":"todo","labels":[{"id":1,"name":"Bug"}]},
			{"id":"2","title":"Login page","status":"done","labels":[]}
		]}}`)
	})

	tasks, err := c.ListTasks(context.Background(), board.NewFilter("login", []string{"2", "1"}, ""))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, "Bug", tasks[0].Labels[0].Name)
	assert.Equal(t, models.StatusDone, tasks[1].Status)
}

func TestStatusCodesMapToKinds(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
		msg    string
	}{
		{http.StatusBadRequest, `{"success":false,"error":{"code":"INVALID_INPUT","message":"Title is required"}}`, board.ErrValidation, "Title is required"},
		{http.StatusUnprocessableEntity, `nope`, board.ErrValidation, "nope"},
		{http.StatusNotFound, `{"success":false,"error":{"code":"NOT_FOUND","message":"Task not found"}}`, board.ErrNotFound, "Task not found"},
		{http.StatusUnauthorized, ``, board.ErrUnauthorized, "Unauthorized"},
		{http.StatusInternalServerError, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"boom"}}`, board.ErrNetwork, "boom"},
		{http.StatusBadGateway, `<html>bad gateway</html>`, board.ErrNetwork, "<html>bad gateway</html>"},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := c.GetTask(context.Background(), "9")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			var e *board.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.msg, e.Message)
			assert.Equal(t, "get task", e.Op)
		})
	}
}

func TestUnauthorizedInvalidatesCredentials(t *testing.T) {
	var calls atomic.Int32
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "" {
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"token expired"}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	})
	var dropped int
	creds.OnInvalidate(func() { dropped++ })

	_, err := c.ListLabels(context.Background())
	assert.ErrorIs(t, err, board.ErrUnauthorized)
	assert.False(t, creds.Valid())
	assert.Equal(t, 1, dropped)

	labels, err := c.ListLabels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, labels)
	assert.Equal(t, int32(2), calls.Load())

	creds.Invalidate()
	assert.Equal(t, 1, dropped, "dropping an empty credential does not notify")
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, nil)
	err := c.DeleteTask(context.Background(), "1")
	assert.ErrorIs(t, err, board.ErrNetwork)
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := New(srv.URL, nil, WithTimeout(50*time.Millisecond))
	_, err := c.ListUsers(context.Background())
	assert.ErrorIs(t, err, board.ErrNetwork)
}

func TestMalformedTaskIsNetworkError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":"1","title":"a","status":"blocked"}}`)
	})
	_, err := c.GetTask(context.Background(), "1")
	assert.ErrorIs(t, err, board.ErrNetwork)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestSuccessFalseInOKResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"error":{"code":"NOT_FOUND","message":"gone"}}`)
	})
	_, err := c.GetTask(context.Background(), "1")
	assert.ErrorIs(t, err, board.ErrNotFound)
}

func TestCreateAndUpdateBodies(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = nil
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/tasks":
			writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":42,"title":"New","status":"todo","labels":[]}}`)
		case r.Method == http.MethodPut && r.URL.Path == "/api/tasks/42":
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":42,"title":"Renamed","status":"todo","labels":[]}}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/api/tasks/42/status":
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":42,"title":"Renamed","status":"done","labels":[]}}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()

	created, err := c.CreateTask(ctx, models.TaskDraft{Title: "New", Status: models.StatusTodo, DueDate: models.MustDate("2024-06-15")})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, "New", got["title"])
	assert.Equal(t, "2024-06-15", got["due_date"])
	assert.Nil(t, got["assigneeId"])

	title := "Renamed"
	updated, err := c.UpdateTask(ctx, "42", models.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, map[string]any{"title": "Renamed"}, got)

	moved, err := c.PatchTaskStatus(ctx, "42", models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, moved.Status)
	assert.Equal(t, map[string]any{"status": "done"}, got)
}

func TestUploadAttachmentMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/7/attachments", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "notes.txt", hdr.Filename)
		assert.Equal(t, "hello", string(body))
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":3,"taskId":7,"name":"notes.txt","size":5,"type":"text/plain"}}`)
	})

	a, err := c.UploadAttachment(context.Background(), "7", models.Upload{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Size:        5,
		Body:        strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "3", a.ID)
	assert.Equal(t, "7", a.TaskID)
	assert.Equal(t, int64(5), a.Size)
}

func TestAddComment(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "looks good", req["content"])
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":5,"taskId":1,"content":"looks good","authorId":2,"authorName":"Mike"}}`)
	})
	comment, err := c.AddComment(context.Background(), "1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, "5", comment.ID)
	assert.Equal(t, "Mike", comment.AuthorName)
}
