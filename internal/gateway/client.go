// Package gateway talks to the task board REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/dto"
	"github.com/tgienger/kanban/internal/models"
)

const defaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of an unparseable error body ends up in a message
const maxErrorBody = 512

// Client implements board.Gateway over HTTP
type Client struct {
	baseURL string
	creds   *Credentials
	client  *http.Client
	logger  *slog.Logger
}

var _ board.Gateway = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
// creds may be nil for servers without authentication.
func New(baseURL string, creds *Credentials, opts ...Option) *Client {
	if creds == nil {
		creds = NewCredentials("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials returns the credential object requests are signed with
func (c *Client) Credentials() *Credentials {
	return c.creds
}

func (c *Client) ListTasks(ctx context.Context, filter board.Filter) ([]models.Task, error) {
	const op = "list tasks"
	var list dto.ListEnvelope
	if err := c.do(ctx, op, http.MethodGet, "/tasks", filter.Query(), nil, "", &list); err != nil {
		return nil, err
	}
	if !list.Results.Success {
		return nil, envelopeError(op, list.Results)
	}
	var items []dto.TaskDTO
	if err := decodeData(op, list.Results.Data, &items); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(items))
	for _, item := range items {
		t, err := item.Model()
		if err != nil {
			return nil, malformed(op, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	return c.sendTask(ctx, "create task", http.MethodPost, "/tasks", dto.ToCreateTaskRequest(draft))
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	return c.sendTask(ctx, "update task", http.MethodPut, taskPath(id), dto.ToUpdateTaskRequest(patch))
}

func (c *Client) PatchTaskStatus(ctx context.Context, id string, status models.Status) (*models.Task, error) {
	return c.sendTask(ctx, "move task", http.MethodPatch, taskPath(id)+"/status", dto.StatusRequest{Status: status})
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return c.sendTask(ctx, "get task", http.MethodGet, taskPath(id), nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id), nil, nil, "", nil)
}

func (c *Client) AddComment(ctx context.Context, taskID, content string) (*models.Comment, error) {
	const op = "add comment"
	body, err := json.Marshal(dto.CommentRequest{Content: content})
	if err != nil {
		return nil, board.Errorf(board.KindValidation, op, "encode request: %v", err)
	}
	var out dto.CommentDTO
	if err := c.call(ctx, op, http.MethodPost, taskPath(taskID)+"/comments", bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, err
	}
	comment := out.Model()
	return &comment, nil
}

// UploadAttachment streams file as the multipart field "file"
func (c *Client) UploadAttachment(ctx context.Context, taskID string, file models.Upload) (*models.Attachment, error) {
	const op = "upload attachment"
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, file))
	}()

	var out dto.AttachmentDTO
	err := c.call(ctx, op, http.MethodPost, taskPath(taskID)+"/attachments", pr, mw.FormDataContentType(), &out)
	pr.Close()
	if err != nil {
		return nil, err
	}
	a := out.Model()
	return &a, nil
}

func writeUpload(mw *multipart.Writer, file models.Upload) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return err
	}
	return mw.Close()
}

func (c *Client) ListLabels(ctx context.Context) ([]models.Label, error) {
	var out []dto.LabelDTO
	if err := c.call(ctx, "list labels", http.MethodGet, "/labels", nil, "", &out); err != nil {
		return nil, err
	}
	labels := make([]models.Label, 0, len(out))
	for _, l := range out {
		labels = append(labels, l.Model())
	}
	return labels, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []dto.UserDTO
	if err := c.call(ctx, "list users", http.MethodGet, "/users", nil, "", &out); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(out))
	for _, u := range out {
		users = append(users, u.Model())
	}
	return users, nil
}

func (c *Client) sendTask(ctx context.Context, op, method, path string, req any) (*models.Task, error) {
	var body io.Reader
	contentType := ""
	if req != nil {
		b, err := json.Marshal(req)
		if err != nil {
			return nil, board.Errorf(board.KindValidation, op, "encode request: %v", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	var out dto.TaskDTO
	if err := c.call(ctx, op, method, path, body, contentType, &out); err != nil {
		return nil, err
	}
	t, err := out.Model()
	if err != nil {
		return nil, malformed(op, err)
	}
	return &t, nil
}

// call performs a request whose response is a single-object envelope and
// decodes its data into out.
func (c *Client) call(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	var env dto.Envelope
	if err := c.do(ctx, op, method, path, nil, body, contentType, &env); err != nil {
		return err
	}
	if !env.Success {
		return envelopeError(op, env)
	}
	return decodeData(op, env.Data, out)
}

// do sends the request and maps non-2xx responses to *board.Error. out may be
// nil when the body is not needed.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &board.Error{Kind: board.KindNetwork, Op: op, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "method", method, "path", path, "error", err)
		return &board.Error{Kind: board.KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &board.Error{Kind: board.KindNetwork, Op: op, Message: "read response", Err: err}
	}
	c.logger.Debug("request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.creds.Invalidate()
		}
		return statusError(op, resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return malformed(op, err)
	}
	return nil
}

// statusError maps an HTTP status to an error kind, preferring the message
// from the error envelope when the body has one.
func statusError(op string, status int, body []byte) error {
	kind := board.KindNetwork
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = board.KindValidation
	case http.StatusUnauthorized:
		kind = board.KindUnauthorized
	case http.StatusNotFound:
		kind = board.KindNotFound
	}

	msg := ""
	var env dto.Envelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		msg = env.Error.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &board.Error{Kind: kind, Op: op, Message: msg, Err: fmt.Errorf("http status %d", status)}
}

// envelopeError handles a 2xx response that still reports success=false
func envelopeError(op string, env dto.Envelope) error {
	kind := board.KindNetwork
	msg := "request failed"
	if env.Error != nil {
		msg = env.Error.Message
		switch env.Error.Code {
		case dto.CodeInvalidInput:
			kind = board.KindValidation
		case dto.CodeNotFound:
			kind = board.KindNotFound
		case dto.CodeUnauthorized:
			kind = board.KindUnauthorized
		}
	}
	return &board.Error{Kind: kind, Op: op, Message: msg}
}

func decodeData(op string, data json.RawMessage, out any) error {
	if len(data) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed(op, err)
	}
	return nil
}

// malformed reports a response the client could not use. It is a transport
// level failure: the request may or may not have been applied.
func malformed(op string, err error) error {
	return &board.Error{Kind: board.KindNetwork, Op: op, Message: "malformed response: " + err.Error(), Err: err}
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}
