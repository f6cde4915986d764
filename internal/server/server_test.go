package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tgienger/kanban/internal/db"
	"github.com/tgienger/kanban/internal/models"
)

// ServerTestSuite runs the handlers against a temporary sqlite store
type ServerTestSuite struct {
	suite.Suite
	store  *db.DB
	server *Server
	user   *models.User
	bug    *models.Label
}

func (suite *ServerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	var err error
	suite.store, err = db.Open(filepath.Join(suite.T().TempDir(), "kanban.db"))
	suite.Require().NoError(err)

	ctx := context.Background()
	suite.user, err = suite.store.CreateUser(ctx, "sarah", "sarah@example.com", "")
	suite.Require().NoError(err)
	suite.bug, err = suite.store.CreateLabel(ctx, "Bug", "#EF4444")
	suite.Require().NoError(err)
	suite.store.SetUser(suite.user.ID)

	suite.server = New(suite.store, WithToken("secret"))
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.Require().NoError(suite.store.Close())
}

// Helper to send a request with the bearer token
func (suite *ServerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		suite.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, r)
	req.Header.Set("Authorization", "Bearer secret")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(w, req)
	return w
}

func (suite *ServerTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (suite *ServerTestSuite) createTask(title string) map[string]any {
	w := suite.do(http.MethodPost, "/api/tasks", map[string]any{
		"title":      title,
		"status":     "todo",
		"assigneeId": suite.user.ID,
		"due_date":   "2024-06-15",
		"labelIds":   []string{suite.bug.ID},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return suite.decode(w)["data"].(map[string]any)
}

func (suite *ServerTestSuite) TestHealthNeedsNoToken() {
	w := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *ServerTestSuite) TestRejectsMissingToken() {
	w := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	body := suite.decode(w)
	assert.Equal(suite.T(), false, body["success"])
	assert.Equal(suite.T(), "UNAUTHORIZED", body["error"].(map[string]any)["code"])
}

func (suite *ServerTestSuite) TestCreateTask_Success() {
	task := suite.createTask("Fix login")
	assert.Equal(suite.T(), "Fix login", task["title"])
	assert.Equal(suite.T(), "sarah", task["assigneeName"])
	assert.Equal(suite.T(), "2024-06-15", task["due_date"])
	assert.Len(suite.T(), task["labels"], 1)
}

func (suite *ServerTestSuite) TestCreateTask_Validation() {
	w := suite.do(http.MethodPost, "/api/tasks", map[string]any{"title": " "})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/tasks", map[string]any{"title": "a", "status": "blocked"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/tasks", map[string]any{"title": "a", "labelIds": []string{"77"}})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "INVALID_INPUT", suite.decode(w)["error"].(map[string]any)["code"])
}

func (suite *ServerTestSuite) TestListTasks_Filters() {
	suite.createTask("Fix login")
	suite.createTask("Write docs")

	w := suite.do(http.MethodGet, "/api/tasks?search=login", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	assert.Equal(suite.T(), float64(1), body["count"])
	results := body["results"].(map[string]any)
	assert.Equal(suite.T(), true, results["success"])
	assert.Len(suite.T(), results["data"], 1)

	w = suite.do(http.MethodGet, "/api/tasks?labels=999", nil)
	assert.Equal(suite.T(), float64(0), suite.decode(w)["count"])
}

func (suite *ServerTestSuite) TestUpdateStatusAndAssignee() {
	task := suite.createTask("Fix login")
	id := task["id"].(string)

	w := suite.do(http.MethodPatch, "/api/tasks/"+id+"/status", map[string]any{"status": "done"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), "done", suite.decode(w)["data"].(map[string]any)["status"])

	w = suite.do(http.MethodPatch, "/api/tasks/"+id+"/status", map[string]any{"status": "later"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPatch, "/api/tasks/"+id+"/assignee", map[string]any{"assigneeId": nil})
	suite.Require().Equal(http.StatusOK, w.Code)
	data := suite.decode(w)["data"].(map[string]any)
	assert.Equal(suite.T(), "", data["assigneeId"])
	assert.Equal(suite.T(), "", data["assigneeName"])

	w = suite.do(http.MethodPut, "/api/tasks/"+id, map[string]any{"title": "Renamed"})
	suite.Require().Equal(http.StatusOK, w.Code)
	data = suite.decode(w)["data"].(map[string]any)
	assert.Equal(suite.T(), "Renamed", data["title"])
	assert.Equal(suite.T(), "done", data["status"])
}

func (suite *ServerTestSuite) TestDeleteTask() {
	id := suite.createTask("Fix login")["id"].(string)

	w := suite.do(http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.do(http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/api/tasks/"+id, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NOT_FOUND", suite.decode(w)["error"].(map[string]any)["code"])
}

func (suite *ServerTestSuite) TestCommentsAndAttachments() {
	id := suite.createTask("Fix login")["id"].(string)

	w := suite.do(http.MethodPost, "/api/tasks/"+id+"/comments", map[string]any{"content": "on it"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(suite.T(), "sarah", suite.decode(w)["data"].(map[string]any)["authorName"])

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "trace.log")
	suite.Require().NoError(err)
	io.WriteString(part, "stack trace")
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/"+id+"/attachments", &buf)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(w, req)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	att := suite.decode(w)["data"].(map[string]any)
	assert.Equal(suite.T(), "trace.log", att["name"])
	assert.Equal(suite.T(), float64(11), att["size"])

	w = suite.do(http.MethodGet, "/api"+att["url"].(string), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Equal(suite.T(), "stack trace", w.Body.String())

	w = suite.do(http.MethodGet, "/api/tasks/"+id, nil)
	data := suite.decode(w)["data"].(map[string]any)
	assert.Len(suite.T(), data["comments"], 1)
	assert.Len(suite.T(), data["attachments"], 1)
	assert.Equal(suite.T(), float64(1), data["commentCount"])

	w = suite.do(http.MethodGet, "/api/tasks/"+id+"/comments", nil)
	assert.Len(suite.T(), suite.decode(w)["data"], 1)
}

func (suite *ServerTestSuite) TestLabelsAndUsers() {
	w := suite.do(http.MethodPost, "/api/labels", map[string]any{"name": "Docs", "color": "#F59E0B"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	id := suite.decode(w)["data"].(map[string]any)["id"].(string)

	w = suite.do(http.MethodPut, "/api/labels/"+id, map[string]any{"name": "Documentation", "color": "#F59E0B"})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/labels", nil)
	assert.Len(suite.T(), suite.decode(w)["data"], 2)

	w = suite.do(http.MethodDelete, "/api/labels/"+id, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/users", nil)
	users := suite.decode(w)["data"].([]any)
	suite.Require().Len(users, 1)
	assert.Equal(suite.T(), "sarah", users[0].(map[string]any)["username"])
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
