package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/dto"
	"github.com/tgienger/kanban/internal/models"
)

func (s *Server) ok(c *gin.Context, status int, v any) {
	env, err := dto.OK(v)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, env)
}

// listTasks returns the tasks matching the search, assignee and labels query
func (s *Server) listTasks(c *gin.Context) {
	filter := board.ParseFilterQuery(c.Request.URL.Query())
	tasks, err := s.store.ListTasks(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]dto.TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, dto.ToTaskDTO(t))
	}
	env, err := dto.OK(out)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListEnvelope{Count: len(out), Results: env})
}

func (s *Server) getTask(c *gin.Context) {
	t, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, dto.ToTaskDTO(*t))
}

func (s *Server) createTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	t, err := s.store.CreateTask(c.Request.Context(), req.Draft())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusCreated, dto.ToTaskDTO(*t))
}

func (s *Server) updateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	s.patchTask(c, req.Patch())
}

func (s *Server) updateStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status == "" {
		badRequest(c, "status is required")
		return
	}
	t, err := s.store.PatchTaskStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, dto.ToTaskDTO(*t))
}

func (s *Server) updateAssignee(c *gin.Context) {
	var req struct {
		AssigneeID *dto.ID `json:"assigneeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	id := ""
	if req.AssigneeID != nil {
		id = string(*req.AssigneeID)
	}
	s.patchTask(c, models.AssigneePatch(id))
}

func (s *Server) patchTask(c *gin.Context, patch models.TaskPatch) {
	ctx := c.Request.Context()
	var (
		t   *models.Task
		err error
	)
	if patch.Empty() {
		t, err = s.store.GetTask(ctx, c.Param("id"))
	} else {
		t, err = s.store.UpdateTask(ctx, c.Param("id"), patch)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, dto.ToTaskDTO(*t))
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted"})
}

func (s *Server) listComments(c *gin.Context) {
	t, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]dto.CommentDTO, 0, len(t.Comments))
	for _, cm := range t.Comments {
		out = append(out, dto.ToCommentDTO(cm))
	}
	s.ok(c, http.StatusOK, out)
}

func (s *Server) addComment(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cm, err := s.store.AddComment(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusCreated, dto.ToCommentDTO(*cm))
}

func (s *Server) listAttachments(c *gin.Context) {
	t, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]dto.AttachmentDTO, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		out = append(out, dto.ToAttachmentDTO(a))
	}
	s.ok(c, http.StatusOK, out)
}

func (s *Server) uploadAttachment(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file provided")
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	a, err := s.store.UploadAttachment(c.Request.Context(), c.Param("id"), models.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusCreated, dto.ToAttachmentDTO(*a))
}

func (s *Server) downloadAttachment(c *gin.Context) {
	a, path, err := s.store.OpenAttachment(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.FileAttachment(path, a.Name)
}

func (s *Server) listLabels(c *gin.Context) {
	labels, err := s.store.ListLabels(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]dto.LabelDTO, 0, len(labels))
	for _, l := range labels {
		out = append(out, dto.ToLabelDTO(l))
	}
	s.ok(c, http.StatusOK, out)
}

type labelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) createLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	l, err := s.store.CreateLabel(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusCreated, dto.ToLabelDTO(*l))
}

func (s *Server) updateLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	l, err := s.store.UpdateLabel(c.Request.Context(), c.Param("id"), req.Name, req.Color)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, dto.ToLabelDTO(*l))
}

func (s *Server) deleteLabel(c *gin.Context) {
	if err := s.store.DeleteLabel(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Label deleted"})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserDTO(u))
	}
	s.ok(c, http.StatusOK, out)
}
