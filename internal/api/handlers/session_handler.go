package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/services"
	"github.com/yoockh/teachback/internal/utils"
)

type SessionHandler struct {
	mgr *services.SessionManager
}

func NewSessionHandler(mgr *services.SessionManager) *SessionHandler {
	return &SessionHandler{mgr: mgr}
}

type StartSessionRequest struct {
	InputMode  string `json:"input_mode" binding:"required"`  // text|voice|mixed
	OutputMode string `json:"output_mode" binding:"required"` // text|voice_text
	Topic      string `json:"topic"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Start", "invalid request body", err))
		return
	}

	sess, err := h.mgr.CreateSession(c.Request.Context(), userID, planOf(c),
		models.InputMode(req.InputMode), models.OutputMode(req.OutputMode), req.Topic)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartSessionResponse{
		SessionID: sess.SessionID,
		State:     string(sess.State),
		CreatedAt: sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.mgr.GetSession(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type SubmitInputRequest struct {
	Text        string `json:"text"`
	AudioBase64 string `json:"audio_base64"`
}

func (h *SessionHandler) SubmitInput(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SubmitInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.SubmitInput", "invalid request body", err))
		return
	}
	if req.Text == "" && req.AudioBase64 == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.SubmitInput", "text or audio_base64 is required", nil))
		return
	}

	var audio []byte
	if req.AudioBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.AudioBase64)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.SubmitInput", "invalid audio_base64", err))
			return
		}
		audio = decoded
	}

	result, err := h.mgr.ProcessInput(c.Request.Context(), c.Param("session_id"), userID, req.Text, audio)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) Acknowledge(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	state, err := h.mgr.AcknowledgeInterruption(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) StartExam(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	question, err := h.mgr.StartExamination(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question})
}

type SubmitAnswerRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.SubmitAnswer", "invalid request body", err))
		return
	}

	result, err := h.mgr.SubmitAnswer(c.Request.Context(), c.Param("session_id"), userID, req.Question, req.Answer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) End(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.mgr.EndSession(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SessionHandler) Transitions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	atts, err := h.mgr.GetTransitions(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": atts})
}

func (h *SessionHandler) Transcript(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.mgr.GetTranscript(c.Request.Context(), c.Param("session_id"), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": rows})
}
