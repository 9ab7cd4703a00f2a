package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/llm-chat-server/internal/domain"
	"github.com/llm-chat-server/internal/loadtest"
	"github.com/llm-chat-server/internal/metrics"
)

// loadTestMessage is the fixed representative payload virtual users
// send during a run. A constant message keeps runs reproducible and
// lets the upstream response cache absorb most of the traffic.
const loadTestMessage = "Why is the sky blue?"

// handleWelcome handles the liveness check
func (s *Server) handleWelcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the LLM Chat API"})
}

// handleChat proxies one chat message to the upstream completion
// service
func (s *Server) handleChat(c *gin.Context) {
	requestID := c.GetString("request_id")

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordChatRequest("invalid")
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrValidation, "message is required", err.Error(), requestID))
		return
	}

	content, err := s.chatService.Complete(c.Request.Context(), req.Message)
	if err != nil {
		metrics.RecordChatRequest("upstream_error")
		s.logger.WithField("request_id", requestID).WithError(err).Error("Chat completion failed")
		c.JSON(http.StatusBadGateway, domain.NewAPIError(
			domain.ErrUpstream, "failed to get a completion from the upstream endpoint", err.Error(), requestID))
		return
	}

	metrics.RecordChatRequest("ok")
	c.JSON(http.StatusOK, domain.ChatResponse{Content: content})
}

// handleLoadTest validates the load parameters, runs one load test
// against the chat endpoint and returns the aggregate summary. The run
// executes synchronously; the response is the final summary.
func (s *Server) handleLoadTest(c *gin.Context) {
	requestID := c.GetString("request_id")

	var params domain.LoadTestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrValidation, "users, spawn_rate and test_time must be present and positive", err.Error(), requestID))
		return
	}

	ltCfg := s.configManager.GetLoadTestConfig()
	testTime := time.Duration(params.TestTime * float64(time.Second))

	if params.Users > ltCfg.MaxUsers {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrValidation,
			fmt.Sprintf("users must not exceed %d", ltCfg.MaxUsers), "", requestID))
		return
	}
	if testTime > ltCfg.MaxTestTime {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrValidation,
			fmt.Sprintf("test_time must not exceed %s", ltCfg.MaxTestTime), "", requestID))
		return
	}

	target := loadtest.NewHTTPTarget(s.loadTestTargetURL(), loadTestMessage, ltCfg.RequestTimeout)
	controller, err := loadtest.NewController(loadtest.Config{
		Users:          params.Users,
		SpawnRate:      params.SpawnRate,
		TestTime:       testTime,
		RequestTimeout: ltCfg.RequestTimeout,
	}, target, s.logger)
	if err != nil {
		metrics.RecordLoadTestRun("failed")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrRunFailed, "failed to start the load test run", err.Error(), requestID))
		return
	}

	summary, err := controller.Run(c.Request.Context())
	if err != nil {
		metrics.RecordLoadTestRun("failed")
		s.logger.WithField("request_id", requestID).WithError(err).Error("Load test run failed")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrRunFailed, "load test run failed", err.Error(), requestID))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// loadTestTargetURL resolves the chat endpoint virtual users hit. An
// explicitly configured target wins; otherwise the run targets this
// server's own chat endpoint.
func (s *Server) loadTestTargetURL() string {
	if url := s.configManager.GetLoadTestConfig().TargetURL; url != "" {
		return url
	}
	return fmt.Sprintf("http://127.0.0.1:%d/api/chat", s.configManager.GetServerConfig().Port)
}
