package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/yourorg/crawl-storage/internal/types"
)

// archiveWorkflow must match the name the worker registers.
const archiveWorkflow = "ArchiveWorkflow"

// WorkflowClient is the part of client.Client the workflow routes use.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
	DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*workflowservice.DescribeWorkflowExecutionResponse, error)
}

type WorkflowHandler struct {
	temporalClient WorkflowClient
	taskQueue      string
	log            *zap.Logger
}

func NewWorkflowHandler(temporalClient WorkflowClient, taskQueue string, log *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{temporalClient: temporalClient, taskQueue: taskQueue, log: log}
}

type StartWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// Register mounts the workflow routes on g.
func (h *WorkflowHandler) Register(g *gin.RouterGroup) {
	g.POST("/workflows/archive", h.StartArchiveWorkflow)
	g.GET("/workflows/:id/status", h.GetWorkflowStatus)
}

// StartArchiveWorkflow starts ArchiveWorkflow on the worker task queue
// with the request body as its input.
func (h *WorkflowHandler) StartArchiveWorkflow(c *gin.Context) {
	var params types.ArchiveParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(params.Blobs) == 0 && len(params.Tables) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to archive"})
		return
	}

	options := client.StartWorkflowOptions{
		ID:        "archive-" + uuid.NewString(),
		TaskQueue: h.taskQueue,
	}
	run, err := h.temporalClient.ExecuteWorkflow(c.Request.Context(), options, archiveWorkflow, params)
	if err != nil {
		h.log.Error("start archive workflow", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start workflow: " + err.Error()})
		return
	}
	h.log.Info("archive workflow started", zap.String("workflow_id", run.GetID()),
		zap.Int("blobs", len(params.Blobs)), zap.Int("tables", len(params.Tables)))
	c.JSON(http.StatusAccepted, StartWorkflowResponse{WorkflowID: run.GetID(), RunID: run.GetRunID()})
}

// GetWorkflowStatus reports the execution status of a workflow, plus its
// result once it has completed. It never blocks on a running workflow.
func (h *WorkflowHandler) GetWorkflowStatus(c *gin.Context) {
	ctx := c.Request.Context()
	workflowID := c.Param("id")

	describe, err := h.temporalClient.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to describe workflow: " + err.Error()})
		return
	}
	info := describe.GetWorkflowExecutionInfo()
	resp := gin.H{
		"workflow_id": workflowID,
		"status":      info.GetStatus().String(),
		"start_time":  info.GetStartTime().AsTime(),
	}
	if info.GetStatus() != enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		c.JSON(http.StatusOK, resp)
		return
	}

	var result types.ArchiveStats
	if err := h.temporalClient.GetWorkflow(ctx, workflowID, "").Get(ctx, &result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read workflow result: " + err.Error()})
		return
	}
	resp["result"] = result
	c.JSON(http.StatusOK, resp)
}
