package ui

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"hypotest/adapters/excel"
	"hypotest/domain/analysis"
	"hypotest/domain/core"
	"hypotest/internal/errors"
	"hypotest/internal/hypothesis"
	"hypotest/internal/metrics"
	"hypotest/internal/results"

	"github.com/gin-gonic/gin"
)

const (
	uploadField = "file"
	zipName     = "stat_results.zip"

	// Code reported for failures raised inside the statistics routines
	codeStatistical = "STATISTICAL_ERROR"
	codeTooLarge    = "FILE_TOO_LARGE"
	codeCanceled    = "REQUEST_CANCELED"
)

// tableView is a result table as columns plus row records
type tableView struct {
	Columns []string                 `json:"columns"`
	Data    []map[string]interface{} `json:"data"`
}

func newTableView(t *analysis.Table) *tableView {
	if t == nil {
		return nil
	}
	return &tableView{Columns: t.Columns(), Data: t.Records()}
}

type uploadResponse struct {
	TaskID  string                   `json:"task_id"`
	Test    string                   `json:"test"`
	Columns []string                 `json:"columns"`
	Data    []map[string]interface{} `json:"data"`
	Result  *analysis.Result         `json:"result"`
	Post    *bool                    `json:"post,omitempty"`
	PostHoc *tableView               `json:"posthoc,omitempty"`
}

// handleListTests lists the tests that can be run
func (s *Server) handleListTests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tests": s.catalog.Entries()})
}

// handleUpload runs a test on an uploaded spreadsheet and stores the result workbook
func (s *Server) handleUpload(c *gin.Context) {
	logger := s.logger.With("Upload")

	test, err := s.catalog.Lookup(c.Param("test"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)
	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.rejectTooLarge(c)
			return
		}
		logger.Warn("no file in upload: %v", err)
		metrics.RecordUploadRejected("bad_form")
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("multipart field %q is required", uploadField)))
		return
	}
	defer file.Close()

	if header.Size > s.config.MaxUploadBytes {
		s.rejectTooLarge(c)
		return
	}
	fileType, err := excel.FileType(header.Filename)
	if err != nil {
		metrics.RecordUploadRejected("bad_type")
		s.respondError(c, err)
		return
	}
	metrics.RecordUpload(header.Size)
	logger.Info("%s upload %q (%d bytes)", test.Name(), header.Filename, header.Size)

	frame, err := excel.ReadFrame(file, fileType)
	if err != nil {
		logger.Warn("failed to read %q: %v", header.Filename, err)
		s.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	start := time.Now()
	res, err := test.Run(ctx, frame)
	metrics.RecordTestRun(test.Name(), methodLabel(res), time.Since(start).Seconds(), err)
	if err != nil {
		logger.Warn("%s failed on %q: %v", test.Name(), header.Filename, err)
		s.respondError(c, err)
		return
	}

	meta, err := s.store.Save(ctx, results.SaveRequest{
		Test:             test.Name(),
		TestDisplayName:  test.DisplayName(),
		OriginalFilename: header.Filename,
		Result:           res,
	})
	if err != nil {
		logger.Error("failed to store result: %v", err)
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildUploadResponse(meta.TaskID, test, res))
}

func buildUploadResponse(id core.TaskID, test hypothesis.Test, res *analysis.Result) uploadResponse {
	resp := uploadResponse{
		TaskID:  id.String(),
		Test:    test.DisplayName(),
		Columns: res.Table.Columns(),
		Data:    res.Table.Records(),
		Result:  res,
	}
	if res.Nested {
		post := res.Post()
		resp.Post = &post
		resp.PostHoc = newTableView(res.PostHoc)
	}
	return resp
}

func methodLabel(res *analysis.Result) string {
	if res == nil {
		return ""
	}
	return res.Decision.Method.String()
}

// handleDownload sends one stored workbook
func (s *Server) handleDownload(c *gin.Context) {
	id, err := core.ParseTaskID(c.Param("task_id"))
	if err != nil {
		metrics.RecordDownload("single", false)
		s.respondError(c, errors.New(errors.CodeNotFound, "file missing or expired"))
		return
	}

	dl, err := s.store.Open(c.Request.Context(), id)
	if err != nil {
		metrics.RecordDownload("single", false)
		s.respondError(c, err)
		return
	}
	metrics.RecordDownload("single", true)
	c.FileAttachment(dl.Path, dl.Name)
}

// handleDownloadZip bundles several stored workbooks. The body is a JSON
// array of task ids; unknown, malformed or expired ids are skipped.
func (s *Server) handleDownloadZip(c *gin.Context) {
	var raw []string
	if err := c.ShouldBindJSON(&raw); err != nil {
		s.respondError(c, errors.InvalidInput("request body must be a JSON array of task ids"))
		return
	}
	if len(raw) == 0 {
		s.respondError(c, errors.InvalidInput("no results selected"))
		return
	}

	ids := make([]core.TaskID, 0, len(raw))
	for _, r := range raw {
		id, err := core.ParseTaskID(r)
		if err != nil {
			s.logger.With("Download").Debug("zip skipped invalid task id %q", r)
			continue
		}
		ids = append(ids, id)
	}

	var buf bytes.Buffer
	added, err := s.store.WriteZip(c.Request.Context(), &buf, ids)
	if err != nil {
		s.respondError(c, err)
		return
	}
	metrics.RecordDownload("zip", added > 0)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", zipName))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (s *Server) rejectTooLarge(c *gin.Context) {
	metrics.RecordUploadRejected("too_large")
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("file exceeds the %d MB limit", s.config.MaxUploadBytes>>20),
		"code":  codeTooLarge,
	})
}

// respondError writes {"error", "code"} with the status errors.HTTPStatus picks
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatusJSON(http.StatusRequestTimeout, gin.H{"error": err.Error(), "code": codeCanceled})
		return
	case !errors.IsAppError(err):
		c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{"error": err.Error(), "code": codeStatistical})
		return
	}

	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
