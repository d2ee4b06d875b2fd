package main

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/shifts_backend/config"
	"bitbucket.org/mmdatafocus/shifts_backend/ledger"
	"bitbucket.org/mmdatafocus/shifts_backend/models"
	"bitbucket.org/mmdatafocus/shifts_backend/reports"
	"bitbucket.org/mmdatafocus/shifts_backend/shift"
	"bitbucket.org/mmdatafocus/shifts_backend/workflow"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxUploadSizeBytes int64 = 10 * 1024 * 1024

type sheetSummary struct {
	SheetName      string `json:"sheetName"`
	Agent          string `json:"agent"`
	Turnover       string `json:"turnover"`
	AgentPayout    string `json:"agentPayout"`
	OperatorPayout string `json:"operatorPayout"`
	Inflows        int    `json:"inflows"`
	Outflows       int    `json:"outflows"`
	Exchanges      int    `json:"exchanges"`
	SkippedRows    int    `json:"skippedRows"`
	Report         string `json:"report"`
}

func operatorKey(c *gin.Context) (string, bool) {
	key := strings.TrimSpace(c.GetHeader("x-operator-key"))
	if key == "" {
		key = strings.TrimSpace(c.PostForm("operatorKey"))
	}
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x-operator-key is required"})
		return "", false
	}
	return key, true
}

// ingestHandler accepts one workbook upload for one operator and runs the
// full reconciliation: classify, calculate, aggregate into the shift,
// commit to the ledger. The agent rate is validated here at the boundary;
// the core receives it already checked.
func ingestHandler(p *workflow.Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := operatorKey(c)
		if !ok {
			return
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("rate")))
		if err != nil || !rate.IsPositive() || rate.GreaterThan(decimal.NewFromInt(100)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate must be a number in (0, 100]"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only .xlsx files are supported"})
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
			return
		}
		defer f.Close()

		// With more than one replica the in-process lock is not enough;
		// take a distributed lock per operator when redis is available.
		if locker := config.GetRedisLock(); locker != nil {
			lock, lockErr := locker.Obtain(c.Request.Context(), "ingest:"+key, 2*time.Minute, nil)
			if errors.Is(lockErr, redislock.ErrNotObtained) {
				c.JSON(http.StatusConflict, gin.H{"error": "another ingest is running for this operator"})
				return
			}
			if lockErr != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lock service unavailable"})
				return
			}
			defer lock.Release(c.Request.Context())
		}

		sheets, err := p.Process(c.Request.Context(), f, key, rate)

		var malformed *ledger.MalformedInputError
		if errors.As(err, &malformed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": malformed.Error()})
			return
		}

		summaries := make([]sheetSummary, 0, len(sheets))
		for _, s := range sheets {
			summaries = append(summaries, sheetSummary{
				SheetName:      s.SheetName,
				Agent:          s.FullName,
				Turnover:       s.Turnover.String(),
				AgentPayout:    s.AgentPayout.String(),
				OperatorPayout: s.OperatorPayout.String(),
				Inflows:        len(s.Inflows),
				Outflows:       len(s.Outflows),
				Exchanges:      len(s.Exchanges),
				SkippedRows:    s.SkippedRows,
				Report:         reports.SheetReport(s),
			})
		}

		if err != nil {
			// Some sheets may have been recorded before the failure;
			// return what succeeded together with the failure detail.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  err.Error(),
				"sheets": summaries,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sheets": summaries})
	}
}

func shiftSummaryHandler(p *workflow.Processor, settings config.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := operatorKey(c)
		if !ok {
			return
		}
		sum, err := p.ShiftSummary(key)
		if err != nil {
			c.JSON(shiftErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"summary": sum,
			"report":  reports.ShiftReport(sum, settings.OperatorPercent),
		})
	}
}

func finishShiftHandler(p *workflow.Processor, settings config.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := operatorKey(c)
		if !ok {
			return
		}
		sum, err := p.FinishShift(key)
		if err != nil {
			c.JSON(shiftErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"summary": sum,
			"report":  reports.ShiftReport(sum, settings.OperatorPercent),
		})
	}
}

func shiftErrorStatus(err error) int {
	if errors.Is(err, shift.ErrNoActiveShift) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type newAgentPhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

func agentPhoneHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, err := strconv.Atoi(c.Param("id"))
		if err != nil || agentID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent id"})
			return
		}

		var req newAgentPhoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": processValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		phone, err := models.CreateAgentPhone(c.Request.Context(), config.GetDB(), agentID, req.PhoneNumber)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, phone)
	}
}

func processValidationErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
