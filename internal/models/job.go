package models

import (
	"time"

	"github.com/witsml-explorer/backend/internal/patch"
)

// JobType names a kind of background job.
type JobType string

const (
	JobTypeCopyLogData        JobType = "CopyLogData"
	JobTypeOffsetLogCurves    JobType = "OffsetLogCurves"
	JobTypeSpliceLogs         JobType = "SpliceLogs"
	JobTypeImportLogData      JobType = "ImportLogData"
	JobTypeModifyLogCurveInfo JobType = "ModifyLogCurveInfo"
)

// JobStatus represents the lifecycle of a job.
type JobStatus string

const (
	JobStatusOrdered  JobStatus = "Ordered"
	JobStatusStarted  JobStatus = "Started"
	JobStatusFinished JobStatus = "Finished"
	JobStatusFailed   JobStatus = "Failed"
)

// JobInfo is what clients poll for.
type JobInfo struct {
	ID           string     `json:"id"`
	Type         JobType    `json:"jobType"`
	Status       JobStatus  `json:"status"`
	Description  string     `json:"description,omitempty"`
	FailedReason string     `json:"failedReason,omitempty"`
	Report       *JobReport `json:"report,omitempty"`
	CreatedAt    time.Time  `json:"startTime"`
	CompletedAt  *time.Time `json:"endTime,omitempty"`
}

// JobReport summarises the outcome of a finished job.
type JobReport struct {
	Title   string              `json:"title"`
	Summary string              `json:"summary"`
	Items   []map[string]string `json:"reportItems,omitempty"`
}

// CopyLogDataJob copies curve data between logs, restricted to an index range.
type CopyLogDataJob struct {
	Source     LogRef   `json:"source"`
	Target     LogRef   `json:"target"`
	Mnemonics  []string `json:"mnemonics,omitempty"`
	StartIndex string   `json:"startIndex,omitempty"`
	EndIndex   string   `json:"endIndex,omitempty"`
}

// OffsetLogCurvesJob shifts the index of a log's curves. Offset is a decimal for depth
// logs and [+-]hh:mm:ss for time logs.
type OffsetLogCurvesJob struct {
	Log       LogRef   `json:"log"`
	Offset    string   `json:"offset"`
	Mnemonics []string `json:"mnemonics,omitempty"`
}

// SpliceLogsJob combines logs into a new log. Logs are listed in priority order.
type SpliceLogsJob struct {
	Logs       []LogRef `json:"logs"`
	NewLogUID  string   `json:"newLogUid"`
	NewLogName string   `json:"newLogName"`
}

// ImportLogDataJob merges an uploaded file into a log.
type ImportLogDataJob struct {
	Target LogRef `json:"target"`
	FileID string `json:"fileId"`
	// Overwrite must be set when the file overlaps existing curve data.
	Overwrite bool `json:"overwrite,omitempty"`
}

// ModifyLogCurveInfoJob edits metadata of one curve.
type ModifyLogCurveInfoJob struct {
	Log      LogRef      `json:"log"`
	Mnemonic string      `json:"mnemonic"`
	Patch    patch.Patch `json:"patch"`
}
