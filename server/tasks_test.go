package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/dataserv/tasks"
)

func TestGetTaskDispatches(t *testing.T) {
	h, root := newTestServer(t, nil)
	in := "EUC_LE1_VIS-W-12000-1_20260815T100000.0Z.fits"
	writeFile(t, root, "input/"+in, []byte("SIMPLE  ="))

	rec := get(t, h, "/get_task")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var task tasks.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, in, task.InFile)
	assert.Equal(t, "EUC_QLA_LE1-VIS-W-12000-1_20260815T100000.0Z.json", task.OutFile)
	assert.Equal(t, "EUC_QLA_LE1-VIS-LOG-W-12000-1_20260815T100000.0Z.log", task.LogFile)
	assert.Equal(t, "input", task.RetrievePath)
}

func TestGetTaskEmptyPoolTimesOut(t *testing.T) {
	old := dispatchTimeout
	dispatchTimeout = 100 * time.Millisecond
	defer func() { dispatchTimeout = old }()

	h, _ := newTestServer(t, nil)

	rec := get(t, h, "/get_task")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestEndTaskMovesFile(t *testing.T) {
	h, root := newTestServer(t, nil)
	in := "EUC_LE1_VIS-W-12000-1_A.fits"
	writeFile(t, root, "input/"+in, []byte("SIMPLE  ="))

	rec := get(t, h, "/get_task")
	require.Equal(t, http.StatusOK, rec.Code)
	var task tasks.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	rec = get(t, h, "/end_task?task_id="+task.ID)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := os.Stat(filepath.Join(root, "input", in))
	assert.True(t, os.IsNotExist(err), "input file moved away")
	assert.FileExists(t, filepath.Join(root, "processed", in))
}

func TestEndTaskUnknown(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := get(t, h, "/end_task?task_id=bogus")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndTaskMissingID(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := get(t, h, "/end_task")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTaskTrailingSlash(t *testing.T) {
	h, root := newTestServer(t, nil)
	writeFile(t, root, "input/EUC_LE1_VIS-W-12000-2_B.fits", []byte("SIMPLE  ="))

	rec := get(t, h, "/get_task/")
	assert.Equal(t, http.StatusOK, rec.Code)
}
