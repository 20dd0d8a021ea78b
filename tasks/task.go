package tasks

import "strings"

// Task describes one unit of work handed to a pipeline worker: which input
// data product to fetch, and the names the worker must use for its output
// and log files.
type Task struct {
	ID           string `json:"task_id"`
	InFile       string `json:"in_file"`
	OutFile      string `json:"out_file"`
	LogFile      string `json:"log_file"`
	RetrievePath string `json:"retrieve_path"`
}

// outputName derives the worker's output file name from an input data
// product name, e.g. EUC_LE1_VIS-W-12000-1_X.fits → EUC_QLA_LE1-VIS-W-12000-1_X.json.
func outputName(in string) string {
	out := strings.Replace(in, "LE1_VIS", "QLA_LE1-VIS", 1)
	return strings.TrimSuffix(out, ".fits") + ".json"
}

// logName derives the worker's log file name from the output name.
func logName(out string) string {
	l := strings.Replace(out, "LE1-VIS", "LE1-VIS-LOG", 1)
	return strings.TrimSuffix(l, ".json") + ".log"
}
