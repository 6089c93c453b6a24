package logging

import "strings"

// FormatSubject builds the job subject prefix used in console output.
func FormatSubject(jobID string) string {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return ""
	}
	return "[job " + jobID + "]"
}
