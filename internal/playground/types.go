package playground

import "time"

// JobHandle identifies a job accepted by the service.
type JobHandle struct {
	JobID     string `json:"job_id"`
	OutputURL string `json:"output_url"`
}

// OutputRow is a single line of program output. ID is server pagination
// bookkeeping only; callers advance their offset by row count.
type OutputRow struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`
}

// Timestamp parses CreatedAt as RFC 3339. The zero time is returned when the
// server used another layout.
func (r OutputRow) Timestamp() time.Time {
	ts, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// OutputPage is one response from the output endpoint. A nil ExitCode means
// the job is still running; any non-nil value, including negative sentinels,
// means it finished.
type OutputPage struct {
	ExitCode *int64      `json:"exit_code"`
	Rows     []OutputRow `json:"rows"`
}

// Finished reports whether the page carries a terminal exit code.
func (p OutputPage) Finished() bool {
	return p.ExitCode != nil
}

// Texts returns the row texts in order.
func (p OutputPage) Texts() []string {
	out := make([]string, len(p.Rows))
	for i, row := range p.Rows {
		out[i] = row.Text
	}
	return out
}

type createJobRequest struct {
	LanguageVersion string `json:"lang_v"`
	SourceCode      string `json:"source_code"`
}

type errorResponse struct {
	Message string `json:"message"`
}
