package models

type PlanResponse struct {
	Answer     string `json:"answer"`
	AnswerHTML string `json:"answer_html,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ReindexResponse summarises one full rebuild run.
type ReindexResponse struct {
	RunID             string  `json:"run_id"`
	FileChunks        int     `json:"file_chunks"`
	WebPages          int     `json:"web_pages"`
	WebChunks         int     `json:"web_chunks"`
	CombinedRecords   int     `json:"combined_records"`
	EmbeddedRecords   int     `json:"embedded_records"`
	UploadedDocuments int     `json:"uploaded_documents"`
	ElapsedSeconds    float64 `json:"elapsed_seconds"`
}

type StatsResponse struct {
	Collection       string `json:"collection"`
	IndexedDocuments int    `json:"indexed_documents"`
}
