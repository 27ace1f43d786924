package domain

// Draft is the transient edit buffer for an article's source text. It is part
// of the snapshot so an unconfirmed edit survives a restart.
type Draft struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// Settings holds process-wide analysis configuration, read at job-dispatch
// time so a running queue always sees the latest values.
type Settings struct {
	APIKey         string `json:"apiKey"`
	APIURL         string `json:"apiUrl"`
	ModelName      string `json:"modelName"`
	Concurrency    int    `json:"concurrency"`
	AutoSpeak      bool   `json:"autoSpeak"`
	PreCacheAudio  bool   `json:"preCacheAudio"`
	TTSConcurrency int    `json:"ttsConcurrency"`
}

// Snapshot is the complete persisted state at a point in time. Draft and
// Settings are pointers so a loaded payload can omit any field independently;
// the parsing queue is deliberately not part of it.
type Snapshot struct {
	Articles []Article `json:"articles,omitempty"`
	Draft    *Draft    `json:"draft,omitempty"`
	Settings *Settings `json:"settings,omitempty"`
}
