package domain

// Article statuses.
const (
	StatusParsing = "parsing"
	StatusDone    = "done"
	StatusError   = "error"
)

// Article is a user's text plus its analysis result and lifecycle status.
// Invariants: StatusDone implies ParsingProgress == 100, StatusError implies
// ParsingProgress == 0. Sentences are only ever replaced wholesale.
type Article struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Preview         string     `json:"preview"`
	Status          string     `json:"status"` // parsing, done, error
	ParsingProgress int        `json:"parsingProgress"`
	Sentences       []Sentence `json:"sentences"`
	DraftContent    string     `json:"draftContent"`
	Language        string     `json:"language"`
}

// Sentence is one analyzed sentence, owned by its parent Article.
type Sentence struct {
	ID          string      `json:"id"`
	Original    string      `json:"original"`
	Blocks      []WordBlock `json:"blocks"`
	Translation string      `json:"translation"`
	AudioPath   *string     `json:"audio_path"`
}

// WordBlock is a single annotation unit inside a sentence.
type WordBlock struct {
	Text        string  `json:"text"`
	Pos         string  `json:"pos"`
	Definition  string  `json:"definition"`
	ChineseRoot *string `json:"chinese_root"`
	GrammarNote *string `json:"grammar_note"`
	AudioPath   *string `json:"audio_path"`
}
