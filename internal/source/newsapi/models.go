package newsapi

// APIResponse represents the top-headlines response structure. Code and
// Message are only set when Status is "error".
type APIResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []RawArticle `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

type RawArticle struct {
	Source      RawSource `json:"source"`
	Author      *string   `json:"author"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	URLToImage  *string   `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Content     *string   `json:"content"`
}

type RawSource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// ErrorResponse is the body NewsAPI returns with status "error".
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
