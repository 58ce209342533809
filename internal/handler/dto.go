package handler

type ArticleResponse struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Author      *string `json:"author"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	ImageURL    *string `json:"image_url"`
	PublishedAt string  `json:"published_at"`
	Content     string  `json:"content"`
	Token       string  `json:"token"`
}

type StateResponse struct {
	Source    string            `json:"source"`
	Articles  []ArticleResponse `json:"articles"`
	IsLoading bool              `json:"is_loading"`
	Error     *string           `json:"error"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
