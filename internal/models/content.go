package models

// Partner is a partnered community parsed from an admin-authored embed in
// the partners channel.
type Partner struct {
	Name        string   `json:"name"`
	JoinLink    string   `json:"joinLink"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// Event is a community event parsed from an embed in the events channel.
type Event struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	ReadMoreLink string `json:"readMoreLink,omitempty"`
}
