package models

import (
	"encoding/json"
	"fmt"
)

const statusURLFormat = "https://twitter.com/i/status/%s"

type JobPosting struct {
	TweetID   string `json:"tweet_id"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	Keywords  string `json:"keywords"`
}

func StatusURL(id string) string {
	return fmt.Sprintf(statusURLFormat, id)
}

func (p JobPosting) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *JobPosting) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}
