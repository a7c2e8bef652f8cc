package models

// ResearchData is one respondent's answers to a Research, together with a
// snapshot of the user who submitted them.
type ResearchData struct {
	ID           string         `json:"_id,omitempty" bson:"-"`
	ResearchID   string         `json:"research_id" bson:"research_id"`
	User         map[string]any `json:"user" bson:"user"`
	Detail       map[string]any `json:"detail" bson:"detail"`
	CreatedTime  string         `json:"created_time" bson:"created_time"`
	ModifiedTime string         `json:"modified_time" bson:"modified_time"`
}

// DataFilter selects research data; empty fields match everything.
type DataFilter struct {
	Username   string
	ResearchID string
}
