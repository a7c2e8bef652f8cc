package models

// FieldDescriptor is one question of a research definition.
type FieldDescriptor struct {
	FieldID string `json:"fieldId" bson:"fieldId"`
	Label   string `json:"label" bson:"label"`
}

// Research is a survey definition: an ordered list of field descriptors.
type Research struct {
	ID           string            `json:"_id,omitempty" bson:"-"`
	Title        string            `json:"title" bson:"title"`
	Description  string            `json:"description,omitempty" bson:"description,omitempty"`
	Detail       []FieldDescriptor `json:"detail" bson:"detail"`
	CreatedBy    string            `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedTime  string            `json:"created_time" bson:"created_time"`
	ModifiedTime string            `json:"modified_time" bson:"modified_time"`
}

