package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment kinds derived from the file extension at send time.
const (
	FileKindImage    = "image"
	FileKindVideo    = "video"
	FileKindAudio    = "audio"
	FileKindDocument = "document"
	FileKindOther    = "other"
)

// Message is one unit of communication in a room. RoomID is either the
// sorted pairwise id of a direct conversation or a group's hex id.
// A message must carry non-empty content or a file reference at creation.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RoomID    string             `bson:"roomId" json:"roomId"`
	Content   string             `bson:"content,omitempty" json:"content"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver  primitive.ObjectID `bson:"receiver,omitempty" json:"receiver,omitempty"`
	File      string             `bson:"file,omitempty" json:"file,omitempty"`
	FileType  string             `bson:"fileType,omitempty" json:"fileType,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	EditedAt  time.Time          `bson:"editedAt" json:"editedAt"`
	IsDeleted bool               `bson:"isDeleted" json:"isDeleted"`
	IsEdited  bool               `bson:"isEdited" json:"isEdited"`
}
