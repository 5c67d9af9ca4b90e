package models

import "time"

// User is a registered account. Stands in for the hosted identity provider:
// an opaque id, an optional display name and an elevated-privilege flag.
type User struct {
	ID          string    `bson:"_id"          json:"id"`
	Username    string    `bson:"username"     json:"username"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	Password    string    `bson:"password"     json:"-"`
	Admin       bool      `bson:"admin"        json:"admin"`
	CreatedAt   time.Time `bson:"created_at"   json:"created_at"`
}
